package preflight_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slidecast/internal/preflight"
)

func TestCheckBinaryFound(t *testing.T) {
	result := preflight.CheckBinary("Shell", "sh", "test")
	if !result.Passed {
		t.Fatalf("sh should resolve on PATH: %s", result.Detail)
	}
	if result.Detail == "" {
		t.Error("detail should carry the resolved path")
	}
}

func TestCheckBinaryMissing(t *testing.T) {
	result := preflight.CheckBinary("Ghost", "definitely-not-a-real-binary-xyz", "test")
	if result.Passed {
		t.Fatal("nonexistent binary should fail")
	}
	if !strings.Contains(result.Detail, "not found") {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestCheckDirectoryAccess(t *testing.T) {
	dir := t.TempDir()

	result := preflight.CheckDirectoryAccess("Staging directory", dir)
	if !result.Passed {
		t.Errorf("writable temp dir should pass: %s", result.Detail)
	}

	result = preflight.CheckDirectoryAccess("Staging directory", filepath.Join(dir, "missing"))
	if result.Passed {
		t.Error("missing directory should fail")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Errorf("detail = %q", result.Detail)
	}

	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	result = preflight.CheckDirectoryAccess("Staging directory", file)
	if result.Passed {
		t.Error("regular file should fail the directory check")
	}
}

func TestCheckFreeSpace(t *testing.T) {
	result := preflight.CheckFreeSpace("Staging free space", t.TempDir())
	if !result.Passed {
		t.Skipf("temp filesystem nearly full: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "GiB free") {
		t.Errorf("detail = %q", result.Detail)
	}
}

func TestPassed(t *testing.T) {
	all := []preflight.Result{{Passed: true}, {Passed: true}}
	if !preflight.Passed(all) {
		t.Error("all passing should report true")
	}
	if preflight.Passed([]preflight.Result{{Passed: true}, {}}) {
		t.Error("one failure should report false")
	}
}
