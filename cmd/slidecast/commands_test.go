package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfigInitWritesSample(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")

	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"config", "init", "--path", target})

	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v (output %s)", err, out)
	}
	payload, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(payload), "[paths]") {
		t.Errorf("sample config missing paths section: %s", payload)
	}

	// A second run without --overwrite refuses to clobber the file.
	root = newRootCommand()
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"config", "init", "--path", target})
	if err := root.Execute(); err == nil {
		t.Error("expected error when config already exists")
	}
}

func TestConfigShowPrintsDefaults(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.toml")

	root := newRootCommand()
	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"--config", missing, "config", "show"})

	if err := root.Execute(); err != nil {
		t.Fatalf("config show: %v", err)
	}
	body := out.String()
	if !strings.Contains(body, "showing defaults") {
		t.Errorf("missing defaults notice: %s", body)
	}
	if !strings.Contains(body, "transition_type = 'crossfade'") && !strings.Contains(body, `transition_type = "crossfade"`) {
		t.Errorf("missing render defaults: %s", body)
	}
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.png", "a.jpg", "notes.txt", "c.JPEG"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	images, err := collectImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(images) != 3 {
		t.Fatalf("images = %v", images)
	}
	if filepath.Base(images[0]) != "a.jpg" || filepath.Base(images[1]) != "b.png" {
		t.Errorf("not sorted: %v", images)
	}
}

func TestResolveSubtitlePath(t *testing.T) {
	dir := t.TempDir()
	srt := filepath.Join(dir, "subs.srt")
	if err := os.WriteFile(srt, []byte("1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveSubtitlePath(srt)
	if err != nil || got != srt {
		t.Errorf("file passthrough = %q, %v", got, err)
	}

	got, err = resolveSubtitlePath(dir)
	if err != nil || got != srt {
		t.Errorf("folder scan = %q, %v", got, err)
	}

	empty := t.TempDir()
	got, err = resolveSubtitlePath(empty)
	if err != nil || got != "" {
		t.Errorf("empty folder = %q, %v", got, err)
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("123e4567-e89b-12d3-a456-426614174000"); got != "123e4567" {
		t.Errorf("shortID = %q", got)
	}
	if got := shortID("job-1"); got != "job-1" {
		t.Errorf("short ids pass through, got %q", got)
	}
}

func TestWriteRowsPlainWhenPiped(t *testing.T) {
	out := &bytes.Buffer{}
	writeRows(out, []string{"A", "B"}, [][]string{{"1", "2"}}, []columnAlignment{alignLeft, alignRight})
	body := out.String()
	if !strings.Contains(body, "A\tB") || !strings.Contains(body, "1\t2") {
		t.Errorf("plain output = %q", body)
	}
	if strings.Contains(body, "─") {
		t.Errorf("buffer output should not use table borders: %q", body)
	}
}
