package jobs_test

import (
	"testing"

	"slidecast/internal/jobs"
)

func TestTokenSetOnce(t *testing.T) {
	reg := jobs.NewCancelRegistry()
	token := reg.Register("j")

	if token.IsSet() {
		t.Fatal("fresh token should not be set")
	}

	if !reg.Cancel("j") {
		t.Fatal("cancel of registered job should succeed")
	}
	if !token.IsSet() {
		t.Fatal("token should be set after cancel")
	}

	// Setting again is a no-op, not a panic.
	token.Set()
	reg.Cancel("j")

	select {
	case <-token.Done():
	default:
		t.Fatal("done channel should be closed")
	}
}

func TestRegisterReturnsSameToken(t *testing.T) {
	reg := jobs.NewCancelRegistry()
	a := reg.Register("j")
	b := reg.Register("j")
	if a != b {
		t.Fatal("re-registering should reuse the token")
	}
}

func TestCancelUnknownJob(t *testing.T) {
	reg := jobs.NewCancelRegistry()
	if reg.Cancel("nope") {
		t.Fatal("cancel of unknown job should report false")
	}
}

func TestRelease(t *testing.T) {
	reg := jobs.NewCancelRegistry()
	reg.Register("j")
	reg.Release("j")
	if _, ok := reg.Lookup("j"); ok {
		t.Fatal("released token still present")
	}
}
