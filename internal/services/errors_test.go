package services_test

import (
	"errors"
	"strings"
	"testing"

	"fastfox/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExtraction, "extract", "read pdf", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExtraction) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "read pdf", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected default detail, got %q", err.Error())
	}
}

func TestFailureKindMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{services.Wrap(services.ErrExtraction, "extract", "csv", "bad", nil), "extraction"},
		{services.Wrap(services.ErrSynthesis, "label", "complete", "bad", nil), "synthesis"},
		{services.Wrap(services.ErrRoute, "route", "move", "bad", nil), "route"},
		{services.Wrap(services.ErrDirectoryNotFound, "organize", "stat", "bad", nil), "directory_not_found"},
		{errors.New("other"), "transient"},
	}
	for _, tc := range cases {
		if got := services.FailureKind(tc.err); got != tc.want {
			t.Fatalf("FailureKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
