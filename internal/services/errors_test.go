package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("connection refused")
	err := Wrap(ErrExternalTool, "content", "generate", "listing generation failed", base)

	if !errors.Is(err, ErrExternalTool) {
		t.Fatal("marker lost")
	}
	if !errors.Is(err, base) {
		t.Fatal("cause lost")
	}
	want := "external service error: content: generate: listing generation failed: connection refused"
	if err.Error() != want {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatal("nil marker should default to transient")
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := Wrap(ErrConfiguration, "config", "load", "template missing", nil)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatal("marker lost")
	}
	if err.Error() != "configuration error: config: load: template missing" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
}
