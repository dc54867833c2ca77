package vhdl

import (
	"errors"
	"testing"

	"rtlgen/internal/template"
)

func newRenderer(t *testing.T) Renderer {
	t.Helper()
	p, err := template.New()
	if err != nil {
		t.Fatalf("template.New failed: %v", err)
	}
	return p
}

func newContext(t *testing.T, v Version) *Context {
	t.Helper()
	return NewContext(v, BaseScope(), newRenderer(t))
}

func expectKind(t *testing.T, err error, sentinel *Error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", sentinel.Kind)
	}
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected %s error, got %v", sentinel.Kind, err)
	}
}
