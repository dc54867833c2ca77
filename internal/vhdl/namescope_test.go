package vhdl

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCheckedNameRenamesKeywords(t *testing.T) {
	run := func() []string {
		s := BaseScope()
		owners := []*int{new(int), new(int), new(int), new(int)}
		return []string{
			s.CheckedName("signal", owners[0], false),
			s.CheckedName("SIGNAL", owners[1], false),
			s.CheckedName("process", owners[2], true),
			s.CheckedName("data", owners[3], false),
		}
	}
	first := run()
	want := []string{"signal_0", "SIGNAL_1", "process_0", "data"}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(first, run()); diff != "" {
		t.Fatalf("renaming is not deterministic:\n%s", diff)
	}
}

func TestCheckedNameKeepsOwnerName(t *testing.T) {
	s := BaseScope()
	a, b := new(int), new(int)
	if got := s.CheckedName("x", a, false); got != "x" {
		t.Fatalf("got %q", got)
	}
	if got := s.CheckedName("x", b, false); got != "x_0" {
		t.Fatalf("collision should be suffixed, got %q", got)
	}
	if got := s.CheckedName("other", a, false); got != "x" {
		t.Fatalf("owner should keep its first name, got %q", got)
	}
	if n, ok := s.NameOf(b); !ok || n != "x_0" {
		t.Fatalf("NameOf = %q, %v", n, ok)
	}
}

func TestReleaseFreesName(t *testing.T) {
	s := BaseScope()
	a, b := new(int), new(int)
	s.CheckedName("top", a, true)
	s.Release(a)
	if _, ok := s.NameOf(a); ok {
		t.Fatalf("released owner still has a name")
	}
	if got := s.CheckedName("top", b, true); got != "top" {
		t.Fatalf("released name should be reusable, got %q", got)
	}
	s.Release(new(int))
	if got := s.CheckedName("top", new(int), true); got != "top_0" {
		t.Fatalf("releasing an unknown owner must not free names, got %q", got)
	}
}

func TestNestedLevelsDoNotLeak(t *testing.T) {
	s := BaseScope()
	s.Push()
	local := new(int)
	if got := s.CheckedName("tmp", local, false); got != "tmp" {
		t.Fatalf("got %q", got)
	}
	unit := new(int)
	if got := s.CheckedName("top", unit, true); got != "top" {
		t.Fatalf("got %q", got)
	}
	s.Pop()
	if got := s.CheckedName("tmp", new(int), false); got != "tmp" {
		t.Fatalf("popped name leaked upward, got %q", got)
	}
	if got := s.CheckedName("top", new(int), false); got != "top_0" {
		t.Fatalf("global name should survive pop, got %q", got)
	}
	s.Pop()
	s.Pop()
	if s.Depth() != 2 {
		t.Fatalf("keyword and global levels must never be popped, depth %d", s.Depth())
	}
}

func TestSanitize(t *testing.T) {
	cases := map[string]string{
		"data-in":  "data_in",
		"9lives":   "n9lives",
		"café":     "cafe",
		"__a__b__": "a_b",
		"":         "unnamed",
		"ok_Name1": "ok_Name1",
	}
	for in, want := range cases {
		if got := Sanitize(in); got != want {
			t.Fatalf("Sanitize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestErrorKindsMatchSentinels(t *testing.T) {
	err := errorf(InvalidLiteral, "v", "bad")
	if !errors.Is(err, ErrInvalidLiteral) {
		t.Fatalf("errors.Is should match the sentinel")
	}
	if errors.Is(err, ErrTypeMismatch) {
		t.Fatalf("different kinds must not match")
	}
	if got := err.Error(); got != "vhdl: invalid literal: v: bad" {
		t.Fatalf("unexpected message %q", got)
	}
}
