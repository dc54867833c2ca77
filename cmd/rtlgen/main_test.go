package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const regDesign = `{
  "units": [{
    "name": "reg",
    "ports": [
      {"name": "clk", "dir": "in", "type": {"kind": "bits"}},
      {"name": "d", "dir": "in", "type": {"kind": "bits", "width": 8, "vector": true}},
      {"name": "q", "dir": "out", "type": {"kind": "bits", "width": 8, "vector": true}}
    ],
    "ops": [
      {"result": "clk_re", "kind": "rising_edge", "type": {"kind": "bool"}, "operands": [{"ref": "clk"}]}
    ],
    "processes": [
      {"name": "seq", "statements": [{"assign": {"dst": "q", "src": {"ref": "d"}, "cond": ["clk_re"]}}]}
    ]
  }]
}
`

const danglingDesign = `{
  "units": [{
    "name": "loose",
    "signals": [{"name": "unused", "type": {"kind": "bits"}}]
  }]
}
`

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// execute runs the root command with a project file in dir.
func execute(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	cfg := writeFile(t, dir, "rtlgen.toml", "[generate]\nout_dir = \"out\"\n\n[diagnostics]\ncolor = \"off\"\n")
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfg}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateWritesUnits(t *testing.T) {
	dir := t.TempDir()
	design := writeFile(t, dir, "reg.json", regDesign)
	stdout, stderr, err := execute(t, dir, "generate", design)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	want := filepath.Join(dir, "out", "reg.vhd")
	if diff := cmp.Diff(want+"\n", stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "seq: PROCESS(clk)") {
		t.Fatalf("expected clocked process:\n%s", data)
	}
}

func TestGenerateSeparatesDesigns(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.json", regDesign)
	b := writeFile(t, dir, "b.json", regDesign)
	out := filepath.Join(dir, "elsewhere")
	stdout, stderr, err := execute(t, dir, "generate", "--jobs", "2", "--std", "2008", "-o", out, a, b)
	if err != nil {
		t.Fatalf("generate failed: %v\n%s", err, stderr)
	}
	want := filepath.Join(out, "a", "reg.vhd") + "\n" + filepath.Join(out, "b", "reg.vhd") + "\n"
	if diff := cmp.Diff(want, stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerateReportsFailures(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.json", regDesign)
	bad := writeFile(t, dir, "bad.json", danglingDesign)
	_, stderr, err := execute(t, dir, "generate", good, bad)
	if err == nil || !strings.Contains(err.Error(), "generation failed for 1 of 2 design(s)") {
		t.Fatalf("expected one failure, got %v", err)
	}
	if !strings.Contains(stderr, "loose/unused: error: signal is declared but never driven nor read") {
		t.Fatalf("expected validation diagnostic, got %q", stderr)
	}
	if _, err := os.Stat(filepath.Join(dir, "out", "good", "reg.vhd")); err != nil {
		t.Fatalf("good design should still be generated: %v", err)
	}
}

func TestGenerateRejectsUnknownStandard(t *testing.T) {
	dir := t.TempDir()
	design := writeFile(t, dir, "reg.json", regDesign)
	if _, _, err := execute(t, dir, "generate", "--std", "1993", design); err == nil {
		t.Fatalf("expected error for unknown standard")
	}
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "reg.json", regDesign)
	stdout, stderr, err := execute(t, dir, "check", good)
	if err != nil {
		t.Fatalf("check failed: %v\n%s", err, stderr)
	}
	if diff := cmp.Diff(good+": ok (1 unit(s))\n", stdout); diff != "" {
		t.Fatalf("stdout mismatch (-want +got):\n%s", diff)
	}

	bad := writeFile(t, dir, "loose.json", danglingDesign)
	_, stderr, err = execute(t, dir, "--diag-format", "json", "check", bad)
	if err == nil {
		t.Fatalf("expected check failure")
	}
	if !strings.Contains(stderr, `"pos":"loose/unused"`) {
		t.Fatalf("expected json diagnostic, got %q", stderr)
	}
}

func TestDumpRunsPasses(t *testing.T) {
	dir := t.TempDir()
	design := writeFile(t, dir, "reg.json", regDesign)
	stdout, _, err := execute(t, dir, "dump", design)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if !strings.Contains(stdout, "unit reg class=reg mode=always") || !strings.Contains(stdout, "process 0 seq ()") {
		t.Fatalf("unexpected dump:\n%s", stdout)
	}
	stdout, _, err = execute(t, dir, "dump", "--passes", "2002", design)
	if err != nil {
		t.Fatalf("dump failed: %v", err)
	}
	if !strings.Contains(stdout, "process 0 seq (clk_re)") {
		t.Fatalf("inferred sensitivity missing:\n%s", stdout)
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, t.TempDir(), "version")
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "rtlgen "+Version) {
		t.Fatalf("unexpected version output %q", stdout)
	}
}
