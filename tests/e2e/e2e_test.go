package e2e

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/tools/txtar"

	"rtlgen/internal/backend"
	"rtlgen/internal/diag"
	"rtlgen/internal/netlist"
	"rtlgen/internal/vhdl"
)

// Each archive holds a design.json netlist, an optional std section, an
// optional error section naming the expected failure and a failed section
// listing the units that must be skipped. Every other section is a whole
// expected output file. Files are compared line by line after collapsing
// runs of blanks and dropping empty lines, so column alignment is not
// pinned down.
func TestDesignsGenerateVHDL(t *testing.T) {
	archives, err := filepath.Glob(filepath.Join("testdata", "*.txtar"))
	if err != nil {
		t.Fatalf("glob testdata: %v", err)
	}
	if len(archives) == 0 {
		t.Fatalf("no testdata archives found")
	}
	for _, path := range archives {
		path := path
		name := strings.TrimSuffix(filepath.Base(path), ".txtar")
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ar, err := txtar.ParseFile(path)
			if err != nil {
				t.Fatalf("parse %s: %v", path, err)
			}
			runArchive(t, ar)
		})
	}
}

func runArchive(t *testing.T, ar *txtar.Archive) {
	t.Helper()
	dir := t.TempDir()
	version := vhdl.VHDL2002
	var wantErr string
	var wantFailed []string
	expected := make(map[string]string)
	var designPath string
	for _, f := range ar.Files {
		switch {
		case f.Name == "design.json":
			designPath = filepath.Join(dir, f.Name)
			if err := os.WriteFile(designPath, f.Data, 0o644); err != nil {
				t.Fatalf("write design: %v", err)
			}
		case f.Name == "std":
			v, err := vhdl.ParseVersion(strings.TrimSpace(string(f.Data)))
			if err != nil {
				t.Fatalf("std section: %v", err)
			}
			version = v
		case f.Name == "error":
			wantErr = strings.TrimSpace(string(f.Data))
		case f.Name == "failed":
			wantFailed = strings.Fields(string(f.Data))
		case strings.HasSuffix(f.Name, ".vhd"):
			expected[f.Name] = string(f.Data)
		default:
			t.Fatalf("unexpected archive section %q", f.Name)
		}
	}
	if designPath == "" {
		t.Fatalf("archive has no design.json section")
	}

	design, err := netlist.LoadFile(designPath)
	if err != nil {
		t.Fatalf("load design: %v", err)
	}
	out := filepath.Join(dir, "out")
	var diags bytes.Buffer
	res, err := backend.EmitVHDL(design, backend.Options{
		Version:  version,
		OutDir:   out,
		Reporter: diag.NewReporter(&diags, "text"),
	})
	if wantErr != "" {
		if err == nil || !strings.Contains(err.Error(), wantErr) {
			t.Fatalf("expected error containing %q, got %v\n%s", wantErr, err, diags.String())
		}
	} else if err != nil {
		t.Fatalf("EmitVHDL failed: %v\n%s", err, diags.String())
	}
	if diff := cmp.Diff(wantFailed, res.Failed); diff != "" {
		t.Fatalf("failed units mismatch (-want +got):\n%s", diff)
	}

	var written, want []string
	for _, p := range res.Paths {
		written = append(written, filepath.Base(p))
	}
	for name := range expected {
		want = append(want, name)
	}
	sort.Strings(written)
	sort.Strings(want)
	if diff := cmp.Diff(want, written); diff != "" {
		t.Fatalf("written files mismatch (-want +got):\n%s", diff)
	}

	for name, text := range expected {
		data, err := os.ReadFile(filepath.Join(out, name))
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		if diff := cmp.Diff(normalize(text), normalize(string(data))); diff != "" {
			t.Fatalf("%s mismatch (-want +got):\n%s", name, diff)
		}
	}
}

// normalize splits text into lines with runs of blanks collapsed and empty
// lines dropped.
func normalize(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.Join(strings.Fields(l), " "); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestNormalize(t *testing.T) {
	got := normalize("a  : b\n\n\tc <= d;  \n")
	if diff := cmp.Diff([]string{"a : b", "c <= d;"}, got); diff != "" {
		t.Fatalf("normalize mismatch (-want +got):\n%s", diff)
	}
}
