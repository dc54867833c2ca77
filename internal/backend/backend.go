// Package backend drives a complete generation run: IR passes, per-unit
// validation, VHDL serialization, file emission and optional analysis of
// the emitted files with GHDL.
package backend

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"rtlgen/internal/diag"
	"rtlgen/internal/format"
	"rtlgen/internal/ir"
	"rtlgen/internal/passes"
	"rtlgen/internal/template"
	"rtlgen/internal/validate"
	"rtlgen/internal/vhdl"
)

// Options configures a generation run.
type Options struct {
	// Version selects the VHDL language profile.
	Version vhdl.Version
	// OutDir receives one <entity>.vhd file per emitted unit.
	OutDir string
	// ArchName names architectures without a name of their own.
	ArchName string
	// Analyze runs ghdl -a on every written file.
	Analyze bool
	// GHDLPath optionally overrides the ghdl binary. When empty the backend
	// looks it up on PATH if analysis is requested.
	GHDLPath string
	// Reporter receives per-unit diagnostics. It is required.
	Reporter *diag.Reporter
	// SkipFormat leaves the serializer output untouched.
	SkipFormat bool
}

// Result lists what a run produced.
type Result struct {
	// Paths holds the written files in dependency order.
	Paths []string
	// Suppressed names units that reuse another unit's definition or are
	// supplied externally.
	Suppressed []string
	// Failed names units whose serialization failed.
	Failed []string
}

// UnitOutput is the outcome of serializing one unit.
type UnitOutput struct {
	vhdl.UnitText
	// Err is set when serialization failed; Text is then empty.
	Err error
}

// Pipeline returns the passes run before serialization for version.
func Pipeline(version vhdl.Version) *passes.Manager {
	m := passes.NewManager()
	if version < vhdl.VHDL2008 {
		m.Add(passes.NewLowerTernary())
	}
	m.Add(passes.NewInferSensitivity())
	return m
}

// Lower runs the pass pipeline for version.
func Lower(design *ir.Design, version vhdl.Version) error {
	if design == nil {
		return fmt.Errorf("backend: design is nil")
	}
	if err := Pipeline(version).Run(design); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

// Prepare runs the pass pipeline and validates the whole design.
func Prepare(design *ir.Design, version vhdl.Version, reporter *diag.Reporter) error {
	if reporter == nil {
		return fmt.Errorf("backend: reporter is nil")
	}
	if err := Lower(design, version); err != nil {
		return err
	}
	if err := validate.CheckDesign(design, version, reporter); err != nil {
		return fmt.Errorf("backend: %w", err)
	}
	return nil
}

// Generate lowers the design, then validates and serializes every unit in
// order. A unit that fails is reported and skipped; the others are still
// produced. The returned error joins every unit failure.
func Generate(design *ir.Design, opts Options) ([]UnitOutput, error) {
	if opts.Reporter == nil {
		return nil, fmt.Errorf("backend: reporter is nil")
	}
	if err := Lower(design, opts.Version); err != nil {
		return nil, err
	}
	provider, err := template.New()
	if err != nil {
		return nil, fmt.Errorf("backend: %w", err)
	}
	ser := &vhdl.Serializer{
		Version:  opts.Version,
		Renderer: provider,
		ArchName: opts.ArchName,
	}
	if !opts.SkipFormat {
		ser.Format = format.Format
	}
	st := vhdl.NewState()
	var (
		outs []UnitOutput
		errs []error
	)
	fail := func(u *ir.Unit, err error) {
		name := "<unit>"
		if u != nil && u.Entity != nil {
			name = u.Entity.Name
		}
		err = fmt.Errorf("unit %s: %w", name, err)
		errs = append(errs, err)
		outs = append(outs, UnitOutput{UnitText: vhdl.UnitText{Name: name, Unit: u}, Err: err})
	}
	for _, u := range design.Units {
		// the checker has already reported each issue
		if err := validate.CheckUnit(u, opts.Version, opts.Reporter); err != nil {
			fail(u, err)
			continue
		}
		text, err := ser.Unit(st, u)
		if err != nil {
			opts.Reporter.Error(u.Entity.Name, err.Error())
			fail(u, err)
			continue
		}
		outs = append(outs, UnitOutput{UnitText: text})
	}
	return outs, errors.Join(errs...)
}

// EmitVHDL generates the design and writes the emitted units to
// opts.OutDir, then optionally analyzes them with GHDL. Units that failed
// are listed in Result.Failed; their files are not written.
func EmitVHDL(design *ir.Design, opts Options) (Result, error) {
	if opts.OutDir == "" {
		return Result{}, fmt.Errorf("backend: output directory is required")
	}
	var ghdl string
	if opts.Analyze {
		var err error
		if ghdl, err = resolveBinary(opts.GHDLPath, "ghdl"); err != nil {
			return Result{}, fmt.Errorf("backend: resolve ghdl: %w", err)
		}
	}
	outs, genErr := Generate(design, opts)
	if outs == nil && genErr != nil {
		return Result{}, genErr
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return Result{}, fmt.Errorf("backend: create output dir: %w", err)
	}

	var res Result
	for _, out := range outs {
		switch {
		case out.Err != nil:
			res.Failed = append(res.Failed, out.Name)
		case out.Emitted:
			path := filepath.Join(opts.OutDir, out.Name+".vhd")
			if err := writeAtomic(path, strings.TrimRight(out.Text, "\n")+"\n"); err != nil {
				return res, err
			}
			res.Paths = append(res.Paths, path)
		default:
			res.Suppressed = append(res.Suppressed, out.Name)
		}
	}

	if ghdl != "" {
		for _, path := range res.Paths {
			if err := runGHDL(ghdl, opts.Version, opts.OutDir, path, opts.Reporter); err != nil {
				return res, errors.Join(genErr, err)
			}
		}
	}
	return res, genErr
}

// writeAtomic commits content to path only once it is fully written.
func writeAtomic(path, content string) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".rtlgen-*")
	if err != nil {
		return fmt.Errorf("backend: create temp file: %w", err)
	}
	defer os.Remove(f.Name())
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return fmt.Errorf("backend: write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("backend: write %s: %w", path, err)
	}
	if err := os.Rename(f.Name(), path); err != nil {
		return fmt.Errorf("backend: commit %s: %w", path, err)
	}
	return nil
}

func runGHDL(binary string, version vhdl.Version, workDir, path string, reporter *diag.Reporter) error {
	args := []string{"-a", "--std=" + version.Short(), "--workdir=" + workDir, path}
	cmd := exec.Command(binary, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(out.String()); msg != "" && reporter != nil {
			reporter.Error(path, msg)
		}
		return fmt.Errorf("backend: ghdl failed on %s: %w", filepath.Base(path), err)
	}
	return nil
}

func resolveBinary(explicit, fallback string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", err
	}
	return path, nil
}
