package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"rtlgen/internal/backend"
	"rtlgen/internal/config"
	"rtlgen/internal/netlist"
	"rtlgen/internal/vhdl"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate [files...]",
		Short: "Emit one .vhd file per unit of each design document",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runGenerate,
	}
	cmd.Flags().String("std", "", "VHDL standard (2002|2008)")
	cmd.Flags().StringP("out", "o", "", "output directory")
	cmd.Flags().String("arch", "", "name of architectures without one")
	cmd.Flags().IntP("jobs", "j", 0, "number of design files generated in parallel")
	cmd.Flags().Bool("analyze", false, "analyze emitted files with ghdl")
	cmd.Flags().String("ghdl", "", "path to ghdl (falls back to PATH lookup)")
	return cmd
}

// applyGenerateFlags overrides cfg with the flags set on cmd.
func applyGenerateFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("std") {
		if cfg.Generate.Standard, err = flags.GetString("std"); err != nil {
			return err
		}
	}
	if flags.Changed("out") {
		if cfg.Generate.OutDir, err = flags.GetString("out"); err != nil {
			return err
		}
	}
	if flags.Changed("arch") {
		if cfg.Generate.ArchName, err = flags.GetString("arch"); err != nil {
			return err
		}
	}
	if flags.Changed("jobs") {
		if cfg.Generate.Jobs, err = flags.GetInt("jobs"); err != nil {
			return err
		}
	}
	if flags.Changed("ghdl") {
		if cfg.Analyze.GHDL, err = flags.GetString("ghdl"); err != nil {
			return err
		}
		cfg.Analyze.Enabled = true
	}
	if flags.Changed("analyze") {
		if cfg.Analyze.Enabled, err = flags.GetBool("analyze"); err != nil {
			return err
		}
	}
	return cfg.Validate()
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyGenerateFlags(cmd, &cfg); err != nil {
		return err
	}
	version, err := vhdl.ParseVersion(cfg.Generate.Standard)
	if err != nil {
		return err
	}
	reporter := newReporter(cmd.ErrOrStderr(), cfg)

	// Runs share nothing but the reporter, which is safe for concurrent use.
	results := make([]backend.Result, len(args))
	errs := make([]error, len(args))
	g, gctx := errgroup.WithContext(context.Background())
	g.SetLimit(min(cfg.Generate.Jobs, len(args)))
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			design, err := netlist.LoadFile(path)
			if err != nil {
				reporter.Error(path, err.Error())
				errs[i] = err
				return nil
			}
			results[i], errs[i] = backend.EmitVHDL(design, backend.Options{
				Version:  version,
				OutDir:   outDirFor(cfg.Generate.OutDir, path, len(args)),
				ArchName: cfg.Generate.ArchName,
				Analyze:  cfg.Analyze.Enabled,
				GHDLPath: cfg.Analyze.GHDL,
				Reporter: reporter,
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for i, res := range results {
		for _, p := range res.Paths {
			fmt.Fprintln(out, p)
		}
		if errs[i] != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("generation failed for %d of %d design(s): %w", failed, len(args), errors.Join(errs...))
	}
	return nil
}

// outDirFor keeps the units of several design documents apart.
func outDirFor(base, path string, n int) string {
	if n == 1 {
		return base
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return filepath.Join(base, stem)
}
