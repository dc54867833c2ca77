package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"rtlgen/internal/backend"
	"rtlgen/internal/netlist"
	"rtlgen/internal/vhdl"
)

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Load and validate design documents without emitting VHDL",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}
	cmd.Flags().String("std", "", "VHDL standard (2002|2008)")
	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	std := cfg.Generate.Standard
	if cmd.Flags().Changed("std") {
		if std, err = cmd.Flags().GetString("std"); err != nil {
			return err
		}
	}
	version, err := vhdl.ParseVersion(std)
	if err != nil {
		return err
	}
	reporter := newReporter(cmd.ErrOrStderr(), cfg)
	failed := 0
	for _, path := range args {
		design, err := netlist.LoadFile(path)
		if err == nil {
			err = backend.Prepare(design, version, reporter)
		}
		if err != nil {
			reporter.Error(path, err.Error())
			failed++
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d unit(s))\n", path, len(design.Units))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d design(s) failed validation", failed, len(args))
	}
	return nil
}
