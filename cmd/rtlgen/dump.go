package main

import (
	"github.com/spf13/cobra"

	"rtlgen/internal/backend"
	"rtlgen/internal/ir"
	"rtlgen/internal/netlist"
	"rtlgen/internal/vhdl"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump file",
		Short: "Print the IR of a design document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			design, err := netlist.LoadFile(args[0])
			if err != nil {
				return err
			}
			lowered, err := cmd.Flags().GetString("passes")
			if err != nil {
				return err
			}
			if lowered != "" {
				version, err := vhdl.ParseVersion(lowered)
				if err != nil {
					return err
				}
				if err := backend.Pipeline(version).Run(design); err != nil {
					return err
				}
			}
			ir.Dump(design, cmd.OutOrStdout())
			return nil
		},
	}
	cmd.Flags().String("passes", "", "run the pass pipeline of the given standard (2002|2008) before dumping")
	return cmd
}
