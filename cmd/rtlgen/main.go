// Command rtlgen turns RTL design documents into VHDL.
package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"rtlgen/internal/config"
	"rtlgen/internal/diag"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rtlgen",
		Short:        "Generate VHDL from RTL design documents",
		Version:      Version,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "path to rtlgen.toml (discovered from the working directory when empty)")
	root.PersistentFlags().String("color", "", "colorize diagnostics (auto|on|off)")
	root.PersistentFlags().String("diag-format", "", "diagnostic output format (text|json)")

	root.AddCommand(newGenerateCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// loadConfig reads the project file and applies the global flag overrides.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	flags := cmd.Root().PersistentFlags()
	path, err := flags.GetString("config")
	if err != nil {
		return config.Config{}, err
	}
	var cfg config.Config
	if path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.Discover(".")
	}
	if err != nil {
		return config.Config{}, err
	}
	if flags.Changed("color") {
		if cfg.Diagnostics.Color, err = flags.GetString("color"); err != nil {
			return config.Config{}, err
		}
	}
	if flags.Changed("diag-format") {
		if cfg.Diagnostics.Format, err = flags.GetString("diag-format"); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, cfg.Validate()
}

func newReporter(w io.Writer, cfg config.Config) *diag.Reporter {
	r := diag.NewReporter(w, cfg.Diagnostics.Format)
	switch cfg.Diagnostics.Color {
	case "on":
		r.SetColor(true)
	case "off":
		r.SetColor(false)
	}
	return r
}
