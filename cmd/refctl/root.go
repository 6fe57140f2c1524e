package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wippyai/refcell/config"
	"github.com/wippyai/refcell/refc"
)

var (
	// Global flags
	configPath string
	verbose    bool
	noColor    bool

	cfg    = config.Default()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "refctl",
	Short: "Exercise shared ownership of externally freed resources",
	Long: `refctl drives refcell handles through scripted or interactive lifecycles.
Each resource records its teardown calls, so a run shows exactly when and how
often every resource is freed.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(*cobra.Command, []string) {
		_ = logger.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
}

func setup(cmd *cobra.Command, args []string) error {
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if verbose {
		cfg.Log.Level = "debug"
	}

	l, err := cfg.NewLogger()
	if err != nil {
		return err
	}
	logger = l
	refc.SetLogger(l)
	return nil
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
