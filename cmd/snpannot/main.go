// Package main provides the snpannot command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snpannot",
		Short:   "Annotate variant sites with gene context and codon degeneracy",
		Long: `snpannot classifies coordinate-sorted variant sites against a reference
genome: coding or non-coding, codon degeneracy class (1D-4D), and the
synonymous/non-synonymous effect of each possible substitution.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cobra.OnInitialize(initConfig)

	cmd.AddCommand(newAnnotateCmd())
	cmd.AddCommand(newConfigCmd())

	return cmd
}

// initConfig loads ~/.snpannot.yaml and SNPANNOT_* environment overrides.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".snpannot")
		viper.SetConfigType("yaml")
	}
	viper.SetEnvPrefix("snpannot")
	viper.AutomaticEnv()

	// A missing config file is fine; defaults and flags apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the process logger. Verbose runs use the development
// config for human-readable output.
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{"stderr"}
	return cfg.Build()
}
