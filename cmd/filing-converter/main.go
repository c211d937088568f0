// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the filing-converter CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the filing-converter CLI.
var rootCmd = &cobra.Command{
	Use:   "filing-converter",
	Short: "Convert scanned tax filings into named PDFs",
	Long: `filing-converter turns directories of scanned tax-filing pages (TIFF files)
into one PDF per filing. Each directory carries a .dat metadata file whose rows
name the filing organization, tax period, form type, and the scanned pages that
belong to it.

PDFs are written to pdfs/<input-dir>/<EIN>_<FORM>_<PERIOD>.pdf, for example
pdfs/2018_01_T/75-1107227_990T_201409.pdf.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./filing-converter.yaml or ~/.config/filing-converter/config.yaml)")
	rootCmd.PersistentFlags().String("index-db", "", "SQLite filing index to update and query (disabled when empty)")
	_ = viper.BindPFlag("index_db", rootCmd.PersistentFlags().Lookup("index-db"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("filing-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "filing-converter"))
		}
	}

	viper.SetEnvPrefix("FILING_CONVERTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// exitCoder is implemented by errors that select a specific process exit code.
type exitCoder interface {
	ExitCode() int
}

// exitCode maps a command error to the process exit status: 1 for run-level
// failures, or the code carried by the error.
func exitCode(err error) int {
	var ec exitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}
	return 1
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(exitCode(err))
	}
}
