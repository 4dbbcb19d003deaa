// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the zenodo-get CLI, a downloader
// for complete Zenodo records addressed by record ID or DOI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-get/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API tokens loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if non-empty, otherwise the stored
// secret for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command. The download itself runs on the root:
// zenodo-get is a single-purpose tool and subcommands exist only for
// version and citation output.
var rootCmd = &cobra.Command{
	Use:   "zenodo-get [flags] RECORD_OR_DOI",
	Short: "Download all files of a Zenodo record",
	Long: `zenodo-get downloads complete Zenodo records based on the record ID or
the DOI. The primary goal is to ease access to large records with dozens
of files.

Already-downloaded files with correct checksums are skipped, so an
interrupted run can simply be repeated. Every downloaded file is verified
against the checksum declared in the record manifest.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runDownload,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./zenodo-get.yaml or ~/.config/zenodo-get/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zenodo-get")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "zenodo-get"))
		}
	}

	viper.SetEnvPrefix("ZENODO_GET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
