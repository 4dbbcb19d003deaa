// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/zenodo-get/internal/httputil"
	"github.com/pdiddy/zenodo-get/internal/run"
	"github.com/pdiddy/zenodo-get/internal/secrets"
	"github.com/pdiddy/zenodo-get/pkg/types"
)

const defaultUserAgent = "zenodo-get/" + "1.0"

func init() {
	f := rootCmd.Flags()

	f.StringP("record", "r", "", "Zenodo record ID")
	f.BoolP("doi", "d", false, "interpret the argument strictly as a DOI")
	f.StringP("output-dir", "o", ".", "output directory, created if necessary")
	f.StringArrayP("glob", "g", nil, "only download files matching the glob pattern (repeatable, OR-combined)")
	f.BoolP("md5", "m", false, "create md5sums.txt for verification")
	f.StringP("wget", "w", "", "create URL list for download managers instead of downloading ('-' for stdout)")
	f.BoolP("continue-on-error", "e", false, "continue with the next file if an error happens")
	f.BoolP("keep", "k", false, "keep files with invalid checksum (default: delete them)")
	f.IntP("retry", "R", 0, "retry a failed checksum N more times")
	f.Float64P("pause", "p", 0.5, "wait N seconds before a retry attempt")
	f.BoolP("do-not-continue", "n", false, "do not continue a previous download attempt")
	f.Bool("no-clobber", false, "never overwrite an existing file; with -n, download to a suffixed name")
	f.Float64P("time-out", "t", 15, "connection timeout in seconds")
	f.Int("max-http-retries", 5, "maximum HTTP transport-level retries for transient failures")
	f.Float64("backoff-factor", 0.5, "exponential backoff factor between HTTP retries, in seconds")
	f.BoolP("sandbox", "s", false, "use the Zenodo sandbox instance")
	f.Bool("save-metadata", false, "write record metadata to record.yaml in the output directory")
	f.String("access-token", "", "Zenodo API access token for restricted records")

	// Config file and ZENODO_GET_* env vars supply defaults for
	// anything not set on the command line.
	for _, key := range []string{
		"output-dir", "retry", "pause", "time-out",
		"max-http-retries", "backoff-factor", "sandbox", "access-token",
	} {
		viper.BindPFlag(key, f.Lookup(key))
	}
}

func runDownload(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	identifier, _ := f.GetString("record")
	if len(args) > 0 {
		if identifier != "" {
			return fmt.Errorf("provide either a positional identifier or --record, not both")
		}
		identifier = args[0]
	}
	if identifier == "" {
		return cmd.Help()
	}

	doiMode, _ := f.GetBool("doi")
	globs, _ := f.GetStringArray("glob")
	md5Manifest, _ := f.GetBool("md5")
	urlList, _ := f.GetString("wget")
	continueOnError, _ := f.GetBool("continue-on-error")
	keep, _ := f.GetBool("keep")
	startFresh, _ := f.GetBool("do-not-continue")
	noClobber, _ := f.GetBool("no-clobber")
	saveMetadata, _ := f.GetBool("save-metadata")

	cfg := types.DownloadConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:       secondsDuration(viper.GetFloat64("time-out")),
			UserAgent:     defaultUserAgent,
			MaxRetries:    viper.GetInt("max-http-retries"),
			BackoffFactor: secondsDuration(viper.GetFloat64("backoff-factor")),
		},
		OutputDir:       viper.GetString("output-dir"),
		Globs:           globs,
		Retry:           viper.GetInt("retry"),
		Pause:           secondsDuration(viper.GetFloat64("pause")),
		ContinueOnError: continueOnError,
		KeepInvalid:     keep,
		StartFresh:      startFresh,
		NoClobber:       noClobber,
		Sandbox:         viper.GetBool("sandbox"),
		MD5Manifest:     md5Manifest,
		SaveMetadata:    saveMetadata,
	}

	tokenKey := secrets.AccessTokenKey
	if cfg.Sandbox {
		tokenKey = secrets.SandboxAccessTokenKey
	}
	cfg.AccessToken = secretDefault(tokenKey, viper.GetString("access-token"))

	if urlList != "" {
		cfg.Mode = types.ModeURLList
		cfg.URLListPath = urlList
	}

	client := httputil.NewClient(cfg.Timeout)

	_, err := run.Run(cmd.Context(), client, identifier, doiMode, cfg, os.Stderr, os.Stdout)
	return err
}

func secondsDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
