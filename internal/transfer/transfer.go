// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package transfer streams planned files to disk and verifies them against
// their declared checksums. Network-level failures are retried inside the
// transport (httputil); this package owns only the application-level
// retry: a failed checksum discards the file and re-downloads from
// scratch. There is no partial-byte resume.
package transfer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pdiddy/zenodo-get/internal/checksum"
	"github.com/pdiddy/zenodo-get/internal/httputil"
	"github.com/pdiddy/zenodo-get/internal/plan"
	"github.com/pdiddy/zenodo-get/pkg/types"
)

// Outcome is the final result of one planned item.
type Outcome int

const (
	// OutcomeSuccess covers verified downloads and skips.
	OutcomeSuccess Outcome = iota

	// OutcomeChecksumMismatch means every attempt produced a bad digest.
	OutcomeChecksumMismatch

	// OutcomeNetworkError means the transport gave up after its retries.
	OutcomeNetworkError

	// OutcomeTimeout is a network error that was specifically a timeout.
	OutcomeTimeout

	// OutcomeNotAttempted marks items abandoned after an earlier abort.
	OutcomeNotAttempted
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeChecksumMismatch:
		return "checksum mismatch"
	case OutcomeNetworkError:
		return "network error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeNotAttempted:
		return "not attempted"
	default:
		return "unknown"
	}
}

// Result records the final outcome of one item plus how many transfer
// attempts it took.
type Result struct {
	Item     plan.Item
	Outcome  Outcome
	Attempts int
	Err      error
}

// OK reports whether the item ended in success (including skips).
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Executor downloads planned items one at a time.
type Executor struct {
	client      *http.Client
	userAgent   string
	maxRetries  int
	backoff     httputil.BackoffPolicy
	retry       int
	pause       httputil.BackoffPolicy
	keepInvalid bool
	dir         string
	out         io.Writer
}

// NewExecutor builds an Executor from the run configuration. Progress and
// diagnostic lines go to w.
func NewExecutor(client *http.Client, cfg types.DownloadConfig, w io.Writer) *Executor {
	return &Executor{
		client:      client,
		userAgent:   cfg.UserAgent,
		maxRetries:  cfg.MaxRetries,
		backoff:     httputil.ExponentialBackoff{Factor: cfg.BackoffFactor},
		retry:       cfg.Retry,
		pause:       httputil.ConstantBackoff{Pause: cfg.Pause},
		keepInvalid: cfg.KeepInvalid,
		dir:         cfg.OutputDir,
		out:         w,
	}
}

// Execute processes one planned item to completion. Skip items succeed
// without a transfer. Everything else is streamed to a temporary file,
// renamed into place, and verified; a mismatch re-downloads from scratch
// up to the configured retry count, pausing between attempts.
func (e *Executor) Execute(ctx context.Context, item plan.Item) Result {
	if item.Decision == plan.Skip {
		fmt.Fprintf(e.out, "%s is already downloaded correctly.\n", item.Entry.Key)
		return Result{Item: item, Outcome: OutcomeSuccess}
	}

	declared, declErr := checksum.Parse(item.Entry.Checksum)

	target := filepath.Join(e.dir, filepath.FromSlash(item.LocalName))

	for attempt := 0; ; attempt++ {
		err := e.downloadFile(ctx, item.Entry.Links.Self, target)
		if err != nil {
			outcome := OutcomeNetworkError
			if httputil.IsTimeout(err) {
				outcome = OutcomeTimeout
			}
			return Result{Item: item, Outcome: outcome, Attempts: attempt + 1, Err: err}
		}

		// A manifest without a parseable checksum cannot be verified;
		// accept the transfer as-is.
		if declErr != nil {
			return Result{Item: item, Outcome: OutcomeSuccess, Attempts: attempt + 1}
		}

		verr := checksum.Verify(target, declared)
		if verr == nil {
			fmt.Fprintf(e.out, "Checksum is correct. (%s)\n", declared.Digest)
			return Result{Item: item, Outcome: OutcomeSuccess, Attempts: attempt + 1}
		}

		fmt.Fprintf(e.out, "Checksum is INCORRECT for %s.\n", item.LocalName)
		if !e.keepInvalid {
			fmt.Fprintln(e.out, "  File is deleted.")
			os.Remove(target)
		} else {
			fmt.Fprintln(e.out, "  File is NOT deleted!")
		}

		if attempt >= e.retry {
			return Result{Item: item, Outcome: OutcomeChecksumMismatch, Attempts: attempt + 1, Err: verr}
		}

		select {
		case <-ctx.Done():
			return Result{Item: item, Outcome: OutcomeNetworkError, Attempts: attempt + 1, Err: ctx.Err()}
		case <-time.After(e.pause.Delay(attempt)):
		}
	}
}

// downloadFile streams url to destPath using a temporary file in the same
// directory, renaming on success so a partial transfer never occupies the
// final name.
func (e *Executor) downloadFile(ctx context.Context, url, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", filepath.Dir(destPath), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)

	resp, err := httputil.DoWithRetry(ctx, e.client, req, e.maxRetries, e.backoff)
	if err != nil {
		return fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}

	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".zget-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	_, copyErr := io.Copy(tmpFile, resp.Body)
	closeErr := tmpFile.Close()
	if copyErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing download: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
