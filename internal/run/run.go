// Package run orchestrates a whole download run: resolve the identifier,
// fetch the record manifest, build the plan, then either transfer the
// files one at a time or emit the URL list, and finally produce the
// run artifacts and summary.
package run

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pdiddy/zenodo-get/internal/plan"
	"github.com/pdiddy/zenodo-get/internal/resolve"
	"github.com/pdiddy/zenodo-get/internal/transfer"
	"github.com/pdiddy/zenodo-get/internal/zenodo"
	"github.com/pdiddy/zenodo-get/pkg/types"
)

// FileOutcome is the retained per-file result: the final outcome and the
// attempt count, nothing per-attempt.
type FileOutcome struct {
	Name     string
	Outcome  transfer.Outcome
	Attempts int
}

// Result aggregates a run. Created empty at run start, filled in plan
// order as items complete, finalized when the plan is exhausted or the
// run aborts.
type Result struct {
	Downloaded   int
	Skipped      int
	Failed       int
	NotAttempted int
	Outcomes     []FileOutcome
}

// Total returns the number of planned items processed or abandoned.
func (r Result) Total() int {
	return r.Downloaded + r.Skipped + r.Failed + r.NotAttempted
}

// HasFailures reports whether any item failed or was abandoned after an
// abort. The process exits zero only when this is false.
func (r Result) HasFailures() bool {
	return r.Failed > 0 || r.NotAttempted > 0
}

// Run executes a full download run for identifier. Progress and the final
// summary are written to w; stdout is only used by URL-list mode when the
// destination is "-".
func Run(ctx context.Context, client *http.Client, identifier string, doiMode bool, cfg types.DownloadConfig, w, stdout io.Writer) (*Result, error) {
	recordID, err := resolve.RecordID(identifier, doiMode)
	if err != nil {
		return nil, err
	}

	zc := zenodo.NewClient(client, cfg.HTTPConfig, cfg.Sandbox, cfg.AccessToken)
	rec, err := zc.GetRecord(ctx, recordID)
	if err != nil {
		return nil, err
	}

	inv := plan.Inventory(cfg.OutputDir, rec.Files)
	items, err := plan.Build(rec.Files, inv, plan.Options{
		Dir:        cfg.OutputDir,
		Globs:      cfg.Globs,
		StartFresh: cfg.StartFresh,
		NoClobber:  cfg.NoClobber,
	})
	if err != nil {
		return nil, err
	}

	if cfg.Mode == types.ModeURLList {
		if err := writeURLList(items, cfg, w, stdout); err != nil {
			return nil, err
		}
		return &Result{}, nil
	}

	printHeader(w, rec)

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", cfg.OutputDir, err)
	}

	result := &Result{}
	exec := transfer.NewExecutor(client, cfg, w)
	aborted := false

	for _, item := range items {
		if aborted {
			result.NotAttempted++
			result.Outcomes = append(result.Outcomes, FileOutcome{
				Name:    item.LocalName,
				Outcome: transfer.OutcomeNotAttempted,
			})
			continue
		}

		if item.Decision != plan.Skip {
			fmt.Fprintf(w, "\nLink: %s   size: %.1f MB\n", item.Entry.Links.Self, mb(item.Entry.Size))
		}

		res := exec.Execute(ctx, item)
		result.Outcomes = append(result.Outcomes, FileOutcome{
			Name:     item.LocalName,
			Outcome:  res.Outcome,
			Attempts: res.Attempts,
		})

		switch {
		case res.OK() && item.Decision == plan.Skip:
			result.Skipped++
		case res.OK():
			result.Downloaded++
		default:
			result.Failed++
			fmt.Fprintf(w, "failed: %s (%v)\n", item.LocalName, res.Err)
			if !cfg.ContinueOnError {
				fmt.Fprintln(w, "Download is aborted.")
				aborted = true
			}
		}
	}

	if cfg.MD5Manifest {
		if err := writeMD5Manifest(items, result, cfg.OutputDir, w); err != nil {
			return result, err
		}
	}
	if cfg.SaveMetadata {
		if err := writeRecordMetadata(rec, cfg.OutputDir, w); err != nil {
			return result, err
		}
	}

	fmt.Fprintf(w, "\nRun summary: %d downloaded, %d skipped, %d failed, %d not attempted (total: %d)\n",
		result.Downloaded, result.Skipped, result.Failed, result.NotAttempted, result.Total())

	if result.HasFailures() {
		return result, fmt.Errorf("%d file(s) not downloaded", result.Failed+result.NotAttempted)
	}
	return result, nil
}

// printHeader writes the record summary shown before transfers begin.
func printHeader(w io.Writer, rec *zenodo.Record) {
	fmt.Fprintf(w, "Title: %s\n", rec.Metadata.Title)
	fmt.Fprintf(w, "Keywords: %s\n", strings.Join(rec.Metadata.Keywords, ", "))
	fmt.Fprintf(w, "Publication date: %s\n", rec.Metadata.PublicationDate)
	fmt.Fprintf(w, "DOI: %s\n", doi(rec))
	fmt.Fprintf(w, "Total size: %.1f MB\n", mb(rec.TotalSize()))
}

func doi(rec *zenodo.Record) string {
	if rec.Metadata.DOI != "" {
		return rec.Metadata.DOI
	}
	return rec.DOI
}

func mb(bytes int64) float64 {
	return float64(bytes) / (1 << 20)
}
