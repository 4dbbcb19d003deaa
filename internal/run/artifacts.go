// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package run

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/zenodo-get/internal/checksum"
	"github.com/pdiddy/zenodo-get/internal/plan"
	"github.com/pdiddy/zenodo-get/internal/transfer"
	"github.com/pdiddy/zenodo-get/internal/zenodo"
	"github.com/pdiddy/zenodo-get/pkg/types"
)

const (
	md5ManifestName    = "md5sums.txt"
	recordMetadataName = "record.yaml"
)

// writeURLList emits one download URL per planned, non-skipped item in
// manifest order, either to stdout ("-") or to a file. No transfer happens
// for those items.
func writeURLList(items []plan.Item, cfg types.DownloadConfig, w, stdout io.Writer) error {
	var b strings.Builder
	for _, item := range items {
		if item.Decision == plan.Skip {
			continue
		}
		b.WriteString(item.Entry.Links.Self)
		b.WriteByte('\n')
	}

	if cfg.URLListPath == "-" {
		if _, err := io.WriteString(stdout, b.String()); err != nil {
			return fmt.Errorf("writing URL list: %w", err)
		}
		fmt.Fprintln(w, "URL list written to stdout.")
		return nil
	}

	dest := cfg.URLListPath
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(cfg.OutputDir, dest)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating directory for URL list: %w", err)
	}
	if err := os.WriteFile(dest, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing URL list: %w", err)
	}
	fmt.Fprintf(w, "URL list written to %s.\n", dest)
	return nil
}

// writeMD5Manifest writes "<digest>  <name>" lines for every successfully
// verified file, in plan order, to md5sums.txt in the output directory.
// An existing manifest is always overwritten.
func writeMD5Manifest(items []plan.Item, result *Result, dir string, w io.Writer) error {
	verified := make(map[string]bool, len(result.Outcomes))
	for _, o := range result.Outcomes {
		if o.Outcome == transfer.OutcomeSuccess {
			verified[o.Name] = true
		}
	}

	var b strings.Builder
	for _, item := range items {
		if !verified[item.LocalName] {
			continue
		}
		declared, err := checksum.Parse(item.Entry.Checksum)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "%s  %s\n", declared.Digest, item.LocalName)
	}

	dest := filepath.Join(dir, md5ManifestName)
	if err := os.WriteFile(dest, []byte(b.String()), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", md5ManifestName, err)
	}
	fmt.Fprintf(w, "%s created.\n", md5ManifestName)
	return nil
}

// writeRecordMetadata writes the record's descriptive metadata and file
// manifest as YAML next to the downloads.
func writeRecordMetadata(rec *zenodo.Record, dir string, w io.Writer) error {
	data, err := yaml.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling record metadata: %w", err)
	}
	dest := filepath.Join(dir, recordMetadataName)
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", recordMetadataName, err)
	}
	fmt.Fprintf(w, "%s created.\n", recordMetadataName)
	return nil
}
