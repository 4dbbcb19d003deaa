// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan turns a record's file manifest into per-file download
// decisions. Resume state is never persisted: each run re-derives it by
// scanning the output directory and re-verifying checksums against the
// manifest.
package plan

import (
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdiddy/zenodo-get/internal/checksum"
	"github.com/pdiddy/zenodo-get/internal/zenodo"
)

// Decision says what to do with one manifest entry.
type Decision int

const (
	// Skip means a correct copy already exists locally.
	Skip Decision = iota

	// FreshDownload means no local copy exists (or resume is disabled).
	FreshDownload

	// Overwrite means a local copy exists but its checksum differs or
	// cannot be verified.
	Overwrite

	// RenameAndDownload means a collision exists, overwriting is
	// disabled, and the file goes to a suffixed name instead.
	RenameAndDownload
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case FreshDownload:
		return "download"
	case Overwrite:
		return "overwrite"
	case RenameAndDownload:
		return "rename"
	default:
		return "unknown"
	}
}

// Item pairs a manifest entry with its decision. LocalName is the name the
// file will occupy in the output directory; it differs from the manifest
// key only for RenameAndDownload.
type Item struct {
	Entry     zenodo.File
	Decision  Decision
	LocalName string
}

// Options control planning behavior.
type Options struct {
	// Dir is the output directory the plan targets.
	Dir string

	// Globs are OR-combined case-sensitive patterns over manifest keys.
	// Empty keeps every entry.
	Globs []string

	// StartFresh ignores existing files: everything is re-downloaded.
	StartFresh bool

	// NoClobber refuses to overwrite an existing path. With StartFresh
	// it diverts the download to a suffixed name.
	NoClobber bool
}

// Inventory maps manifest keys to the locally computed digest for files
// present in dir. A present-but-unreadable file maps to the empty string.
// Absent files have no entry. The mapping is a pure function of the
// directory contents and the manifest; nothing is cached between runs.
func Inventory(dir string, files []zenodo.File) map[string]string {
	inv := make(map[string]string)
	for _, f := range files {
		target := filepath.Join(dir, filepath.FromSlash(f.Key))
		if _, err := os.Stat(target); err != nil {
			continue
		}
		declared, err := checksum.Parse(f.Checksum)
		if err != nil {
			inv[f.Key] = ""
			continue
		}
		digest, err := checksum.File(target, declared.Algorithm)
		if err != nil {
			inv[f.Key] = ""
			continue
		}
		inv[f.Key] = digest
	}
	return inv
}

// Build produces the ordered download plan for the given manifest entries
// against the local inventory. Order matches the manifest, which keeps
// progress reporting and the URL-list artifact deterministic. An empty
// plan is not an error.
func Build(files []zenodo.File, inv map[string]string, opts Options) ([]Item, error) {
	kept, err := filterGlobs(files, opts.Globs)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(kept))
	for _, f := range kept {
		items = append(items, decide(f, inv, opts))
	}
	return items, nil
}

// filterGlobs keeps entries whose key matches at least one pattern.
func filterGlobs(files []zenodo.File, globs []string) ([]zenodo.File, error) {
	if len(globs) == 0 {
		return files, nil
	}
	var kept []zenodo.File
	for _, f := range files {
		for _, g := range globs {
			ok, err := path.Match(g, f.Key)
			if err != nil {
				return nil, err
			}
			if ok {
				kept = append(kept, f)
				break
			}
		}
	}
	return kept, nil
}

func decide(f zenodo.File, inv map[string]string, opts Options) Item {
	localDigest, present := inv[f.Key]

	if opts.StartFresh {
		if opts.NoClobber && present {
			return Item{Entry: f, Decision: RenameAndDownload, LocalName: suffixedName(opts.Dir, f.Key)}
		}
		return Item{Entry: f, Decision: FreshDownload, LocalName: f.Key}
	}

	if !present {
		return Item{Entry: f, Decision: FreshDownload, LocalName: f.Key}
	}

	if declared, err := checksum.Parse(f.Checksum); err == nil {
		if localDigest != "" && strings.EqualFold(localDigest, declared.Digest) {
			return Item{Entry: f, Decision: Skip, LocalName: f.Key}
		}
	}
	// Present but wrong or unverifiable.
	return Item{Entry: f, Decision: Overwrite, LocalName: f.Key}
}

// suffixedName returns "name(k).ext" for the smallest positive k such that
// the suffixed path does not yet exist in dir. Deterministic and
// re-derivable without persisted counters.
func suffixedName(dir, key string) string {
	ext := path.Ext(key)
	stem := strings.TrimSuffix(key, ext)
	for k := 1; ; k++ {
		candidate := stem + "(" + strconv.Itoa(k) + ")" + ext
		if _, err := os.Stat(filepath.Join(dir, filepath.FromSlash(candidate))); err != nil {
			return candidate
		}
	}
}
