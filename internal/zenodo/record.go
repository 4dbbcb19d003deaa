// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package zenodo

// Record is a Zenodo record: its descriptive metadata plus the ordered
// file manifest. Files keep the server-provided order; downstream stages
// depend on it for deterministic artifacts.
type Record struct {
	ID       int64    `json:"id" yaml:"id"`
	DOI      string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Files    []File   `json:"files" yaml:"files"`
}

// Metadata holds the descriptive fields shown in the run header and
// written to the metadata sidecar.
type Metadata struct {
	Title           string   `json:"title" yaml:"title"`
	DOI             string   `json:"doi,omitempty" yaml:"doi,omitempty"`
	Keywords        []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
}

// File is one entry of the record's file manifest. Immutable once fetched;
// downstream components treat it as read-only.
type File struct {
	// Key is the file name, possibly containing subdirectories.
	Key string `json:"key" yaml:"key"`

	// Checksum is the declared digest in "algorithm:hex" form.
	Checksum string `json:"checksum" yaml:"checksum"`

	// Size is the declared size in bytes.
	Size int64 `json:"size" yaml:"size"`

	Links FileLinks `json:"links" yaml:"links"`
}

// FileLinks holds the download URL for a file entry.
type FileLinks struct {
	Self string `json:"self" yaml:"self"`
}

// TotalSize returns the sum of declared file sizes in bytes.
func (r *Record) TotalSize() int64 {
	var total int64
	for _, f := range r.Files {
		total += f.Size
	}
	return total
}
