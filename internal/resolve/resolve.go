// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve normalizes user-supplied record identifiers. Resolution
// is purely syntactic: a valid reference yields exactly one numeric record
// ID without touching the network, and malformed input fails before any
// request is attempted.
package resolve

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned for input that is neither a positive
// record ID nor a Zenodo DOI. It is fatal for the whole run.
var ErrInvalidIdentifier = errors.New("invalid record identifier")

// ReferenceType classifies an input identifier.
type ReferenceType int

const (
	TypeInvalid ReferenceType = iota
	TypeNumericID
	TypeDOI
)

func (t ReferenceType) String() string {
	switch t {
	case TypeNumericID:
		return "record-id"
	case TypeDOI:
		return "doi"
	default:
		return "invalid"
	}
}

// doiPattern matches Zenodo DOIs: "10.5281/zenodo.1215979". The record ID
// is the trailing number.
var doiPattern = regexp.MustCompile(`^10\.\d{4,9}/zenodo\.(\d+)$`)

// doiURLPrefixes are stripped before DOI matching so doi.org links resolve
// the same way as bare DOIs.
var doiURLPrefixes = []string{
	"https://doi.org/",
	"http://doi.org/",
	"doi:",
}

// Classify determines the reference type of identifier and returns the
// canonical record ID for valid input. Arbitrary URLs and non-Zenodo DOIs
// are rejected.
func Classify(identifier string) (ReferenceType, int64) {
	identifier = strings.TrimSpace(identifier)

	if n, err := strconv.ParseInt(identifier, 10, 64); err == nil {
		if n <= 0 {
			return TypeInvalid, 0
		}
		return TypeNumericID, n
	}

	if id, ok := matchDOI(identifier); ok {
		return TypeDOI, id
	}

	return TypeInvalid, 0
}

// RecordID resolves identifier to a canonical record ID. When doiMode is
// set, the input must be a DOI; a bare numeric ID is not accepted.
func RecordID(identifier string, doiMode bool) (int64, error) {
	refType, id := Classify(identifier)
	if refType == TypeInvalid {
		return 0, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	if doiMode && refType != TypeDOI {
		return 0, fmt.Errorf("%w: %q is not a DOI", ErrInvalidIdentifier, identifier)
	}
	return id, nil
}

func matchDOI(identifier string) (int64, bool) {
	for _, prefix := range doiURLPrefixes {
		if strings.HasPrefix(identifier, prefix) {
			identifier = strings.TrimPrefix(identifier, prefix)
			break
		}
	}
	m := doiPattern.FindStringSubmatch(identifier)
	if m == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
