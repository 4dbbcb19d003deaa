// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package checksum computes and compares file digests against declared
// "algorithm:hexdigest" values from the Zenodo file manifest. It holds no
// retry logic; verification is a pure computation over file contents.
package checksum

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// ErrMismatch is returned by Verify when the computed digest differs from
// the declared one.
var ErrMismatch = errors.New("checksum mismatch")

// Declared is a parsed "algorithm:hexdigest" declaration.
type Declared struct {
	Algorithm string
	Digest    string
}

// Parse splits a manifest checksum string like "md5:9a0364b9e99bb480dd25e1f0284c8555".
func Parse(s string) (Declared, error) {
	algo, digest, ok := strings.Cut(s, ":")
	if !ok || algo == "" || digest == "" {
		return Declared{}, fmt.Errorf("malformed checksum declaration: %q", s)
	}
	return Declared{Algorithm: strings.ToLower(algo), Digest: digest}, nil
}

// newHash returns the hash implementation for a declared algorithm.
func newHash(algorithm string) (hash.Hash, error) {
	switch algorithm {
	case "md5":
		return md5.New(), nil
	case "sha1":
		return sha1.New(), nil
	case "sha224":
		return sha256.New224(), nil
	case "sha256":
		return sha256.New(), nil
	case "sha384":
		return sha512.New384(), nil
	case "sha512":
		return sha512.New(), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm: %q", algorithm)
	}
}

// File computes the hex digest of path using the given algorithm.
func File(path, algorithm string) (string, error) {
	h, err := newHash(algorithm)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s for checksum: %w", path, err)
	}
	defer f.Close()

	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hashing %s: %w", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Matches reports whether path's contents hash to the declared digest.
// Digest comparison is case-insensitive.
func Matches(path string, declared Declared) (bool, error) {
	got, err := File(path, declared.Algorithm)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(got, declared.Digest), nil
}

// Verify is Matches with a mismatch promoted to ErrMismatch, reporting the
// expected and actual digests.
func Verify(path string, declared Declared) error {
	got, err := File(path, declared.Algorithm)
	if err != nil {
		return err
	}
	if !strings.EqualFold(got, declared.Digest) {
		return fmt.Errorf("%w for %s: declared %s, got %s", ErrMismatch, path, declared.Digest, got)
	}
	return nil
}
