package domain

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ChecksumAlgorithm names a digest computed over file content
type ChecksumAlgorithm string

const (
	SHA1   ChecksumAlgorithm = "SHA-1"
	MD5    ChecksumAlgorithm = "MD5"
	SHA256 ChecksumAlgorithm = "SHA-256"
	SHA512 ChecksumAlgorithm = "SHA-512"
	BLAKE3 ChecksumAlgorithm = "BLAKE3"
)

// DefaultAlgorithms is the checksum set used when none is configured
var DefaultAlgorithms = []ChecksumAlgorithm{SHA1, MD5}

// KnownAlgorithms lists every supported checksum algorithm
var KnownAlgorithms = []ChecksumAlgorithm{SHA1, MD5, SHA256, SHA512, BLAKE3}

// ParseAlgorithm resolves a user-supplied algorithm name. Matching ignores
// case and the dash, so "sha1", "SHA-1" and "Sha1" are equivalent.
func ParseAlgorithm(name string) (ChecksumAlgorithm, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", ""))
	for _, alg := range KnownAlgorithms {
		if strings.ReplaceAll(string(alg), "-", "") == norm {
			return alg, nil
		}
	}
	return "", fmt.Errorf("unknown checksum algorithm: %s", name)
}

// Format is a candidate content format reported by a format detector
type Format struct {
	ID      string
	Name    string
	Version string
	MIME    string
}

// UnknownFormat is the placeholder used when detection finds nothing
var UnknownFormat = Format{
	ID:   "unknown",
	Name: "unknown",
	MIME: "application/octet-stream",
}

// FileInfo describes the filesystem entry behind a node. For directories
// Checksums and Formats are nil; for files both are non-nil and complete.
// A FileInfo is never modified after construction.
type FileInfo struct {
	Path      string // absolute
	IsFile    bool
	Size      int64 // files only
	ModTime   time.Time
	Checksums map[ChecksumAlgorithm][]byte
	Formats   []Format
}

// NewDirectoryInfo builds the FileInfo of a directory
func NewDirectoryInfo(path string, modTime time.Time) *FileInfo {
	return &FileInfo{Path: path, ModTime: modTime}
}

// NewFileInfo builds the FileInfo of a regular file from fully computed
// digests and formats. An empty format list is replaced with UnknownFormat.
func NewFileInfo(path string, size int64, modTime time.Time, checksums map[ChecksumAlgorithm][]byte, formats []Format) *FileInfo {
	sums := make(map[ChecksumAlgorithm][]byte, len(checksums))
	for alg, sum := range checksums {
		sums[alg] = slices.Clone(sum)
	}
	if len(formats) == 0 {
		formats = []Format{UnknownFormat}
	}
	return &FileInfo{
		Path:      path,
		IsFile:    true,
		Size:      size,
		ModTime:   modTime,
		Checksums: sums,
		Formats:   slices.Clone(formats),
	}
}

// Checksum returns the digest for alg
func (fi *FileInfo) Checksum(alg ChecksumAlgorithm) ([]byte, bool) {
	if fi == nil || fi.Checksums == nil {
		return nil, false
	}
	sum, ok := fi.Checksums[alg]
	return sum, ok
}

// ChecksumHex returns the lowercase hex digest for alg, or "" if absent
func (fi *FileInfo) ChecksumHex(alg ChecksumAlgorithm) string {
	sum, ok := fi.Checksum(alg)
	if !ok {
		return ""
	}
	return hex.EncodeToString(sum)
}

// Algorithms returns the algorithms present in the checksum map, sorted
func (fi *FileInfo) Algorithms() []ChecksumAlgorithm {
	if fi == nil || fi.Checksums == nil {
		return nil
	}
	algs := make([]ChecksumAlgorithm, 0, len(fi.Checksums))
	for alg := range fi.Checksums {
		algs = append(algs, alg)
	}
	slices.Sort(algs)
	return algs
}

// PrimaryFormat returns the first detected format
func (fi *FileInfo) PrimaryFormat() (Format, bool) {
	if fi == nil || len(fi.Formats) == 0 {
		return Format{}, false
	}
	return fi.Formats[0], true
}

// SameContent reports whether two file infos describe identical content:
// same size and equal digests for every algorithm both carry.
func (fi *FileInfo) SameContent(other *FileInfo) bool {
	if fi == nil || other == nil {
		return fi == other
	}
	if fi.IsFile != other.IsFile || fi.Size != other.Size {
		return false
	}
	for alg, sum := range fi.Checksums {
		if theirs, ok := other.Checksums[alg]; ok && !slices.Equal(sum, theirs) {
			return false
		}
	}
	return true
}
