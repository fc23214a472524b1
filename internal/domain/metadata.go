package domain

import (
	"strconv"
	"strings"
	"time"
)

// Metadata sources a PropertyType can draw its values from
const (
	SourceFileName     = "file.name"
	SourceFilePath     = "file.path"
	SourceFileSize     = "file.size"
	SourceFileModified = "file.modified"
	SourceNodeID       = "node.id"
	SourceFormatMIME   = "format.mime"
	SourceFormatName   = "format.name"
	sourceChecksum     = "checksum."
)

// ChecksumSource returns the metadata source name for a digest
func ChecksumSource(alg ChecksumAlgorithm) string {
	return sourceChecksum + string(alg)
}

// IsKnownSource reports whether name is a valid metadata source
func IsKnownSource(name string) bool {
	switch name {
	case SourceFileName, SourceFilePath, SourceFileSize, SourceFileModified,
		SourceNodeID, SourceFormatMIME, SourceFormatName:
		return true
	}
	if alg, ok := strings.CutPrefix(name, sourceChecksum); ok {
		_, err := ParseAlgorithm(alg)
		return err == nil
	}
	return false
}

// DeriveValues returns the values of a metadata source for n. Sources that do
// not apply (a file size on a directory, a missing digest) yield nil.
func DeriveValues(n *Node, source string) []string {
	info := n.Info
	switch source {
	case SourceNodeID:
		return []string{string(n.ID)}
	case SourceFilePath:
		return []string{n.RelPath()}
	}
	if info == nil {
		return nil
	}

	switch source {
	case SourceFileName:
		return []string{n.Name()}
	case SourceFileSize:
		if !info.IsFile {
			return nil
		}
		return []string{strconv.FormatInt(info.Size, 10)}
	case SourceFileModified:
		if info.ModTime.IsZero() {
			return nil
		}
		return []string{info.ModTime.UTC().Format(time.RFC3339)}
	case SourceFormatMIME:
		if f, ok := info.PrimaryFormat(); ok {
			return []string{f.MIME}
		}
		return nil
	case SourceFormatName:
		if f, ok := info.PrimaryFormat(); ok {
			return []string{f.Name}
		}
		return nil
	}

	if name, ok := strings.CutPrefix(source, sourceChecksum); ok {
		alg, err := ParseAlgorithm(name)
		if err != nil {
			return nil
		}
		if sum := info.ChecksumHex(alg); sum != "" {
			return []string{sum}
		}
	}
	return nil
}
