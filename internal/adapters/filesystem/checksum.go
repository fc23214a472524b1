package filesystem

import (
	"fmt"
	"os"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/ports"
)

// ReadFileInfo builds the FileInfo for path. Regular files are read exactly
// once; the same pass feeds every digest and the format sniffer. Directories
// get neither checksums nor formats. detector may be nil.
func ReadFileInfo(path string, algorithms []domain.ChecksumAlgorithm, detector ports.FormatDetector) (*domain.FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, &domain.IOError{Op: "stat", Path: path, Err: err}
	}
	if stat.IsDir() {
		return domain.NewDirectoryInfo(path, stat.ModTime()), nil
	}
	if !stat.Mode().IsRegular() {
		return nil, &domain.IOError{Op: "read", Path: path, Err: fmt.Errorf("not a regular file")}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &domain.IOError{Op: "open", Path: path, Err: err}
	}
	defer file.Close()

	headerSize := 0
	if detector != nil {
		headerSize = detector.HeaderSize()
	}

	result, err := domain.Digest(file, algorithms, headerSize)
	if err != nil {
		return nil, &domain.IOError{Op: "read", Path: path, Err: err}
	}

	var formats []domain.Format
	if detector != nil {
		// Detection failures fall back to the unknown placeholder
		formats, _ = detector.Detect(path, result.Header)
	}

	return domain.NewFileInfo(path, result.Size, stat.ModTime(), result.Checksums, formats), nil
}
