package domain

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"

	"lukechampine.com/blake3"
)

// NewHash returns a fresh digest accumulator for alg
func NewHash(alg ChecksumAlgorithm) (hash.Hash, error) {
	switch alg {
	case SHA1:
		return sha1.New(), nil
	case MD5:
		return md5.New(), nil
	case SHA256:
		return sha256.New(), nil
	case SHA512:
		return sha512.New(), nil
	case BLAKE3:
		return blake3.New(32, nil), nil
	default:
		return nil, fmt.Errorf("unsupported checksum algorithm: %s", alg)
	}
}

// headerSniffer keeps the first limit bytes written to it
type headerSniffer struct {
	buf   []byte
	limit int
}

func (h *headerSniffer) Write(p []byte) (int, error) {
	if room := h.limit - len(h.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		h.buf = append(h.buf, p[:room]...)
	}
	return len(p), nil
}

// DigestResult is the outcome of one streaming pass over some content
type DigestResult struct {
	Checksums map[ChecksumAlgorithm][]byte
	Header    []byte
	Size      int64
}

// Digest streams r once through an independent accumulator per algorithm
// and a header sniffer. On a read error nothing is returned, so a partially
// read stream never yields a checksum.
func Digest(r io.Reader, algorithms []ChecksumAlgorithm, headerSize int) (*DigestResult, error) {
	hashes := make(map[ChecksumAlgorithm]hash.Hash, len(algorithms))
	writers := make([]io.Writer, 0, len(algorithms)+1)
	for _, alg := range algorithms {
		if _, dup := hashes[alg]; dup {
			continue
		}
		h, err := NewHash(alg)
		if err != nil {
			return nil, err
		}
		hashes[alg] = h
		writers = append(writers, h)
	}
	sniffer := &headerSniffer{limit: headerSize}
	writers = append(writers, sniffer)

	n, err := io.Copy(io.MultiWriter(writers...), r)
	if err != nil {
		return nil, err
	}

	sums := make(map[ChecksumAlgorithm][]byte, len(hashes))
	for alg, h := range hashes {
		sums[alg] = h.Sum(nil)
	}
	return &DigestResult{Checksums: sums, Header: sniffer.buf, Size: n}, nil
}
