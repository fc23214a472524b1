package filesystem

import (
	"bytes"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ipmgraph/internal/domain"
)

type stubDetector struct {
	formats []domain.Format
	err     error
	header  []byte
}

func (d *stubDetector) Detect(_ string, header []byte) ([]domain.Format, error) {
	d.header = append([]byte(nil), header...)
	return d.formats, d.err
}

func (d *stubDetector) HeaderSize() int { return 4 }
func (d *stubDetector) Close() error    { return nil }

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestReadFileInfo_MatchesReferenceDigests(t *testing.T) {
	content := strings.Repeat("information package ", 10000)
	path := writeFile(t, t.TempDir(), "data.txt", content)

	info, err := ReadFileInfo(path, domain.DefaultAlgorithms, nil)
	if err != nil {
		t.Fatalf("ReadFileInfo failed: %v", err)
	}

	wantSHA := sha1.Sum([]byte(content))
	wantMD5 := md5.Sum([]byte(content))

	if got, _ := info.Checksum(domain.SHA1); !bytes.Equal(got, wantSHA[:]) {
		t.Errorf("SHA-1 mismatch: got %x want %x", got, wantSHA)
	}
	if got, _ := info.Checksum(domain.MD5); !bytes.Equal(got, wantMD5[:]) {
		t.Errorf("MD5 mismatch: got %x want %x", got, wantMD5)
	}
	if info.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), info.Size)
	}
	if !info.IsFile {
		t.Error("expected a file")
	}
}

func TestReadFileInfo_AlgorithmSetIndependence(t *testing.T) {
	path := writeFile(t, t.TempDir(), "a.bin", "some bytes")

	small, err := ReadFileInfo(path, []domain.ChecksumAlgorithm{domain.SHA1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	large, err := ReadFileInfo(path, domain.KnownAlgorithms, nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(small.Checksums) != 1 || len(large.Checksums) != len(domain.KnownAlgorithms) {
		t.Fatalf("unexpected key sets: %d and %d", len(small.Checksums), len(large.Checksums))
	}
	if small.ChecksumHex(domain.SHA1) != large.ChecksumHex(domain.SHA1) {
		t.Error("adding algorithms changed the SHA-1 value")
	}
	want := sha256.Sum256([]byte("some bytes"))
	if got, _ := large.Checksum(domain.SHA256); !bytes.Equal(got, want[:]) {
		t.Errorf("SHA-256 mismatch")
	}
	if got, _ := large.Checksum(domain.BLAKE3); len(got) != 32 {
		t.Errorf("expected 32-byte BLAKE3, got %d bytes", len(got))
	}
}

func TestReadFileInfo_Directory(t *testing.T) {
	dir := t.TempDir()

	info, err := ReadFileInfo(dir, domain.DefaultAlgorithms, &stubDetector{})
	if err != nil {
		t.Fatal(err)
	}
	if info.IsFile {
		t.Error("expected a directory")
	}
	if info.Checksums != nil {
		t.Errorf("directories must have nil checksums, got %v", info.Checksums)
	}
	if info.Formats != nil {
		t.Errorf("directories must have nil formats, got %v", info.Formats)
	}
}

func TestReadFileInfo_Formats(t *testing.T) {
	path := writeFile(t, t.TempDir(), "x.pdf", "%PDF-1.7 rest")

	t.Run("detected", func(t *testing.T) {
		det := &stubDetector{formats: []domain.Format{{ID: "pdf", Name: "PDF", MIME: "application/pdf"}}}
		info, err := ReadFileInfo(path, nil, det)
		if err != nil {
			t.Fatal(err)
		}
		if string(det.header) != "%PDF" {
			t.Errorf("detector saw header %q, want first 4 bytes", det.header)
		}
		if len(info.Formats) != 1 || info.Formats[0].MIME != "application/pdf" {
			t.Errorf("unexpected formats %v", info.Formats)
		}
		if info.Checksums == nil || len(info.Checksums) != 0 {
			t.Errorf("files with no algorithms need an empty, non-nil map")
		}
	})

	t.Run("nothing detected", func(t *testing.T) {
		info, err := ReadFileInfo(path, nil, &stubDetector{})
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Formats) != 1 || info.Formats[0] != domain.UnknownFormat {
			t.Errorf("expected unknown placeholder, got %v", info.Formats)
		}
	})

	t.Run("detector failure", func(t *testing.T) {
		info, err := ReadFileInfo(path, nil, &stubDetector{err: errors.New("db offline")})
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Formats) != 1 || info.Formats[0] != domain.UnknownFormat {
			t.Errorf("expected unknown placeholder, got %v", info.Formats)
		}
	})

	t.Run("no detector", func(t *testing.T) {
		info, err := ReadFileInfo(path, nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		if len(info.Formats) != 1 || info.Formats[0] != domain.UnknownFormat {
			t.Errorf("expected unknown placeholder, got %v", info.Formats)
		}
	})
}

func TestReadFileInfo_Missing(t *testing.T) {
	_, err := ReadFileInfo(filepath.Join(t.TempDir(), "nope"), domain.DefaultAlgorithms, nil)
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("expected IOError, got %v", err)
	}
}

type failingReader struct{ after int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.after <= 0 {
		return 0, errors.New("device gone")
	}
	n := min(len(p), r.after)
	r.after -= n
	return n, nil
}

func TestDigest_DiscardsPartialState(t *testing.T) {
	result, err := domain.Digest(&failingReader{after: 10}, domain.DefaultAlgorithms, 0)
	if err == nil {
		t.Fatal("expected read error")
	}
	if result != nil {
		t.Errorf("partial digest must not be returned, got %+v", result)
	}
}

func TestDigest_DuplicateAlgorithms(t *testing.T) {
	result, err := domain.Digest(strings.NewReader("abc"), []domain.ChecksumAlgorithm{domain.MD5, domain.MD5}, 0)
	if err != nil {
		t.Fatal(err)
	}
	want := md5.Sum([]byte("abc"))
	if !bytes.Equal(result.Checksums[domain.MD5], want[:]) {
		t.Error("duplicate algorithm entries must not double-feed the digest")
	}
}
