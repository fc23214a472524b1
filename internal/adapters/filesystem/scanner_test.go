package filesystem

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"ipmgraph/internal/domain"
)

func setupPackage(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "b.txt", "bee")
	writeFile(t, root, "a/z.txt", "zed")
	writeFile(t, root, "a/y.txt", "why")
	writeFile(t, root, "c/nested/deep.txt", "deep")
	writeFile(t, root, "notes.swp", "swap")
	if err := os.MkdirAll(filepath.Join(root, ".git", "objects"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, root, ".git/HEAD", "ref: refs/heads/main")
	return root
}

func names(nodes []*domain.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name()
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestScanner_BuildTree(t *testing.T) {
	root := setupPackage(t)

	tree, err := NewScanner(WithWorkers(2)).BuildTree(context.Background(), root)
	if err != nil {
		t.Fatalf("BuildTree failed: %v", err)
	}

	if tree.Parent != nil {
		t.Error("root must have no parent")
	}
	if tree.IsFile() {
		t.Error("root must be a directory")
	}

	want := []string{"a", "b.txt", "c"}
	if got := names(tree.Children); !equalStrings(got, want) {
		t.Errorf("root children = %v, want %v", got, want)
	}

	a := tree.Children[0]
	if got := names(a.Children); !equalStrings(got, []string{"y.txt", "z.txt"}) {
		t.Errorf("a children = %v", got)
	}
	if a.Children[0].Parent != a {
		t.Error("child parent pointer not set")
	}

	deep := tree.FindPath("c/nested/deep.txt")
	if deep == nil {
		t.Fatal("deep file missing")
	}
	if deep.Info == nil || deep.Info.Size != 4 {
		t.Errorf("deep file info not populated: %+v", deep.Info)
	}
	if deep.Info.ChecksumHex(domain.SHA1) == "" || deep.Info.ChecksumHex(domain.MD5) == "" {
		t.Error("expected default checksums on files")
	}

	if got := tree.Count(); got != 8 {
		t.Errorf("expected 8 nodes, got %d", got)
	}
}

func TestScanner_Ignore(t *testing.T) {
	root := setupPackage(t)
	writeFile(t, root, IgnoreFile, "# local rules\nc/\n")

	tree, err := NewScanner().BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{".git", "notes.swp", "c", IgnoreFile} {
		if tree.FindPath(path) != nil {
			t.Errorf("%s should have been ignored", path)
		}
	}
	if tree.FindPath("b.txt") == nil {
		t.Error("b.txt should be kept")
	}
}

func TestScanner_IgnorePatternsOption(t *testing.T) {
	root := setupPackage(t)

	tree, err := NewScanner(WithIgnorePatterns("*.txt", "!b.txt")).BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	if tree.FindPath("b.txt") == nil {
		t.Error("negated pattern should keep b.txt")
	}
	if tree.FindPath("a/y.txt") != nil {
		t.Error("a/y.txt should be ignored")
	}
}

func TestScanner_SingleFileRoot(t *testing.T) {
	path := writeFile(t, t.TempDir(), "only.txt", "alone")

	tree, err := NewScanner().BuildTree(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.IsFile() || len(tree.Children) != 0 {
		t.Errorf("expected a single file node, got %+v", tree)
	}
	if tree.Info.Size != 5 {
		t.Errorf("expected size 5, got %d", tree.Info.Size)
	}
}

func TestScanner_MissingRoot(t *testing.T) {
	_, err := NewScanner().BuildTree(context.Background(), filepath.Join(t.TempDir(), "gone"))
	if !errors.Is(err, domain.ErrIO) {
		t.Errorf("expected IOError, got %v", err)
	}
}

func TestScanner_Cancelled(t *testing.T) {
	root := setupPackage(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, err := NewScanner().BuildTree(ctx, root)
	if err == nil {
		t.Fatal("expected cancellation error")
	}
	if tree != nil {
		t.Error("no partial tree may be returned")
	}
}

func TestScanner_WithPrevious(t *testing.T) {
	root := setupPackage(t)
	scanner := NewScanner()

	first, err := scanner.BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	locked := &domain.NodeType{ID: "file", Bearing: domain.BearingFile}
	y := first.FindPath("a/y.txt")
	y.ObjectURI = "https://example.org/objects/1"
	y.SetProperty("title", "Why")
	y.SetTypeManually(locked)

	writeFile(t, root, "a/x.txt", "new")

	second, err := NewScanner(WithPrevious(first)).BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if second.ID != first.ID {
		t.Error("root ID not carried forward")
	}
	y2 := second.FindPath("a/y.txt")
	if y2.ID != y.ID || y2.ObjectURI != y.ObjectURI {
		t.Errorf("identifiers not carried: %s/%s", y2.ID, y2.ObjectURI)
	}
	if got := y2.Property("title"); len(got) != 1 || got[0] != "Why" {
		t.Errorf("properties not carried: %v", got)
	}
	if !y2.TypeLocked || y2.Type != locked {
		t.Error("locked type not carried")
	}

	y2.SetProperty("title", "changed")
	if y.Property("title")[0] != "Why" {
		t.Error("carried properties must not alias the previous snapshot")
	}

	x := second.FindPath("a/x.txt")
	if x == nil {
		t.Fatal("new file missing")
	}
	if first.Find(x.ID) != nil {
		t.Error("new file must get a fresh ID")
	}
}

func TestScanner_ManyWorkers(t *testing.T) {
	root := t.TempDir()
	want := make(map[string]string)
	for i := range 200 {
		rel := fmt.Sprintf("d%02d/f%03d.txt", i%10, i)
		content := fmt.Sprintf("file %d", i)
		writeFile(t, root, rel, content)
		sum := sha1.Sum([]byte(content))
		want[rel] = hex.EncodeToString(sum[:])
	}

	serial, err := NewScanner(WithWorkers(1)).BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}
	parallel, err := NewScanner(WithWorkers(8)).BuildTree(context.Background(), root)
	if err != nil {
		t.Fatal(err)
	}

	if got := parallel.Count(); got != 211 {
		t.Errorf("expected 211 nodes, got %d", got)
	}
	for rel, sum := range want {
		n := parallel.FindPath(rel)
		if n == nil || n.Info == nil {
			t.Fatalf("%s missing", rel)
		}
		if got := n.Info.ChecksumHex(domain.SHA1); got != sum {
			t.Errorf("%s: sha1 = %s, want %s", rel, got, sum)
		}
		if other := serial.FindPath(rel); other.Info.ChecksumHex(domain.MD5) != n.Info.ChecksumHex(domain.MD5) {
			t.Errorf("%s: md5 differs between worker counts", rel)
		}
	}
}
