package workspace

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipmgraph/internal/application/commands"
	"ipmgraph/internal/config"
	"ipmgraph/internal/domain"
)

func openTest(t *testing.T, mutate func(*config.Config)) *Workspace {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "readme.txt"), []byte("hello"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "data.json"), []byte(`{"a":1}`), 0644))

	cfg := config.DefaultConfig()
	cfg.Store.Path = filepath.Join(t.TempDir(), "store.db")
	if mutate != nil {
		mutate(cfg)
	}

	w, err := Open(root, cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { w.Close() })
	return w
}

func TestOpen_TypedMaterializeExport(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)

	scan, assigned, err := w.Typed(ctx)
	require.NoError(t, err)
	require.True(t, assigned.Assigned, assigned.Message)
	assert.Equal(t, 2, scan.Files)

	data := scan.Root.FindPath("data.json")
	require.NotNil(t, data)
	format, ok := data.Info.PrimaryFormat()
	require.True(t, ok)
	assert.Equal(t, "application/json", format.MIME)

	_, err = commands.NewMaterializeCommand(w.Objects, w.Store, scan.Root).Execute(ctx)
	require.NoError(t, err)

	enc, err := w.Encoder("", false)
	require.NoError(t, err)
	var out bytes.Buffer
	res, err := commands.NewExportCommand(w.Store, enc, &out).Execute(ctx)
	require.NoError(t, err)
	assert.Positive(t, res.Triples)
	assert.True(t, strings.HasPrefix(out.String(), "@prefix"))
	assert.Contains(t, out.String(), "obj:")
}

func TestOpen_Namespace(t *testing.T) {
	w := openTest(t, func(c *config.Config) { c.Namespace = "urn:example:" })
	assert.Equal(t, "urn:example:", w.Profile.Namespace())
}

func TestOpen_UnknownProfile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Profile = "no-such-profile"
	cfg.Store.Path = filepath.Join(t.TempDir(), "store.db")

	_, err := Open(t.TempDir(), cfg, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestEncoder_BadFormat(t *testing.T) {
	w := openTest(t, nil)
	_, err := w.Encoder("rdfxml", false)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSync(t *testing.T) {
	ctx := context.Background()
	w := openTest(t, nil)

	first, err := w.Sync(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, first.Stats.NodesAdded)

	again, err := w.Sync(ctx, nil)
	require.NoError(t, err)
	assert.False(t, again.Stats.Changed())
	assert.Equal(t, "Store is up to date", again.Message)

	require.NoError(t, os.Remove(filepath.Join(w.RootPath, "data.json")))
	third, err := w.Sync(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Stats.NodesDeleted)
	assert.Zero(t, third.Stats.NodesAdded)
}

func TestSync_AssignmentFailure(t *testing.T) {
	w := openTest(t, nil)

	_, err := w.Sync(context.Background(), func(root *domain.Node) error {
		project, err := w.Profile.MustType("project")
		if err != nil {
			return err
		}
		root.FindPath("docs").SetTypeManually(project)
		return nil
	})
	var assignErr *AssignmentError
	require.ErrorAs(t, err, &assignErr)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.NotEmpty(t, assignErr.Result.Violations)
}

func TestIgnore(t *testing.T) {
	w := openTest(t, func(c *config.Config) { c.Scan.Ignore = []string{"*.json"} })
	m, err := w.Ignore()
	require.NoError(t, err)
	assert.True(t, m.Match("data.json", false))
	assert.False(t, m.Match("docs", true))
}
