package objects

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"ipmgraph/internal/adapters/sqlite"
	"ipmgraph/internal/application/compare"
	"ipmgraph/internal/domain"
	dt "ipmgraph/internal/domain/domaintest"
	"ipmgraph/internal/vocabulary"
)

func newTestStore(t *testing.T, opts ...Option) (*Store, *sqlite.Store) {
	t.Helper()
	db, err := sqlite.Open(":memory:", "/p")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(dt.BasicProfile(), db, opts...), db
}

func typed(t *testing.T, p *domain.Profile, n *domain.Node, id string) *domain.Node {
	t.Helper()
	nt, err := p.MustType(id)
	require.NoError(t, err)
	n.Type = nt
	return n
}

// projectTree builds p/{d/{f.txt}, g.txt} typed with the basic profile
func projectTree(t *testing.T, p *domain.Profile) *domain.Node {
	f := typed(t, p, dt.File("/p/d/f.txt", "eff"), "file")
	d := typed(t, p, dt.With(dt.Dir("/p/d"), f), "folder")
	g := typed(t, p, dt.File("/p/g.txt", "gee"), "file")
	return typed(t, p, dt.With(dt.Dir("/p"), d, g), "project")
}

func objects(t *testing.T, s *Store, uri, predicate string) []string {
	t.Helper()
	triples, err := s.triples.Match(context.Background(), domain.TriplePattern{Subject: uri, Predicate: predicate})
	require.NoError(t, err)
	var out []string
	for _, tr := range triples {
		out = append(out, tr.Object)
	}
	return out
}

func relationTargets(t *testing.T, db *sqlite.Store, uri, relation string) []string {
	t.Helper()
	edges, err := db.Relations(context.Background(), uri)
	require.NoError(t, err)
	var out []string
	for _, e := range edges {
		if e.Relation == relation {
			out = append(out, e.Target)
		}
	}
	return out
}

func TestMaterialize_SingleProject(t *testing.T) {
	s, _ := newTestStore(t)
	root := typed(t, s.Profile(), dt.Dir("/p"), "project")

	require.NoError(t, s.Materialize(context.Background(), root))

	require.True(t, strings.HasPrefix(root.ObjectURI, dt.Namespace))
	assert.Equal(t, []string{dt.ClassProject}, objects(t, s, root.ObjectURI, vocabulary.RDFType))
	assert.Equal(t, []string{string(root.ID)}, objects(t, s, root.ObjectURI, vocabulary.NodeID))
	assert.Equal(t, []string{"p"}, objects(t, s, root.ObjectURI, "http://purl.org/dc/terms/title"))
}

func TestMaterialize_Tree(t *testing.T) {
	s, db := newTestStore(t)
	root := projectTree(t, s.Profile())
	require.NoError(t, s.Materialize(context.Background(), root))

	d, f, g := root.FindPath("d"), root.FindPath("d/f.txt"), root.FindPath("g.txt")
	assert.Equal(t, []string{d.ObjectURI}, relationTargets(t, db, root.ObjectURI, "hasMember"))
	assert.Equal(t, []string{g.ObjectURI}, relationTargets(t, db, root.ObjectURI, "hasFile"))
	assert.Equal(t, []string{root.ObjectURI}, relationTargets(t, db, d.ObjectURI, "isMemberOf"))
	assert.Equal(t, []string{f.ObjectURI}, relationTargets(t, db, d.ObjectURI, "hasFile"))

	assert.Equal(t, []string{"3"}, objects(t, s, f.ObjectURI, "https://example.org/ontology/size"))
	assert.Equal(t, []string{f.Info.ChecksumHex(domain.SHA1)}, objects(t, s, f.ObjectURI, "https://example.org/ontology/sha1"))
}

func TestUpdateObject_Validation(t *testing.T) {
	p := dt.BasicProfile()

	tests := []struct {
		name string
		node func() *domain.Node
	}{
		{"untyped", func() *domain.Node { return dt.Dir("/p") }},
		{"missing required", func() *domain.Node {
			return typed(t, p, &domain.Node{ID: domain.NewNodeID()}, "project")
		}},
		{"too many values", func() *domain.Node {
			n := typed(t, p, dt.Dir("/p"), "project")
			n.SetProperty("title", "one", "two")
			return n
		}},
		{"read-only", func() *domain.Node {
			n := typed(t, p, dt.File("/p", "x"), "file")
			n.SetProperty("size", "99")
			return n
		}},
		{"unknown property", func() *domain.Node {
			n := typed(t, p, dt.Dir("/p"), "project")
			n.SetProperty("colour", "red")
			return n
		}},
		{"hierarchical relation", func() *domain.Node {
			n := typed(t, p, dt.Dir("/p"), "project")
			n.SetProperty("hasMember", "x")
			return n
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, db := newTestStore(t)
			n := tt.node()

			err := s.UpdateObject(context.Background(), n)
			assert.ErrorIs(t, err, domain.ErrValidation)
			assert.Empty(t, n.ObjectURI)

			triples, resources, err := db.Counts(context.Background())
			require.NoError(t, err)
			assert.Zero(t, triples)
			assert.Zero(t, resources)
		})
	}
}

func TestUpdateObject_InheritsProperties(t *testing.T) {
	s, _ := newTestStore(t)
	root := projectTree(t, s.Profile())
	root.SetProperty("rights", "CC-BY-4.0")
	root.FindPath("g.txt").SetProperty("rights", "All rights reserved")

	require.NoError(t, s.Materialize(context.Background(), root))

	rights := "http://purl.org/dc/terms/rights"
	assert.Equal(t, []string{"CC-BY-4.0"}, objects(t, s, root.FindPath("d/f.txt").ObjectURI, rights))
	assert.Equal(t, []string{"All rights reserved"}, objects(t, s, root.FindPath("g.txt").ObjectURI, rights))
}

func TestUpdateObject_FollowsTreeEdits(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	root := projectTree(t, s.Profile())
	require.NoError(t, s.Materialize(ctx, root))

	d := root.FindPath("d")
	f := d.RemoveChild(root.FindPath("d/f.txt").ID)
	root.AddChild(f)

	require.NoError(t, s.UpdateObject(ctx, d))
	require.NoError(t, s.UpdateObject(ctx, root))

	assert.Empty(t, relationTargets(t, db, d.ObjectURI, "hasFile"))
	assert.ElementsMatch(t,
		[]string{root.FindPath("g.txt").ObjectURI, f.ObjectURI},
		relationTargets(t, db, root.ObjectURI, "hasFile"))

	hasFile := objects(t, s, d.ObjectURI, "https://example.org/ontology/hasFile")
	assert.Empty(t, hasFile, "relation triples must follow the bookkeeping")
}

func TestUpdateObject_UnmaterializedNeighbour(t *testing.T) {
	s, _ := newTestStore(t)
	root := projectTree(t, s.Profile())

	err := s.UpdateObject(context.Background(), root)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, root.ObjectURI)
}

func TestUpdateObject_CrossReferences(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	p := s.Profile()
	d1 := typed(t, p, dt.Dir("/p/d1"), "folder")
	d2 := typed(t, p, dt.Dir("/p/d2"), "folder")
	root := typed(t, p, dt.With(dt.Dir("/p"), d1, d2), "project")

	d1.SetProperty("seeAlso", string(d2.ID))
	require.NoError(t, s.Materialize(ctx, root))
	assert.Equal(t, []string{d2.ObjectURI}, relationTargets(t, db, d1.ObjectURI, "seeAlso"))

	t.Run("kept when not set", func(t *testing.T) {
		d1.SetProperty("seeAlso")
		require.NoError(t, s.UpdateObject(ctx, d1))
		assert.Equal(t, []string{d2.ObjectURI}, relationTargets(t, db, d1.ObjectURI, "seeAlso"))
	})

	t.Run("by URI", func(t *testing.T) {
		d1.SetProperty("seeAlso", d2.ObjectURI)
		require.NoError(t, s.UpdateObject(ctx, d1))
		assert.Equal(t, []string{d2.ObjectURI}, relationTargets(t, db, d1.ObjectURI, "seeAlso"))
	})

	t.Run("unknown target", func(t *testing.T) {
		d1.SetProperty("seeAlso", dt.Namespace+"missing")
		err := s.UpdateObject(ctx, d1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
		assert.Equal(t, []string{d2.ObjectURI}, relationTargets(t, db, d1.ObjectURI, "seeAlso"))
	})

	t.Run("wrong type", func(t *testing.T) {
		d1.SetProperty("seeAlso", root.ObjectURI)
		err := s.UpdateObject(ctx, d1)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unmaterialized node", func(t *testing.T) {
		d3 := typed(t, p, dt.Dir("/p/d3"), "folder")
		root.AddChild(d3)
		defer root.RemoveChild(d3.ID)

		d1.SetProperty("seeAlso", string(d3.ID))
		err := s.UpdateObject(ctx, d1)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestUpdateObject_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	root := projectTree(t, s.Profile())
	require.NoError(t, s.Materialize(ctx, root))

	before, err := db.Match(ctx, domain.TriplePattern{})
	require.NoError(t, err)
	uris := map[domain.NodeID]string{}
	for _, n := range domain.Flatten(root) {
		uris[n.ID] = n.ObjectURI
	}

	for _, n := range domain.Flatten(root) {
		require.NoError(t, s.UpdateObject(ctx, n))
	}
	require.NoError(t, s.Materialize(ctx, root))

	after, err := db.Match(ctx, domain.TriplePattern{})
	require.NoError(t, err)
	assert.Equal(t, before, after)
	for _, n := range domain.Flatten(root) {
		assert.Equal(t, uris[n.ID], n.ObjectURI)
	}
}

func TestDeleteObject(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	root := projectTree(t, s.Profile())
	require.NoError(t, s.Materialize(ctx, root))

	d := root.FindPath("d")
	uri := d.ObjectURI
	require.NoError(t, s.DeleteObject(ctx, d))

	assert.Empty(t, d.ObjectURI)
	_, err := s.Describe(ctx, uri)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	incoming, err := db.RelationsTo(ctx, uri)
	require.NoError(t, err)
	assert.Empty(t, incoming)

	refs, err := db.Match(ctx, domain.TriplePattern{Object: uri})
	require.NoError(t, err)
	assert.Empty(t, refs)

	// never materialized
	assert.NoError(t, s.DeleteObject(ctx, dt.Dir("/p/other")))
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	p := s.Profile()

	old := typed(t, p, dt.With(dt.Dir("/p"),
		typed(t, p, dt.File("/p/A", "a"), "file"),
		typed(t, p, dt.File("/p/B", "b"), "file")), "project")
	require.NoError(t, s.Materialize(ctx, old))

	cur := typed(t, p, dt.Dir("/p"), "project")
	cur.ID, cur.ObjectURI = old.ID, old.ObjectURI
	a := typed(t, p, dt.File("/p/A", "a"), "file")
	a.ID, a.ObjectURI = old.Children[0].ID, old.Children[0].ObjectURI
	c := typed(t, p, dt.File("/p/C", "c"), "file")
	dt.With(cur, a, c)

	comparisons := compare.Trees(old, cur)
	stats, err := s.Apply(ctx, cur, comparisons)
	require.NoError(t, err)

	assert.Equal(t, 1, stats.NodesAdded)
	assert.Equal(t, 1, stats.NodesDeleted)
	assert.Equal(t, 2, stats.NodesUnchanged)

	_, err = s.Describe(ctx, old.Children[1].ObjectURI)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NotEmpty(t, c.ObjectURI)
	assert.Equal(t, []string{dt.ClassFile}, objects(t, s, c.ObjectURI, vocabulary.RDFType))
	assert.ElementsMatch(t, []string{a.ObjectURI, c.ObjectURI}, relationTargets(t, db, cur.ObjectURI, "hasFile"))
}

// carryIdentity gives every node of cur the ID and URI of the node at the
// same path in old, as a rescan does
func carryIdentity(old, cur *domain.Node) {
	domain.Walk(cur, domain.PreOrder, func(n *domain.Node) error {
		if prev := old.FindPath(n.RelPath()); prev != nil {
			n.ID, n.ObjectURI = prev.ID, prev.ObjectURI
		}
		return nil
	})
}

// boxProfile relates a box to its children through a different relation
// per child type; an "a" inside a "b" points back at it
func boxProfile(t *testing.T) *domain.Profile {
	t.Helper()
	anyCount := domain.Cardinality(0, domain.Unbounded)
	p, err := domain.NewProfile(domain.ProfileDefinition{
		ID:        "box",
		Namespace: "urn:x:",
		RootTypes: []string{"box"},
		Types: []domain.NodeType{
			{
				ID:       "box",
				ClassURI: "urn:c:Box",
				Bearing:  domain.BearingDirectory,
				Constraints: []domain.NodeConstraint{
					{ChildType: "a", Cardinality: anyCount},
					{ChildType: "b", Cardinality: anyCount},
				},
				Relations: []domain.StructuralRelation{
					{ID: "hasA", Predicate: "urn:p:hasA", TargetType: "a", Hierarchical: true, Direction: domain.DirectionChildren},
					{ID: "hasB", Predicate: "urn:p:hasB", TargetType: "b", Hierarchical: true, Direction: domain.DirectionChildren},
				},
			},
			{
				ID:       "a",
				ClassURI: "urn:c:A",
				Bearing:  domain.BearingAny,
				Relations: []domain.StructuralRelation{
					{ID: "inB", Predicate: "urn:p:inB", TargetType: "b", Hierarchical: true, Direction: domain.DirectionParent},
				},
			},
			{
				ID:       "b",
				ClassURI: "urn:c:B",
				Bearing:  domain.BearingAny,
				Constraints: []domain.NodeConstraint{
					{ChildType: "a", Cardinality: anyCount},
				},
			},
		},
	})
	require.NoError(t, err)
	return p
}

func TestApply_ChildTypeChange(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(":memory:", "/box")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	p := boxProfile(t)
	s := NewStore(p, db)

	build := func(childType string) *domain.Node {
		c := typed(t, p, dt.Dir("/box/c"), childType)
		return typed(t, p, dt.With(dt.Dir("/box"), c), "box")
	}
	old := build("a")
	require.NoError(t, s.Materialize(ctx, old))
	require.Equal(t, []string{old.Children[0].ObjectURI}, relationTargets(t, db, old.ObjectURI, "hasA"))

	cur := build("b")
	carryIdentity(old, cur)
	c := cur.Children[0]

	comparisons := compare.Trees(old, cur)
	require.Len(t, comparisons, 2)
	assert.Equal(t, domain.StatusUnchanged, comparisons[0].Status)
	assert.Equal(t, domain.StatusUpdated, comparisons[1].Status)

	_, err = s.Apply(ctx, cur, comparisons)
	require.NoError(t, err)

	assert.Equal(t, []string{"urn:c:B"}, objects(t, s, c.ObjectURI, vocabulary.RDFType))
	assert.Empty(t, relationTargets(t, db, cur.ObjectURI, "hasA"))
	assert.Equal(t, []string{c.ObjectURI}, relationTargets(t, db, cur.ObjectURI, "hasB"))
}

func TestApply_ParentTypeChangeRewritesChildren(t *testing.T) {
	ctx := context.Background()
	db, err := sqlite.Open(":memory:", "/box")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	p := boxProfile(t)
	s := NewStore(p, db)

	build := func(midType string) *domain.Node {
		leaf := typed(t, p, dt.File("/box/m/leaf", "l"), "a")
		mid := typed(t, p, dt.With(dt.Dir("/box/m"), leaf), midType)
		return typed(t, p, dt.With(dt.Dir("/box"), mid), "box")
	}
	old := build("a")
	require.NoError(t, s.Materialize(ctx, old))

	cur := build("b")
	carryIdentity(old, cur)
	mid, leaf := cur.FindPath("m"), cur.FindPath("m/leaf")

	_, err = s.Apply(ctx, cur, compare.Trees(old, cur))
	require.NoError(t, err)

	assert.Equal(t, []string{mid.ObjectURI}, relationTargets(t, db, cur.ObjectURI, "hasB"))
	assert.Empty(t, relationTargets(t, db, cur.ObjectURI, "hasA"))
	assert.Equal(t, []string{mid.ObjectURI}, relationTargets(t, db, leaf.ObjectURI, "inB"),
		"the unchanged leaf follows its parent's new type")

	back := build("a")
	carryIdentity(cur, back)
	_, err = s.Apply(ctx, back, compare.Trees(cur, back))
	require.NoError(t, err)
	assert.Empty(t, relationTargets(t, db, back.ObjectURI, "hasB"))
	assert.Equal(t, []string{back.FindPath("m").ObjectURI}, relationTargets(t, db, back.ObjectURI, "hasA"))
	assert.Empty(t, relationTargets(t, db, back.FindPath("m/leaf").ObjectURI, "inB"))
}

func TestApply_InheritedPropertyChange(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)
	p := s.Profile()
	rights := "http://purl.org/dc/terms/rights"

	old := projectTree(t, p)
	old.SetProperty("rights", "CC-BY-4.0")
	require.NoError(t, s.Materialize(ctx, old))

	cur := projectTree(t, p)
	carryIdentity(old, cur)
	cur.SetProperty("rights", "CC0-1.0")

	comparisons := compare.Trees(old, cur)
	stats, err := s.Apply(ctx, cur, comparisons)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.NodesUpdated)
	assert.Equal(t, 3, stats.NodesUnchanged)

	for _, path := range []string{".", "d", "d/f.txt", "g.txt"} {
		n := cur.FindPath(path)
		require.NotNil(t, n, path)
		assert.Equal(t, []string{"CC0-1.0"}, objects(t, s, n.ObjectURI, rights), path)
	}

	// A nearer ancestor's value wins below it
	cur2 := projectTree(t, p)
	carryIdentity(cur, cur2)
	cur2.SetProperty("rights", "CC0-1.0")
	cur2.FindPath("d").SetProperty("rights", "Proprietary")
	_, err = s.Apply(ctx, cur2, compare.Trees(cur, cur2))
	require.NoError(t, err)
	assert.Equal(t, []string{"Proprietary"}, objects(t, s, cur2.FindPath("d/f.txt").ObjectURI, rights))
	assert.Equal(t, []string{"CC0-1.0"}, objects(t, s, cur2.FindPath("g.txt").ObjectURI, rights))
}

func TestStore_ConcurrentUpdateDelete(t *testing.T) {
	ctx := context.Background()
	s, db := newTestStore(t)
	p := s.Profile()

	d := typed(t, p, dt.Dir("/p/d"), "folder")
	for i := range 40 {
		dt.With(d, typed(t, p, dt.File(fmt.Sprintf("/p/d/f%02d.txt", i), "x"), "file"))
	}
	root := typed(t, p, dt.With(dt.Dir("/p"), d), "project")
	require.NoError(t, s.Materialize(ctx, root))

	uris := make([]string, len(d.Children))
	for i, f := range d.Children {
		uris[i] = f.ObjectURI
	}

	// even files are rewritten, odd ones deleted
	var g errgroup.Group
	for i, f := range d.Children {
		if i%2 == 0 {
			f.SetProperty("rights", fmt.Sprintf("R%d", i))
			g.Go(func() error { return s.UpdateObject(ctx, f) })
		} else {
			g.Go(func() error { return s.DeleteObject(ctx, f) })
		}
	}
	require.NoError(t, g.Wait())

	var kept []string
	for i, f := range d.Children {
		if i%2 == 0 {
			kept = append(kept, uris[i])
			assert.Equal(t, uris[i], f.ObjectURI)
			assert.Equal(t, []string{fmt.Sprintf("R%d", i)}, objects(t, s, f.ObjectURI, "http://purl.org/dc/terms/rights"))
			continue
		}
		assert.Empty(t, f.ObjectURI)
		_, err := s.Describe(ctx, uris[i])
		assert.ErrorIs(t, err, domain.ErrNotFound)
	}
	assert.ElementsMatch(t, kept, relationTargets(t, db, d.ObjectURI, "hasFile"))
}

func TestMintURI_Collisions(t *testing.T) {
	ctx := context.Background()
	suffixes := []string{"a", "a", "b"}
	next := 0
	s, _ := newTestStore(t, WithSuffixGenerator(func() string {
		v := suffixes[next%len(suffixes)]
		next++
		return v
	}))

	first, err := s.ReserveResource(ctx, "x", "file")
	require.NoError(t, err)
	second, err := s.ReserveResource(ctx, "y", "file")
	require.NoError(t, err)
	assert.Equal(t, dt.Namespace+"a", first)
	assert.Equal(t, dt.Namespace+"b", second)

	constant, _ := newTestStore(t, WithSuffixGenerator(func() string { return "same" }))
	_, err = constant.ReserveResource(ctx, "x", "file")
	require.NoError(t, err)
	_, err = constant.ReserveResource(ctx, "y", "file")
	assert.Error(t, err)
}

func TestReserveResource(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t)

	uri, err := s.ReserveResource(ctx, "data/report.pdf", "file")
	require.NoError(t, err)

	assert.Equal(t, []string{"true"}, objects(t, s, uri, vocabulary.Reserved))
	assert.Equal(t, []string{"data/report.pdf"}, objects(t, s, uri, vocabulary.Path))
	assert.Equal(t, []string{dt.ClassFile}, objects(t, s, uri, vocabulary.RDFType))

	_, err = s.ReserveResource(ctx, "x", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

type fixedDetector struct{}

func (fixedDetector) Detect(string, []byte) ([]domain.Format, error) {
	return []domain.Format{{ID: "txt", Name: "TXT", MIME: "text/plain"}}, nil
}
func (fixedDetector) HeaderSize() int { return 8 }
func (fixedDetector) Close() error    { return nil }

func TestCreateResource(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, WithDetector(fixedDetector{}), WithAlgorithms(domain.SHA1, domain.SHA256))

	uri, err := s.CreateResource(ctx, "data/a.txt", "file", strings.NewReader("abc"))
	require.NoError(t, err)

	triples, err := s.Describe(ctx, uri)
	require.NoError(t, err)
	assert.NotEmpty(t, triples)

	assert.Equal(t, []string{"3"}, objects(t, s, uri, vocabulary.Size))
	assert.Equal(t, []string{"a9993e364706816aba3e25717850c26c9cd0d89d"}, objects(t, s, uri, vocabulary.DigestPredicate(domain.SHA1)))
	assert.Len(t, objects(t, s, uri, vocabulary.DigestPredicate(domain.SHA256)), 1)
	assert.Empty(t, objects(t, s, uri, vocabulary.DigestPredicate(domain.MD5)))
	assert.Equal(t, []string{"text/plain"}, objects(t, s, uri, vocabulary.Format))

	_, err = s.CreateResource(ctx, "data", "folder", strings.NewReader(""))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestDescribe_Unknown(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.Describe(context.Background(), dt.Namespace+"nothing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func BenchmarkMaterialize(b *testing.B) {
	p := dt.BasicProfile()
	folder, _ := p.Type("folder")
	file, _ := p.Type("file")
	project, _ := p.Type("project")

	for i := 0; i < b.N; i++ {
		b.StopTimer()
		db, err := sqlite.Open(":memory:", "/generated")
		if err != nil {
			b.Fatal(err)
		}
		root := dt.GenerateTree(3, 4, 5)
		domain.Walk(root, domain.PreOrder, func(n *domain.Node) error {
			switch {
			case n == root:
				n.Type = project
			case n.IsFile():
				n.Type = file
			default:
				n.Type = folder
			}
			return nil
		})
		s := NewStore(p, db)
		b.StartTimer()

		if err := s.Materialize(context.Background(), root); err != nil {
			b.Fatal(fmt.Errorf("materialize: %w", err))
		}
		db.Close()
	}
}
