// Package domaintest provides in-memory trees and profiles for tests and
// benchmarks. Nothing here touches the filesystem.
package domaintest

import (
	"crypto/md5"
	"crypto/sha1"
	"fmt"
	"path"
	"time"

	"ipmgraph/internal/domain"
)

// Epoch is the modification time given to every generated entry
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Dir returns a directory node at the given absolute path
func Dir(p string) *domain.Node {
	return domain.NewNode(domain.NewDirectoryInfo(p, Epoch))
}

// File returns a file node whose SHA-1 and MD5 are computed from content
func File(p, content string) *domain.Node {
	sha := sha1.Sum([]byte(content))
	md := md5.Sum([]byte(content))
	info := domain.NewFileInfo(p, int64(len(content)), Epoch, map[domain.ChecksumAlgorithm][]byte{
		domain.SHA1: sha[:],
		domain.MD5:  md[:],
	}, []domain.Format{{ID: "text", Name: "Plain text", MIME: "text/plain"}})
	return domain.NewNode(info)
}

// With attaches children to parent and returns parent
func With(parent *domain.Node, children ...*domain.Node) *domain.Node {
	for _, c := range children {
		parent.AddChild(c)
	}
	return parent
}

// GenerateTree builds a synthetic tree of directories depth levels deep.
// Every directory holds fanout subdirectories (except at the last level) and
// filesPerDir files. The constructed root is always returned.
func GenerateTree(depth, fanout, filesPerDir int) *domain.Node {
	root := Dir("/generated")
	type level struct {
		node  *domain.Node
		depth int
	}
	queue := []level{{root, 0}}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		base := cur.node.Info.Path
		if cur.depth < depth {
			for i := range fanout {
				child := Dir(path.Join(base, fmt.Sprintf("dir-%03d", i)))
				cur.node.AddChild(child)
				queue = append(queue, level{child, cur.depth + 1})
			}
		}
		for i := range filesPerDir {
			name := path.Join(base, fmt.Sprintf("file-%03d.txt", i))
			cur.node.AddChild(File(name, name))
		}
	}
	return root
}

// Namespace is the object namespace used by the test profiles
const Namespace = "https://example.org/objects/"

// Class IRIs used by BasicProfile
const (
	ClassProject = "https://example.org/ontology/Project"
	ClassFolder  = "https://example.org/ontology/Folder"
	ClassFile    = "https://example.org/ontology/File"
)

// BasicDefinition returns a project/folder/file profile definition. The root
// must be a project directory; folders nest arbitrarily; files sit anywhere.
func BasicDefinition() domain.ProfileDefinition {
	anyCount := domain.Cardinality(0, domain.Unbounded)
	return domain.ProfileDefinition{
		ID:        "basic",
		Name:      "Basic",
		Version:   "1",
		Namespace: Namespace,
		RootTypes: []string{"project"},
		Types: []domain.NodeType{
			{
				ID:       "project",
				Label:    "Project",
				ClassURI: ClassProject,
				Bearing:  domain.BearingDirectory,
				Constraints: []domain.NodeConstraint{
					{ChildType: "folder", Cardinality: anyCount},
					{ChildType: "file", Cardinality: anyCount},
				},
				Properties: []domain.PropertyType{
					{ID: "title", Predicate: "http://purl.org/dc/terms/title", ValueType: domain.ValueString, Cardinality: domain.Cardinality(1, 1), Source: domain.SourceFileName},
					{ID: "rights", Predicate: "http://purl.org/dc/terms/rights", ValueType: domain.ValueString, Cardinality: domain.Cardinality(0, 1), Inheritable: true},
				},
				Relations: []domain.StructuralRelation{
					{ID: "hasMember", Predicate: "https://example.org/ontology/hasMember", TargetType: "folder", Hierarchical: true, Direction: domain.DirectionChildren},
					{ID: "hasFile", Predicate: "https://example.org/ontology/hasFile", TargetType: "file", Hierarchical: true, Direction: domain.DirectionChildren},
				},
			},
			{
				ID:       "folder",
				Label:    "Folder",
				ClassURI: ClassFolder,
				Bearing:  domain.BearingDirectory,
				Constraints: []domain.NodeConstraint{
					{ChildType: "folder", Cardinality: anyCount},
					{ChildType: "file", Cardinality: anyCount},
				},
				Properties: []domain.PropertyType{
					{ID: "title", Predicate: "http://purl.org/dc/terms/title", ValueType: domain.ValueString, Cardinality: domain.Cardinality(1, 1), Source: domain.SourceFileName},
					{ID: "rights", Predicate: "http://purl.org/dc/terms/rights", ValueType: domain.ValueString, Cardinality: domain.Cardinality(0, 1), Inheritable: true},
				},
				Relations: []domain.StructuralRelation{
					{ID: "isMemberOf", Predicate: "https://example.org/ontology/isMemberOf", TargetType: "project", Hierarchical: true, Direction: domain.DirectionParent},
					{ID: "hasFile", Predicate: "https://example.org/ontology/hasFile", TargetType: "file", Hierarchical: true, Direction: domain.DirectionChildren},
					{ID: "seeAlso", Predicate: "http://www.w3.org/2000/01/rdf-schema#seeAlso", TargetType: "folder"},
				},
			},
			{
				ID:       "file",
				Label:    "File",
				ClassURI: ClassFile,
				Bearing:  domain.BearingFile,
				Properties: []domain.PropertyType{
					{ID: "title", Predicate: "http://purl.org/dc/terms/title", ValueType: domain.ValueString, Cardinality: domain.Cardinality(1, 1), Source: domain.SourceFileName},
					{ID: "size", Predicate: "https://example.org/ontology/size", ValueType: domain.ValueInteger, Cardinality: domain.Cardinality(1, 1), Source: domain.SourceFileSize, ReadOnly: true},
					{ID: "sha1", Predicate: "https://example.org/ontology/sha1", ValueType: domain.ValueString, Cardinality: domain.Cardinality(0, 1), Source: domain.ChecksumSource(domain.SHA1)},
					{ID: "rights", Predicate: "http://purl.org/dc/terms/rights", ValueType: domain.ValueString, Cardinality: domain.Cardinality(0, 1), Inheritable: true},
				},
			},
		},
	}
}

// BasicProfile compiles BasicDefinition
func BasicProfile() *domain.Profile {
	p, err := domain.NewProfile(BasicDefinition())
	if err != nil {
		panic(err)
	}
	return p
}
