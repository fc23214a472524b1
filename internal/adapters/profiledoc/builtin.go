package profiledoc

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"

	"ipmgraph/internal/domain"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// BuiltinNames lists the embedded profiles
func BuiltinNames() []string {
	entries, err := fs.ReadDir(builtinFS, "builtin")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	slices.Sort(names)
	return names
}

// Builtin compiles the embedded profile with the given name
func Builtin(name string) (*domain.Profile, error) {
	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, &domain.NotFoundError{Kind: "profile", ID: name}
	}
	p, err := Unmarshal(data, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("builtin profile %s: %w", name, err)
	}
	return p, nil
}

// Resolve loads a profile by built-in name or document path. An existing
// file wins over a built-in of the same name.
func Resolve(nameOrPath string) (*domain.Profile, error) {
	if nameOrPath == "" {
		return nil, &domain.ValidationError{Field: "profile", Message: "no profile given"}
	}
	if _, err := os.Stat(nameOrPath); err == nil {
		return Load(nameOrPath)
	}
	if slices.Contains(BuiltinNames(), nameOrPath) {
		return Builtin(nameOrPath)
	}
	return nil, &domain.NotFoundError{Kind: "profile", ID: nameOrPath}
}

// WithNamespace returns a copy of p that mints object URIs under namespace
func WithNamespace(p *domain.Profile, namespace string) (*domain.Profile, error) {
	def := p.Definition()
	def.Namespace = namespace
	return domain.NewProfile(def)
}
