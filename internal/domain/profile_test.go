package domain_test

import (
	"errors"
	"testing"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/domain/domaintest"
)

func TestCardinality_Text(t *testing.T) {
	tests := []struct {
		text    string
		want    domain.CardinalityConstraint
		wantErr bool
	}{
		{"0..*", domain.Cardinality(0, domain.Unbounded), false},
		{"1..1", domain.Cardinality(1, 1), false},
		{"2..5", domain.Cardinality(2, 5), false},
		{"3", domain.Cardinality(3, 3), false},
		{" 1 .. * ", domain.Cardinality(1, domain.Unbounded), false},
		{"x..2", domain.CardinalityConstraint{}, true},
		{"1..y", domain.CardinalityConstraint{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			var c domain.CardinalityConstraint
			err := c.UnmarshalText([]byte(tt.text))
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c != tt.want {
				t.Errorf("got %v, want %v", c, tt.want)
			}
			out, _ := c.MarshalText()
			var again domain.CardinalityConstraint
			if err := again.UnmarshalText(out); err != nil || again != c {
				t.Errorf("text form %q did not parse back", out)
			}
		})
	}
}

func TestCardinality_Allows(t *testing.T) {
	c := domain.Cardinality(1, 2)
	if c.Allows(0) || !c.Allows(1) || !c.Allows(2) || c.Allows(3) {
		t.Error("1..2 bounds not honored")
	}
	open := domain.Cardinality(0, domain.Unbounded)
	if !open.Allows(0) || !open.Allows(1000) {
		t.Error("0..* should allow any count")
	}
}

func TestNewProfile_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*domain.ProfileDefinition)
	}{
		{"missing id", func(d *domain.ProfileDefinition) { d.ID = "" }},
		{"no types", func(d *domain.ProfileDefinition) { d.Types = nil }},
		{"duplicate type", func(d *domain.ProfileDefinition) { d.Types = append(d.Types, d.Types[0]) }},
		{"unknown root", func(d *domain.ProfileDefinition) { d.RootTypes = []string{"nope"} }},
		{"unknown child", func(d *domain.ProfileDefinition) { d.Types[0].Constraints[0].ChildType = "nope" }},
		{"bad bearing", func(d *domain.ProfileDefinition) { d.Types[0].Bearing = "socket" }},
		{"bad pattern", func(d *domain.ProfileDefinition) { d.Types[0].NamePattern = "(" }},
		{"bad cardinality", func(d *domain.ProfileDefinition) { d.Types[0].Constraints[0].Cardinality = domain.Cardinality(3, 1) }},
		{"bad source", func(d *domain.ProfileDefinition) { d.Types[0].Properties[0].Source = "file.colour" }},
		{"bad relation target", func(d *domain.ProfileDefinition) { d.Types[0].Relations[0].TargetType = "nope" }},
		{"bad direction", func(d *domain.ProfileDefinition) { d.Types[0].Relations[0].Direction = "sideways" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def := domaintest.BasicDefinition()
			tt.mutate(&def)
			_, err := domain.NewProfile(def)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, domain.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestProfile_IsolatedFromDefinition(t *testing.T) {
	def := domaintest.BasicDefinition()
	p, err := domain.NewProfile(def)
	if err != nil {
		t.Fatal(err)
	}

	def.Types[0].ClassURI = "mutated"
	project, _ := p.Type("project")
	if project.ClassURI == "mutated" {
		t.Error("profile must not share storage with its definition")
	}

	copied := p.Definition()
	copied.Types[0].Constraints[0].ChildType = "mutated"
	if c, _ := project.Constraint("folder"); c.ChildType != "folder" {
		t.Error("Definition must return a deep copy")
	}
}

func TestProfile_Compatibility(t *testing.T) {
	p := domaintest.BasicProfile()
	project, _ := p.Type("project")
	folder, _ := p.Type("folder")
	file, _ := p.Type("file")

	dir := domaintest.Dir("/d")
	f := domaintest.File("/d/a.txt", "a")

	if !p.Compatible(project, dir) || p.Compatible(project, f) {
		t.Error("directory-bearing type must only accept directories")
	}
	if !p.Compatible(file, f) || p.Compatible(file, dir) {
		t.Error("file-bearing type must only accept files")
	}
	if !p.Permits(project, folder) || p.Permits(file, folder) {
		t.Error("Permits must follow declared constraints")
	}
	if !p.IsRootType(project) || p.IsRootType(folder) {
		t.Error("only project may be root")
	}
	if _, err := p.MustType("nope"); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestProfile_NamePattern(t *testing.T) {
	def := domaintest.BasicDefinition()
	def.Types[2].NamePattern = `\.txt$`
	p, err := domain.NewProfile(def)
	if err != nil {
		t.Fatal(err)
	}
	file, _ := p.Type("file")

	if !p.Compatible(file, domaintest.File("/d/a.txt", "")) {
		t.Error("a.txt should match the pattern")
	}
	if p.Compatible(file, domaintest.File("/d/a.bin", "")) {
		t.Error("a.bin should not match the pattern")
	}
}

func TestDeriveValues(t *testing.T) {
	root := domaintest.Dir("/p")
	f := domaintest.File("/p/a.txt", "abc")
	root.AddChild(f)

	tests := []struct {
		source string
		node   *domain.Node
		want   string
	}{
		{domain.SourceFileName, f, "a.txt"},
		{domain.SourceFilePath, f, "a.txt"},
		{domain.SourceFileSize, f, "3"},
		{domain.SourceFormatMIME, f, "text/plain"},
		{domain.ChecksumSource(domain.SHA1), f, "a9993e364706816aba3e25717850c26c9cd0d89d"},
		{domain.ChecksumSource(domain.MD5), f, "900150983cd24fb0d6963f7d28e17f72"},
		{domain.SourceNodeID, f, string(f.ID)},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			got := domain.DeriveValues(tt.node, tt.source)
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("got %v, want %s", got, tt.want)
			}
		})
	}

	if got := domain.DeriveValues(root, domain.SourceFileSize); got != nil {
		t.Errorf("directories have no size, got %v", got)
	}
	if got := domain.DeriveValues(f, domain.ChecksumSource(domain.BLAKE3)); got != nil {
		t.Errorf("missing digest should derive nothing, got %v", got)
	}
}

func TestParseAlgorithm(t *testing.T) {
	for in, want := range map[string]domain.ChecksumAlgorithm{
		"sha1": domain.SHA1, "SHA-1": domain.SHA1, "md5": domain.MD5,
		"sha-256": domain.SHA256, "Sha512": domain.SHA512, "blake3": domain.BLAKE3,
	} {
		got, err := domain.ParseAlgorithm(in)
		if err != nil || got != want {
			t.Errorf("ParseAlgorithm(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := domain.ParseAlgorithm("crc32"); err == nil {
		t.Error("expected error for crc32")
	}
}
