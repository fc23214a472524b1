package vocabulary

import (
	"strings"
	"testing"

	"ipmgraph/internal/domain"
)

func TestDatatype(t *testing.T) {
	tests := []struct {
		in   domain.ValueType
		want string
	}{
		{domain.ValueString, XSDString},
		{domain.ValueInteger, XSDInteger},
		{domain.ValueBoolean, XSDBoolean},
		{domain.ValueDateTime, XSDDateTime},
		{domain.ValueURI, ""},
	}
	for _, tt := range tests {
		if got := Datatype(tt.in); got != tt.want {
			t.Errorf("Datatype(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPrefixesAreNamespaces(t *testing.T) {
	for prefix, iri := range Prefixes() {
		if !strings.HasSuffix(iri, "/") && !strings.HasSuffix(iri, "#") {
			t.Errorf("prefix %s maps to %q which does not end in / or #", prefix, iri)
		}
	}
}

func TestDigestPredicate(t *testing.T) {
	if got := DigestPredicate(domain.SHA1); got != MessageDigest+"/SHA-1" {
		t.Errorf("unexpected predicate %s", got)
	}
}
