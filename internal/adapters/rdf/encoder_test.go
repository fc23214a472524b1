package rdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ipmgraph/internal/domain"
	"ipmgraph/internal/vocabulary"
)

const obj = "https://example.org/objects/"

func sample() []domain.Triple {
	return []domain.Triple{
		domain.LiteralTriple(obj+"b", vocabulary.DC+"title", "Line one\n\"quoted\"", ""),
		domain.IRITriple(obj+"a", vocabulary.RDFType, "https://example.org/ontology/Project"),
		domain.LiteralTriple(obj+"a", vocabulary.Size, "42", vocabulary.XSDInteger),
		domain.IRITriple(obj+"a", vocabulary.DC+"hasPart", obj+"b"),
	}
}

func TestEncode_NTriples(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(FormatNTriples).Encode(&buf, sample()))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "<"+obj+"a> <http://purl.org/dc/terms/hasPart> <"+obj+"b> .", lines[0])
	assert.Equal(t, "<"+obj+"a> <"+vocabulary.Size+"> \"42\"^^<"+vocabulary.XSDInteger+"> .", lines[1])
	assert.Equal(t, "<"+obj+"a> <"+vocabulary.RDFType+"> <https://example.org/ontology/Project> .", lines[2])
	assert.Equal(t, "<"+obj+"b> <http://purl.org/dc/terms/title> \"Line one\\n\\\"quoted\\\"\" .", lines[3])
}

func TestEncode_Turtle(t *testing.T) {
	var buf bytes.Buffer
	enc := NewEncoder(FormatTurtle, WithPrefix("obj", obj))
	require.NoError(t, enc.Encode(&buf, sample()))
	out := buf.String()

	assert.Contains(t, out, "@prefix dc: <http://purl.org/dc/terms/> .\n")
	assert.Contains(t, out, "@prefix obj: <"+obj+"> .\n")
	assert.Contains(t, out, "obj:a\n    dc:hasPart obj:b ;\n    premis:size \"42\"^^xsd:integer ;\n    a <https://example.org/ontology/Project> .\n")
	assert.Contains(t, out, "obj:b\n    dc:title \"Line one\\n\\\"quoted\\\"\" .\n")
}

func TestEncode_Compressed(t *testing.T) {
	var plain, packed bytes.Buffer
	require.NoError(t, NewEncoder(FormatNTriples).Encode(&plain, sample()))
	require.NoError(t, NewEncoder(FormatNTriples, WithCompression(true)).Encode(&packed, sample()))

	dec, err := zstd.NewReader(&packed)
	require.NoError(t, err)
	defer dec.Close()

	var out bytes.Buffer
	_, err = out.ReadFrom(dec)
	require.NoError(t, err)
	assert.Equal(t, plain.String(), out.String())
}

func TestEncode_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewEncoder(FormatTurtle).Encode(&buf, nil))
	assert.NotContains(t, buf.String(), " .\n\n")
	assert.True(t, strings.HasPrefix(buf.String(), "@prefix"))
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := NewEncoder(Format("jsonld")).Encode(&bytes.Buffer{}, sample())
	assert.Error(t, err)
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path       string
		want       Format
		compressed bool
		wantErr    bool
	}{
		{"graph.nt", FormatNTriples, false, false},
		{"graph.ttl", FormatTurtle, false, false},
		{"graph.ttl.zst", FormatTurtle, true, false},
		{"graph.json", "", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, compressed, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.compressed, compressed)
		})
	}
}
