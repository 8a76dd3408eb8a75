// Package rdfio implements the RDF I/O subsystem: parsing
// and serializing triples across several syntaxes, and a SPARQL-1.1
// Update subset applied in-memory. No third-party RDF library appears
// anywhere in the reference corpus this module was grounded on, so every
// syntax below is hand-rolled the way the corpus's own LDP domain example
// (a container RDF converter) hand-rolls its Turtle/JSON-LD/RDF-XML
// serializers; see DESIGN.md.
package rdfio

import "github.com/trellis-ldp/ldpcore/internal/rdf"

// Syntax identifies a supported RDF serialization.
type Syntax string

const (
	Turtle   Syntax = "text/turtle"
	NTriples Syntax = "application/n-triples"
	JSONLD   Syntax = "application/ld+json"
)

func SupportedReadSyntaxes() []Syntax  { return []Syntax{Turtle, NTriples, JSONLD} }
func SupportedWriteSyntaxes() []Syntax { return []Syntax{Turtle, NTriples, JSONLD} }
func SupportedUpdateSyntaxes() []Syntax { return []Syntax{Turtle, NTriples} }

// Reader parses a byte stream of the given syntax into triples, resolving
// relative IRIs against contextURL.
type Reader interface {
	Read(data []byte, contextURL string) ([]rdf.Triple, error)
}

// Writer serializes triples into the given syntax, preserving relative-IRI
// resolution against contextURL where the syntax supports it.
type Writer interface {
	Write(triples []rdf.Triple, contextURL string) ([]byte, error)
}
