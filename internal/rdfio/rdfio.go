package rdfio

import (
	"fmt"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// Service dispatches to the codec matching a requested content type,
// giving callers (the not-yet-built HTTP binding layer, and resource
// PATCH handling) one place to read/write/patch a resource's user graph
// regardless of which syntax the client chose.
type Service struct {
	readers map[Syntax]Reader
	writers map[Syntax]Writer
	turtle  *TurtleCodec
}

func NewService(prefixes map[string]string) *Service {
	turtle := NewTurtleCodec(prefixes)
	return &Service{
		readers: map[Syntax]Reader{
			Turtle:   turtle,
			NTriples: NTriplesCodec{},
			JSONLD:   JSONLDCodec{},
		},
		writers: map[Syntax]Writer{
			Turtle:   turtle,
			NTriples: NTriplesCodec{},
			JSONLD:   JSONLDCodec{},
		},
		turtle: turtle,
	}
}

func (s *Service) Parse(syntax Syntax, data []byte, contextURL string) ([]rdf.Triple, error) {
	reader, ok := s.readers[syntax]
	if !ok {
		return nil, fmt.Errorf("rdfio: unsupported read syntax %q", syntax)
	}
	return reader.Read(data, contextURL)
}

func (s *Service) Serialize(syntax Syntax, triples []rdf.Triple, contextURL string) ([]byte, error) {
	writer, ok := s.writers[syntax]
	if !ok {
		return nil, fmt.Errorf("rdfio: unsupported write syntax %q", syntax)
	}
	return writer.Write(triples, contextURL)
}

// ApplyUpdate parses a SPARQL Update query and applies it to existing,
// returning the resulting triple set (existing plus Insert, minus
// Delete). The subject of triples inside the update's blocks is taken
// literally from the query text; defaultSubject is unused for the
// supported forms but kept so callers resolving relative subjects can be
// added without changing this signature.
func (s *Service) ApplyUpdate(query string, defaultSubject rdf.Term, contextURL string, existing []rdf.Quad) ([]rdf.Quad, error) {
	patch, err := ParseUpdate(query, defaultSubject, contextURL)
	if err != nil {
		return nil, err
	}
	qs := rdf.NewQuadSet(existing...)
	for _, t := range patch.Delete {
		qs.Remove(rdf.Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object})
	}
	for _, t := range patch.Insert {
		qs.Add(rdf.Quad{Subject: t.Subject, Predicate: t.Predicate, Object: t.Object})
	}
	return qs.Quads(), nil
}
