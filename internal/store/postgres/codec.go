package postgres

import (
	"encoding/json"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// quadsToJSON/quadsFromJSON serialize a quad slice to the JSONB column
// every table in this package uses to store a resource's graph. This is
// an internal storage format, not a wire syntax; internal/rdfio owns
// wire-format (de)serialization.
func quadsToJSON(quads []rdf.Quad) ([]byte, error) {
	return json.Marshal(quads)
}

func quadsFromJSON(raw []byte) ([]rdf.Quad, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var quads []rdf.Quad
	if err := json.Unmarshal(raw, &quads); err != nil {
		return nil, err
	}
	return quads, nil
}
