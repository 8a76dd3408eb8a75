// Package skolem generates opaque internal identifiers and converts blank
// nodes to and from skolem IRIs.
package skolem

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
)

// Service generates identifiers under a configurable hierarchy and
// bijectively skolemizes blank nodes. Two calls within the same process
// never collide beyond what uuid.New's randomness provides.
type Service struct {
	hierarchy int
	segmentLen int
}

// New creates a Service with a hash-hierarchy of the given depth and
// per-segment length (e.g. hierarchy=2, length=2 yields "ab/cd/<uuid>").
func New(hierarchy, segmentLen int) *Service {
	if hierarchy < 0 {
		hierarchy = 0
	}
	if segmentLen <= 0 {
		segmentLen = 2
	}
	return &Service{hierarchy: hierarchy, segmentLen: segmentLen}
}

// GenerateIdentifier returns a new internal path fragment: an optional
// hash-hierarchy of directories followed by a unique
// token, with no leading slash.
func (s *Service) GenerateIdentifier() string {
	token := uuid.New().String()
	compact := strings.ReplaceAll(token, "-", "")

	var segments []string
	for i := 0; i < s.hierarchy && (i+1)*s.segmentLen <= len(compact); i++ {
		segments = append(segments, compact[i*s.segmentLen:(i+1)*s.segmentLen])
	}
	segments = append(segments, token)
	return strings.Join(segments, "/")
}

// NewInternalIRI returns a fresh trellis:data/… identifier.
func (s *Service) NewInternalIRI() string {
	return rdf.InternalDataPrefix + s.GenerateIdentifier()
}

// Skolemize converts a blank node term into a stable skolem IRI term under
// trellis:bnode/…. Skolemization is idempotent: skolemizing an IRI term
// that is already a skolem IRI returns it unchanged.
func (s *Service) Skolemize(t rdf.Term) rdf.Term {
	if t.IsIRI() && rdf.IsBnodeSkolem(t.Value) {
		return t
	}
	if !t.IsBlankNode() {
		return t
	}
	return rdf.NewIRITerm(rdf.InternalBnodePrefix + t.Value)
}

// Unskolemize converts a skolem IRI term back into its originating blank
// node term. Non-skolem terms pass through unchanged. Unskolemize is the
// left inverse of Skolemize: unskolemize(skolemize(b)) == b.
func (s *Service) Unskolemize(t rdf.Term) rdf.Term {
	if !t.IsIRI() || !rdf.IsBnodeSkolem(t.Value) {
		return t
	}
	label := strings.TrimPrefix(t.Value, rdf.InternalBnodePrefix)
	return rdf.NewBlankNodeTerm(label)
}

// ToInternal rewrites a public IRI term into its internal trellis:data/…
// form, preserving the path suffix after baseURL. Non-IRI terms and IRIs
// not rooted under baseURL pass through unchanged.
func ToInternal(t rdf.Term, baseURL string) rdf.Term {
	if !t.IsIRI() {
		return t
	}
	if !strings.HasPrefix(t.Value, baseURL) {
		return t
	}
	suffix := strings.TrimPrefix(t.Value, baseURL)
	return rdf.NewIRITerm(rdf.InternalDataPrefix + suffix)
}

// ToExternal rewrites an internal trellis:data/… IRI term into its public
// form under baseURL. Non-internal terms pass through unchanged.
// ToInternal and ToExternal are mutual inverses on matching terms
// on matching terms: toInternal(toExternal(t, u), u) == t and vice-versa.
func ToExternal(t rdf.Term, baseURL string) rdf.Term {
	if !t.IsIRI() || !rdf.IsInternalData(t.Value) {
		return t
	}
	suffix := strings.TrimPrefix(t.Value, rdf.InternalDataPrefix)
	return rdf.NewIRITerm(fmt.Sprintf("%s%s", baseURL, suffix))
}
