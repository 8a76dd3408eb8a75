package rdf

import "time"

// BinaryMetadata describes an LDP-NR's opaque payload.
// Immutable once constructed.
type BinaryMetadata struct {
	InternalIRI string `validate:"required"`
	MimeType    string `validate:"required"`
	Size        int64  // -1 when unknown
	Hints       map[string][]string
}

// Metadata is the set of attributes a caller supplies to create or replace
// a Resource's head state. Revision is optional; when absent, replace
// performs no optimistic-concurrency check.
type Metadata struct {
	Identifier              string           `validate:"required"`
	InteractionModel        InteractionModel
	Container               string
	MembershipResource      string
	MemberRelation          string
	MemberOfRelation        string
	InsertedContentRelation string
	BinaryMetadata          *BinaryMetadata
	MetadataGraphNames      []string
	Revision                string
}

// Resource is the central entity of the core. A lazily
// materialized stream of quads is exposed via Stream rather than stored
// directly on the struct, since composed mutable+immutable views build
// that stream from two backing sources.
type Resource struct {
	Identifier       string
	InteractionModel InteractionModel
	Modified         time.Time
	Revision         string
	Container        string

	MembershipResource      string
	MemberRelation          string
	MemberOfRelation        string
	InsertedContentRelation string

	BinaryMetadata     *BinaryMetadata
	MetadataGraphNames []string

	quads *QuadSet
}

// NewResource constructs a Resource from Metadata and its full quad stream.
func NewResource(m Metadata, quads *QuadSet) *Resource {
	if quads == nil {
		quads = NewQuadSet()
	}
	return &Resource{
		Identifier:              m.Identifier,
		InteractionModel:        m.InteractionModel,
		Container:               m.Container,
		MembershipResource:      m.MembershipResource,
		MemberRelation:          m.MemberRelation,
		MemberOfRelation:        m.MemberOfRelation,
		InsertedContentRelation: m.InsertedContentRelation,
		BinaryMetadata:          m.BinaryMetadata,
		MetadataGraphNames:      m.MetadataGraphNames,
		Revision:                m.Revision,
		quads:                   quads,
	}
}

// Stream returns the resource's full named-graph quad stream.
func (r *Resource) Stream() []Quad {
	if r.quads == nil {
		return nil
	}
	return r.quads.Quads()
}

// WithStream returns a shallow copy of r whose stream is replaced by quads.
// Used by the composed mutable+immutable view.
func (r *Resource) WithStream(quads *QuadSet) *Resource {
	cp := *r
	cp.quads = quads
	return &cp
}

// HasMetadataGraph reports whether name is one of the resource's metadata
// graph names (e.g. the ACL graph).
func (r *Resource) HasMetadataGraph(name string) bool {
	for _, g := range r.MetadataGraphNames {
		if g == name {
			return true
		}
	}
	return false
}

// DefaultRevision computes the canonical revision token for modified/id,
// the default used when a store does not supply its own opaque token.
func DefaultRevision(identifier string, modified time.Time) string {
	return modified.UTC().Format(time.RFC3339Nano) + "::" + identifier
}

// LookupKind distinguishes the three observable outcomes of a get.
type LookupKind int

const (
	LookupPresent LookupKind = iota
	LookupMissing
	LookupDeleted
)

// Lookup is the polymorphic result of a get: present resource, never
// existed (Missing), or existed and was removed (Deleted). MISSING and
// DELETED never produce triples.
type Lookup struct {
	Kind     LookupKind
	Resource *Resource
}

func Present(r *Resource) Lookup { return Lookup{Kind: LookupPresent, Resource: r} }

var Missing = Lookup{Kind: LookupMissing}
var Deleted = Lookup{Kind: LookupDeleted}

func (l Lookup) IsPresent() bool { return l.Kind == LookupPresent }
func (l Lookup) IsMissing() bool { return l.Kind == LookupMissing }
func (l Lookup) IsDeleted() bool { return l.Kind == LookupDeleted }

// Absent reports whether l represents an absent resource (missing or
// deleted) — the common check before rejecting an operation.
func (l Lookup) Absent() bool { return l.Kind != LookupPresent }
