// Package membership implements the container membership engine: on every
// accepted mutation of a contained resource, it computes the quads the
// server must add or remove in parent containers.
package membership

import "github.com/trellis-ldp/ldpcore/internal/rdf"

// Change is one quad edit the engine requires, targeted at a specific
// resource's server-managed graph.
type Change struct {
	TargetIdentifier string
	Quad             rdf.Quad
	Remove           bool
}

// Fanout computes the side-effect edits and the resources that must be
// touched for a create (add=true) or delete (add=false) of childID under
// parent. childUserGraph is consulted only for Indirect containers, to
// find the insertedContentRelation triple.
func Fanout(parent *rdf.Resource, childID string, add bool, childUserGraph []rdf.Quad) (changes []Change, touch []string) {
	if parent == nil {
		return nil, nil
	}

	switch parent.InteractionModel {
	case rdf.BasicContainer:
		q := rdf.Quad{
			GraphName: rdf.NewIRITerm(rdf.GraphContainment),
			Subject:   rdf.NewIRITerm(parent.Identifier),
			Predicate: rdf.NewIRITerm(rdf.LDPContains),
			Object:    rdf.NewIRITerm(childID),
		}
		changes = append(changes, Change{TargetIdentifier: parent.Identifier, Quad: q, Remove: !add})
		touch = append(touch, parent.Identifier)

	case rdf.DirectContainer:
		changes, touch = directFanout(parent, childID, add)

	case rdf.IndirectContainer:
		member, ok := insertedContentObject(parent, childID, childUserGraph)
		if !ok {
			// No insertedContentRelation triple found: no-op.
			touch = append(touch, parent.Identifier)
			return changes, touch
		}
		changes, touch = directFanoutFor(parent, member, add)
	}

	if parent.MembershipResource != "" && parent.MembershipResource != parent.Identifier {
		touch = append(touch, parent.MembershipResource)
	}
	return changes, touch
}

func directFanout(parent *rdf.Resource, childID string, add bool) ([]Change, []string) {
	return directFanoutFor(parent, childID, add)
}

// directFanoutFor writes the membership triple for "member" (either the
// child's own identifier for Direct containers, or the object of the
// insertedContentRelation triple for Indirect containers).
func directFanoutFor(parent *rdf.Resource, member string, add bool) ([]Change, []string) {
	m := parent.MembershipResource
	if m == "" {
		return nil, nil
	}

	var changes []Change
	switch {
	case parent.MemberRelation != "":
		q := rdf.Quad{
			GraphName: rdf.NewIRITerm(rdf.GraphServerManaged),
			Subject:   rdf.NewIRITerm(m),
			Predicate: rdf.NewIRITerm(parent.MemberRelation),
			Object:    rdf.NewIRITerm(member),
		}
		changes = append(changes, Change{TargetIdentifier: m, Quad: q, Remove: !add})

	case parent.MemberOfRelation != "":
		q := rdf.Quad{
			GraphName: rdf.NewIRITerm(rdf.GraphServerManaged),
			Subject:   rdf.NewIRITerm(member),
			Predicate: rdf.NewIRITerm(parent.MemberOfRelation),
			Object:    rdf.NewIRITerm(m),
		}
		changes = append(changes, Change{TargetIdentifier: member, Quad: q, Remove: !add})
	}

	touch := []string{parent.Identifier}
	return changes, touch
}

// insertedContentObject finds the object of ⟨childID, insertedContentRelation, ?o⟩
// in the child's user graph.
func insertedContentObject(parent *rdf.Resource, childID string, childUserGraph []rdf.Quad) (string, bool) {
	if parent.InsertedContentRelation == "" {
		return "", false
	}
	for _, q := range childUserGraph {
		if q.Subject.Value == childID && q.Predicate.Value == parent.InsertedContentRelation {
			return q.Object.Value, true
		}
	}
	return "", false
}
