// Package audit implements the audit service: given a
// resource identifier and session, it produces the quads recording a
// Create/Update/Delete activity under the immutable named graph.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/store"
)

const (
	provWasAssociatedWith = rdf.PrefixPROV + "wasAssociatedWith"
	provAtTime            = rdf.PrefixPROV + "atTime"
	provWasGeneratedBy    = rdf.PrefixPROV + "wasGeneratedBy"
	provActivity          = rdf.PrefixPROV + "Activity"
)

// Service appends Create/Update/Delete activities to an ImmutableStore.
type Service struct {
	immutable store.ImmutableStore
}

func New(immutable store.ImmutableStore) *Service {
	return &Service{immutable: immutable}
}

// Record appends a provenance activity for identifier: a prov:Activity
// blank node carrying wasAssociatedWith/atTime/rdf:type, plus
// ⟨identifier, prov:wasGeneratedBy, activity⟩, all in the audit graph.
func (s *Service) Record(ctx context.Context, identifier string, session *rdf.Session, activity rdf.ActivityType, at time.Time) error {
	activityNode := rdf.NewBlankNodeTerm(fmt.Sprintf("activity-%s", uuid.New().String()))
	graph := rdf.NewIRITerm(rdf.GraphAudit)
	subject := rdf.NewIRITerm(identifier)

	quads := []rdf.Quad{
		{GraphName: graph, Subject: activityNode, Predicate: rdf.NewIRITerm(rdf.RDFType), Object: rdf.NewIRITerm(provActivity)},
		{GraphName: graph, Subject: activityNode, Predicate: rdf.NewIRITerm(rdf.RDFType), Object: rdf.NewIRITerm(rdf.PrefixAS + activity.String())},
		{GraphName: graph, Subject: activityNode, Predicate: rdf.NewIRITerm(provWasAssociatedWith), Object: rdf.NewIRITerm(session.AgentIRI)},
		{GraphName: graph, Subject: activityNode, Predicate: rdf.NewIRITerm(provAtTime), Object: rdf.NewLiteralTerm(at.UTC().Format(time.RFC3339Nano), "http://www.w3.org/2001/XMLSchema#dateTime", "")},
		{GraphName: graph, Subject: subject, Predicate: rdf.NewIRITerm(provWasGeneratedBy), Object: activityNode},
	}

	return s.immutable.Add(ctx, identifier, session, quads)
}
