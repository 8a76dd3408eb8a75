// Package resource implements the central resource service: the single
// read/write choke point composing a visible Resource from the mutable
// and immutable stores, fanning out container membership side effects,
// and emitting events.
package resource

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trellis-ldp/ldpcore/internal/audit"
	"github.com/trellis-ldp/ldpcore/internal/constraint"
	"github.com/trellis-ldp/ldpcore/internal/event"
	"github.com/trellis-ldp/ldpcore/internal/membership"
	"github.com/trellis-ldp/ldpcore/internal/memento"
	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/internal/skolem"
	"github.com/trellis-ldp/ldpcore/internal/store"
	ldperrors "github.com/trellis-ldp/ldpcore/pkg/errors"
	"github.com/trellis-ldp/ldpcore/pkg/logger"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

// Service is the resource lifecycle engine's central hub.
type Service struct {
	mutable   store.MutableStore
	immutable store.ImmutableStore

	validator *constraint.Validator
	auditSvc  *audit.Service
	mementoSvc *memento.Service
	eventSvc  *event.Service
	ids       *skolem.Service

	log      *logger.Logger
	recorder metrics.Recorder

	now func() time.Time
}

var validate = validator.New()

// New wires the resource service's collaborators. Every argument is
// required except mementoSvc and eventSvc, which may be nil in
// configurations that don't need versioning or notification (those
// operations become no-ops).
func New(
	mutable store.MutableStore,
	immutable store.ImmutableStore,
	validator *constraint.Validator,
	auditSvc *audit.Service,
	mementoSvc *memento.Service,
	eventSvc *event.Service,
	ids *skolem.Service,
	log *logger.Logger,
	recorder metrics.Recorder,
) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{
		mutable: mutable, immutable: immutable,
		validator: validator, auditSvc: auditSvc,
		mementoSvc: mementoSvc, eventSvc: eventSvc,
		ids: ids, log: log, recorder: recorder,
		now: time.Now,
	}
}

// Get reads both stores; if both miss, returns MISSING; if mutable misses
// but immutable hits, returns the immutable projection; if both hit,
// returns a composed view whose stream concatenates mutable then
// immutable quads, with header attributes from the mutable side. The two
// store reads run concurrently and are awaited together; a store read that
// fails with TRANSIENT_STORAGE_ERROR is retried once before it surfaces.
func (s *Service) Get(ctx context.Context, identifier string) (rdf.Lookup, error) {
	type result struct {
		lookup rdf.Lookup
		err    error
	}
	mutableCh := make(chan result, 1)
	immutableCh := make(chan result, 1)

	go func() {
		l, err := s.mutable.Get(ctx, identifier)
		if ldperrors.Is(err, ldperrors.TransientStorageError) {
			l, err = s.mutable.Get(ctx, identifier)
		}
		mutableCh <- result{l, err}
	}()
	go func() {
		l, err := s.immutable.Get(ctx, identifier)
		if ldperrors.Is(err, ldperrors.TransientStorageError) {
			l, err = s.immutable.Get(ctx, identifier)
		}
		immutableCh <- result{l, err}
	}()

	mutableResult := <-mutableCh
	if mutableResult.err != nil {
		return rdf.Lookup{}, mutableResult.err
	}
	immutableResult := <-immutableCh
	if immutableResult.err != nil {
		return rdf.Lookup{}, immutableResult.err
	}

	switch {
	case mutableResult.lookup.IsMissing() && !immutableResult.lookup.IsPresent():
		return rdf.Missing, nil
	case mutableResult.lookup.IsMissing() && immutableResult.lookup.IsPresent():
		return immutableResult.lookup, nil
	case mutableResult.lookup.IsDeleted():
		return rdf.Deleted, nil
	case mutableResult.lookup.IsPresent() && immutableResult.lookup.IsPresent():
		combined := rdf.Concat(rdf.NewQuadSet(mutableResult.lookup.Resource.Stream()...), rdf.NewQuadSet(immutableResult.lookup.Resource.Stream()...))
		return rdf.Present(mutableResult.lookup.Resource.WithStream(combined)), nil
	default:
		return mutableResult.lookup, nil
	}
}

// Resolve adapts Get to the webac.ResourceResolver shape.
func (s *Service) Resolve(ctx context.Context, identifier string) (*rdf.Resource, bool, error) {
	lookup, err := s.Get(ctx, identifier)
	if err != nil {
		return nil, false, err
	}
	if !lookup.IsPresent() {
		return nil, false, nil
	}
	return lookup.Resource, true, nil
}

// Create defaults to Replace but fails with STORAGE_CONFLICT when a
// resource already exists at the identifier — this
// implementation distinguishes create from replace; see
// DESIGN.md for the Open Question resolution).
func (s *Service) Create(ctx context.Context, session *rdf.Session, metadata rdf.Metadata, quads []rdf.Quad) (*rdf.Resource, error) {
	existing, err := s.mutable.Get(ctx, metadata.Identifier)
	if err != nil {
		return nil, err
	}
	if existing.IsPresent() {
		return nil, ldperrors.ErrStorageConflict(metadata.Identifier, "resource already exists")
	}
	return s.replace(ctx, session, metadata, quads, rdf.ActivityCreate)
}

// Replace validates the metadata, rejects a graph carrying server-managed
// quads via the constraint validator, persists the new head state, then
// writes the audit trail, fans out container membership, snapshots a
// Memento, and publishes an event — in that order.
func (s *Service) Replace(ctx context.Context, session *rdf.Session, metadata rdf.Metadata, quads []rdf.Quad) (*rdf.Resource, error) {
	return s.replace(ctx, session, metadata, quads, rdf.ActivityUpdate)
}

func (s *Service) replace(ctx context.Context, session *rdf.Session, metadata rdf.Metadata, quads []rdf.Quad, activity rdf.ActivityType) (*rdf.Resource, error) {
	start := time.Now()

	if err := validate.Struct(metadata); err != nil {
		return nil, ldperrors.Wrap(ldperrors.ConstraintViolation, "invalid resource metadata", err)
	}

	if s.validator != nil {
		if violations := s.validator.Validate(metadata, quads); len(violations) > 0 {
			s.recorder.ConstraintViolation(metadata.InteractionModel.String())
			return nil, ldperrors.ErrConstraintViolation(metadata.Identifier, violations)
		}
	}

	quads = append(append([]rdf.Quad{}, quads...), serverManagedTypeQuad(metadata))

	if err := s.mutable.Replace(ctx, metadata, quads); err != nil {
		return nil, err
	}

	s.afterCommit(ctx, session, metadata, quads, activity)
	s.recorder.MutationCommitted("replace", metadata.InteractionModel.String(), time.Since(start))

	lookup, err := s.Get(ctx, metadata.Identifier)
	if err != nil {
		return nil, err
	}
	return lookup.Resource, nil
}

// Delete removes head state, writes an audit Delete, and retracts the
// resource's container-side membership triples.
func (s *Service) Delete(ctx context.Context, session *rdf.Session, metadata rdf.Metadata) error {
	start := time.Now()

	parentLookup, _ := s.Get(ctx, metadata.Container)

	var childGraph []rdf.Quad
	if childLookup, err := s.mutable.Get(ctx, metadata.Identifier); err == nil && childLookup.IsPresent() {
		childGraph = childLookup.Resource.Stream()
	}

	if err := s.mutable.Delete(ctx, metadata); err != nil {
		return err
	}

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(ctx, metadata.Identifier, session, rdf.ActivityDelete, s.now())
	}

	if parentLookup.IsPresent() {
		s.fanoutMembership(ctx, parentLookup.Resource, metadata.Identifier, false, childGraph)
	}

	if s.eventSvc != nil {
		s.eventSvc.Publish(ctx, rdf.Event{
			Created:      s.now(),
			ActivityType: rdf.ActivityDelete,
			ActorIRIs:    []string{session.AgentIRI},
			ObjectIRI:    metadata.Identifier,
			ObjectTypes:  []string{metadata.InteractionModel.IRI()},
		})
	}

	s.recorder.MutationCommitted("delete", metadata.InteractionModel.String(), time.Since(start))
	return nil
}

// Add appends immutable quads only (the audit path), bypassing head-state
// mutation.
func (s *Service) Add(ctx context.Context, identifier string, session *rdf.Session, quads []rdf.Quad) error {
	return s.immutable.Add(ctx, identifier, session, quads)
}

// Touch advances modified without changing content.
func (s *Service) Touch(ctx context.Context, identifier string) error {
	return s.mutable.Touch(ctx, identifier)
}

// afterCommit runs the side effects that follow a successfully committed
// head-state write: audit, membership fanout, Memento snapshot, event
// publication.
func (s *Service) afterCommit(ctx context.Context, session *rdf.Session, metadata rdf.Metadata, quads []rdf.Quad, activity rdf.ActivityType) {
	now := s.now()

	if s.auditSvc != nil {
		_ = s.auditSvc.Record(ctx, metadata.Identifier, session, activity, now)
	}

	if metadata.Container != "" {
		if parentLookup, err := s.Get(ctx, metadata.Container); err == nil && parentLookup.IsPresent() {
			s.fanoutMembership(ctx, parentLookup.Resource, metadata.Identifier, true, quads)
		}
	}

	if s.mementoSvc != nil {
		if lookup, err := s.Get(ctx, metadata.Identifier); err == nil && lookup.IsPresent() {
			_ = s.mementoSvc.Put(ctx, lookup.Resource, now)
		}
	}

	if s.eventSvc != nil {
		s.eventSvc.Publish(ctx, rdf.Event{
			Created:      now,
			ActivityType: activity,
			ActorIRIs:    []string{session.AgentIRI},
			ObjectIRI:    metadata.Identifier,
			ObjectTypes:  []string{metadata.InteractionModel.IRI()},
		})
	}
}

// fanoutMembership applies the container membership engine's computed
// changes to the affected resources and touches the ones whose modified
// must advance. The membership triple becomes visible
// before this method returns, satisfying the ordering constraint that it
// must precede event emission.
func (s *Service) fanoutMembership(ctx context.Context, parent *rdf.Resource, childID string, add bool, childGraph []rdf.Quad) {
	changes, touch := membership.Fanout(parent, childID, add, childGraph)

	for _, change := range changes {
		lookup, err := s.mutable.Get(ctx, change.TargetIdentifier)
		if err != nil || !lookup.IsPresent() {
			continue
		}
		qs := rdf.NewQuadSet(lookup.Resource.Stream()...)
		if change.Remove {
			qs.Remove(change.Quad)
		} else {
			qs.Add(change.Quad)
		}
		targetMetadata := rdf.Metadata{
			Identifier:              lookup.Resource.Identifier,
			InteractionModel:        lookup.Resource.InteractionModel,
			Container:               lookup.Resource.Container,
			MembershipResource:      lookup.Resource.MembershipResource,
			MemberRelation:          lookup.Resource.MemberRelation,
			MemberOfRelation:        lookup.Resource.MemberOfRelation,
			InsertedContentRelation: lookup.Resource.InsertedContentRelation,
			BinaryMetadata:          lookup.Resource.BinaryMetadata,
			MetadataGraphNames:      lookup.Resource.MetadataGraphNames,
		}
		_ = s.mutable.Replace(ctx, targetMetadata, qs.Quads())
	}

	for _, id := range touch {
		_ = s.mutable.Touch(ctx, id)
	}
}

// Skolemize converts a blank node term into a stable skolem IRI.
func (s *Service) Skolemize(t rdf.Term) rdf.Term { return s.ids.Skolemize(t) }

// Unskolemize converts a skolem IRI back into its blank node term.
func (s *Service) Unskolemize(t rdf.Term) rdf.Term { return s.ids.Unskolemize(t) }

// ToInternal rewrites a term between public and internal IRI forms.
func (s *Service) ToInternal(t rdf.Term, baseURL string) rdf.Term { return skolem.ToInternal(t, baseURL) }

// ToExternal rewrites a term between internal and public IRI forms.
func (s *Service) ToExternal(t rdf.Term, baseURL string) rdf.Term { return skolem.ToExternal(t, baseURL) }

// SupportedInteractionModels lists every interaction model the service can
// assign to a newly created resource.
func (s *Service) SupportedInteractionModels() []rdf.InteractionModel {
	return rdf.SupportedInteractionModels()
}

// GenerateIdentifier returns a new internal path fragment.
func (s *Service) GenerateIdentifier() string { return s.ids.GenerateIdentifier() }

// Sweep is invoked periodically (wired to robfig/cron in cmd/ldpd) to allow
// a deployment to garbage-collect TOMBSTONE resources past a retention
// window. This implementation retains tombstones indefinitely for
// observability (see DESIGN.md), so Sweep is a no-op.
func (s *Service) Sweep(ctx context.Context) error {
	return nil
}

// serverManagedTypeQuad returns the rdf:type triple the server asserts for
// every resource's interaction model, written into the server-managed
// graph alongside containment and membership triples.
func serverManagedTypeQuad(metadata rdf.Metadata) rdf.Quad {
	return rdf.Quad{
		GraphName: rdf.NewIRITerm(rdf.GraphServerManaged),
		Subject:   rdf.NewIRITerm(metadata.Identifier),
		Predicate: rdf.NewIRITerm(rdf.RDFType),
		Object:    rdf.NewIRITerm(metadata.InteractionModel.IRI()),
	}
}
