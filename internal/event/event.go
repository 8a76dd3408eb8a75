// Package event implements the event service: it shapes a
// mutation into an ActivityStreams-2.0 envelope and hands it to a
// pluggable bus. Publication is best-effort; downstream failures are
// logged and swallowed, never re-delivered by the core.
package event

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/pkg/logger"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

// Envelope is the ActivityStreams-2.0 JSON-LD wire shape.
type Envelope struct {
	Context   string   `json:"@context"`
	ID        string   `json:"id"`
	Type      []string `json:"type"`
	Actor     []string `json:"actor,omitempty"`
	Object    Object   `json:"object"`
	Published string   `json:"published"`
	Inbox     string   `json:"inbox,omitempty"`
}

type Object struct {
	ID   string   `json:"id"`
	Type []string `json:"type"`
}

// Bus is the pluggable downstream message bus the event service publishes
// to.
type Bus interface {
	Publish(ctx context.Context, envelope Envelope) error
}

// Service shapes mutations into envelopes and publishes them best-effort.
type Service struct {
	bus      Bus
	log      *logger.Logger
	recorder metrics.Recorder
}

func New(bus Bus, log *logger.Logger, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.Noop{}
	}
	return &Service{bus: bus, log: log, recorder: recorder}
}

// Publish builds the envelope for ev and hands it to the bus. Errors are
// logged, never surfaced to the caller — a mutation that committed must
// not be undone by a downstream publication failure.
func (s *Service) Publish(ctx context.Context, ev rdf.Event) {
	envelope := s.toEnvelope(ev)
	err := s.bus.Publish(ctx, envelope)
	s.recorder.EventPublished(ev.ActivityType.String(), err)
	if err != nil && s.log != nil {
		s.log.WithContext(ctx).WithError(err).Warn("event publication failed; not retried")
	}
}

func (s *Service) toEnvelope(ev rdf.Event) Envelope {
	eventIRI := ev.EventIRI
	if eventIRI == "" {
		eventIRI = fmt.Sprintf("urn:uuid:%s", uuid.New().String())
	}
	return Envelope{
		Context:   "https://www.w3.org/ns/activitystreams",
		ID:        eventIRI,
		Type:      []string{asTerm(rdf.PrefixAS + ev.ActivityType.String())},
		Actor:     ev.ActorIRIs,
		Object:    Object{ID: ev.ObjectIRI, Type: termsOrSelf(ev.ObjectTypes)},
		Published: ev.Created.UTC().Format(time.RFC3339Nano),
		Inbox:     ev.Inbox,
	}
}

func termsOrSelf(types []string) []string {
	out := make([]string, len(types))
	for i, t := range types {
		out[i] = asTerm(t)
	}
	return out
}

// asTerm serializes AS-namespace IRIs as bare terms ("Create") and
// everything else as a full IRI.
func asTerm(iri string) string {
	if strings.HasPrefix(iri, rdf.PrefixAS) {
		return strings.TrimPrefix(iri, rdf.PrefixAS)
	}
	return iri
}
