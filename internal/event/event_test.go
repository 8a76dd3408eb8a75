package event

import (
	"context"
	"testing"
	"time"

	"github.com/trellis-ldp/ldpcore/internal/rdf"
	"github.com/trellis-ldp/ldpcore/pkg/metrics"
)

func TestPublishShapesActivityStreamsEnvelope(t *testing.T) {
	bus := NewInProcessBus()
	sub := bus.Subscribe(1)
	svc := New(bus, nil, metrics.Noop{})

	ev := rdf.Event{
		ActivityType: rdf.ActivityCreate,
		ActorIRIs:    []string{"http://example.org/webid"},
		ObjectIRI:    rdf.InternalDataPrefix + "x",
		ObjectTypes:  []string{"http://www.w3.org/ns/ldp#BasicContainer"},
		Created:      time.Now(),
	}
	svc.Publish(context.Background(), ev)

	select {
	case envelope := <-sub:
		if envelope.Context != "https://www.w3.org/ns/activitystreams" {
			t.Fatalf("expected AS context, got %q", envelope.Context)
		}
		if len(envelope.Type) != 1 || envelope.Type[0] != "Create" {
			t.Fatalf("expected bare term 'Create', got %+v", envelope.Type)
		}
		if envelope.Object.ID != ev.ObjectIRI {
			t.Fatalf("expected object id %q, got %q", ev.ObjectIRI, envelope.Object.ID)
		}
	default:
		t.Fatalf("expected an envelope to be published")
	}
}

func TestPublishDoesNotPanicOnBusFailure(t *testing.T) {
	svc := New(failingBus{}, nil, metrics.Noop{})
	// Must not panic; failures are swallowed after logging.
	svc.Publish(context.Background(), rdf.Event{ActivityType: rdf.ActivityUpdate, Created: time.Now()})
}

type failingBus struct{}

func (failingBus) Publish(ctx context.Context, envelope Envelope) error {
	return context.DeadlineExceeded
}
