package rdf

import "time"

// ActivityType is one of the three mutation kinds the event service reports.
type ActivityType int

const (
	ActivityCreate ActivityType = iota
	ActivityUpdate
	ActivityDelete
)

func (a ActivityType) String() string {
	switch a {
	case ActivityCreate:
		return "Create"
	case ActivityUpdate:
		return "Update"
	case ActivityDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Event is the internal representation of a mutation notification, shaped
// into an ActivityStreams-2.0 envelope by the event service.
type Event struct {
	EventIRI     string
	Created      time.Time
	ActivityType ActivityType
	ActorIRIs    []string
	ObjectIRI    string
	ObjectTypes  []string
	Inbox        string
}

// ConstraintViolation explains which triples violated which constraint.
type ConstraintViolation struct {
	ConstraintIRI string
	Triples       []Triple
}
