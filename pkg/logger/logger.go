// Package logger provides structured logging for ldpcore services.
package logger

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ContextKey is the type for context keys used to carry log fields.
type ContextKey string

const (
	TraceIDKey   ContextKey = "trace_id"
	AgentIRIKey  ContextKey = "agent_iri"
	IdentityKey  ContextKey = "identifier"
)

// Logger wraps logrus.Logger with a fixed component name.
type Logger struct {
	*logrus.Logger
	component string
}

// New creates a Logger for the given component, level, and format ("json" or "text").
func New(component, level, format string) *Logger {
	l := logrus.New()

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	if format == "text" {
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	l.SetOutput(os.Stdout)

	return &Logger{Logger: l, component: component}
}

// NewFromEnv builds a Logger from LOG_LEVEL / LOG_FORMAT, defaulting to info/json.
func NewFromEnv(component string) *Logger {
	level := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if level == "" {
		level = "info"
	}
	format := strings.TrimSpace(os.Getenv("LOG_FORMAT"))
	if format == "" {
		format = "json"
	}
	return New(component, level, format)
}

// WithContext returns an entry enriched with trace/agent/identifier fields from ctx.
func (l *Logger) WithContext(ctx context.Context) *logrus.Entry {
	entry := l.Logger.WithField("component", l.component)
	if v := ctx.Value(TraceIDKey); v != nil {
		entry = entry.WithField("trace_id", v)
	}
	if v := ctx.Value(AgentIRIKey); v != nil {
		entry = entry.WithField("agent_iri", v)
	}
	if v := ctx.Value(IdentityKey); v != nil {
		entry = entry.WithField("identifier", v)
	}
	return entry
}

// WithFields returns an entry with the given fields plus the component name.
func (l *Logger) WithFields(fields logrus.Fields) *logrus.Entry {
	if fields == nil {
		fields = logrus.Fields{}
	}
	fields["component"] = l.component
	return l.Logger.WithFields(fields)
}

// WithError returns an entry carrying err and the component name.
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithFields(logrus.Fields{"component": l.component}).WithError(err)
}

// NewTraceID generates a fresh trace identifier.
func NewTraceID() string { return uuid.New().String() }

// WithTraceID attaches a trace id to ctx.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, TraceIDKey, id)
}

// WithAgentIRI attaches the acting agent's IRI to ctx.
func WithAgentIRI(ctx context.Context, agentIRI string) context.Context {
	return context.WithValue(ctx, AgentIRIKey, agentIRI)
}

// WithIdentifier attaches the target resource identifier to ctx.
func WithIdentifier(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// LogMutation logs a resource-service mutation in a consistent shape.
func (l *Logger) LogMutation(ctx context.Context, op, identifier string, err error) {
	entry := l.WithContext(ctx).WithFields(logrus.Fields{
		"operation":  op,
		"identifier": identifier,
	})
	if err != nil {
		entry.WithError(err).Warn("resource mutation failed")
		return
	}
	entry.Info("resource mutation committed")
}

// LogAudit logs an audit-trail append.
func (l *Logger) LogAudit(ctx context.Context, activity, identifier, agentIRI string) {
	l.WithContext(ctx).WithFields(logrus.Fields{
		"audit":      true,
		"activity":   activity,
		"identifier": identifier,
		"agent_iri":  agentIRI,
	}).Info("audit entry recorded")
}

var defaultLogger *Logger

// InitDefault sets the package-level default logger.
func InitDefault(component, level, format string) {
	defaultLogger = New(component, level, format)
}

// Default returns the process-wide default logger, creating a fallback if unset.
func Default() *Logger {
	if defaultLogger == nil {
		defaultLogger = New("ldpcore", "info", "json")
	}
	return defaultLogger
}
