// Package tracer provides a small tracing interface over OpenTelemetry so the
// oracle, ledger and blob adapters can emit spans without importing otel directly.
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, marking it failed when err is non-nil.
	// End must be called exactly once, typically via defer.
	End(err error)

	// SetAttributes adds key-value pairs to the span.
	SetAttributes(attrs ...Attribute)

	// AddEvent records a timestamped event within the span.
	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int creates an int attribute.
func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: int64(value)}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanOracleAssess   = "oracle.assess"
	SpanOracleQuestion = "oracle.questions"
	SpanOracleAdvise   = "oracle.advise"
	SpanLedgerGet      = "ledger.get"
	SpanBlobPut        = "blob.put"
	SpanBlobGet        = "blob.get"
)

// Attribute keys.
const (
	AttrProvider = "provider"
	AttrSkill    = "skill"
	AttrTokenID  = "token_id"
	AttrAddress  = "content_address"
	AttrCircuit  = "circuit.state"
	AttrAttempt  = "attempt"
)
