// Package blob defines the content-addressed store used to pin verification
// reports and certificate payloads.
package blob

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"credverify/internal/platform/tracer"
	"credverify/internal/sentinel"
)

// Store pins JSON documents. The same document always yields the same address.
// Failures wrap sentinel.ErrUnavailable; an unknown address wraps sentinel.ErrNotFound.
type Store interface {
	Put(ctx context.Context, v any) (string, error)
	Get(ctx context.Context, address string, out any) error
}

// Canonical encodes v as compact JSON. Struct fields keep declaration order
// and map keys are sorted, so equal values encode to equal bytes.
func Canonical(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: encode blob: %v", sentinel.ErrInvalidInput, err)
	}
	return data, nil
}

// ContentAddress is the lower-case hex SHA-256 of data.
func ContentAddress(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// LatencyRecorder is satisfied by *metrics.Metrics.
type LatencyRecorder interface {
	ObserveBlobPut(elapsed time.Duration)
}

// Instrumented wraps a Store with spans and put latency.
type Instrumented struct {
	next     Store
	provider string
	tracer   tracer.Tracer
	metrics  LatencyRecorder
}

// NewInstrumented wraps next. A nil tracer falls back to the no-op tracer.
func NewInstrumented(next Store, provider string, t tracer.Tracer, m LatencyRecorder) *Instrumented {
	if t == nil {
		t = tracer.NewNoop()
	}
	return &Instrumented{next: next, provider: provider, tracer: t, metrics: m}
}

func (i *Instrumented) Put(ctx context.Context, v any) (address string, err error) {
	ctx, span := i.tracer.Start(ctx, tracer.SpanBlobPut, tracer.String(tracer.AttrProvider, i.provider))
	defer func() {
		if err == nil {
			span.SetAttributes(tracer.String(tracer.AttrAddress, address))
		}
		span.End(err)
	}()

	start := time.Now()
	address, err = i.next.Put(ctx, v)
	if i.metrics != nil {
		i.metrics.ObserveBlobPut(time.Since(start))
	}
	return address, err
}

func (i *Instrumented) Get(ctx context.Context, address string, out any) (err error) {
	ctx, span := i.tracer.Start(ctx, tracer.SpanBlobGet,
		tracer.String(tracer.AttrProvider, i.provider),
		tracer.String(tracer.AttrAddress, address),
	)
	defer func() { span.End(err) }()
	return i.next.Get(ctx, address, out)
}
