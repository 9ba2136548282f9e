// Package requestcontext carries per-request values (request id, client IP,
// authenticated subject, clock) through context.Context.
package requestcontext

import (
	"context"
	"time"

	id "credverify/pkg/domain"
)

type (
	requestIDKey struct{}
	clientIPKey  struct{}
	subjectKey   struct{}
	nowKey       struct{}
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(requestIDKey{}).(string)
	return v
}

func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, ip)
}

func ClientIP(ctx context.Context) string {
	v, _ := ctx.Value(clientIPKey{}).(string)
	return v
}

// WithSubject stores the authenticated wallet subject.
func WithSubject(ctx context.Context, subject id.SubjectID) context.Context {
	return context.WithValue(ctx, subjectKey{}, subject)
}

// Subject returns the authenticated subject, or "" when the request is anonymous.
func Subject(ctx context.Context) id.SubjectID {
	v, _ := ctx.Value(subjectKey{}).(id.SubjectID)
	return v
}

// WithTime pins the request clock, mostly for tests.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, nowKey{}, t)
}

// Now returns the pinned request time or time.Now().
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(nowKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}
