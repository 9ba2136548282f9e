package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"credverify/internal/ratelimit/models"
	"credverify/pkg/platform/httputil"
	"credverify/pkg/requestcontext"
)

type RateLimiter interface {
	Check(ctx context.Context, class models.EndpointClass, subject, ip string) (*models.RateLimitResult, error)
}

// RejectionRecorder counts rejected requests; satisfied by *metrics.Metrics.
type RejectionRecorder interface {
	IncRateLimitRejection(class string)
}

type Middleware struct {
	limiter  RateLimiter
	logger   *slog.Logger
	recorder RejectionRecorder
	disabled bool
}

// Option configures the Middleware.
type Option func(*Middleware)

// WithRecorder sets the rejection counter.
func WithRecorder(r RejectionRecorder) Option {
	return func(m *Middleware) { m.recorder = r }
}

// WithDisabled turns every RateLimit middleware into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func New(limiter RateLimiter, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// RateLimit enforces the class budget. It must run after authentication so
// the subject is in context; without one the client IP is used. Store errors
// fail open.
func (m *Middleware) RateLimit(class models.EndpointClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m.disabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			subject := requestcontext.Subject(ctx).String()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Check(ctx, class, subject, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "failed to check rate limit",
					"error", err,
					"class", class,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				if m.recorder != nil {
					m.recorder.IncRateLimitRejection(class.String())
				}
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"class", class,
					"subject", subject,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// addRateLimitHeaders adds X-RateLimit-* headers to the response.
func addRateLimitHeaders(w http.ResponseWriter, result *models.RateLimitResult) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.RateLimitResult) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.RateLimitExceededResponse{
		Error:            "rate_limit_exceeded",
		ErrorDescription: "Too many requests, please try again later.",
		RetryAfter:       result.RetryAfter,
	})
}
