// Package httptransport assembles the HTTP surface: the middleware chain, the
// feature handlers and the rate class each route group runs under.
package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"

	assistHandler "credverify/internal/assist/handler"
	certificateHandler "credverify/internal/certificate/handler"
	credentialHandler "credverify/internal/credential/handler"
	ledgerHandler "credverify/internal/ledger/handler"
	"credverify/internal/platform/health"
	ratelimitMiddleware "credverify/internal/ratelimit/middleware"
	"credverify/internal/ratelimit/models"
	resumeHandler "credverify/internal/resume/handler"
	skilltestHandler "credverify/internal/skilltest/handler"
	userHandler "credverify/internal/user/handler"
	verificationHandler "credverify/internal/verification/handler"
	"credverify/pkg/platform/middleware/request"
	"credverify/pkg/validation"
)

// DefaultRequestTimeout leaves room for one oracle call.
const DefaultRequestTimeout = 60 * time.Second

// Handlers are the feature handlers mounted by NewRouter. Ledger is optional
// and only set when the in-process ledger is running.
type Handlers struct {
	Resumes      *resumeHandler.Handler
	Verification *verificationHandler.Handler
	Credentials  *credentialHandler.Handler
	SkillTests   *skilltestHandler.Handler
	Certificates *certificateHandler.Handler
	Profile      *userHandler.Handler
	Assist       *assistHandler.Handler
	Ledger       *ledgerHandler.Handler
	Health       *health.Handler
}

// RouterConfig carries the cross-cutting pieces of the chain.
type RouterConfig struct {
	Logger         *slog.Logger
	Auth           func(http.Handler) http.Handler
	RateLimit      *ratelimitMiddleware.Middleware
	Latency        *request.Metrics
	MetricsHandler http.Handler
	TrustedProxies []netip.Prefix
	RequestTimeout time.Duration
}

// NewRouter wires every endpoint with the middleware chain.
func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(request.RequestTime)
	r.Use(request.ClientIP(cfg.TrustedProxies))
	r.Use(request.Logger(cfg.Logger))
	r.Use(request.Latency(cfg.Latency, routePattern))
	r.Use(request.BodyLimit(validation.MaxBodySize))
	r.Use(request.Timeout(timeout))
	r.Use(request.ContentTypeJSON)

	if h.Health != nil {
		h.Health.Register(r)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public: certificate codes are bearer proofs, limited by client IP.
	r.Group(func(r chi.Router) {
		r.Use(cfg.RateLimit.RateLimit(models.ClassAPI))
		h.Certificates.Register(r)
		if h.Ledger != nil {
			h.Ledger.RegisterPublic(r)
		}
	})

	r.Group(func(r chi.Router) {
		r.Use(cfg.Auth)

		r.Group(func(r chi.Router) {
			r.Use(cfg.RateLimit.RateLimit(models.ClassAPI))
			h.Resumes.Register(r)
			h.Verification.Register(r)
			h.Credentials.Register(r)
			h.SkillTests.Register(r)
			h.Profile.Register(r)
			if h.Ledger != nil {
				h.Ledger.Register(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.RateLimit.RateLimit(models.ClassVerification))
			h.Verification.RegisterRun(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(cfg.RateLimit.RateLimit(models.ClassAI))
			h.SkillTests.RegisterStart(r)
			h.Assist.Register(r)
		})
	})

	return r
}

// routePattern labels latency by chi route so ids stay out of metric labels.
func routePattern(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		return rc.RoutePattern()
	}
	return ""
}
