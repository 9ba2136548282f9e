package models

import (
	"time"
)

type EndpointClass string

const (
	// ClassAPI: general endpoints, 100 requests per 15 minutes.
	ClassAPI EndpointClass = "api"
	// ClassVerification: resume verification, 10 requests per hour.
	ClassVerification EndpointClass = "verification"
	// ClassAI: oracle-backed endpoints (test start, assist), 20 requests per hour.
	ClassAI EndpointClass = "ai"
)

func (c EndpointClass) IsValid() bool {
	switch c {
	case ClassAPI, ClassVerification, ClassAI:
		return true
	}
	return false
}

func (c EndpointClass) String() string { return string(c) }

// Limit is a request budget over a sliding window.
type Limit struct {
	Requests int
	Window   time.Duration
}

// DefaultLimits returns the preset budget per class.
func DefaultLimits() map[EndpointClass]Limit {
	return map[EndpointClass]Limit{
		ClassAPI:          {Requests: 100, Window: 15 * time.Minute},
		ClassVerification: {Requests: 10, Window: time.Hour},
		ClassAI:           {Requests: 20, Window: time.Hour},
	}
}

type RateLimitResult struct {
	Allowed    bool      `json:"allowed"`
	Limit      int       `json:"limit"`
	Remaining  int       `json:"remaining"`
	ResetAt    time.Time `json:"reset_at"`
	RetryAfter int       `json:"retry_after,omitempty"` // seconds, only set when not allowed
}

type RateLimitExceededResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	RetryAfter       int    `json:"retry_after"` // seconds
}

// RetryAfterSeconds returns whole seconds until resetAt, rounded up, or 0 when allowed.
func RetryAfterSeconds(allowed bool, resetAt, now time.Time) int {
	if allowed {
		return 0
	}
	d := resetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}
