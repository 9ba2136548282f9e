package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"credverify/internal/platform/tracer"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/platform/circuit"
)

// DefaultTimeout bounds a single oracle call.
const DefaultTimeout = 45 * time.Second

// Failure reasons recorded on the oracle failure counter.
const (
	ReasonTimeout     = "timeout"
	ReasonTransport   = "transport"
	ReasonDecode      = "decode"
	ReasonCircuitOpen = "circuit_open"
)

// CallRecorder is satisfied by *metrics.Metrics.
type CallRecorder interface {
	ObserveOracleCall(operation string, elapsed time.Duration, reason string)
}

// Client implements Assessor, QuestionGenerator and Advisor over a Completer.
// Each call runs under a timeout and behind a circuit breaker.
type Client struct {
	completer Completer
	provider  string
	timeout   time.Duration
	breaker   *circuit.Breaker
	tracer    tracer.Tracer
	metrics   CallRecorder
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithTracer(t tracer.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

func WithMetrics(m CallRecorder) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New wraps completer. provider names the backend in spans and logs.
func New(completer Completer, provider string, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		provider:  provider,
		timeout:   DefaultTimeout,
		breaker:   circuit.New("oracle_"+provider, circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second)),
		tracer:    tracer.NewNoop(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Assess(ctx context.Context, in AssessmentInput) (*Assessment, error) {
	p, err := assessPrompt(in)
	if err != nil {
		return nil, unavailable("assess", err)
	}
	var out *Assessment
	err = c.call(ctx, tracer.SpanOracleAssess, "assess", p, func(text string) error {
		var decodeErr error
		out, decodeErr = DecodeAssessment(text)
		return decodeErr
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]Question, error) {
	if req.Count <= 0 {
		req.Count = QuestionCount
	}
	var out []Question
	err := c.call(ctx, tracer.SpanOracleQuestion, "questions", questionsPrompt(req), func(text string) error {
		var err error
		out, err = DecodeQuestions(text, req.Count)
		return err
	}, tracer.String(tracer.AttrSkill, req.Skill))
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) MatchSkills(ctx context.Context, req SkillMatchRequest) (*SkillMatch, error) {
	var out *SkillMatch
	err := c.call(ctx, tracer.SpanOracleAdvise, "skill_match", skillMatchPrompt(req), func(text string) error {
		var err error
		out, err = DecodeSkillMatch(text)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CareerAdvice(ctx context.Context, in AssessmentInput) (string, error) {
	p, err := advicePrompt(in)
	if err != nil {
		return "", unavailable("career_advice", err)
	}
	var out string
	err = c.call(ctx, tracer.SpanOracleAdvise, "career_advice", p, func(text string) error {
		out = strings.TrimSpace(text)
		if out == "" {
			return errors.New("empty advice")
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Client) call(ctx context.Context, span, op string, p Prompt, decode func(string) error, attrs ...tracer.Attribute) (err error) {
	attrs = append(attrs, tracer.String(tracer.AttrProvider, c.provider))
	ctx, sp := c.tracer.Start(ctx, span, attrs...)
	defer func() { sp.End(err) }()

	start := time.Now()
	reason := ""
	defer func() {
		if c.metrics != nil {
			c.metrics.ObserveOracleCall(op, time.Since(start), reason)
		}
	}()

	if !c.breaker.Allow() {
		reason = ReasonCircuitOpen
		sp.SetAttributes(tracer.String(tracer.AttrCircuit, c.breaker.State().String()))
		return unavailable(op, fmt.Errorf("circuit %s open", c.breaker.Name()))
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, callErr := c.completer.Complete(callCtx, p)
	switch {
	case callErr != nil && errors.Is(callCtx.Err(), context.DeadlineExceeded):
		reason = ReasonTimeout
	case callErr != nil:
		reason = ReasonTransport
	default:
		if decodeErr := decode(text); decodeErr != nil {
			reason = ReasonDecode
			callErr = decodeErr
		}
	}

	if callErr != nil {
		if change := c.breaker.RecordFailure(); change.Opened {
			c.logger.ErrorContext(ctx, "circuit breaker opened",
				"circuit", c.breaker.Name(),
				"error", callErr,
			)
		}
		c.logger.WarnContext(ctx, "oracle call failed",
			"operation", op,
			"provider", c.provider,
			"reason", reason,
			"error", callErr,
		)
		return unavailable(op, callErr)
	}

	if change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.InfoContext(ctx, "circuit breaker closed", "circuit", c.breaker.Name())
	}
	return nil
}

func unavailable(op string, err error) error {
	return &dErrors.Error{
		Code:    dErrors.CodeScoringUnavailable,
		Message: fmt.Sprintf("scoring oracle unavailable: %s", op),
		Err:     err,
	}
}

var (
	_ Assessor          = (*Client)(nil)
	_ QuestionGenerator = (*Client)(nil)
	_ Advisor           = (*Client)(nil)
)
