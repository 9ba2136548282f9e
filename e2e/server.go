package e2e

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	assistHandler "credverify/internal/assist/handler"
	assistService "credverify/internal/assist/service"
	"credverify/internal/audit"
	"credverify/internal/blob"
	blobAdapters "credverify/internal/blob/adapters"
	certificateHandler "credverify/internal/certificate/handler"
	certificateService "credverify/internal/certificate/service"
	credentialHandler "credverify/internal/credential/handler"
	credentialService "credverify/internal/credential/service"
	jwttoken "credverify/internal/jwt_token"
	"credverify/internal/oracle"
	oracleAdapters "credverify/internal/oracle/adapters"
	"credverify/internal/platform/health"
	"credverify/internal/platform/metrics"
	"credverify/internal/platform/tracer"
	ratelimitMiddleware "credverify/internal/ratelimit/middleware"
	ratelimitService "credverify/internal/ratelimit/service"
	ratelimitStore "credverify/internal/ratelimit/store"
	resumeHandler "credverify/internal/resume/handler"
	resumeService "credverify/internal/resume/service"
	resumeStore "credverify/internal/resume/store"
	skilltestHandler "credverify/internal/skilltest/handler"
	skilltestService "credverify/internal/skilltest/service"
	skilltestStore "credverify/internal/skilltest/store"
	httptransport "credverify/internal/transport/http"
	userHandler "credverify/internal/user/handler"
	userService "credverify/internal/user/service"
	userStore "credverify/internal/user/store"
	verificationHandler "credverify/internal/verification/handler"
	verificationService "credverify/internal/verification/service"
	"credverify/pkg/platform/middleware/auth"
	"credverify/pkg/platform/middleware/request"
)

const (
	signingKey = "e2e-signing-key"
	issuer     = "credverify"
)

// ScriptedOracle answers like the static oracle, except that assessments use
// the score queued by the scenario.
type ScriptedOracle struct {
	static *oracleAdapters.StaticCompleter

	mu    sync.Mutex
	score *int
}

func (o *ScriptedOracle) SetScore(score int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.score = &score
}

func (o *ScriptedOracle) Complete(ctx context.Context, p oracle.Prompt) (string, error) {
	reply, err := o.static.Complete(ctx, p)
	if err != nil || p.Task != oracle.TaskAssess {
		return reply, err
	}

	o.mu.Lock()
	score := o.score
	o.mu.Unlock()
	if score == nil {
		return reply, nil
	}

	var a oracle.Assessment
	if err := json.Unmarshal([]byte(reply), &a); err != nil {
		return "", err
	}
	a.Score = *score
	data, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// newServer assembles the HTTP surface on in-memory stores.
func newServer(completer *ScriptedOracle) (http.Handler, *jwttoken.JWTService) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	tr := tracer.NewNoop()

	resumes := resumeStore.NewInMemoryStore()
	tests := skilltestStore.NewInMemoryStore()
	users := userStore.NewInMemoryStore()
	blobs := blob.NewInstrumented(blobAdapters.NewMemoryStore(), "memory", tr, m)
	scorer := oracle.New(completer, "static", oracle.WithMetrics(m), oracle.WithLogger(log))
	auditor := audit.NewPublisher(audit.NewInMemoryStore())

	userSvc := userService.New(users, userService.WithAuditor(auditor), userService.WithLogger(log))
	resumeSvc := resumeService.New(resumes, userSvc, resumeService.WithAuditor(auditor), resumeService.WithLogger(log))
	pipeline := verificationService.NewPipeline(resumes, scorer, blobs,
		verificationService.WithAuditor(auditor),
		verificationService.WithMetrics(m),
		verificationService.WithLogger(log),
	)
	binder := credentialService.NewBinder(resumes, userSvc,
		credentialService.WithAuditor(auditor),
		credentialService.WithLogger(log),
	)
	engine := skilltestService.NewEngine(tests, scorer, blobs,
		skilltestService.WithAuditor(auditor),
		skilltestService.WithLogger(log),
	)
	verifier := certificateService.NewVerifier(tests, certificateService.WithLogger(log))
	assistant := assistService.NewAssistant(resumes, scorer, assistService.WithLogger(log))

	signer := jwttoken.NewJWTService(signingKey, issuer, time.Hour)
	limiter := ratelimitMiddleware.New(ratelimitService.New(ratelimitStore.NewInMemoryStore()), log,
		ratelimitMiddleware.WithRecorder(m),
	)

	router := httptransport.NewRouter(httptransport.Handlers{
		Resumes:      resumeHandler.New(resumeSvc, log),
		Verification: verificationHandler.New(pipeline, log),
		Credentials:  credentialHandler.New(binder, log),
		SkillTests:   skilltestHandler.New(engine, log),
		Certificates: certificateHandler.New(verifier, log),
		Profile:      userHandler.New(userSvc, log),
		Assist:       assistHandler.New(assistant, log),
		Health:       health.New("test"),
	}, httptransport.RouterConfig{
		Logger:    log,
		Auth:      auth.RequireSubject(jwttoken.NewJWTServiceAdapter(signer), log),
		RateLimit: limiter,
		Latency:   request.NewMetrics(reg),
	})
	return router, signer
}
