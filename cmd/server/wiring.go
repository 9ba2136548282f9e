package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/prometheus/client_golang/prometheus"
	openai "github.com/sashabaranov/go-openai"

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
	"credverify/internal/ledger"
	ledgerHandler "credverify/internal/ledger/handler"
	"credverify/internal/oracle"
	oracleAdapters "credverify/internal/oracle/adapters"
	"credverify/internal/platform/config"
	"credverify/internal/platform/database"
	"credverify/internal/platform/health"
	"credverify/internal/platform/kafka/producer"
	"credverify/internal/platform/metrics"
	redisclient "credverify/internal/platform/redis"
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
	"credverify/migrations"
	"credverify/pkg/platform/circuit"
	"credverify/pkg/platform/memtx"
	"credverify/pkg/platform/middleware/auth"
	"credverify/pkg/platform/middleware/request"
)

// app holds the assembled handlers and everything that must be closed on exit.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	handlers httptransport.Handlers
	auth     func(http.Handler) http.Handler
	limits   *ratelimitMiddleware.Middleware
	latency  *request.Metrics
	closers  []closer
}

type closer struct {
	name string
	fn   func() error
}

type stores struct {
	resumes resumeStore.Store
	tests   skilltestStore.Store
	users   userStore.Store
}

func build(ctx context.Context, cfg config.Config, log *slog.Logger, reg *prometheus.Registry) (_ *app, err error) {
	a := &app{cfg: cfg, log: log}
	defer func() {
		if err != nil {
			a.close()
		}
	}()

	m := metrics.New(reg)
	tr := tracer.NewOTel()
	healthHandler := health.New(cfg.Server.Environment)

	st, err := a.openStores(ctx, m, healthHandler)
	if err != nil {
		return nil, err
	}
	blobs, err := a.blobStore(ctx, tr, m)
	if err != nil {
		return nil, err
	}
	oracleClient, err := a.oracle(ctx, tr, m)
	if err != nil {
		return nil, err
	}
	ledgerReader, devLedger, err := a.ledger(ctx, tr)
	if err != nil {
		return nil, err
	}
	auditor, err := a.auditor(healthHandler)
	if err != nil {
		return nil, err
	}
	if a.limits, err = a.rateLimiter(ctx, reg, m, healthHandler); err != nil {
		return nil, err
	}

	users := userService.New(st.users,
		userService.WithAuditor(auditor),
		userService.WithLogger(log),
	)
	resumes := resumeService.New(st.resumes, users,
		resumeService.WithAuditor(auditor),
		resumeService.WithLogger(log),
	)
	pipeline := verificationService.NewPipeline(st.resumes, oracleClient, blobs,
		verificationService.WithVersionCheck(cfg.VerifyVersionCheck),
		verificationService.WithAuditor(auditor),
		verificationService.WithMetrics(m),
		verificationService.WithLogger(log),
	)
	binderOpts := []credentialService.Option{
		credentialService.WithAuditor(auditor),
		credentialService.WithMetrics(m),
		credentialService.WithLogger(log),
	}
	if ledgerReader != nil {
		binderOpts = append(binderOpts, credentialService.WithLedger(ledgerReader))
	}
	binder := credentialService.NewBinder(st.resumes, users, binderOpts...)
	engine := skilltestService.NewEngine(st.tests, oracleClient, blobs,
		skilltestService.WithAuditor(auditor),
		skilltestService.WithMetrics(m),
		skilltestService.WithLogger(log),
	)
	verifier := certificateService.NewVerifier(st.tests,
		certificateService.WithMetrics(m),
		certificateService.WithLogger(log),
	)
	assistant := assistService.NewAssistant(st.resumes, oracleClient, assistService.WithLogger(log))

	jwtService := jwttoken.NewJWTService(cfg.Server.JWTSigningKey, cfg.Server.JWTIssuer, cfg.Server.TokenTTL)
	jwtService.SetEnv(cfg.Server.Environment)
	a.auth = auth.RequireSubject(jwttoken.NewJWTServiceAdapter(jwtService), log)
	a.latency = request.NewMetrics(reg)

	a.handlers = httptransport.Handlers{
		Resumes:      resumeHandler.New(resumes, log),
		Verification: verificationHandler.New(pipeline, log),
		Credentials:  credentialHandler.New(binder, log),
		SkillTests:   skilltestHandler.New(engine, log),
		Certificates: certificateHandler.New(verifier, log),
		Profile:      userHandler.New(users, log),
		Assist:       assistHandler.New(assistant, log),
		Health:       healthHandler,
	}
	if devLedger != nil {
		a.handlers.Ledger = ledgerHandler.New(devLedger, log)
	}
	return a, nil
}

func (a *app) router(metricsHandler http.Handler) http.Handler {
	return httptransport.NewRouter(a.handlers, httptransport.RouterConfig{
		Logger:         a.log,
		Auth:           a.auth,
		RateLimit:      a.limits,
		Latency:        a.latency,
		MetricsHandler: metricsHandler,
		TrustedProxies: a.cfg.Server.TrustedProxies,
	})
}

func (a *app) onClose(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// close releases resources in reverse order of acquisition.
func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if err := c.fn(); err != nil {
			a.log.Warn("failed to close resource", "resource", c.name, "error", err)
		}
	}
	a.closers = nil
}

// openStores uses PostgreSQL when DATABASE_URL is set and the in-memory stores otherwise.
func (a *app) openStores(ctx context.Context, m *metrics.Metrics, h *health.Handler) (*stores, error) {
	pool, err := database.New(ctx, a.cfg.Database)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		a.log.Warn("DATABASE_URL not set, records are kept in memory")
		lockWait := func(name string) memtx.Option {
			return memtx.WithLockWaitObserver(func(d time.Duration) { m.ObserveTxLockWait(name, d) })
		}
		return &stores{
			resumes: resumeStore.NewInMemoryStore(lockWait("resumes")),
			tests:   skilltestStore.NewInMemoryStore(lockWait("skill_tests")),
			users:   userStore.NewInMemoryStore(),
		}, nil
	}
	a.onClose("postgres", pool.Close)

	if err := database.Migrate(ctx, pool.DB(), migrations.FS); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	h.RegisterCheck("postgres", pool.Health)
	return &stores{
		resumes: resumeStore.NewPostgres(pool.DB()),
		tests:   skilltestStore.NewPostgres(pool.DB()),
		users:   userStore.NewPostgres(pool.DB()),
	}, nil
}

func (a *app) blobStore(ctx context.Context, tr tracer.Tracer, m *metrics.Metrics) (*blob.Instrumented, error) {
	var store blob.Store
	switch a.cfg.Blob.Provider {
	case config.BlobPinata:
		store = blobAdapters.NewPinataStore(blobAdapters.PinataConfig{
			GatewayURL: a.cfg.Blob.PinataGatewayURL,
			APIKey:     a.cfg.Blob.PinataAPIKey,
			SecretKey:  a.cfg.Blob.PinataSecretKey,
			JWT:        a.cfg.Blob.PinataJWT,
		}, nil)
	case config.BlobS3:
		client, err := blobAdapters.NewS3Client(ctx, blobAdapters.S3Config{
			Bucket:          a.cfg.Blob.S3Bucket,
			Region:          a.cfg.Blob.S3Region,
			Endpoint:        a.cfg.Blob.S3Endpoint,
			AccessKeyID:     a.cfg.Blob.S3AccessKeyID,
			SecretAccessKey: a.cfg.Blob.S3SecretKey,
		})
		if err != nil {
			return nil, err
		}
		store = blobAdapters.NewS3Store(client, a.cfg.Blob.S3Bucket)
	default:
		store = blobAdapters.NewMemoryStore()
	}
	return blob.NewInstrumented(store, a.cfg.Blob.Provider, tr, m), nil
}

func (a *app) oracle(ctx context.Context, tr tracer.Tracer, m *metrics.Metrics) (*oracle.Client, error) {
	var completer oracle.Completer
	switch a.cfg.Oracle.Provider {
	case config.OracleGemini:
		client, err := oracleAdapters.NewGeminiClient(ctx, a.cfg.Oracle.GeminiAPIKey)
		if err != nil {
			return nil, err
		}
		completer = oracleAdapters.NewGeminiCompleter(client.Models, a.cfg.Oracle.GeminiModel)
	case config.OracleOpenAI:
		completer = oracleAdapters.NewOpenAICompleter(openai.NewClient(a.cfg.Oracle.OpenAIAPIKey), a.cfg.Oracle.OpenAIModel)
	default:
		a.log.Warn("using the static oracle, scores are deterministic placeholders")
		completer = oracleAdapters.NewStaticCompleter()
	}
	return oracle.New(completer, a.cfg.Oracle.Provider,
		oracle.WithTimeout(a.cfg.Oracle.Timeout),
		oracle.WithBreaker(circuit.New("oracle_"+a.cfg.Oracle.Provider, circuit.WithCooldown(time.Minute))),
		oracle.WithTracer(tr),
		oracle.WithMetrics(m),
		oracle.WithLogger(a.log),
	), nil
}

// ledger returns the reader used by the binder and, for the in-process
// ledger, the ledger itself so its dev endpoints can be mounted.
func (a *app) ledger(ctx context.Context, tr tracer.Tracer) (ledger.Reader, ledger.Ledger, error) {
	switch a.cfg.Ledger.Provider {
	case config.LedgerMemory:
		l := ledger.NewMemoryLedger(a.cfg.Server.JWTIssuer)
		return l, l, nil
	case config.LedgerEthereum:
		client, err := ledger.Dial(ctx, a.cfg.Ledger.RPCURL)
		if err != nil {
			return nil, nil, err
		}
		a.onClose("ethereum", func() error { client.Close(); return nil })
		reader, err := ledger.NewEthereumReader(client, common.HexToAddress(a.cfg.Ledger.ContractAddress), ledger.WithTracer(tr))
		if err != nil {
			return nil, nil, err
		}
		return reader, nil, nil
	}
	return nil, nil, nil
}

// auditor keeps events in memory and, when brokers are configured, streams
// them to Kafka as well.
func (a *app) auditor(h *health.Handler) (*audit.Publisher, error) {
	var store audit.Store = audit.NewInMemoryStore()
	if a.cfg.Kafka.Brokers != "" {
		p, err := producer.New(producer.DefaultConfig(a.cfg.Kafka.Brokers), a.log)
		if err != nil {
			return nil, fmt.Errorf("kafka producer: %w", err)
		}
		a.onClose("kafka", p.Close)
		h.RegisterCheck("kafka", p.Health)
		store = audit.NewFanOut(store, audit.NewKafkaSink(p, a.cfg.Kafka.AuditTopic))
	}
	pub := audit.NewPublisher(store,
		audit.WithAsyncBuffer(1024),
		audit.WithPublisherLogger(a.log),
	)
	a.onClose("audit", func() error { pub.Close(); return nil })
	return pub, nil
}

func (a *app) rateLimiter(ctx context.Context, reg prometheus.Registerer, m *metrics.Metrics, h *health.Handler) (*ratelimitMiddleware.Middleware, error) {
	var store ratelimitService.Store = ratelimitStore.NewInMemoryStore()
	client, err := redisclient.New(ctx, a.cfg.Redis)
	if err != nil {
		return nil, err
	}
	if client != nil {
		a.onClose("redis", client.Close)
		h.RegisterCheck("redis", client.Health)
		reg.MustRegister(redisclient.NewPoolCollector(client))
		store = ratelimitStore.NewRedisStore(client.Client)
	}
	return ratelimitMiddleware.New(ratelimitService.New(store), a.log,
		ratelimitMiddleware.WithRecorder(m),
		ratelimitMiddleware.WithDisabled(!a.cfg.RateLimitEnabled),
	), nil
}
