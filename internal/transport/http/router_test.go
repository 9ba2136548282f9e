package httptransport

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	assistHandler "credverify/internal/assist/handler"
	assistService "credverify/internal/assist/service"
	blobAdapters "credverify/internal/blob/adapters"
	certificateHandler "credverify/internal/certificate/handler"
	certificateService "credverify/internal/certificate/service"
	credentialHandler "credverify/internal/credential/handler"
	credentialService "credverify/internal/credential/service"
	jwttoken "credverify/internal/jwt_token"
	"credverify/internal/oracle"
	oracleAdapters "credverify/internal/oracle/adapters"
	"credverify/internal/platform/health"
	ratelimitMiddleware "credverify/internal/ratelimit/middleware"
	ratelimitService "credverify/internal/ratelimit/service"
	ratelimitStore "credverify/internal/ratelimit/store"
	resumeHandler "credverify/internal/resume/handler"
	resumeService "credverify/internal/resume/service"
	resumeStore "credverify/internal/resume/store"
	skilltestHandler "credverify/internal/skilltest/handler"
	skilltestService "credverify/internal/skilltest/service"
	skilltestStore "credverify/internal/skilltest/store"
	userHandler "credverify/internal/user/handler"
	userService "credverify/internal/user/service"
	userStore "credverify/internal/user/store"
	verificationHandler "credverify/internal/verification/handler"
	verificationService "credverify/internal/verification/service"
	id "credverify/pkg/domain"
	"credverify/pkg/platform/middleware/auth"
	"credverify/pkg/platform/middleware/request"
)

type RouterSuite struct {
	suite.Suite
	router http.Handler
	reg    *prometheus.Registry
	token  string
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterSuite))
}

func (s *RouterSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.reg = prometheus.NewRegistry()

	resumes := resumeStore.NewInMemoryStore()
	tests := skilltestStore.NewInMemoryStore()
	blobs := blobAdapters.NewMemoryStore()
	scorer := oracle.New(oracleAdapters.NewStaticCompleter(), "static")

	users := userService.New(userStore.NewInMemoryStore())
	signer := jwttoken.NewJWTService("router-test-key", "credverify", time.Hour)
	token, _, err := signer.GenerateToken(context.Background(), id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7"))
	s.Require().NoError(err)
	s.token = token

	s.router = NewRouter(Handlers{
		Resumes:      resumeHandler.New(resumeService.New(resumes, users), log),
		Verification: verificationHandler.New(verificationService.NewPipeline(resumes, scorer, blobs), log),
		Credentials:  credentialHandler.New(credentialService.NewBinder(resumes, users), log),
		SkillTests:   skilltestHandler.New(skilltestService.NewEngine(tests, scorer, blobs), log),
		Certificates: certificateHandler.New(certificateService.NewVerifier(tests), log),
		Profile:      userHandler.New(users, log),
		Assist:       assistHandler.New(assistService.NewAssistant(resumes, scorer), log),
		Health:       health.New("test"),
	}, RouterConfig{
		Logger:         log,
		Auth:           auth.RequireSubject(jwttoken.NewJWTServiceAdapter(signer), log),
		RateLimit:      ratelimitMiddleware.New(ratelimitService.New(ratelimitStore.NewInMemoryStore()), log),
		Latency:        request.NewMetrics(s.reg),
		MetricsHandler: promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}),
	})
}

func (s *RouterSuite) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, path, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, path, nil)
	}
	if authed {
		r.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)
	return w
}

func (s *RouterSuite) TestOpsEndpointsArePublic() {
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/live", "", false).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/health/ready", "", false).Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/metrics", "", false).Code)
}

func (s *RouterSuite) TestCertificateLookupIsPublic() {
	w := s.do(http.MethodGet, "/certificates/0000000000000000", "", false)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *RouterSuite) TestWalletRoutesRequireToken() {
	for _, path := range []string{"/resumes", "/tests", "/credentials", "/profile"} {
		s.Equal(http.StatusUnauthorized, s.do(http.MethodGet, path, "", false).Code, path)
		s.Equal(http.StatusOK, s.do(http.MethodGet, path, "", true).Code, path)
	}
	s.Equal(http.StatusUnauthorized, s.do(http.MethodPost, "/tests", `{"skill":"Go"}`, false).Code)
}

func (s *RouterSuite) TestStartAndSubmitShareTestsPath() {
	w := s.do(http.MethodPost, "/tests", `{"skill":"Go"}`, true)
	s.Equal(http.StatusCreated, w.Code)
	s.Equal(http.StatusOK, s.do(http.MethodGet, "/tests", "", true).Code)
}

func (s *RouterSuite) TestRejectsNonJSONBodies() {
	r := httptest.NewRequest(http.MethodPost, "/resumes", strings.NewReader("name=alice"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	r.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)

	s.Equal(http.StatusUnsupportedMediaType, w.Code)
}

func (s *RouterSuite) TestResponsesCarryRequestID() {
	w := s.do(http.MethodGet, "/health/live", "", false)
	s.NotEmpty(w.Header().Get("X-Request-ID"))
}

func (s *RouterSuite) TestLatencyIsLabelledByRoutePattern() {
	s.do(http.MethodGet, "/resumes/"+id.NewResumeID().String(), "", true)

	count, err := testutil.GatherAndCount(s.reg, "credverify_endpoint_latency_seconds")
	s.Require().NoError(err)
	s.Equal(1, count)

	families, err := s.reg.Gather()
	s.Require().NoError(err)
	var routes []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "route" {
					routes = append(routes, l.GetValue())
				}
			}
		}
	}
	s.Equal([]string{"/resumes/{id}"}, routes)
}
