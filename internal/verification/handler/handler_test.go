package handler

//go:generate mockgen -source=handler.go -destination=mocks/verification-mocks.go -package=mocks Service

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/resume/models"
	"credverify/internal/verification/handler/mocks"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")

type VerificationHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestVerificationHandlerSuite(t *testing.T) {
	suite.Run(t, new(VerificationHandlerSuite))
}

func (s *VerificationHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	h := New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.router = chi.NewRouter()
	h.Register(s.router)
	h.RegisterRun(s.router)
}

func (s *VerificationHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *VerificationHandlerSuite) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req = req.WithContext(requestcontext.WithSubject(req.Context(), alice))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *VerificationHandlerSuite) TestRunReturnsVerification() {
	resumeID := id.NewResumeID()
	s.service.EXPECT().
		RunVerification(gomock.Any(), resumeID, alice).
		Return(&models.Verification{ResumeID: resumeID, Score: 72, IPFSHash: "QmR"}, nil)

	w := s.do(http.MethodPost, "/resumes/"+resumeID.String()+"/verify")
	s.Require().Equal(http.StatusOK, w.Code)

	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal(float64(72), body["score"])
	s.Equal("QmR", body["ipfsHash"])
	s.Equal("verified", body["verificationStatus"])
	s.Equal(true, body["passed"])
}

func (s *VerificationHandlerSuite) TestErrorMapping() {
	resumeID := id.NewResumeID()
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"forbidden", dErrors.New(dErrors.CodeForbidden, "resume belongs to another wallet"), http.StatusForbidden},
		{"not found", dErrors.New(dErrors.CodeNotFound, "resume not found"), http.StatusNotFound},
		{"scoring", dErrors.New(dErrors.CodeScoringUnavailable, "scoring oracle unavailable"), http.StatusServiceUnavailable},
		{"storage", dErrors.New(dErrors.CodeStorageUnavailable, "failed to pin"), http.StatusServiceUnavailable},
		{"conflict", dErrors.New(dErrors.CodeConflict, "resume changed"), http.StatusConflict},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.service.EXPECT().RunVerification(gomock.Any(), resumeID, alice).Return(nil, tc.err)
			w := s.do(http.MethodPost, "/resumes/"+resumeID.String()+"/verify")
			s.Equal(tc.status, w.Code)
		})
	}
}

func (s *VerificationHandlerSuite) TestUnavailableCarriesRetryAfter() {
	resumeID := id.NewResumeID()
	s.service.EXPECT().
		RunVerification(gomock.Any(), resumeID, alice).
		Return(nil, dErrors.New(dErrors.CodeScoringUnavailable, "scoring oracle unavailable"))

	w := s.do(http.MethodPost, "/resumes/"+resumeID.String()+"/verify")
	s.Equal("30", w.Header().Get("Retry-After"))
}

func (s *VerificationHandlerSuite) TestLatest() {
	resumeID := id.NewResumeID()
	s.service.EXPECT().
		LatestVerification(gomock.Any(), resumeID, alice).
		Return(&models.Verification{ResumeID: resumeID, Score: 40}, nil)

	w := s.do(http.MethodGet, "/resumes/"+resumeID.String()+"/verification")
	s.Require().Equal(http.StatusOK, w.Code)
	var body map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &body))
	s.Equal("rejected", body["verificationStatus"])
	s.Equal(false, body["passed"])
}

func (s *VerificationHandlerSuite) TestBadResumeID() {
	w := s.do(http.MethodPost, "/resumes/nope/verify")
	s.Equal(http.StatusBadRequest, w.Code)
}
