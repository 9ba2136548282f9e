package handler

//go:generate mockgen -source=handler.go -destination=mocks/credential-mocks.go -package=mocks Service

import (
	"bytes"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"credverify/internal/credential/handler/mocks"
	credentialService "credverify/internal/credential/service"
	"credverify/internal/resume/models"
	id "credverify/pkg/domain"
	dErrors "credverify/pkg/domain-errors"
	"credverify/pkg/requestcontext"
)

const alice = id.SubjectID("0x52908400098527886e0f7030069857d2e4169ee7")

type CredentialHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestCredentialHandlerSuite(t *testing.T) {
	suite.Run(t, new(CredentialHandlerSuite))
}

func (s *CredentialHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	s.router = chi.NewRouter()
	New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(s.router)
}

func (s *CredentialHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *CredentialHandlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req = req.WithContext(requestcontext.WithSubject(req.Context(), alice))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *CredentialHandlerSuite) TestBind() {
	resumeID := id.NewResumeID()
	vid := id.NewVerificationID()
	s.service.EXPECT().
		BindCredential(gomock.Any(), credentialService.BindRequest{ResumeID: resumeID, Subject: alice, TokenID: "17", TxRef: "0xabc"}).
		Return(&credentialService.BindResult{ResumeID: resumeID, VerificationID: vid, TokenID: "17"}, nil)

	w := s.do(http.MethodPost, "/resumes/"+resumeID.String()+"/credential", `{"tokenId":" 17 ","txHash":"0xabc"}`)
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"resumeId":"`+resumeID.String()+`","verificationId":"`+vid.String()+`","tokenId":"17","unchanged":false}`, w.Body.String())
}

func (s *CredentialHandlerSuite) TestBindErrors() {
	resumeID := id.NewResumeID()
	path := "/resumes/" + resumeID.String() + "/credential"

	w := s.do(http.MethodPost, path, `{"tokenId":"  "}`)
	s.Equal(http.StatusBadRequest, w.Code)

	s.service.EXPECT().BindCredential(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeAlreadyBound, "resume is already bound to another credential"))
	w = s.do(http.MethodPost, path, `{"tokenId":"18"}`)
	s.Equal(http.StatusConflict, w.Code)

	s.service.EXPECT().BindCredential(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodePreconditionFailed, "resume must be verified"))
	w = s.do(http.MethodPost, path, `{"tokenId":"18"}`)
	s.Equal(http.StatusPreconditionFailed, w.Code)
}

func (s *CredentialHandlerSuite) TestList() {
	score := 80
	resumeID := id.NewResumeID()
	s.service.EXPECT().ListCredentials(gomock.Any(), alice).Return([]*models.Resume{{
		ID:                 resumeID,
		Name:               "Ada",
		CredentialID:       "17",
		VerificationStatus: models.StatusVerified,
		VerificationScore:  &score,
		IPFSHash:           "Qm",
	}}, nil)

	w := s.do(http.MethodGet, "/credentials", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"credentials":[{"tokenId":"17","resumeId":"`+resumeID.String()+`","name":"Ada","verificationStatus":"verified","verificationScore":80,"ipfsHash":"Qm"}]}`, w.Body.String())
}
