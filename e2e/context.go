package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	jwttoken "credverify/internal/jwt_token"
	oracleAdapters "credverify/internal/oracle/adapters"
	id "credverify/pkg/domain"
)

// TestContext holds state between test steps
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	Oracle           *ScriptedOracle
	LastResponse     *http.Response
	LastResponseBody []byte
	AccessToken      string

	server *httptest.Server
	signer *jwttoken.JWTService
	saved  map[string]string
}

// NewTestContext starts a fresh in-process server for one scenario.
func NewTestContext() *TestContext {
	completer := &ScriptedOracle{static: oracleAdapters.NewStaticCompleter()}
	handler, signer := newServer(completer)
	srv := httptest.NewServer(handler)

	return &TestContext{
		BaseURL:    srv.URL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		Oracle:     completer,
		server:     srv,
		signer:     signer,
		saved:      make(map[string]string),
	}
}

// Close stops the scenario's server.
func (tc *TestContext) Close() {
	tc.server.Close()
}

// SignInAs issues a bearer token for wallet; later requests carry it.
func (tc *TestContext) SignInAs(wallet string) error {
	subject, err := id.ParseSubjectID(wallet)
	if err != nil {
		return err
	}
	token, _, err := tc.signer.GenerateToken(context.Background(), subject)
	if err != nil {
		return fmt.Errorf("failed to sign token: %w", err)
	}
	tc.AccessToken = token
	return nil
}

// SignOut drops the bearer token.
func (tc *TestContext) SignOut() {
	tc.AccessToken = ""
}

// SetOracleScore fixes the score of every following assessment.
func (tc *TestContext) SetOracleScore(score int) {
	tc.Oracle.SetScore(score)
}

// CorrectAnswer is the answer the static oracle marks correct for question i.
func (tc *TestContext) CorrectAnswer(i int) int {
	return oracleAdapters.StaticQuestions("", i+1)[i].CorrectAnswer
}

// POST makes a POST request and stores the response
func (tc *TestContext) POST(path string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}
	return tc.do(http.MethodPost, path, bytes.NewReader(data))
}

// GET makes a GET request and stores the response
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body io.Reader) error {
	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.AccessToken)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	return nil
}

// GetResponseField extracts a field from the JSON response. Dotted paths
// such as "test.score" descend into nested objects.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var data any
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	for part := range strings.SplitSeq(field, ".") {
		obj, ok := data.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
		if data, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %s not found in response", field)
		}
	}
	return data, nil
}

// Save remembers a value for later steps, e.g. a resume id.
func (tc *TestContext) Save(key, value string) {
	tc.saved[key] = value
}

// Saved returns a value stored with Save.
func (tc *TestContext) Saved(key string) (string, error) {
	v, ok := tc.saved[key]
	if !ok {
		return "", fmt.Errorf("nothing saved under %q", key)
	}
	return v, nil
}

func (tc *TestContext) GetLastResponseStatus() int {
	if tc.LastResponse == nil {
		return 0
	}
	return tc.LastResponse.StatusCode
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.LastResponseBody
}
