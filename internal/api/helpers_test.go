package api

import (
	"alcyxob/trainer-app/internal/repository"
	"alcyxob/trainer-app/internal/repository/memory"
	"alcyxob/trainer-app/internal/service"
	"alcyxob/trainer-app/internal/web"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	repos  repository.Repositories
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	repos := memory.NewRepositories()
	services := Services{
		Auth:      service.NewAuthService(repos.Trainers, "test-secret", time.Hour),
		Trainer:   service.NewTrainerService(repos.Trainers, repos.Plans, nil, nil, 0),
		Student:   service.NewStudentService(repos.Students, repos.Plans, nil),
		Plan:      service.NewPlanService(repos, nil),
		Share:     service.NewShareService(repos, nil, "https://app.test"),
		Payment:   service.NewPaymentService(repos, nil, 0),
		Dashboard: service.NewDashboardService(repos),
	}

	router := gin.New()
	tmpl, err := web.Templates()
	require.NoError(t, err)
	router.SetHTMLTemplate(tmpl)
	SetupRoutes(router, services)
	return &testServer{router: router, repos: repos}
}

func (s *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// do sends body (JSON-encoded unless nil) with an optional bearer token.
func (s *testServer) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.serve(req)
}

// signUp registers a trainer and returns a session token.
func (s *testServer) signUp(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"name": "Coach", "email": email, "password": "password123",
	}, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/auth/login", gin.H{"email": email, "password": "password123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[LoginResponse](t, rec).Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["error"]
}
