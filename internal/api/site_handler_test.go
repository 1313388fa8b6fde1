package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSiteHandler(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name         string
		path         string
		wantCode     int
		wantType     string
		wantContains string
	}{
		{name: "landing", path: "/", wantCode: http.StatusOK, wantType: "text/html", wantContains: "Plans your students actually follow"},
		{name: "pricing", path: "/pricing", wantCode: http.StatusOK, wantType: "text/html", wantContains: "Studio"},
		{name: "health", path: "/health", wantCode: http.StatusOK, wantType: "application/json", wantContains: `"status":"ok"`},
		{name: "ping", path: "/ping", wantCode: http.StatusOK, wantType: "application/json", wantContains: "pong"},
		{name: "unknown page", path: "/nowhere", wantCode: http.StatusNotFound, wantType: "text/html", wantContains: "Page not found"},
		{name: "unknown api route", path: "/api/nowhere", wantCode: http.StatusNotFound, wantType: "application/json", wantContains: `"error"`},
		{name: "unknown public plan", path: "/p/0000", wantCode: http.StatusNotFound, wantType: "text/html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.serve(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Contains(t, rec.Header().Get("Content-Type"), tt.wantType)
			assert.Contains(t, rec.Body.String(), tt.wantContains)
		})
	}
}
