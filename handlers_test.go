package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mifty-dev/seo-audit/audit"
	"github.com/mifty-dev/seo-audit/logging"
	"github.com/mifty-dev/seo-audit/service"
	"github.com/mifty-dev/seo-audit/stats"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	storage, err := stats.NewStorage(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Shutdown() })

	svc := service.New(audit.New(audit.DefaultConfig()), storage, service.DefaultOptions())
	h := newHandlers(svc, storage, logging.Initialize(t.TempDir()), 10)

	r := gin.New()
	api := r.Group("/api")
	api.POST("/audit", h.auditPage)
	api.POST("/audit/batch", h.auditBatch)
	api.GET("/statistics", h.statistics)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuditEndpoint(t *testing.T) {
	r := newTestRouter(t)

	page := audit.PageMetadata{
		Title:       "Mifty Framework Visual Database Designer Guide",
		Description: "Build enterprise applications with the Mifty framework: TypeScript decorators, dependency injection, and a visual database designer for Node.js teams.",
		Content:     `<a href="/docs">Mifty Documentation Index</a>`,
		Keywords:    []string{"mifty"},
	}

	w := postJSON(t, r, "/api/audit", page)
	require.Equal(t, http.StatusOK, w.Code)

	var report audit.AuditReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 93, report.OverallScore)
	assert.True(t, report.TitleValidation.IsValid)
}

func TestAuditEndpointRequiresTitle(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(t, r, "/api/audit", map[string]any{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuditEndpointRejectsMalformedJSON(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/audit", bytes.NewReader([]byte("{not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBatchEndpoint(t *testing.T) {
	r := newTestRouter(t)

	pages := make([]audit.PageMetadata, 3)
	for i := range pages {
		pages[i] = audit.PageMetadata{Title: fmt.Sprintf("Page %d", i)}
	}

	w := postJSON(t, r, "/api/audit/batch", map[string]any{"pages": pages})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Reports []audit.AuditReport `json:"reports"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Len(t, response.Reports, 3)
}

func TestBatchEndpointEnforcesLimit(t *testing.T) {
	r := newTestRouter(t)

	pages := make([]audit.PageMetadata, 11) // router is configured with a limit of 10
	for i := range pages {
		pages[i] = audit.PageMetadata{Title: fmt.Sprintf("Page %d", i)}
	}

	w := postJSON(t, r, "/api/audit/batch", map[string]any{"pages": pages})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatisticsEndpoint(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/statistics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Contains(t, body, "auditsThisMonth")
	assert.Contains(t, body, "cachedReports")
	assert.Contains(t, body, "monthlyHistory")
	assert.Contains(t, body, "totalRequests")
}
