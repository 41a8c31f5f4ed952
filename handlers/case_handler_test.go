package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caselaw-backend/models"
	"caselaw-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBackend struct {
	results []models.SearchResult
	err     error
}

func (s *stubBackend) SimilaritySearch(ctx context.Context, queryText string, topK int, similarityThreshold float64) ([]models.SearchResult, error) {
	return s.results, s.err
}

func (s *stubBackend) LexicalSearch(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error) {
	return nil, s.err
}

func newTestRouter(backend service.SearchBackend) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewCaseHandler(
		service.NewIngestService(),
		service.NewSearchService(service.SearchWithBackend(backend)),
	)

	r := gin.New()
	r.POST("/api/cases", h.CreateCase)
	r.POST("/api/search", h.SearchCases)
	return r
}

type envelope struct {
	Success bool `json:"success"`
	Data    struct {
		Results []models.SearchResult `json:"results"`
	} `json:"data"`
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func doJSON(t *testing.T, r *gin.Engine, path, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestSearchCases_ReturnsResults(t *testing.T) {
	r := newTestRouter(&stubBackend{results: []models.SearchResult{
		{CaseNumber: "CA-1", Title: "A v B", Court: "Supreme Court", TextChunk: "chunk a", Similarity: 0.92},
	}})

	code, resp := doJSON(t, r, "/api/search", `{"query":"limitation period","top_k":5}`)

	assert.Equal(t, http.StatusOK, code)
	assert.True(t, resp.Success)
	require.Len(t, resp.Data.Results, 1)
	assert.Equal(t, "CA-1", resp.Data.Results[0].CaseNumber)
}

func TestSearchCases_EmptyQuery(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	code, resp := doJSON(t, r, "/api/search", `{"query":"  "}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.False(t, resp.Success)
	assert.Equal(t, "INVALID_QUERY", resp.Error.Code)
}

func TestSearchCases_BackendFailure(t *testing.T) {
	r := newTestRouter(&stubBackend{err: errors.New("connection refused")})

	code, resp := doJSON(t, r, "/api/search", `{"query":"limitation period"}`)

	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "SEARCH_FAILED", resp.Error.Code)
}

func TestSearchCases_NoMatchesReturnsEmptyArray(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	req := httptest.NewRequest(http.MethodPost, "/api/search", strings.NewReader(`{"query":"limitation period"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"results":[]`)
}

func TestSearchCases_MalformedBody(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	code, resp := doJSON(t, r, "/api/search", `{"query":`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_BODY", resp.Error.Code)
}

func TestCreateCase_ValidationFailure(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	code, resp := doJSON(t, r, "/api/cases", `{"case_number":"CA-1","title":"","full_text":"Some text."}`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_CASE", resp.Error.Code)
}

func TestCreateCase_MalformedBody(t *testing.T) {
	r := newTestRouter(&stubBackend{})

	code, resp := doJSON(t, r, "/api/cases", `not json`)

	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "INVALID_BODY", resp.Error.Code)
}
