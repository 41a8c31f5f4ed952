package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"caselaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiEmbedder_EmbedNormalizes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":embedContent"))
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "RETRIEVAL_QUERY", req.TaskType)

		json.NewEncoder(w).Encode(embeddingResponse{
			Embedding: embeddingValues{Values: []float64{3, 4}},
		})
	}))
	defer server.Close()

	e := NewGeminiEmbedder("test-key", WithBaseURL(server.URL), WithDimension(2))

	vector, err := e.Embed(context.Background(), "limitation period")

	require.NoError(t, err)
	assert.InDelta(t, 0.6, vector[0], 1e-9)
	assert.InDelta(t, 0.8, vector[1], 1e-9)
}

func TestGeminiEmbedder_EmbedBatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasSuffix(r.URL.Path, ":batchEmbedContents"))

		var req batchEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 2)
		assert.Equal(t, "RETRIEVAL_DOCUMENT", req.Requests[0].TaskType)

		json.NewEncoder(w).Encode(batchEmbeddingResponse{
			Embeddings: []embeddingValues{
				{Values: []float64{1, 0}},
				{Values: []float64{0, 2}},
			},
		})
	}))
	defer server.Close()

	e := NewGeminiEmbedder("test-key", WithBaseURL(server.URL), WithDimension(2))

	vectors, err := e.EmbedBatch(context.Background(), []string{"chunk one", "chunk two"})

	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float64{1, 0}, vectors[0])
	assert.Equal(t, []float64{0, 1}, vectors[1])
}

func TestGeminiEmbedder_DimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(embeddingResponse{
			Embedding: embeddingValues{Values: []float64{1, 2, 3}},
		})
	}))
	defer server.Close()

	e := NewGeminiEmbedder("test-key", WithBaseURL(server.URL), WithDimension(2))

	_, err := e.Embed(context.Background(), "limitation period")

	var eerr *models.EmbeddingError
	require.ErrorAs(t, err, &eerr)
	assert.Contains(t, err.Error(), "expected 2 dimensions")
}

func TestGeminiEmbedder_BatchCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(batchEmbeddingResponse{
			Embeddings: []embeddingValues{{Values: []float64{1, 0}}},
		})
	}))
	defer server.Close()

	e := NewGeminiEmbedder("test-key", WithBaseURL(server.URL), WithDimension(2))

	_, err := e.EmbedBatch(context.Background(), []string{"chunk one", "chunk two"})

	var eerr *models.EmbeddingError
	require.ErrorAs(t, err, &eerr)
}

func TestGeminiEmbedder_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"quota exceeded"}}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	e := NewGeminiEmbedder("test-key", WithBaseURL(server.URL), WithDimension(2))

	_, err := e.Embed(context.Background(), "limitation period")

	var eerr *models.EmbeddingError
	require.ErrorAs(t, err, &eerr)
	assert.Contains(t, err.Error(), "429")
}

func TestGeminiEmbedder_EmbedBatchEmptyInput(t *testing.T) {
	e := NewGeminiEmbedder("test-key")

	vectors, err := e.EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vectors)
}
