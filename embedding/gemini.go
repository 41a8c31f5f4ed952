package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"caselaw-backend/models"
)

const (
	defaultBaseURL   = "https://generativelanguage.googleapis.com"
	defaultModel     = "gemini-embedding-001"
	defaultDimension = 768

	// Google's batchEmbedContents request limit.
	maxBatchSize = 100
)

type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

type embeddingResponse struct {
	Embedding embeddingValues `json:"embedding"`
}

// The batch API returns values without the nested "embedding" key.
type embeddingValues struct {
	Values []float64 `json:"values"`
}

type batchEmbeddingRequest struct {
	Requests []embeddingRequest `json:"requests"`
}

type batchEmbeddingResponse struct {
	Embeddings []embeddingValues `json:"embeddings"`
}

// GeminiEmbedder calls the Gemini embedding REST endpoints.
type GeminiEmbedder struct {
	apiKey    string
	model     string
	baseURL   string
	dimension int
	client    *http.Client
}

// GeminiOption is a functional option for GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder)

// WithModel overrides the embedding model name.
func WithModel(model string) GeminiOption {
	return func(e *GeminiEmbedder) {
		e.model = model
	}
}

// WithBaseURL points the embedder at a different API host.
func WithBaseURL(baseURL string) GeminiOption {
	return func(e *GeminiEmbedder) {
		e.baseURL = baseURL
	}
}

// WithDimension overrides the output dimensionality.
func WithDimension(dimension int) GeminiOption {
	return func(e *GeminiEmbedder) {
		e.dimension = dimension
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) GeminiOption {
	return func(e *GeminiEmbedder) {
		e.client = client
	}
}

// NewGeminiEmbedder creates an embedder for gemini-embedding-001 with
// 768-dimension output.
func NewGeminiEmbedder(apiKey string, opts ...GeminiOption) *GeminiEmbedder {
	e := &GeminiEmbedder{
		apiKey:    apiKey,
		model:     defaultModel,
		baseURL:   defaultBaseURL,
		dimension: defaultDimension,
		client:    &http.Client{Timeout: 300 * time.Second},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Dimension reports the configured output dimensionality.
func (e *GeminiEmbedder) Dimension() int {
	return e.dimension
}

// Embed embeds one query string with the RETRIEVAL_QUERY task type.
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model:                "models/" + e.model,
		Content:              contentInput{Parts: []partInput{{Text: text}}},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: e.dimension,
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:embedContent", e.baseURL, e.model)
	body, err := e.post(ctx, url, reqBody)
	if err != nil {
		return nil, err
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &models.EmbeddingError{Op: "decode response", Err: err}
	}

	vector := apiResp.Embedding.Values
	if len(vector) != e.dimension {
		return nil, &models.EmbeddingError{
			Op:  "embed",
			Err: fmt.Errorf("expected %d dimensions, got %d", e.dimension, len(vector)),
		}
	}

	normalize(vector)
	return vector, nil
}

// EmbedBatch embeds document chunks with the RETRIEVAL_DOCUMENT task
// type, splitting inputs into API-sized batches.
func (e *GeminiEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	vectors := make([][]float64, 0, len(texts))

	for start := 0; start < len(texts); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}

		requests := make([]embeddingRequest, 0, end-start)
		for _, text := range texts[start:end] {
			requests = append(requests, embeddingRequest{
				Model:                "models/" + e.model,
				Content:              contentInput{Parts: []partInput{{Text: text}}},
				TaskType:             "RETRIEVAL_DOCUMENT",
				OutputDimensionality: e.dimension,
			})
		}

		url := fmt.Sprintf("%s/v1beta/models/%s:batchEmbedContents", e.baseURL, e.model)
		body, err := e.post(ctx, url, batchEmbeddingRequest{Requests: requests})
		if err != nil {
			return nil, err
		}

		var apiResp batchEmbeddingResponse
		if err := json.Unmarshal(body, &apiResp); err != nil {
			return nil, &models.EmbeddingError{Op: "decode batch response", Err: err}
		}

		if len(apiResp.Embeddings) != end-start {
			return nil, &models.EmbeddingError{
				Op:  "embed batch",
				Err: fmt.Errorf("got %d embeddings for %d inputs", len(apiResp.Embeddings), end-start),
			}
		}

		for i, item := range apiResp.Embeddings {
			if len(item.Values) != e.dimension {
				return nil, &models.EmbeddingError{
					Op:  "embed batch",
					Err: fmt.Errorf("input %d: expected %d dimensions, got %d", start+i, e.dimension, len(item.Values)),
				}
			}
			normalize(item.Values)
			vectors = append(vectors, item.Values)
		}
	}

	return vectors, nil
}

func (e *GeminiEmbedder) post(ctx context.Context, url string, payload interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, &models.EmbeddingError{Op: "marshal request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, &models.EmbeddingError{Op: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &models.EmbeddingError{Op: "send request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &models.EmbeddingError{Op: "read response", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &models.EmbeddingError{
			Op:  "call API",
			Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body)),
		}
	}

	return body, nil
}

// normalize rescales to unit L2 norm, required for output dimensions
// below 3072.
func normalize(vector []float64) {
	var sumSq float64
	for _, v := range vector {
		sumSq += v * v
	}
	if sumSq == 0 {
		return
	}

	norm := math.Sqrt(sumSq)
	for i := range vector {
		vector[i] /= norm
	}
}
