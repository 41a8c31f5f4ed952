package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"caselaw-backend/models"

	"golang.org/x/sync/errgroup"
)

// Search modes accepted by SearchService.Search.
const (
	SearchModeVector = "vector"
	SearchModeHybrid = "hybrid"
)

const defaultSimilarityThreshold = 0.7

// SearchBackend is the pair of retrieval primitives the hybrid engine
// fuses. *repository.EmbeddingRepository satisfies it.
type SearchBackend interface {
	SimilaritySearch(ctx context.Context, queryText string, topK int, similarityThreshold float64) ([]models.SearchResult, error)
	LexicalSearch(ctx context.Context, queryText string, topK int) ([]models.SearchResult, error)
}

// SearchService answers queries against the chunk store, either by
// vector similarity alone or by fusing vector and lexical results.
type SearchService struct {
	backend   SearchBackend
	threshold float64
}

// SearchServiceOption is a functional option for SearchService.
type SearchServiceOption func(*SearchService)

// SearchWithBackend sets the retrieval backend.
func SearchWithBackend(backend SearchBackend) SearchServiceOption {
	return func(s *SearchService) {
		s.backend = backend
	}
}

// SearchWithThreshold overrides the similarity cutoff (default 0.7).
func SearchWithThreshold(threshold float64) SearchServiceOption {
	return func(s *SearchService) {
		s.threshold = threshold
	}
}

// NewSearchService creates a new search service.
func NewSearchService(opts ...SearchServiceOption) *SearchService {
	s := &SearchService{threshold: defaultSimilarityThreshold}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs a query in the requested mode and returns at most topK
// results, best first.
func (s *SearchService) Search(ctx context.Context, query string, topK int, mode string) ([]models.SearchResult, error) {
	if s.backend == nil {
		return nil, errors.New("search backend not set")
	}
	if strings.TrimSpace(query) == "" {
		return nil, &models.ValidationError{Reason: "query is empty"}
	}
	if topK <= 0 {
		topK = 10
	}

	switch mode {
	case SearchModeVector:
		results, err := s.backend.SimilaritySearch(ctx, query, topK, s.threshold)
		if err != nil {
			return nil, &models.SearchError{Err: err}
		}
		return results, nil
	case SearchModeHybrid, "":
		return s.hybridSearch(ctx, query, topK)
	default:
		return nil, &models.ValidationError{Reason: fmt.Sprintf("unknown search mode %q", mode)}
	}
}

// hybridSearch issues both retrieval primitives concurrently and fuses
// the result sets. One failing backend is logged and degraded around;
// both failing is fatal.
func (s *SearchService) hybridSearch(ctx context.Context, query string, topK int) ([]models.SearchResult, error) {
	var vectorResults, lexicalResults []models.SearchResult
	var vectorErr, lexicalErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		vectorResults, vectorErr = s.backend.SimilaritySearch(gctx, query, topK, s.threshold)
		return nil
	})
	g.Go(func() error {
		lexicalResults, lexicalErr = s.backend.LexicalSearch(gctx, query, topK)
		return nil
	})
	g.Wait()

	if vectorErr != nil && lexicalErr != nil {
		return nil, &models.SearchError{Err: errors.Join(vectorErr, lexicalErr)}
	}
	if vectorErr != nil {
		log.Printf("hybrid search: vector backend failed, falling back to lexical: %v", vectorErr)
	}
	if lexicalErr != nil {
		log.Printf("hybrid search: lexical backend failed, falling back to vector: %v", lexicalErr)
	}

	return fuseResults(vectorResults, lexicalResults, topK), nil
}

// fuseResults merges the two result sets into one ranking. Lexical
// ts_rank scores are unbounded, so they are min-max normalized into
// [0,1] before they compete with cosine similarities. A (case, chunk)
// pair present in both sets keeps the vector entry: its score is the
// bounded, directly interpretable one.
func fuseResults(vectorResults, lexicalResults []models.SearchResult, topK int) []models.SearchResult {
	type resultKey struct {
		caseNumber string
		textChunk  string
	}

	seen := make(map[resultKey]bool, len(vectorResults))
	combined := make([]models.SearchResult, 0, len(vectorResults)+len(lexicalResults))

	for _, r := range vectorResults {
		key := resultKey{r.CaseNumber, r.TextChunk}
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, r)
	}

	for _, r := range normalizeScores(lexicalResults) {
		key := resultKey{r.CaseNumber, r.TextChunk}
		if seen[key] {
			continue
		}
		seen[key] = true
		combined = append(combined, r)
	}

	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Similarity > combined[j].Similarity
	})

	if len(combined) > topK {
		combined = combined[:topK]
	}
	return combined
}

// normalizeScores min-max rescales scores into [0,1]. When every score
// is identical the set collapses to 1.0: it is the best lexical evidence
// available for the query.
func normalizeScores(results []models.SearchResult) []models.SearchResult {
	if len(results) == 0 {
		return results
	}

	min, max := results[0].Similarity, results[0].Similarity
	for _, r := range results[1:] {
		if r.Similarity < min {
			min = r.Similarity
		}
		if r.Similarity > max {
			max = r.Similarity
		}
	}

	normalized := make([]models.SearchResult, len(results))
	for i, r := range results {
		if max > min {
			r.Similarity = (r.Similarity - min) / (max - min)
		} else {
			r.Similarity = 1.0
		}
		normalized[i] = r
	}
	return normalized
}
