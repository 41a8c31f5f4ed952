package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"caselaw-backend/chunker"
	"caselaw-backend/embedding"
	"caselaw-backend/models"
	"caselaw-backend/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// IngestService orchestrates end-to-end ingestion of one judgment:
// validation, both chunking passes, embedding and a single transaction
// covering the case header and every embedding row. Concurrent ingestion
// of different cases is safe; ingesting the same case identity twice
// concurrently is undefined and may create duplicate case rows.
type IngestService struct {
	db              *pgxpool.Pool
	embedder        embedding.Embedder
	sectionChunker  *chunker.SectionChunker
	citationChunker *chunker.CitationChunker
	embedTimeout    time.Duration
}

// IngestServiceOption is a functional option for IngestService.
type IngestServiceOption func(*IngestService)

// IngestWithDatabase sets the connection pool.
func IngestWithDatabase(db *pgxpool.Pool) IngestServiceOption {
	return func(s *IngestService) {
		s.db = db
	}
}

// IngestWithEmbedder sets the embedding function.
func IngestWithEmbedder(embedder embedding.Embedder) IngestServiceOption {
	return func(s *IngestService) {
		s.embedder = embedder
	}
}

// IngestWithSectionChunker replaces the default section chunker.
func IngestWithSectionChunker(c *chunker.SectionChunker) IngestServiceOption {
	return func(s *IngestService) {
		s.sectionChunker = c
	}
}

// IngestWithCitationChunker replaces the default citation chunker.
func IngestWithCitationChunker(c *chunker.CitationChunker) IngestServiceOption {
	return func(s *IngestService) {
		s.citationChunker = c
	}
}

// IngestWithEmbedTimeout bounds the embedding-and-store phase of one
// ingestion. Exceeding it surfaces as a TimeoutError.
func IngestWithEmbedTimeout(d time.Duration) IngestServiceOption {
	return func(s *IngestService) {
		s.embedTimeout = d
	}
}

// NewIngestService creates a new ingest service with default chunkers
// (500-word budget, 2-sentence / 50-word overlap).
func NewIngestService(opts ...IngestServiceOption) *IngestService {
	s := &IngestService{
		sectionChunker:  chunker.NewSectionChunker(0, -1),
		citationChunker: chunker.NewCitationChunker(0, -1, nil),
		embedTimeout:    60 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *IngestService) validate(c *models.Case) error {
	if c == nil {
		return &models.ValidationError{Reason: "case is nil"}
	}
	if strings.TrimSpace(c.Title) == "" {
		return &models.ValidationError{Reason: "case title is empty"}
	}
	if strings.TrimSpace(c.FullText) == "" {
		return &models.ValidationError{Reason: "case full_text is empty"}
	}
	return nil
}

// Process ingests one case: stores the header, then the section-chunk
// embeddings, then the citation-chunk embeddings, all inside one
// transaction. On any failure the transaction rolls back and no part of
// the case is visible.
func (s *IngestService) Process(ctx context.Context, c *models.Case) (uuid.UUID, error) {
	if err := s.validate(c); err != nil {
		return uuid.Nil, err
	}
	if s.db == nil {
		return uuid.Nil, errors.New("database not set")
	}
	if s.embedder == nil {
		return uuid.Nil, errors.New("embedder not set")
	}

	sectionChunks := s.sectionChunker.Chunk(c.FullText)
	citationChunks := s.citationChunker.ChunkWithCitations(c.FullText)

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return uuid.Nil, &models.StorageError{Op: "begin transaction", Err: err}
	}
	defer tx.Rollback(ctx)

	caseRepo := repository.NewCaseRepository(tx)
	embeddingRepo := repository.NewEmbeddingRepository(tx, s.embedder)

	opCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	if err := caseRepo.StoreCase(opCtx, c); err != nil {
		return uuid.Nil, s.mapDeadline(err)
	}
	if err := embeddingRepo.StoreEmbeddings(opCtx, c.ID, sectionChunks, models.EmbeddingTypeSection); err != nil {
		return uuid.Nil, s.mapDeadline(err)
	}
	if err := embeddingRepo.StoreEmbeddings(opCtx, c.ID, citationChunks, models.EmbeddingTypeCitation); err != nil {
		return uuid.Nil, s.mapDeadline(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, &models.StorageError{Op: "commit transaction", Err: err}
	}

	return c.ID, nil
}

// mapDeadline reports deadline expiry as a TimeoutError instead of
// whatever error the expiring call happened to return.
func (s *IngestService) mapDeadline(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &models.TimeoutError{Op: "ingest case", Err: err}
	}
	return err
}

// BatchProcess ingests cases one at a time. A failure on one case never
// blocks the others; every item gets its own result carrying either the
// case ID or the error.
func (s *IngestService) BatchProcess(ctx context.Context, cases []*models.Case) []models.BatchResult {
	results := make([]models.BatchResult, 0, len(cases))
	for i, c := range cases {
		caseID, err := s.Process(ctx, c)
		if err != nil {
			log.Printf("batch ingest: case %d failed: %v", i, err)
			results = append(results, models.BatchResult{Index: i, Error: err.Error()})
			continue
		}
		id := caseID
		results = append(results, models.BatchResult{Index: i, CaseID: &id})
	}
	return results
}
