package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"caselaw-backend/embedding"
	"caselaw-backend/models"

	"github.com/google/uuid"
)

// EmbeddingRepository handles database operations for chunk embeddings:
// inserting embedded chunks and the two retrieval primitives.
type EmbeddingRepository struct {
	db       DB
	embedder embedding.Embedder
}

// NewEmbeddingRepository creates a new embedding repository.
func NewEmbeddingRepository(db DB, embedder embedding.Embedder) *EmbeddingRepository {
	return &EmbeddingRepository{db: db, embedder: embedder}
}

// formatVector formats a vector as a pgvector literal for pgx.
func formatVector(vector []float64) string {
	if len(vector) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(vector))
	for _, v := range vector {
		parts = append(parts, fmt.Sprintf("%.6f", v))
	}
	return "[" + strings.Join(parts, ",") + "]"
}

// StoreEmbeddings embeds the chunk texts in one batched call and
// persists one row per chunk. Calling it again for the same case with a
// different embedding type accumulates rows; nothing is replaced.
func (r *EmbeddingRepository) StoreEmbeddings(
	ctx context.Context,
	caseID uuid.UUID,
	chunks []models.Chunk,
	embeddingType string,
) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := r.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return &models.EmbeddingError{
			Op:  "store embeddings",
			Err: fmt.Errorf("got %d vectors for %d chunks", len(vectors), len(chunks)),
		}
	}

	query := `
		INSERT INTO case_embeddings (case_id, embedding_type, embedding, text_chunk, chunk_metadata)
		VALUES ($1, $2, $3::vector, $4, $5)`

	for i, chunk := range chunks {
		if len(vectors[i]) != r.embedder.Dimension() {
			return &models.EmbeddingError{
				Op:  "store embeddings",
				Err: fmt.Errorf("chunk %d: expected %d dimensions, got %d", i, r.embedder.Dimension(), len(vectors[i])),
			}
		}

		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return &models.StorageError{Op: "marshal chunk metadata", Err: err}
		}

		_, err = r.db.Exec(ctx, query,
			caseID,
			embeddingType,
			formatVector(vectors[i]),
			chunk.Text,
			string(metadataJSON),
		)
		if err != nil {
			return &models.StorageError{Op: fmt.Sprintf("insert %s chunk %d", embeddingType, i), Err: err}
		}
	}

	return nil
}

// SimilaritySearch embeds the query and returns the topK chunks whose
// cosine similarity exceeds the threshold, best first. Similarity is the
// rescaled cosine distance, so scores lie in [0,1]; the HNSW index on
// case_embeddings keeps lookup sublinear.
func (r *EmbeddingRepository) SimilaritySearch(
	ctx context.Context,
	queryText string,
	topK int,
	similarityThreshold float64,
) ([]models.SearchResult, error) {
	vector, err := r.embedder.Embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT
			c.case_number,
			c.title,
			COALESCE(c.court->>'name', '') AS court_name,
			ce.text_chunk,
			1 - (ce.embedding <=> $1::vector) AS similarity
		FROM
			cases c
			JOIN case_embeddings ce ON c.id = ce.case_id
		WHERE
			1 - (ce.embedding <=> $1::vector) > $2
		ORDER BY
			similarity DESC
		LIMIT $3`

	rows, err := r.db.Query(ctx, query, formatVector(vector), similarityThreshold, topK)
	if err != nil {
		return nil, &models.StorageError{Op: "similarity search", Err: err}
	}
	defer rows.Close()

	return scanResults(rows)
}

// LexicalSearch runs a ranked full-text match of the query against each
// case's full text. Ranks are unbounded; callers must normalize before
// comparing them to similarity scores.
func (r *EmbeddingRepository) LexicalSearch(
	ctx context.Context,
	queryText string,
	topK int,
) ([]models.SearchResult, error) {
	query := `
		SELECT
			c.case_number,
			c.title,
			COALESCE(c.court->>'name', '') AS court_name,
			c.full_text AS text_chunk,
			ts_rank_cd(to_tsvector('english', c.full_text),
				plainto_tsquery('english', $1)) AS rank
		FROM
			cases c
		WHERE
			to_tsvector('english', c.full_text) @@
			plainto_tsquery('english', $1)
		ORDER BY
			rank DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, queryText, topK)
	if err != nil {
		return nil, &models.StorageError{Op: "lexical search", Err: err}
	}
	defer rows.Close()

	return scanResults(rows)
}

type resultRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanResults(rows resultRows) ([]models.SearchResult, error) {
	var results []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.CaseNumber, &r.Title, &r.Court, &r.TextChunk, &r.Similarity); err != nil {
			return nil, &models.StorageError{Op: "scan search result", Err: err}
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StorageError{Op: "iterate search results", Err: err}
	}
	return results, nil
}
