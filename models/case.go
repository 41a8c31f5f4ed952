package models

import (
	"github.com/google/uuid"
)

// Court identifies the court that issued a judgment. All fields are
// optional; many older judgments only record the court name.
type Court struct {
	Name         string `json:"name"`
	Jurisdiction string `json:"jurisdiction,omitempty"`
	BenchType    string `json:"bench_type,omitempty"`
}

// Case represents one ingested legal judgment. The ID is assigned by the
// store on insert and the record is never mutated afterwards.
type Case struct {
	ID         uuid.UUID         `json:"id"`
	CaseNumber string            `json:"case_number"`
	Title      string            `json:"title"`
	Date       Date              `json:"date"`
	Court      Court             `json:"court"`
	FullText   string            `json:"full_text"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

// SearchResult is one ranked row returned by similarity, lexical or
// hybrid search. Similarity is in [0,1] once the search service has
// normalized lexical ranks; raw lexical ranks are unbounded.
type SearchResult struct {
	CaseNumber string  `json:"case_number"`
	Title      string  `json:"title"`
	Court      string  `json:"court"`
	TextChunk  string  `json:"text_chunk"`
	Similarity float64 `json:"similarity"`
}

// BatchResult reports the outcome of one item of a batch ingestion.
// Exactly one of CaseID and Error is set.
type BatchResult struct {
	Index  int        `json:"index"`
	CaseID *uuid.UUID `json:"case_id,omitempty"`
	Error  string     `json:"error,omitempty"`
}
