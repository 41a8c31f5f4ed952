package models

// Embedding types distinguish the two chunking passes run over a judgment.
const (
	EmbeddingTypeSection  = "section"
	EmbeddingTypeCitation = "citation"
)

// Section labels assigned by the section chunker. Body is the fallback
// when no heading is detected in the whole document.
const (
	SectionFacts     = "facts"
	SectionIssues    = "issues"
	SectionArguments = "arguments"
	SectionAnalysis  = "analysis"
	SectionHolding   = "holding"
	SectionHeadnotes = "headnotes"
	SectionBody      = "body"
)

// ChunkMetadata is the per-chunk retrieval metadata stored as JSONB next
// to the embedding. Section chunks carry SectionType; citation chunks
// carry Citations. Length is the chunk's word count in both cases.
type ChunkMetadata struct {
	SectionType string   `json:"section_type,omitempty"`
	Citations   []string `json:"citations,omitempty"`
	Length      int      `json:"length"`
}

// Chunk is a bounded span of judgment text produced by one of the
// chunkers. Chunks are immutable once created; recomputing an embedding
// means recreating the chunk.
type Chunk struct {
	Text     string        `json:"text"`
	Metadata ChunkMetadata `json:"metadata"`
}
