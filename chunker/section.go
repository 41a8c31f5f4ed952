package chunker

import (
	"regexp"
	"sort"
	"strings"

	"caselaw-backend/models"
)

// SectionBoundary marks where a detected section heading starts and
// which label it carries.
type SectionBoundary struct {
	Type  string
	Start int
}

// SectionDetector finds section boundaries in a judgment. Heading
// detection is heuristic, so it sits behind an interface; a classifier
// can replace the pattern matcher without touching the chunker.
type SectionDetector interface {
	DetectSections(text string) []SectionBoundary
}

// SectionPattern pairs a section label with the heading phrases that
// announce it. Callers composing their own sets must pick patterns that
// do not overlap; matches are ordered by position only, never deduplicated.
type SectionPattern struct {
	Type    string
	Pattern *regexp.Regexp
}

// DefaultSectionPatterns returns the heading heuristics for common
// judgment layouts.
func DefaultSectionPatterns() []SectionPattern {
	return []SectionPattern{
		{models.SectionFacts, regexp.MustCompile(`(?i)(brief\s+facts|statement\s+of\s+facts|factual\s+background)`)},
		{models.SectionIssues, regexp.MustCompile(`(?i)(issues?(\s+involved)?|questions?\s+of\s+law)`)},
		{models.SectionArguments, regexp.MustCompile(`(?i)(arguments?|submissions?|contentions?)`)},
		{models.SectionAnalysis, regexp.MustCompile(`(?i)(analysis|discussion|reasoning)`)},
		{models.SectionHolding, regexp.MustCompile(`(?i)(holding|conclusion|order|judgment|decree)`)},
		{models.SectionHeadnotes, regexp.MustCompile(`(?i)(headnotes?|syllabus|synopsis)`)},
	}
}

// PatternSectionDetector matches heading keywords case-insensitively.
type PatternSectionDetector struct {
	patterns []SectionPattern
}

func NewPatternSectionDetector(patterns []SectionPattern) *PatternSectionDetector {
	if len(patterns) == 0 {
		patterns = DefaultSectionPatterns()
	}
	return &PatternSectionDetector{patterns: patterns}
}

// DetectSections returns every heading match across all patterns, sorted
// by start offset ascending.
func (d *PatternSectionDetector) DetectSections(text string) []SectionBoundary {
	var boundaries []SectionBoundary
	for _, p := range d.patterns {
		for _, loc := range p.Pattern.FindAllStringIndex(text, -1) {
			boundaries = append(boundaries, SectionBoundary{
				Type:  p.Type,
				Start: loc[0],
			})
		}
	}

	sort.SliceStable(boundaries, func(i, j int) bool {
		return boundaries[i].Start < boundaries[j].Start
	})
	return boundaries
}

// SectionChunker packs sentences into overlapping windows per detected
// section.
type SectionChunker struct {
	detector         SectionDetector
	segmenter        SentenceSegmenter
	chunkSize        int
	overlapSentences int
}

// SectionChunkerOption is a functional option for SectionChunker.
type SectionChunkerOption func(*SectionChunker)

// WithSectionDetector replaces the default pattern-based detector.
func WithSectionDetector(d SectionDetector) SectionChunkerOption {
	return func(c *SectionChunker) {
		c.detector = d
	}
}

// WithSentenceSegmenter replaces the default regex segmenter.
func WithSentenceSegmenter(s SentenceSegmenter) SectionChunkerOption {
	return func(c *SectionChunker) {
		c.segmenter = s
	}
}

// NewSectionChunker creates a section chunker. chunkSize is the word
// budget per chunk (default 500); overlapSentences is how many trailing
// sentences seed the next chunk (default 2).
func NewSectionChunker(chunkSize, overlapSentences int, opts ...SectionChunkerOption) *SectionChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlapSentences < 0 {
		overlapSentences = 2
	}
	c := &SectionChunker{
		detector:         NewPatternSectionDetector(nil),
		segmenter:        NewRegexSegmenter(),
		chunkSize:        chunkSize,
		overlapSentences: overlapSentences,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chunk splits the full judgment text into section-labeled chunks. When
// no heading is detected the whole text becomes a single body section.
func (c *SectionChunker) Chunk(text string) []models.Chunk {
	boundaries := c.detector.DetectSections(text)
	if len(boundaries) == 0 {
		return c.chunkSection(text, models.SectionBody)
	}

	var chunks []models.Chunk
	for i, boundary := range boundaries {
		end := len(text)
		if i < len(boundaries)-1 {
			end = boundaries[i+1].Start
		}
		chunks = append(chunks, c.chunkSection(text[boundary.Start:end], boundary.Type)...)
	}
	return chunks
}

// chunkSection greedily accumulates sentences while the running word
// count stays within the budget. On overflow the chunk is closed and the
// trailing overlap sentences seed the next one, so context carries across
// chunk breaks. A single sentence over the budget forms its own chunk.
func (c *SectionChunker) chunkSection(sectionText, sectionType string) []models.Chunk {
	sentences := c.segmenter.Segment(sectionText)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []models.Chunk
	var current []string
	currentLength := 0

	for _, sentence := range sentences {
		sentenceLength := len(strings.Fields(sentence))

		if currentLength+sentenceLength > c.chunkSize && len(current) > 0 {
			chunks = append(chunks, sectionChunk(current, currentLength, sectionType))

			overlap := current
			if len(current) > c.overlapSentences {
				overlap = current[len(current)-c.overlapSentences:]
			}
			current = append(append([]string(nil), overlap...), sentence)
			currentLength = 0
			for _, s := range current {
				currentLength += len(strings.Fields(s))
			}
		} else {
			current = append(current, sentence)
			currentLength += sentenceLength
		}
	}

	if len(current) > 0 {
		chunks = append(chunks, sectionChunk(current, currentLength, sectionType))
	}
	return chunks
}

func sectionChunk(sentences []string, length int, sectionType string) models.Chunk {
	return models.Chunk{
		Text: strings.Join(sentences, " "),
		Metadata: models.ChunkMetadata{
			SectionType: sectionType,
			Length:      length,
		},
	}
}
