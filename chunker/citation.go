package chunker

import (
	"regexp"
	"strings"

	"caselaw-backend/models"
)

// defaultCitationPattern matches numeric-volume/page citations such as
// "12 SCMR 345" or "[2019] PLD 102".
var defaultCitationPattern = regexp.MustCompile(`(\d+\s+\w+\s+\d+|\[\d+\]\s+\w+\s+\d+)`)

// CitationChunker packs judgment text into overlapping word windows
// while lifting legal citations out of the prose into chunk metadata.
// Citations never consume word budget and are never split mid-token;
// each one is attributed to the chunk whose prose it supports.
type CitationChunker struct {
	pattern      *regexp.Regexp
	chunkSize    int
	overlapWords int
}

// NewCitationChunker creates a citation chunker. chunkSize is the word
// budget per chunk (default 500); overlapWords is how many trailing
// words seed the next chunk (default 50). A nil pattern selects the
// default volume/page matcher.
func NewCitationChunker(chunkSize, overlapWords int, pattern *regexp.Regexp) *CitationChunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlapWords < 0 {
		overlapWords = 50
	}
	if pattern == nil {
		pattern = defaultCitationPattern
	}
	return &CitationChunker{
		pattern:      pattern,
		chunkSize:    chunkSize,
		overlapWords: overlapWords,
	}
}

// segment is either a citation or a run of literal prose between
// citations.
type segment struct {
	text       string
	isCitation bool
}

func (c *CitationChunker) split(text string) []segment {
	var segments []segment
	last := 0
	for _, loc := range c.pattern.FindAllStringIndex(text, -1) {
		if loc[0] > last {
			segments = append(segments, segment{text: text[last:loc[0]]})
		}
		segments = append(segments, segment{text: text[loc[0]:loc[1]], isCitation: true})
		last = loc[1]
	}
	if last < len(text) {
		segments = append(segments, segment{text: text[last:]})
	}
	return segments
}

// ChunkWithCitations walks the text segment by segment. Citation
// segments are buffered and attached to the chunk being built when it
// closes; literal words accumulate until the budget would be exceeded,
// at which point the chunk closes and its trailing overlapWords words
// seed the next one.
func (c *CitationChunker) ChunkWithCitations(text string) []models.Chunk {
	var chunks []models.Chunk
	var current []string
	var pending []string

	for _, seg := range c.split(text) {
		if seg.isCitation {
			pending = append(pending, strings.TrimSpace(seg.text))
			continue
		}

		for _, word := range strings.Fields(seg.text) {
			if len(current)+1 > c.chunkSize && len(current) > 0 {
				chunks = append(chunks, citationChunk(current, pending))
				pending = nil

				overlap := current
				if len(current) > c.overlapWords {
					overlap = current[len(current)-c.overlapWords:]
				}
				current = append([]string(nil), overlap...)
			}
			current = append(current, word)
		}
	}

	if len(current) > 0 || len(pending) > 0 {
		chunks = append(chunks, citationChunk(current, pending))
	}
	return chunks
}

func citationChunk(words, citations []string) models.Chunk {
	return models.Chunk{
		Text: strings.Join(words, " "),
		Metadata: models.ChunkMetadata{
			Citations: citations,
			Length:    len(words),
		},
	}
}
