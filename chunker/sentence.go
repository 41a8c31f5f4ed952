package chunker

import (
	"regexp"
	"strings"
)

// SentenceSegmenter splits raw text into an ordered sequence of
// sentences. It is an external capability consumed by the section
// chunker; swap the implementation for a real tokenizer without touching
// the windowing logic.
type SentenceSegmenter interface {
	Segment(text string) []string
}

// RegexSegmenter splits on sentence-final punctuation. Good enough for
// judgment prose, which is heavy on full stops and question marks.
type RegexSegmenter struct {
	splitter *regexp.Regexp
}

func NewRegexSegmenter() *RegexSegmenter {
	return &RegexSegmenter{
		splitter: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Segment returns trimmed sentences. Text with no sentence-final
// punctuation comes back as a single sentence; whitespace-only input
// yields nothing.
func (s *RegexSegmenter) Segment(text string) []string {
	raw := s.splitter.FindAllString(text, -1)
	if len(raw) == 0 {
		trimmed := strings.TrimSpace(text)
		if trimmed == "" {
			return nil
		}
		return []string{trimmed}
	}

	sentences := make([]string, 0, len(raw))
	for _, sentence := range raw {
		sentence = strings.TrimSpace(sentence)
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
	}
	return sentences
}
