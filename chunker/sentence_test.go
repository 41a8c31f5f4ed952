package chunker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegexSegmenter_SplitsSentences(t *testing.T) {
	s := NewRegexSegmenter()

	sentences := s.Segment("The appeal is allowed. Costs follow the event. Is there more?")

	assert.Equal(t, []string{
		"The appeal is allowed.",
		"Costs follow the event.",
		"Is there more?",
	}, sentences)
}

func TestRegexSegmenter_NoTerminalPunctuation(t *testing.T) {
	s := NewRegexSegmenter()

	sentences := s.Segment("  heading without punctuation  ")

	assert.Equal(t, []string{"heading without punctuation"}, sentences)
}

func TestRegexSegmenter_EmptyInput(t *testing.T) {
	s := NewRegexSegmenter()

	assert.Nil(t, s.Segment(""))
	assert.Nil(t, s.Segment("   \n\t  "))
}
