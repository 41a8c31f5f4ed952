package chunker

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCitationChunker_LiftsCitationsIntoMetadata(t *testing.T) {
	c := NewCitationChunker(500, 50, nil)

	chunks := c.ChunkWithCitations(
		"The court in 12 SCMR 345 held that contracts bind. See also [2019] PLD 102 for details.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "The court in held that contracts bind. See also for details.", chunks[0].Text)
	assert.Equal(t, []string{"12 SCMR 345", "[2019] PLD 102"}, chunks[0].Metadata.Citations)
	assert.Equal(t, 11, chunks[0].Metadata.Length)
	assert.NotContains(t, chunks[0].Text, "SCMR")
	assert.NotContains(t, chunks[0].Text, "PLD")
}

func TestCitationChunker_BudgetAndTrailingWordOverlap(t *testing.T) {
	c := NewCitationChunker(50, 10, nil)

	words := make([]string, 120)
	for i := range words {
		words[i] = fmt.Sprintf("w%03d", i+1)
	}
	chunks := c.ChunkWithCitations(strings.Join(words, " "))

	require.Len(t, chunks, 3)
	assert.Equal(t, 50, chunks[0].Metadata.Length)
	assert.Equal(t, 50, chunks[1].Metadata.Length)
	assert.Equal(t, 40, chunks[2].Metadata.Length)

	// Each chunk after the first starts with the previous chunk's tail.
	for i := 1; i < len(chunks); i++ {
		prev := strings.Fields(chunks[i-1].Text)
		curr := strings.Fields(chunks[i].Text)
		assert.Equal(t, prev[len(prev)-10:], curr[:10])
	}
}

func TestCitationChunker_CitationBelongsToExactlyOneChunk(t *testing.T) {
	c := NewCitationChunker(50, 5, nil)

	var b strings.Builder
	for i := 1; i <= 55; i++ {
		fmt.Fprintf(&b, "w%03d ", i)
	}
	b.WriteString("10 PLD 20 ")
	for i := 56; i <= 60; i++ {
		fmt.Fprintf(&b, "w%03d ", i)
	}
	chunks := c.ChunkWithCitations(b.String())

	require.Len(t, chunks, 2)
	assert.Empty(t, chunks[0].Metadata.Citations)
	assert.Equal(t, []string{"10 PLD 20"}, chunks[1].Metadata.Citations)

	total := 0
	for _, chunk := range chunks {
		total += len(chunk.Metadata.Citations)
		assert.NotContains(t, chunk.Text, "PLD")
	}
	assert.Equal(t, 1, total)
}

func TestCitationChunker_TrailingCitationStillEmitted(t *testing.T) {
	c := NewCitationChunker(500, 50, nil)

	chunks := c.ChunkWithCitations("Some words 12 SCMR 345")

	require.Len(t, chunks, 1)
	assert.Equal(t, "Some words", chunks[0].Text)
	assert.Equal(t, []string{"12 SCMR 345"}, chunks[0].Metadata.Citations)
	assert.Equal(t, 2, chunks[0].Metadata.Length)
}

func TestCitationChunker_CitationOnlyText(t *testing.T) {
	c := NewCitationChunker(500, 50, nil)

	chunks := c.ChunkWithCitations("12 SCMR 345")

	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Text)
	assert.Equal(t, []string{"12 SCMR 345"}, chunks[0].Metadata.Citations)
	assert.Zero(t, chunks[0].Metadata.Length)
}

func TestCitationChunker_EmptyText(t *testing.T) {
	c := NewCitationChunker(500, 50, nil)

	assert.Empty(t, c.ChunkWithCitations(""))
}
