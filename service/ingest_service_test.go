package service

import (
	"context"
	"testing"
	"time"

	"caselaw-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestService_RejectsNilCase(t *testing.T) {
	s := NewIngestService()

	_, err := s.Process(context.Background(), nil)

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestIngestService_RejectsEmptyTitle(t *testing.T) {
	s := NewIngestService()

	_, err := s.Process(context.Background(), &models.Case{
		CaseNumber: "CA-1",
		Title:      "   ",
		FullText:   "The appeal is allowed.",
	})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "title")
}

func TestIngestService_RejectsEmptyFullText(t *testing.T) {
	s := NewIngestService()

	_, err := s.Process(context.Background(), &models.Case{
		CaseNumber: "CA-1",
		Title:      "A v B",
		FullText:   "",
	})

	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, err.Error(), "full_text")
}

func TestIngestService_RequiresDatabase(t *testing.T) {
	s := NewIngestService()

	_, err := s.Process(context.Background(), &models.Case{
		CaseNumber: "CA-1",
		Title:      "A v B",
		FullText:   "The appeal is allowed.",
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database not set")
}

func TestIngestService_BatchIsolatesFailures(t *testing.T) {
	s := NewIngestService()

	results := s.BatchProcess(context.Background(), []*models.Case{
		nil,
		{CaseNumber: "CA-2", Title: "", FullText: "Some text."},
	})

	require.Len(t, results, 2)
	assert.Equal(t, 0, results[0].Index)
	assert.NotEmpty(t, results[0].Error)
	assert.Nil(t, results[0].CaseID)
	assert.Equal(t, 1, results[1].Index)
	assert.NotEmpty(t, results[1].Error)
	assert.Nil(t, results[1].CaseID)
}

func TestIngestService_TimeoutOption(t *testing.T) {
	s := NewIngestService(IngestWithEmbedTimeout(5 * time.Second))

	assert.Equal(t, 5*time.Second, s.embedTimeout)
}
