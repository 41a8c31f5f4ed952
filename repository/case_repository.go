package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"caselaw-backend/models"

	"github.com/google/uuid"
)

// CaseRepository handles database operations for case records.
type CaseRepository struct {
	db DB
}

// NewCaseRepository creates a new case repository.
func NewCaseRepository(db DB) *CaseRepository {
	return &CaseRepository{db: db}
}

// StoreCase inserts the case header and fills in the store-assigned ID.
// The insert either commits whole or not at all; there is no partial
// case header state.
func (r *CaseRepository) StoreCase(ctx context.Context, c *models.Case) error {
	courtJSON, err := json.Marshal(c.Court)
	if err != nil {
		return &models.StorageError{Op: "marshal court", Err: err}
	}

	metadata := c.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return &models.StorageError{Op: "marshal metadata", Err: err}
	}

	query := `
		INSERT INTO cases (case_number, title, date, court, full_text, metadata)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	err = r.db.QueryRow(
		ctx, query,
		c.CaseNumber,
		c.Title,
		c.Date.Time,
		string(courtJSON),
		c.FullText,
		string(metadataJSON),
	).Scan(&c.ID)

	if err != nil {
		return &models.StorageError{Op: "insert case", Err: err}
	}

	return nil
}

// GetByID retrieves a case by its store-assigned ID.
func (r *CaseRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Case, error) {
	c := &models.Case{}
	var date time.Time
	var courtJSON, metadataJSON []byte

	query := `
		SELECT id, case_number, title, date, court, full_text, metadata
		FROM cases
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID,
		&c.CaseNumber,
		&c.Title,
		&date,
		&courtJSON,
		&c.FullText,
		&metadataJSON,
	)
	if err != nil {
		return nil, &models.StorageError{Op: fmt.Sprintf("get case %s", id), Err: err}
	}

	c.Date = models.Date{Time: date}
	if err := json.Unmarshal(courtJSON, &c.Court); err != nil {
		return nil, &models.StorageError{Op: "unmarshal court", Err: err}
	}
	if err := json.Unmarshal(metadataJSON, &c.Metadata); err != nil {
		return nil, &models.StorageError{Op: "unmarshal metadata", Err: err}
	}

	return c, nil
}
