package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// ClearanceRepository persists the per-term clearance gate.
type ClearanceRepository struct {
	db *sqlx.DB
}

// NewClearanceRepository constructs the repository.
func NewClearanceRepository(db *sqlx.DB) *ClearanceRepository {
	return &ClearanceRepository{db: db}
}

// Find returns the clearance record for (student, term, academic year).
func (r *ClearanceRepository) Find(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.ClearanceRecord, error) {
	const query = `SELECT id, student_id, term, academic_year, cleared, updated_at
        FROM clearance_records WHERE student_id = $1 AND term = $2 AND academic_year = $3`
	var record models.ClearanceRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, term, academicYear); err != nil {
		return nil, err
	}
	return &record, nil
}

// Set upserts the cleared flag for (student, term, academic year).
func (r *ClearanceRepository) Set(ctx context.Context, record *models.ClearanceRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	record.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO clearance_records (id, student_id, term, academic_year, cleared, updated_at)
        VALUES (:id, :student_id, :term, :academic_year, :cleared, :updated_at)
        ON CONFLICT (student_id, term, academic_year)
        DO UPDATE SET cleared = EXCLUDED.cleared, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("set clearance: %w", err)
	}
	return nil
}
