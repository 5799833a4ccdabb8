package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// RecordRepository reads the append-only academic record log.
type RecordRepository struct {
	db *sqlx.DB
}

// NewRecordRepository constructs the repository.
func NewRecordRepository(db *sqlx.DB) *RecordRepository {
	return &RecordRepository{db: db}
}

// ListByStudent returns the student's full history oldest first, so that
// later rows supersede earlier ones for the same subject and term.
func (r *RecordRepository) ListByStudent(ctx context.Context, studentID string) (models.History, error) {
	const query = `SELECT id, student_id, subject_code, section, term, academic_year, grade, created_at
        FROM academic_records WHERE student_id = $1 ORDER BY created_at ASC`
	var history models.History
	if err := r.db.SelectContext(ctx, &history, query, studentID); err != nil {
		return nil, fmt.Errorf("list academic records: %w", err)
	}
	return history, nil
}
