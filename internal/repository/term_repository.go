package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// TermRepository reads term calendar configuration.
type TermRepository struct {
	db *sqlx.DB
}

// NewTermRepository constructs the repository.
func NewTermRepository(db *sqlx.DB) *TermRepository {
	return &TermRepository{db: db}
}

// FindConfig returns the calendar row for (term, academic year).
func (r *TermRepository) FindConfig(ctx context.Context, term models.Term, academicYear string) (*models.TermConfig, error) {
	const query = `SELECT id, term, academic_year, start_date, end_date, enroll_start, enroll_end
        FROM term_configs WHERE term = $1 AND academic_year = $2`
	var cfg models.TermConfig
	if err := r.db.GetContext(ctx, &cfg, query, term, academicYear); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FindCurrent returns the term whose date range contains the instant.
// sql.ErrNoRows means the date falls in a break.
func (r *TermRepository) FindCurrent(ctx context.Context, at time.Time) (*models.TermConfig, error) {
	const query = `SELECT id, term, academic_year, start_date, end_date, enroll_start, enroll_end
        FROM term_configs WHERE start_date <= $1 AND end_date >= $1 ORDER BY start_date DESC LIMIT 1`
	var cfg models.TermConfig
	if err := r.db.GetContext(ctx, &cfg, query, at); err != nil {
		return nil, err
	}
	return &cfg, nil
}
