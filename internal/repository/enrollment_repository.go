package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// ErrVersionConflict signals that a concurrent writer committed first. The
// caller should reload and retry.
var ErrVersionConflict = errors.New("enrollment record version conflict")

// EnrollmentRepository persists the per-term enrollment workflow record.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

const enrollmentColumns = `id, student_id, academic_year, term, status, total_units, is_enrolled, version, created_at, updated_at`

// FindByStudentTerm returns the unique record for (student, academic year,
// term) with its subject list loaded.
func (r *EnrollmentRepository) FindByStudentTerm(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.EnrollmentRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM enrollment_records WHERE student_id = $1 AND term = $2 AND academic_year = $3`, enrollmentColumns)
	var record models.EnrollmentRecord
	if err := r.db.GetContext(ctx, &record, query, studentID, term, academicYear); err != nil {
		return nil, err
	}
	if err := r.loadSubjects(ctx, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// Create persists a new enrollment record and its subject list.
func (r *EnrollmentRepository) Create(ctx context.Context, record *models.EnrollmentRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now
	if record.Version == 0 {
		record.Version = 1
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create enrollment: %w", err)
	}
	const query = `INSERT INTO enrollment_records (id, student_id, academic_year, term, status, total_units, is_enrolled, version, created_at, updated_at)
        VALUES (:id, :student_id, :academic_year, :term, :status, :total_units, :is_enrolled, :version, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("create enrollment: %w", err)
	}
	if err := r.writeSubjects(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create enrollment: %w", err)
	}
	return nil
}

// SaveTransition atomically writes status, unit total, enrolled flag and the
// subject list. The optimistic version check makes two racing writers resolve
// deterministically: the loser gets ErrVersionConflict and no partial write.
func (r *EnrollmentRepository) SaveTransition(ctx context.Context, record *models.EnrollmentRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enrollment transition: %w", err)
	}

	const query = `UPDATE enrollment_records
        SET status = $1, total_units = $2, is_enrolled = $3, version = version + 1, updated_at = $4
        WHERE id = $5 AND version = $6`
	updatedAt := time.Now().UTC()
	res, err := tx.ExecContext(ctx, query, record.Status, record.TotalUnits, record.IsEnrolled, updatedAt, record.ID, record.Version)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update enrollment status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update enrollment status: %w", err)
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrVersionConflict
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollment_subjects WHERE enrollment_id = $1`, record.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear enrollment subjects: %w", err)
	}
	if err := r.writeSubjects(ctx, tx, record); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enrollment transition: %w", err)
	}
	record.Version++
	record.UpdatedAt = updatedAt
	return nil
}

// ListStatusByTerm returns status views for the term, optionally narrowed to
// specific students. Used by the uncached bulk status query.
func (r *EnrollmentRepository) ListStatusByTerm(ctx context.Context, term models.Term, academicYear string, studentIDs []string) ([]models.StatusView, error) {
	query := `SELECT student_id, term, academic_year, status, id AS enrollment_id
        FROM enrollment_records WHERE term = $1 AND academic_year = $2`
	args := []interface{}{term, academicYear}
	if len(studentIDs) > 0 {
		placeholders := make([]string, len(studentIDs))
		for i, id := range studentIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		query += fmt.Sprintf(" AND student_id IN (%s)", strings.Join(placeholders, ","))
	}
	var views []models.StatusView
	if err := r.db.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, fmt.Errorf("list enrollment statuses: %w", err)
	}
	return views, nil
}

func (r *EnrollmentRepository) loadSubjects(ctx context.Context, record *models.EnrollmentRecord) error {
	const query = `SELECT id, enrollment_id, subject_code, section, units
        FROM enrollment_subjects WHERE enrollment_id = $1 ORDER BY subject_code, section`
	var subjects []models.EnrolledSubject
	if err := r.db.SelectContext(ctx, &subjects, query, record.ID); err != nil {
		return fmt.Errorf("load enrollment subjects: %w", err)
	}
	record.Subjects = subjects
	return nil
}

func (r *EnrollmentRepository) writeSubjects(ctx context.Context, tx *sqlx.Tx, record *models.EnrollmentRecord) error {
	const query = `INSERT INTO enrollment_subjects (id, enrollment_id, subject_code, section, units)
        VALUES (:id, :enrollment_id, :subject_code, :section, :units)`
	for i := range record.Subjects {
		if record.Subjects[i].ID == "" {
			record.Subjects[i].ID = uuid.NewString()
		}
		record.Subjects[i].EnrollmentID = record.ID
		if _, err := tx.NamedExecContext(ctx, query, &record.Subjects[i]); err != nil {
			return fmt.Errorf("insert enrollment subject: %w", err)
		}
	}
	return nil
}
