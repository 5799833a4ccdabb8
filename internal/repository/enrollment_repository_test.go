package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func enrollmentRows(status models.EnrollmentStatus, version int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{"id", "student_id", "academic_year", "term", "status", "total_units", "is_enrolled", "version", "created_at", "updated_at"}).
		AddRow("enr-1", "stu-1", "2025-2026", models.TermFirst, status, 7, false, version, now, now)
}

func TestEnrollmentRepositoryFindByStudentTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, academic_year, term, status, total_units, is_enrolled, version, created_at, updated_at FROM enrollment_records WHERE student_id = $1 AND term = $2 AND academic_year = $3")).
		WithArgs("stu-1", models.TermFirst, "2025-2026").
		WillReturnRows(enrollmentRows(models.StatusSubmitted, 3))

	subjectRows := sqlmock.NewRows([]string{"id", "enrollment_id", "subject_code", "section", "units"}).
		AddRow("es-1", "enr-1", "MATH101", "A", 3).
		AddRow("es-2", "enr-1", "PHYS101", "A", 4)
	mock.ExpectQuery("SELECT id, enrollment_id, subject_code, section, units").
		WithArgs("enr-1").
		WillReturnRows(subjectRows)

	record, err := repo.FindByStudentTerm(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, record.Status)
	assert.Equal(t, 3, record.Version)
	require.Len(t, record.Subjects, 2)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryFindByStudentTermNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM enrollment_records").
		WithArgs("stu-1", models.TermFirst, "2025-2026").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByStudentTerm(context.Background(), "stu-1", models.TermFirst, "2025-2026")
	assert.Equal(t, sql.ErrNoRows, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveTransition(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	record := &models.EnrollmentRecord{
		ID: "enr-1", StudentID: "stu-1", AcademicYear: "2025-2026", Term: models.TermFirst,
		Status: models.StatusSubmitted, TotalUnits: 3, Version: 2,
		Subjects: []models.EnrolledSubject{{SubjectCode: "MATH101", Section: "A", Units: 3}},
	}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollment_records").
		WithArgs(models.StatusSubmitted, 3, false, sqlmock.AnyArg(), "enr-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM enrollment_subjects WHERE enrollment_id = $1")).
		WithArgs("enr-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO enrollment_subjects").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.SaveTransition(context.Background(), record))
	assert.Equal(t, 3, record.Version)
	assert.Equal(t, "enr-1", record.Subjects[0].EnrollmentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositorySaveTransitionVersionConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	record := &models.EnrollmentRecord{ID: "enr-1", Status: models.StatusConfirmed, Version: 2}

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE enrollment_records").
		WithArgs(models.StatusConfirmed, 0, false, sqlmock.AnyArg(), "enr-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.SaveTransition(context.Background(), record)
	assert.True(t, errors.Is(err, ErrVersionConflict))
	assert.Equal(t, 2, record.Version)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListStatusByTerm(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"student_id", "term", "academic_year", "status", "enrollment_id"}).
		AddRow("stu-1", models.TermFirst, "2025-2026", models.StatusSubmitted, "enr-1").
		AddRow("stu-2", models.TermFirst, "2025-2026", models.StatusCleared, "enr-2")
	mock.ExpectQuery(regexp.QuoteMeta("AND student_id IN ($3,$4)")).
		WithArgs(models.TermFirst, "2025-2026", "stu-1", "stu-2").
		WillReturnRows(rows)

	views, err := repo.ListStatusByTerm(context.Background(), models.TermFirst, "2025-2026", []string{"stu-1", "stu-2"})
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, models.StatusSubmitted, views[0].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}
