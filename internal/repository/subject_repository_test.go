package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

func subjectRows(ids ...string) *sqlmock.Rows {
	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "code", "section", "description", "units", "lecture_hours", "lab_hours", "year_level", "term", "program_id", "created_at", "updated_at"})
	for i, id := range ids {
		rows.AddRow(id, "CS10"+string(rune('1'+i)), "A", "desc", 3, 2, 3, 1, models.TermFirst, "prog-1", now, now)
	}
	return rows
}

func TestSubjectRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE term = $1 AND year_level = $2 ORDER BY year_level, code, section")).
		WithArgs(models.TermFirst, 1).
		WillReturnRows(subjectRows("sub-1", "sub-2"))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM subjects WHERE term = $1 AND year_level = $2")).
		WithArgs(models.TermFirst, 1).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	prereqRows := sqlmock.NewRows([]string{"id", "subject_id", "kind", "required_code", "year_level"}).
		AddRow("req-1", "sub-2", models.RequirementSubject, "CS101", 0)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subject_prerequisites WHERE subject_id IN ($1,$2)")).
		WithArgs("sub-1", "sub-2").
		WillReturnRows(prereqRows)

	subjects, total, err := repo.List(context.Background(), models.SubjectFilter{Term: models.TermFirst, YearLevel: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, subjects, 2)
	assert.Empty(t, subjects[0].Prerequisites)
	require.Len(t, subjects[1].Prerequisites, 1)
	assert.Equal(t, "CS101", subjects[1].Prerequisites[0].RequiredCode)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByCodeSection(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE code = $1 AND section = $2")).
		WithArgs("CS101", "A").
		WillReturnRows(subjectRows("sub-1"))
	mock.ExpectQuery("FROM subject_prerequisites").
		WithArgs("sub-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "subject_id", "kind", "required_code", "year_level"}))

	subject, err := repo.FindByCodeSection(context.Background(), "CS101", "A")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", subject.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryFindByCodeSectionNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery("FROM subjects WHERE code").
		WithArgs("GHOST", "A").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByCodeSection(context.Background(), "GHOST", "A")
	assert.Equal(t, sql.ErrNoRows, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectRepositoryListOfferedBelowLevel(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE term = $1 AND year_level < $2")).
		WithArgs(models.TermFirst, 2).
		WillReturnRows(subjectRows("sub-1"))

	subjects, err := repo.ListOfferedBelowLevel(context.Background(), models.TermFirst, 2)
	require.NoError(t, err)
	require.Len(t, subjects, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
