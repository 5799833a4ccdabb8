package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
)

// SubjectRepository handles catalog and prerequisite persistence.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs the repository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

const subjectColumns = `id, code, section, description, units, lecture_hours, lab_hours, year_level, term, program_id, created_at, updated_at`

// List returns catalog subjects filtered by the provided criteria, with
// prerequisite rows attached.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Term != "" {
		conditions = append(conditions, fmt.Sprintf("term = $%d", len(args)+1))
		args = append(args, filter.Term)
	}
	if filter.YearLevel > 0 {
		conditions = append(conditions, fmt.Sprintf("year_level = $%d", len(args)+1))
		args = append(args, filter.YearLevel)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(code ILIKE $%d OR description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM subjects%s ORDER BY year_level, code, section LIMIT %d OFFSET %d",
		subjectColumns, clause, size, offset)

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM subjects%s", clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	if err := r.attachPrerequisites(ctx, subjects); err != nil {
		return nil, 0, err
	}
	return subjects, total, nil
}

// FindByCodeSection returns one catalog offering with prerequisites.
func (r *SubjectRepository) FindByCodeSection(ctx context.Context, code, section string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE code = $1 AND section = $2", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, code, section); err != nil {
		return nil, err
	}
	list := []models.Subject{subject}
	if err := r.attachPrerequisites(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// FindByCode returns any offering of the code, used when only the subject
// identity matters (prerequisite chain walks).
func (r *SubjectRepository) FindByCode(ctx context.Context, code string) (*models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE code = $1 ORDER BY section LIMIT 1", subjectColumns)
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, code); err != nil {
		return nil, err
	}
	list := []models.Subject{subject}
	if err := r.attachPrerequisites(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

// ListOfferedBelowLevel returns subjects offered in the term below the year
// level, the reference set for year-standing checks.
func (r *SubjectRepository) ListOfferedBelowLevel(ctx context.Context, term models.Term, yearLevel int) ([]models.Subject, error) {
	query := fmt.Sprintf("SELECT %s FROM subjects WHERE term = $1 AND year_level < $2 ORDER BY code, section", subjectColumns)
	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, term, yearLevel); err != nil {
		return nil, fmt.Errorf("list subjects below level: %w", err)
	}
	return subjects, nil
}

func (r *SubjectRepository) attachPrerequisites(ctx context.Context, subjects []models.Subject) error {
	if len(subjects) == 0 {
		return nil
	}
	placeholders := make([]string, len(subjects))
	args := make([]interface{}, len(subjects))
	index := make(map[string]int, len(subjects))
	for i := range subjects {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = subjects[i].ID
		index[subjects[i].ID] = i
	}
	query := fmt.Sprintf(`SELECT id, subject_id, kind, required_code, year_level FROM subject_prerequisites WHERE subject_id IN (%s) ORDER BY id`,
		strings.Join(placeholders, ","))

	var reqs []models.PrerequisiteRequirement
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return fmt.Errorf("load prerequisites: %w", err)
	}
	for _, req := range reqs {
		if i, ok := index[req.SubjectID]; ok {
			subjects[i].Prerequisites = append(subjects[i].Prerequisites, req)
		}
	}
	return nil
}
