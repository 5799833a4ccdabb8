package service

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

type eligibilityCatalog interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, int, error)
}

type historyReader interface {
	ListByStudent(ctx context.Context, studentID string) (models.History, error)
}

type enrollmentReader interface {
	FindByStudentTerm(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.EnrollmentRecord, error)
}

type rosterReader interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

type requirementChecker interface {
	Satisfied(ctx context.Context, history models.History, subject models.Subject, termCtx models.TermContext) (bool, []string, error)
}

// ClassifyRequest identifies the student and term to classify.
type ClassifyRequest struct {
	StudentID    string      `json:"student_id" validate:"required"`
	Term         models.Term `json:"term" validate:"required"`
	AcademicYear string      `json:"academic_year" validate:"required"`
}

// EligibilityService classifies catalog subjects for a student and term.
type EligibilityService struct {
	subjects    eligibilityCatalog
	records     historyReader
	enrollments enrollmentReader
	students    rosterReader
	prereq      requirementChecker
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEligibilityService constructs the service.
func NewEligibilityService(subjects eligibilityCatalog, records historyReader, enrollments enrollmentReader, students rosterReader, prereq requirementChecker, validate *validator.Validate, logger *zap.Logger) *EligibilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EligibilityService{
		subjects:    subjects,
		records:     records,
		enrollments: enrollments,
		students:    students,
		prereq:      prereq,
		validator:   validate,
		logger:      logger,
	}
}

// ClassifyEligibility classifies every catalog subject of the term for the
// student. Regular students receive the catalog subset for their year level
// with no per-subject computation; regular standing already implies path
// compliance, so the bifurcation is policy rather than optimisation.
func (s *EligibilityService) ClassifyEligibility(ctx context.Context, req ClassifyRequest) ([]models.SubjectEligibility, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid eligibility request")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("term %q is not enrollable", req.Term))
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	termCtx := models.TermContext{Term: req.Term, AcademicYear: req.AcademicYear}

	if !student.Irregular {
		return s.regularOffering(ctx, student, termCtx)
	}

	history, err := s.records.ListByStudent(ctx, student.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic records")
	}

	current, err := s.enrollments.FindByStudentTerm(ctx, student.ID, req.Term, req.AcademicYear)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
		}
		current = nil
	}

	catalog, err := s.listCatalog(ctx, models.SubjectFilter{Term: req.Term, ProgramID: student.ProgramID})
	if err != nil {
		return nil, err
	}

	results := make([]models.SubjectEligibility, 0, len(catalog))
	for _, subject := range catalog {
		classified, err := s.classify(ctx, subject, history, current, termCtx)
		if err != nil {
			return nil, err
		}
		results = append(results, classified)
	}
	return results, nil
}

func (s *EligibilityService) regularOffering(ctx context.Context, student *models.Student, termCtx models.TermContext) ([]models.SubjectEligibility, error) {
	catalog, err := s.listCatalog(ctx, models.SubjectFilter{
		Term:      termCtx.Term,
		YearLevel: student.YearLevel,
		ProgramID: student.ProgramID,
	})
	if err != nil {
		return nil, err
	}
	results := make([]models.SubjectEligibility, 0, len(catalog))
	for _, subject := range catalog {
		results = append(results, models.SubjectEligibility{Subject: subject, Status: models.EligibilityEligible})
	}
	return results, nil
}

// classifyPageSize is the repository page size used when walking the whole
// term catalog.
const classifyPageSize = 200

// listCatalog pages through every catalog row matching the filter, so terms
// larger than one page are classified in full.
func (s *EligibilityService) listCatalog(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, error) {
	filter.PageSize = classifyPageSize
	var all []models.Subject
	for page := 1; ; page++ {
		filter.Page = page
		batch, total, err := s.subjects.List(ctx, filter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
		}
		all = append(all, batch...)
		if len(batch) < classifyPageSize || len(all) >= total {
			break
		}
	}
	return all, nil
}

// VerifySelection rejects chosen subjects a student may not take. Regular
// students bypass per-subject checks the same way classification does; for
// irregular students every blocked subject is reported with its reason.
func (s *EligibilityService) VerifySelection(ctx context.Context, studentID string, termCtx models.TermContext, subjects []models.Subject) error {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if !student.Irregular {
		return nil
	}

	history, err := s.records.ListByStudent(ctx, student.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic records")
	}
	current, err := s.enrollments.FindByStudentTerm(ctx, student.ID, termCtx.Term, termCtx.AcademicYear)
	if err != nil {
		if err != sql.ErrNoRows {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
		}
		current = nil
	}

	var blocked []string
	for _, subject := range subjects {
		classified, err := s.classify(ctx, subject, history, current, termCtx)
		if err != nil {
			return err
		}
		if classified.Status == models.EligibilityBlocked {
			blocked = append(blocked, fmt.Sprintf("%s: %s", subject.Code, classified.Reason))
		}
	}
	if len(blocked) > 0 {
		return appErrors.Clone(appErrors.ErrPolicyViolation, "blocked subjects: "+strings.Join(blocked, "; "))
	}
	return nil
}

// classify applies the priority order: enrolled, passed, retake, blocked,
// eligible. First match wins.
func (s *EligibilityService) classify(ctx context.Context, subject models.Subject, history models.History, current *models.EnrollmentRecord, termCtx models.TermContext) (models.SubjectEligibility, error) {
	out := models.SubjectEligibility{Subject: subject}

	if current.HasSubject(subject.Code) {
		out.Status = models.EligibilityEnrolled
		return out, nil
	}

	if history.Passed(subject.Code) {
		out.Status = models.EligibilityPassed
		return out, nil
	}

	if firstFailed, failed := history.FirstFailedYear(subject.Code); failed {
		currentYear, err := models.AcademicYearStart(termCtx.AcademicYear)
		if err != nil {
			return out, appErrors.Clone(appErrors.ErrValidation, "invalid academic year")
		}
		if currentYear-firstFailed <= models.RetakeGraceYears {
			out.Status = models.EligibilityRetake
			return out, nil
		}
		out.Status = models.EligibilityBlocked
		out.Reason = "cannot retake, failed more than one year ago"
		return out, nil
	}

	ok, missing, err := s.prereq.Satisfied(ctx, history, subject, termCtx)
	if err != nil {
		return out, err
	}
	if !ok {
		out.Status = models.EligibilityBlocked
		out.Reason = "missing prerequisites: " + strings.Join(missing, ", ")
		return out, nil
	}

	out.Status = models.EligibilityEligible
	return out, nil
}
