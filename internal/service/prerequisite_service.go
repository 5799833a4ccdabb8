package service

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

// maxPrereqChain bounds chain walks so corrupted catalog data surfaces as an
// error instead of an unbounded traversal.
const maxPrereqChain = 64

type prerequisiteCatalog interface {
	FindByCode(ctx context.Context, code string) (*models.Subject, error)
	ListOfferedBelowLevel(ctx context.Context, term models.Term, yearLevel int) ([]models.Subject, error)
}

// PrerequisiteService resolves and evaluates subject requirements.
type PrerequisiteService struct {
	subjects              prerequisiteCatalog
	yearStandingExclusive bool
	logger                *zap.Logger
}

// NewPrerequisiteService constructs the service. yearStandingExclusive keeps
// the legacy rule where a year-standing row replaces ordinary prerequisites.
func NewPrerequisiteService(subjects prerequisiteCatalog, yearStandingExclusive bool, logger *zap.Logger) *PrerequisiteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PrerequisiteService{subjects: subjects, yearStandingExclusive: yearStandingExclusive, logger: logger}
}

// Resolve returns the effective requirement set for the subject.
func (s *PrerequisiteService) Resolve(subject models.Subject) []models.PrerequisiteRequirement {
	if !s.yearStandingExclusive {
		return subject.Prerequisites
	}
	for _, req := range subject.Prerequisites {
		if req.Kind == models.RequirementYearStanding {
			// Legacy behaviour: year standing supersedes every ordinary row.
			return []models.PrerequisiteRequirement{req}
		}
	}
	return subject.Prerequisites
}

// Satisfied evaluates the subject's effective requirements against the
// student's history. The second result lists what is missing, phrased for
// user-visible rejection reasons.
func (s *PrerequisiteService) Satisfied(ctx context.Context, history models.History, subject models.Subject, termCtx models.TermContext) (bool, []string, error) {
	if err := s.checkChain(ctx, subject); err != nil {
		return false, nil, err
	}

	var missing []string
	for _, req := range s.Resolve(subject) {
		switch req.Kind {
		case models.RequirementSubject:
			if !history.Passed(req.RequiredCode) {
				missing = append(missing, req.RequiredCode)
			}
		case models.RequirementYearStanding:
			gaps, err := s.yearStandingGaps(ctx, history, req.YearLevel, termCtx)
			if err != nil {
				return false, nil, err
			}
			missing = append(missing, gaps...)
		default:
			return false, nil, appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("unknown requirement kind %q on subject %s", req.Kind, subject.Code))
		}
	}
	return len(missing) == 0, missing, nil
}

// yearStandingGaps lists subjects below the level, offered in the preceding
// term, that the student has not passed.
func (s *PrerequisiteService) yearStandingGaps(ctx context.Context, history models.History, yearLevel int, termCtx models.TermContext) ([]string, error) {
	prevTerm, _, err := termCtx.Term.Preceding(termCtx.AcademicYear)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid term context for year standing")
	}
	offered, err := s.subjects.ListOfferedBelowLevel(ctx, prevTerm, yearLevel)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load year-standing reference subjects")
	}
	var gaps []string
	seen := make(map[string]bool, len(offered))
	for _, sub := range offered {
		if seen[sub.Code] {
			continue
		}
		seen[sub.Code] = true
		if !history.Passed(sub.Code) {
			gaps = append(gaps, fmt.Sprintf("%s (year standing)", sub.Code))
		}
	}
	return gaps, nil
}

// checkChain walks ordinary prerequisite edges looking for a path back to the
// subject itself. Cycles and over-long chains are catalog corruption, not a
// student problem, so they surface as data-integrity errors.
func (s *PrerequisiteService) checkChain(ctx context.Context, subject models.Subject) error {
	queue := make([]string, 0, len(subject.Prerequisites))
	for _, req := range subject.Prerequisites {
		if req.Kind == models.RequirementSubject {
			if req.RequiredCode == subject.Code {
				return appErrors.Clone(appErrors.ErrDataIntegrity,
					fmt.Sprintf("subject %s lists itself as a prerequisite", subject.Code))
			}
			queue = append(queue, req.RequiredCode)
		}
	}

	visited := make(map[string]bool)
	expansions := 0
	for len(queue) > 0 {
		code := queue[0]
		queue = queue[1:]
		if code == subject.Code {
			return appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("prerequisite cycle detected through subject %s", subject.Code))
		}
		if visited[code] {
			continue
		}
		visited[code] = true
		expansions++
		if expansions > maxPrereqChain {
			return appErrors.Clone(appErrors.ErrDataIntegrity,
				fmt.Sprintf("prerequisite chain for subject %s exceeds depth bound", subject.Code))
		}

		sub, err := s.subjects.FindByCode(ctx, code)
		if err != nil {
			if err == sql.ErrNoRows {
				// Requirement references a code outside the catalog; nothing
				// further to walk.
				continue
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to walk prerequisite chain")
		}
		for _, req := range sub.Prerequisites {
			if req.Kind == models.RequirementSubject {
				queue = append(queue, req.RequiredCode)
			}
		}
	}
	return nil
}
