package service

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

type termConfigReader interface {
	FindConfig(ctx context.Context, term models.Term, academicYear string) (*models.TermConfig, error)
	FindCurrent(ctx context.Context, at time.Time) (*models.TermConfig, error)
}

// TermService resolves the calendar: enrollment windows and the current term.
type TermService struct {
	terms  termConfigReader
	now    func() time.Time
	logger *zap.Logger
}

// NewTermService constructs the service. A nil clock defaults to time.Now.
func NewTermService(terms termConfigReader, now func() time.Time, logger *zap.Logger) *TermService {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TermService{terms: terms, now: now, logger: logger}
}

// Current maps today onto a term. Dates outside every configured range
// resolve to the Break pseudo-term with no calendar row.
func (s *TermService) Current(ctx context.Context) (models.TermContext, *models.TermConfig, error) {
	cfg, err := s.terms.FindCurrent(ctx, s.now().UTC())
	if err != nil {
		if err == sql.ErrNoRows {
			return models.TermContext{Term: models.TermBreak}, nil, nil
		}
		return models.TermContext{}, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve current term")
	}
	return models.TermContext{Term: cfg.Term, AcademicYear: cfg.AcademicYear}, cfg, nil
}

// Window returns the enrollment window for (term, academic year).
func (s *TermService) Window(ctx context.Context, term models.Term, academicYear string) (*models.TermConfig, error) {
	if !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid term")
	}
	cfg, err := s.terms.FindConfig(ctx, term, academicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term configuration")
	}
	return cfg, nil
}
