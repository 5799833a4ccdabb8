package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
)

// SubjectService serves catalog browsing.
type SubjectService struct {
	subjects eligibilityCatalog
	logger   *zap.Logger
}

// NewSubjectService constructs the service.
func NewSubjectService(subjects eligibilityCatalog, logger *zap.Logger) *SubjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{subjects: subjects, logger: logger}
}

// List returns catalog subjects with their prerequisite rows attached.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.Subject, *models.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 || filter.PageSize > 200 {
		filter.PageSize = 20
	}
	if filter.Term != "" && !filter.Term.Valid() {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "invalid term filter")
	}

	subjects, total, err := s.subjects.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject catalog")
	}
	pagination := &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}
	return subjects, pagination, nil
}
