package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/repository"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/events"
)

type enrollmentStore interface {
	FindByStudentTerm(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.EnrollmentRecord, error)
	Create(ctx context.Context, record *models.EnrollmentRecord) error
	SaveTransition(ctx context.Context, record *models.EnrollmentRecord) error
	ListStatusByTerm(ctx context.Context, term models.Term, academicYear string, studentIDs []string) ([]models.StatusView, error)
}

type clearanceStore interface {
	Find(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.ClearanceRecord, error)
	Set(ctx context.Context, record *models.ClearanceRecord) error
}

type sectionReader interface {
	FindByCodeSection(ctx context.Context, code, section string) (*models.Subject, error)
}

type windowReader interface {
	FindConfig(ctx context.Context, term models.Term, academicYear string) (*models.TermConfig, error)
}

type selectionVerifier interface {
	VerifySelection(ctx context.Context, studentID string, termCtx models.TermContext, subjects []models.Subject) error
}

// SetClearanceRequest toggles the administrative clearance gate.
type SetClearanceRequest struct {
	StudentID    string      `json:"student_id" validate:"required"`
	Term         models.Term `json:"term" validate:"required"`
	AcademicYear string      `json:"academic_year" validate:"required"`
	Cleared      bool        `json:"cleared"`
}

// SubjectSelection is one chosen subject-section in a submission.
type SubjectSelection struct {
	SubjectCode string `json:"subject_code" validate:"required"`
	Section     string `json:"section" validate:"required"`
}

// SubmitEnrollmentRequest is the student's enroll action.
type SubmitEnrollmentRequest struct {
	StudentID    string             `json:"student_id" validate:"required"`
	Term         models.Term        `json:"term" validate:"required"`
	AcademicYear string             `json:"academic_year" validate:"required"`
	Subjects     []SubjectSelection `json:"subjects" validate:"required,min=1,dive"`
}

// EnrollmentActionRequest identifies the record for staff confirm/revoke.
type EnrollmentActionRequest struct {
	StudentID    string      `json:"student_id" validate:"required"`
	Term         models.Term `json:"term" validate:"required"`
	AcademicYear string      `json:"academic_year" validate:"required"`
}

// EnrollmentService owns the enrollment status for each (student, term) pair
// and the legal transitions between its stages. Every committed transition
// synchronously refreshes the status cache and publishes one event.
type EnrollmentService struct {
	enrollments enrollmentStore
	clearances  clearanceStore
	subjects    sectionReader
	terms       windowReader
	students    rosterReader
	eligibility selectionVerifier
	cache       *StatusCache
	publisher   events.Publisher
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnrollmentService constructs the service. A nil clock defaults to
// time.Now; a nil publisher disables events.
func NewEnrollmentService(
	enrollments enrollmentStore,
	clearances clearanceStore,
	subjects sectionReader,
	terms windowReader,
	students rosterReader,
	eligibility selectionVerifier,
	cache *StatusCache,
	publisher events.Publisher,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	now func() time.Time,
) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &EnrollmentService{
		enrollments: enrollments,
		clearances:  clearances,
		subjects:    subjects,
		terms:       terms,
		students:    students,
		eligibility: eligibility,
		cache:       cache,
		publisher:   publisher,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         now,
	}
}

// SetClearance persists the clearance flag and advances or reverts the
// enrollment stage accordingly. Revoking clearance never deletes an existing
// submission; it only moves a Cleared record back to NotCleared.
func (s *EnrollmentService) SetClearance(ctx context.Context, req SetClearanceRequest) (*models.StatusView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clearance payload")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("term %q is not enrollable", req.Term))
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	clearance := &models.ClearanceRecord{
		StudentID:    req.StudentID,
		Term:         req.Term,
		AcademicYear: req.AcademicYear,
		Cleared:      req.Cleared,
	}
	if existing, err := s.clearances.Find(ctx, req.StudentID, req.Term, req.AcademicYear); err == nil {
		clearance.ID = existing.ID
	} else if err != sql.ErrNoRows {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load clearance record")
	}
	if err := s.clearances.Set(ctx, clearance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist clearance")
	}

	record, err := s.enrollments.FindByStudentTerm(ctx, req.StudentID, req.Term, req.AcademicYear)
	if err != nil {
		if err != sql.ErrNoRows {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
		}
		if !req.Cleared {
			// No record yet means the implicit initial stage; nothing to move.
			view := defaultStatusView(req.StudentID, req.Term, req.AcademicYear)
			return &view, nil
		}
		record = &models.EnrollmentRecord{
			StudentID:    req.StudentID,
			AcademicYear: req.AcademicYear,
			Term:         req.Term,
			Status:       models.StatusNotCleared,
		}
		if err := s.enrollments.Create(ctx, record); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment record")
		}
	}

	switch {
	case req.Cleared && record.Status == models.StatusNotCleared:
		if err := s.transition(ctx, record, models.StatusCleared, "clearance confirmed"); err != nil {
			return nil, err
		}
	case !req.Cleared && record.Status == models.StatusCleared:
		if err := s.transition(ctx, record, models.StatusNotCleared, "clearance revoked"); err != nil {
			return nil, err
		}
	}

	view := statusViewOf(record)
	return &view, nil
}

// SubmitEnrollment is the student's enroll action. The subject list and unit
// total are written atomically with the status change; resubmission replaces
// the prior list.
func (s *EnrollmentService) SubmitEnrollment(ctx context.Context, req SubmitEnrollmentRequest) (*models.EnrollmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}
	if !req.Term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "submissions are not accepted outside an enrollable term")
	}

	window, err := s.terms.FindConfig(ctx, req.Term, req.AcademicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "term configuration not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load term configuration")
	}
	if !window.WindowOpen(s.now().UTC()) {
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation, fmt.Sprintf("enrollment window closed for the %s term", req.Term))
	}

	record, err := s.enrollments.FindByStudentTerm(ctx, req.StudentID, req.Term, req.AcademicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "student is not cleared for enrollment")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment record")
	}
	// The transition table also legalizes Confirmed -> Submitted for staff
	// revoke, so the student action checks its own allowed states instead.
	switch record.Status {
	case models.StatusNotCleared:
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation, "student is not cleared for enrollment")
	case models.StatusCleared, models.StatusSubmitted:
	default:
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot submit enrollment from %s", record.Status))
	}

	selection, chosen, err := s.loadSelection(ctx, req)
	if err != nil {
		return nil, err
	}

	termCtx := models.TermContext{Term: req.Term, AcademicYear: req.AcademicYear}
	if err := s.eligibility.VerifySelection(ctx, req.StudentID, termCtx, chosen); err != nil {
		return nil, err
	}

	load := EvaluateUnitLoad(selection)
	if load.Band == models.LoadExceeded {
		return nil, appErrors.Clone(appErrors.ErrPolicyViolation,
			fmt.Sprintf("unit load %d exceeds the maximum of %d units", load.TotalUnits, models.OverloadMaxUnits))
	}

	reason := "enrollment submitted"
	if record.Status == models.StatusSubmitted {
		reason = "enrollment resubmitted"
	}
	record.ReplaceSubjects(selection)
	if err := s.transition(ctx, record, models.StatusSubmitted, reason); err != nil {
		return nil, err
	}
	return record, nil
}

// ConfirmEnrollment is the staff action that finalises a submission.
func (s *EnrollmentService) ConfirmEnrollment(ctx context.Context, req EnrollmentActionRequest) (*models.EnrollmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid confirmation payload")
	}
	record, err := s.findRecord(ctx, req, "confirm")
	if err != nil {
		return nil, err
	}
	if !record.Status.CanTransition(models.StatusConfirmed) {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot confirm enrollment from %s", record.Status))
	}
	record.IsEnrolled = true
	if err := s.transition(ctx, record, models.StatusConfirmed, "enrollment confirmed"); err != nil {
		record.IsEnrolled = false
		return nil, err
	}
	return record, nil
}

// RevokeEnrollment is the staff action that moves the record back one stage.
// Revoking a confirmed enrollment discards the submission entirely.
func (s *EnrollmentService) RevokeEnrollment(ctx context.Context, req EnrollmentActionRequest) (*models.EnrollmentRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid revocation payload")
	}
	record, err := s.findRecord(ctx, req, "revoke")
	if err != nil {
		return nil, err
	}

	prevSubjects := record.Subjects
	prevUnits := record.TotalUnits
	prevEnrolled := record.IsEnrolled

	var target models.EnrollmentStatus
	var reason string
	switch record.Status {
	case models.StatusConfirmed:
		target = models.StatusSubmitted
		reason = "enrollment confirmation revoked"
	case models.StatusSubmitted:
		target = models.StatusCleared
		reason = "enrollment submission revoked"
	default:
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("cannot revoke enrollment from %s", record.Status))
	}

	record.ReplaceSubjects(nil)
	record.IsEnrolled = false
	if err := s.transition(ctx, record, target, reason); err != nil {
		record.Subjects = prevSubjects
		record.TotalUnits = prevUnits
		record.IsEnrolled = prevEnrolled
		return nil, err
	}
	return record, nil
}

// GetStatus serves the cached status for one (student, term) key, reading
// through to the store on a miss.
func (s *EnrollmentService) GetStatus(ctx context.Context, studentID string, term models.Term, academicYear string) (*models.StatusView, error) {
	if studentID == "" || academicYear == "" || !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student, term and academic year are required")
	}
	if view, hit, err := s.cache.Get(ctx, studentID, term, academicYear); err == nil && hit {
		return view, nil
	}

	record, err := s.enrollments.FindByStudentTerm(ctx, studentID, term, academicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			view := defaultStatusView(studentID, term, academicYear)
			_ = s.cache.Put(ctx, view)
			return &view, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment status")
	}
	view := statusViewOf(record)
	_ = s.cache.Put(ctx, view)
	return &view, nil
}

// GetStatusBulk reads statuses for many students straight from the store,
// bypassing the single-entry cache. Students with no record report the
// default view.
func (s *EnrollmentService) GetStatusBulk(ctx context.Context, term models.Term, academicYear string, studentIDs []string) ([]models.StatusView, error) {
	if academicYear == "" || !term.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "term and academic year are required")
	}
	views, err := s.enrollments.ListStatusByTerm(ctx, term, academicYear, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment statuses")
	}
	if len(studentIDs) == 0 {
		return views, nil
	}
	found := make(map[string]bool, len(views))
	for _, v := range views {
		found[v.StudentID] = true
	}
	for _, id := range studentIDs {
		if !found[id] {
			views = append(views, defaultStatusView(id, term, academicYear))
		}
	}
	return views, nil
}

func (s *EnrollmentService) findRecord(ctx context.Context, req EnrollmentActionRequest, action string) (*models.EnrollmentRecord, error) {
	record, err := s.enrollments.FindByStudentTerm(ctx, req.StudentID, req.Term, req.AcademicYear)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrConflict, "no matching enrollment record")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("failed to load enrollment record for %s", action))
	}
	return record, nil
}

// loadSelection resolves each chosen subject-section against the catalog and
// rejects duplicates or off-term offerings. The second result carries the
// full catalog rows for the eligibility check.
func (s *EnrollmentService) loadSelection(ctx context.Context, req SubmitEnrollmentRequest) ([]models.EnrolledSubject, []models.Subject, error) {
	seen := make(map[string]bool, len(req.Subjects))
	selection := make([]models.EnrolledSubject, 0, len(req.Subjects))
	chosen := make([]models.Subject, 0, len(req.Subjects))
	for _, choice := range req.Subjects {
		key := choice.SubjectCode + "-" + choice.Section
		if seen[key] {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate subject selection %s", key))
		}
		seen[key] = true

		subject, err := s.subjects.FindByCodeSection(ctx, choice.SubjectCode, choice.Section)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("subject %s not found", key))
			}
			return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		if subject.Term != req.Term {
			return nil, nil, appErrors.Clone(appErrors.ErrPolicyViolation,
				fmt.Sprintf("subject %s is not offered in the %s term", subject.Code, req.Term))
		}
		selection = append(selection, models.EnrolledSubject{
			SubjectCode: subject.Code,
			Section:     subject.Section,
			Units:       subject.Units,
		})
		chosen = append(chosen, *subject)
	}
	return selection, chosen, nil
}

// transition commits a single legal status move. The store write is atomic
// across status, unit total, enrolled flag and the subject list; the cache is
// refreshed synchronously before the call returns, and one event is
// published per committed transition.
func (s *EnrollmentService) transition(ctx context.Context, record *models.EnrollmentRecord, to models.EnrollmentStatus, reason string) error {
	from := record.Status
	if !from.CanTransition(to) {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("illegal transition %s -> %s", from, to))
	}

	record.Status = to
	if err := s.enrollments.SaveTransition(ctx, record); err != nil {
		record.Status = from
		if errors.Is(err, repository.ErrVersionConflict) {
			return appErrors.Clone(appErrors.ErrConflict, "state changed, retry")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status,
			fmt.Sprintf("failed to persist %s -> %s transition", from, to))
	}

	view := statusViewOf(record)
	if err := s.cache.Put(ctx, view); err != nil {
		// Fall back to dropping the entry so no reader sees the old value.
		_ = s.cache.Invalidate(ctx, record.StudentID, record.Term, record.AcademicYear)
	}

	if s.metrics != nil {
		s.metrics.RecordTransition(from.String(), to.String())
	}

	event := events.TransitionEvent{
		StudentID:    record.StudentID,
		Term:         string(record.Term),
		AcademicYear: record.AcademicYear,
		Status:       to.String(),
		Reason:       reason,
		OccurredAt:   s.now().UTC(),
	}
	if err := s.publisher.PublishTransition(ctx, event); err != nil {
		s.logger.Warn("failed to publish transition event",
			zap.String("student_id", record.StudentID),
			zap.String("status", to.String()),
			zap.Error(err),
		)
	}
	return nil
}

func statusViewOf(record *models.EnrollmentRecord) models.StatusView {
	id := record.ID
	return models.StatusView{
		StudentID:    record.StudentID,
		Term:         record.Term,
		AcademicYear: record.AcademicYear,
		Status:       record.Status,
		EnrollmentID: &id,
	}
}

func defaultStatusView(studentID string, term models.Term, academicYear string) models.StatusView {
	return models.StatusView{
		StudentID:    studentID,
		Term:         term,
		AcademicYear: academicYear,
		Status:       models.StatusNotCleared,
		EnrollmentID: nil,
	}
}
