package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/service"
	appErrors "github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/errors"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/response"
)

// EnrollmentHandler exposes the enrollment workflow endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

// SetClearance godoc
// @Summary Set or revoke a student's enrollment clearance
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SetClearanceRequest true "Clearance payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/clearance [put]
func (h *EnrollmentHandler) SetClearance(c *gin.Context) {
	var req service.SetClearanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	view, err := h.enrollments.SetClearance(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Submit godoc
// @Summary Submit an enrollment with chosen subject sections
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.SubmitEnrollmentRequest true "Submission payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/submit [post]
func (h *EnrollmentHandler) Submit(c *gin.Context) {
	var req service.SubmitEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.enrollments.SubmitEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Confirm godoc
// @Summary Confirm a submitted enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentActionRequest true "Confirmation payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/confirm [post]
func (h *EnrollmentHandler) Confirm(c *gin.Context) {
	var req service.EnrollmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.enrollments.ConfirmEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Revoke godoc
// @Summary Revoke a submitted or confirmed enrollment
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param payload body service.EnrollmentActionRequest true "Revocation payload"
// @Success 200 {object} response.Envelope
// @Router /enrollments/revoke [post]
func (h *EnrollmentHandler) Revoke(c *gin.Context) {
	var req service.EnrollmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.enrollments.RevokeEnrollment(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Status godoc
// @Summary Get the enrollment status for one student and term
// @Tags Enrollments
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term query string true "Term"
// @Param academicYear query string true "Academic year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /enrollments/status/{studentId} [get]
func (h *EnrollmentHandler) Status(c *gin.Context) {
	studentID := c.Param("studentId")
	term := models.Term(strings.ToUpper(c.Query("term")))
	academicYear := c.Query("academicYear")

	view, err := h.enrollments.GetStatus(c.Request.Context(), studentID, term, academicYear)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// StatusBulk godoc
// @Summary Get enrollment statuses for many students in one term
// @Tags Enrollments
// @Produce json
// @Param term query string true "Term"
// @Param academicYear query string true "Academic year"
// @Param studentIds query string false "Comma-separated student IDs; omit for all"
// @Success 200 {object} response.Envelope
// @Router /enrollments/status [get]
func (h *EnrollmentHandler) StatusBulk(c *gin.Context) {
	term := models.Term(strings.ToUpper(c.Query("term")))
	academicYear := c.Query("academicYear")

	var studentIDs []string
	if raw := c.Query("studentIds"); raw != "" {
		for _, id := range strings.Split(raw, ",") {
			if id = strings.TrimSpace(id); id != "" {
				studentIDs = append(studentIDs, id)
			}
		}
	}

	views, err := h.enrollments.GetStatusBulk(c.Request.Context(), term, academicYear, studentIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, views, nil)
}
