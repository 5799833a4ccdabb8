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

// EligibilityHandler exposes eligibility classification and unit-load checks.
type EligibilityHandler struct {
	eligibility *service.EligibilityService
}

// NewEligibilityHandler constructs EligibilityHandler.
func NewEligibilityHandler(eligibility *service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibility: eligibility}
}

// Classify godoc
// @Summary Classify every catalog subject for a student and term
// @Tags Eligibility
// @Produce json
// @Param studentId path string true "Student ID"
// @Param term query string true "Term"
// @Param academicYear query string true "Academic year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /eligibility/{studentId} [get]
func (h *EligibilityHandler) Classify(c *gin.Context) {
	req := service.ClassifyRequest{
		StudentID:    c.Param("studentId"),
		Term:         models.Term(strings.ToUpper(c.Query("term"))),
		AcademicYear: c.Query("academicYear"),
	}
	results, err := h.eligibility.ClassifyEligibility(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// UnitLoadRequest carries a subject selection to evaluate.
type UnitLoadRequest struct {
	Subjects []models.EnrolledSubject `json:"subjects"`
}

// EvaluateUnitLoad godoc
// @Summary Classify the unit load of a subject selection
// @Tags Eligibility
// @Accept json
// @Produce json
// @Param payload body UnitLoadRequest true "Selection payload"
// @Success 200 {object} response.Envelope
// @Router /eligibility/unit-load [post]
func (h *EligibilityHandler) EvaluateUnitLoad(c *gin.Context) {
	var req UnitLoadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	load := service.EvaluateUnitLoad(req.Subjects)
	response.JSON(c, http.StatusOK, load, nil)
}
