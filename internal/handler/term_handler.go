package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/service"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/response"
)

// TermHandler exposes the academic calendar endpoints.
type TermHandler struct {
	terms *service.TermService
}

// NewTermHandler constructs TermHandler.
func NewTermHandler(terms *service.TermService) *TermHandler {
	return &TermHandler{terms: terms}
}

// Current godoc
// @Summary Resolve the current term
// @Tags Terms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /terms/current [get]
func (h *TermHandler) Current(c *gin.Context) {
	termCtx, cfg, err := h.terms.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"term":          termCtx.Term,
		"academic_year": termCtx.AcademicYear,
		"config":        cfg,
	}, nil)
}

// Window godoc
// @Summary Get the enrollment window for a term
// @Tags Terms
// @Produce json
// @Param term path string true "Term"
// @Param academicYear query string true "Academic year, e.g. 2025-2026"
// @Success 200 {object} response.Envelope
// @Router /terms/{term}/window [get]
func (h *TermHandler) Window(c *gin.Context) {
	term := models.Term(strings.ToUpper(c.Param("term")))
	cfg, err := h.terms.Window(c.Request.Context(), term, c.Query("academicYear"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, cfg, nil)
}
