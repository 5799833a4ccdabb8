package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/models"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/internal/service"
	"github.com/onlineenrollmentdb/ctu-db.v1-sub000/pkg/response"
)

// SubjectHandler exposes catalog browsing endpoints.
type SubjectHandler struct {
	subjects *service.SubjectService
}

// NewSubjectHandler constructs SubjectHandler.
func NewSubjectHandler(subjects *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjects: subjects}
}

// List godoc
// @Summary List catalog subjects
// @Tags Subjects
// @Produce json
// @Param term query string false "Filter by term"
// @Param yearLevel query int false "Filter by year level"
// @Param programId query string false "Filter by program"
// @Param search query string false "Search by code or title"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /subjects [get]
func (h *SubjectHandler) List(c *gin.Context) {
	var filter models.SubjectFilter
	filter.Term = models.Term(strings.ToUpper(c.Query("term")))
	filter.ProgramID = c.Query("programId")
	filter.Search = c.Query("search")
	if level, err := strconv.Atoi(c.Query("yearLevel")); err == nil {
		filter.YearLevel = level
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = size
	}

	subjects, pagination, err := h.subjects.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subjects, pagination)
}
