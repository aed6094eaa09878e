package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
)

// ExamSummaryHandler serves class-wide exam analytics.
type ExamSummaryHandler struct {
	BaseHandler
	summaryService services.ExamSummaryService
}

func NewExamSummaryHandler(summaryService services.ExamSummaryService, logger utils.Logger) *ExamSummaryHandler {
	return &ExamSummaryHandler{
		BaseHandler:    NewBaseHandler(logger),
		summaryService: summaryService,
	}
}

// GetSummary returns aggregated statistics for one exam.
func (h *ExamSummaryHandler) GetSummary(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Building exam summary", "exam_id", examID)

	summary, err := h.summaryService.BuildSummary(c.Request.Context(), actor, examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// ExportSummary streams the summary as an XLSX workbook.
func (h *ExamSummaryHandler) ExportSummary(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	h.LogRequest(c, "Exporting exam summary", "exam_id", examID)

	data, filename, err := h.summaryService.ExportSummaryXLSX(c.Request.Context(), actor, examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
