package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
	"github.com/examforge/exam-service/internal/validator"
)

// GradeHandler exposes final-grade computation and manual score entry.
type GradeHandler struct {
	BaseHandler
	gradeService services.GradeService
	validator    *validator.Validator
}

func NewGradeHandler(
	gradeService services.GradeService,
	validator *validator.Validator,
	logger utils.Logger,
) *GradeHandler {
	return &GradeHandler{
		BaseHandler:  NewBaseHandler(logger),
		gradeService: gradeService,
		validator:    validator,
	}
}

// ComputeGrade blends a student's score sources into a final grade and
// persists it.
func (h *GradeHandler) ComputeGrade(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req validator.ComputeGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Computing final grade", "student_id", req.StudentID, "subject", req.Subject, "term", req.Term)

	grade, err := h.gradeService.ComputeFinalGrade(c.Request.Context(), actor, req.StudentID, req.Subject, req.Term)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

// SaveManualScore records a teacher-entered score component.
func (h *GradeHandler) SaveManualScore(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req validator.ManualScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Saving manual score", "student_id", req.StudentID, "subject", req.Subject)

	if err := h.gradeService.SaveManualScore(c.Request.Context(), actor, req.StudentID, req.Subject, req.Term, req.Score); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}
