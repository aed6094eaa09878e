package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
)

// ExamReviewHandler serves a student's graded attempt for review.
type ExamReviewHandler struct {
	BaseHandler
	reviewService services.ExamReviewService
}

func NewExamReviewHandler(reviewService services.ExamReviewService, logger utils.Logger) *ExamReviewHandler {
	return &ExamReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// GetReview returns the question-by-question review of one attempt.
func (h *ExamReviewHandler) GetReview(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	attemptID := h.parseIDParam(c, "id")
	if attemptID == 0 {
		return
	}

	h.LogRequest(c, "Building exam review", "attempt_id", attemptID)

	review, err := h.reviewService.BuildReview(c.Request.Context(), actor, attemptID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	// Students only see their own attempts. Other students' attempts
	// read as missing, not forbidden.
	if user, err := GetUserFromContext(c); err == nil && user.Role == models.RoleStudent && review.StudentID != actor.UserID {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "attempt not found"})
		return
	}

	c.JSON(http.StatusOK, review)
}
