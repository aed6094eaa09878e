package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/repositories"
	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
)

// QuestionHandler serves direct question-bank reads and deletes. Bulk
// writes go through the bulk session pipeline.
type QuestionHandler struct {
	BaseHandler
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService, logger utils.Logger) *QuestionHandler {
	return &QuestionHandler{
		BaseHandler:     NewBaseHandler(logger),
		questionService: questionService,
	}
}

// GetQuestion returns one question by ID.
func (h *QuestionHandler) GetQuestion(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	question, err := h.questionService.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

// ListQuestions returns a filtered page of the school's questions.
func (h *QuestionHandler) ListQuestions(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	filters := questionFiltersFromQuery(c)

	questions, total, err := h.questionService.List(c.Request.Context(), actor, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"questions": questions,
		"total":     total,
		"limit":     filters.Limit,
		"offset":    filters.Offset,
	})
}

// GetBankOverview returns the caller's bank for a subject with counts
// by type and difficulty.
func (h *QuestionHandler) GetBankOverview(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	subject := c.Query("subject")

	h.LogRequest(c, "Loading question bank overview", "subject", subject)

	overview, err := h.questionService.GetBankOverview(c.Request.Context(), actor, subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: overview})
}

// DeleteQuestion removes one of the caller's own questions.
func (h *QuestionHandler) DeleteQuestion(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting question", "question_id", id)

	if err := h.questionService.Delete(c.Request.Context(), actor, id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusNoContent, nil)
}

func questionFiltersFromQuery(c *gin.Context) repositories.QuestionFilters {
	filters := repositories.QuestionFilters{
		Limit:     20,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			filters.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filters.Offset = n
		}
	}

	if v := c.Query("type"); v != "" {
		qt := models.QuestionType(v)
		filters.Type = &qt
	}
	if v := c.Query("difficulty"); v != "" {
		d := models.DifficultyLevel(v)
		filters.Difficulty = &d
	}
	if v := c.Query("subject"); v != "" {
		filters.Subject = &v
	}
	if v := c.Query("created_by"); v != "" {
		filters.CreatedBy = &v
	}

	return filters
}
