package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/models"
	"github.com/examforge/exam-service/internal/questioncsv"
	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
)

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse wraps payloads that carry no natural top-level shape.
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "method", c.Request.Method, "path", c.Request.URL.Path)
	h.logger.Info(msg, args...)
}

// parseIDParam reads a numeric path parameter. On failure it writes the
// 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

// parseIndexParam reads a zero-based index path parameter.
func (h *BaseHandler) parseIndexParam(c *gin.Context, name string) (int, bool) {
	raw := c.Param(name)
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0, false
	}
	return idx, true
}

// actorFromContext builds the acting identity from the values the auth
// middleware stored. Missing values mean the middleware did not run.
func (h *BaseHandler) actorFromContext(c *gin.Context) (models.Actor, bool) {
	userID := c.GetString("user_id")
	schoolID := c.GetString("school_id")
	if userID == "" || schoolID == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return models.Actor{}, false
	}
	return models.Actor{UserID: userID, SchoolID: schoolID}, true
}

// handleServiceError maps service errors onto HTTP statuses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuestionNotFound),
		errors.Is(err, services.ErrExamNotFound),
		errors.Is(err, services.ErrAttemptNotFound),
		errors.Is(err, services.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Message: err.Error()})

	case errors.Is(err, services.ErrValidationFailed),
		errors.Is(err, services.ErrSubjectRequired),
		errors.Is(err, services.ErrCountOutOfRange),
		errors.Is(err, services.ErrImportFileTooShort),
		errors.Is(err, services.ErrEmptyQuestionBank),
		errors.Is(err, services.ErrNoSelection),
		errors.Is(err, services.ErrWrongSessionMode),
		errors.Is(err, questioncsv.ErrNoValidQuestions):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: err.Error()})

	default:
		utils.LoggerFromContext(c, h.logger).Error("Unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
