package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/examforge/exam-service/internal/services"
	"github.com/examforge/exam-service/internal/utils"
	"github.com/examforge/exam-service/internal/validator"
)

// BulkQuestionHandler exposes the bulk authoring pipeline: manual
// entry, CSV import preview and CSV export.
type BulkQuestionHandler struct {
	BaseHandler
	bulkService services.BulkQuestionService
	validator   *validator.Validator
}

func NewBulkQuestionHandler(
	bulkService services.BulkQuestionService,
	validator *validator.Validator,
	logger utils.Logger,
) *BulkQuestionHandler {
	return &BulkQuestionHandler{
		BaseHandler: NewBaseHandler(logger),
		bulkService: bulkService,
		validator:   validator,
	}
}

// CreateSession opens a fresh bulk session in setup mode.
func (h *BulkQuestionHandler) CreateSession(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Creating bulk session", "user_id", actor.UserID)

	session, err := h.bulkService.CreateSession(c.Request.Context(), actor)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// GetSession returns the caller's session state.
func (h *BulkQuestionHandler) GetSession(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	session, err := h.bulkService.GetSession(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// StartManual moves a setup session into manual entry with a block of
// blank questions.
func (h *BulkQuestionHandler) StartManual(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req validator.StartManualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting manual bulk entry", "subject", req.Subject, "count", req.Count)

	session, err := h.bulkService.StartManual(c.Request.Context(), actor, c.Param("id"), req.Subject, req.Count)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// StartImport parses an uploaded CSV into an editable preview.
func (h *BulkQuestionHandler) StartImport(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req validator.StartImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting CSV import", "subject", req.Subject, "bytes", len(req.FileData))

	session, err := h.bulkService.StartImport(c.Request.Context(), actor, c.Param("id"), req.Subject, req.FileData)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// StartExport loads the caller's bank for a subject into an export
// preview with every row pre-selected.
func (h *BulkQuestionHandler) StartExport(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req validator.StartExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Starting export preview", "subject", req.Subject)

	session, err := h.bulkService.StartExport(c.Request.Context(), actor, c.Param("id"), req.Subject)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// UpdateQuestion replaces one question of the session.
func (h *BulkQuestionHandler) UpdateQuestion(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}

	var req validator.UpdateQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.bulkService.UpdateQuestion(c.Request.Context(), actor, c.Param("id"), index, req.Question)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// ToggleSelection flips one export row's checkbox.
func (h *BulkQuestionHandler) ToggleSelection(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	index, ok := h.parseIndexParam(c, "index")
	if !ok {
		return
	}

	session, err := h.bulkService.ToggleSelection(c.Request.Context(), actor, c.Param("id"), index)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// SetAllSelections selects or deselects every export row.
func (h *BulkQuestionHandler) SetAllSelections(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Selected bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	session, err := h.bulkService.SetAllSelections(c.Request.Context(), actor, c.Param("id"), req.Selected)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Cancel resets the session back to setup.
func (h *BulkQuestionHandler) Cancel(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	session, err := h.bulkService.Cancel(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// Submit inserts every question of the session into the bank.
func (h *BulkQuestionHandler) Submit(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Submitting bulk questions", "session_id", c.Param("id"))

	result, err := h.bulkService.Submit(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// Export streams the selected rows as a CSV download.
func (h *BulkQuestionHandler) Export(c *gin.Context) {
	actor, ok := h.actorFromContext(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting bulk questions", "session_id", c.Param("id"))

	result, err := h.bulkService.Export(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Data(http.StatusOK, "text/csv", []byte(result.Data))
}
