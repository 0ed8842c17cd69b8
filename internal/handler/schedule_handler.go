package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/service"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/response"
)

// ScheduleHandler exposes schedule generation and study session endpoints.
type ScheduleHandler struct {
	schedules *service.ScheduleService
	exports   *service.ExportService
}

// NewScheduleHandler constructs ScheduleHandler.
func NewScheduleHandler(schedules *service.ScheduleService, exports *service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{schedules: schedules, exports: exports}
}

// Generate godoc
// @Summary Generate study schedule
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Generation window"
// @Success 200 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	plan, err := h.schedules.Generate(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, plan, nil)
}

// ListSessions godoc
// @Summary List study sessions
// @Tags Schedules
// @Produce json
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /schedules/sessions [get]
func (h *ScheduleHandler) ListSessions(c *gin.Context) {
	var query dto.SessionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	sessions, err := h.schedules.ListSessions(c.Request.Context(), userIDFromContext(c), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, nil)
}

// UpdateSession godoc
// @Summary Update a study session
// @Tags Schedules
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param payload body dto.UpdateSessionRequest true "Fields to update"
// @Success 200 {object} response.Envelope
// @Router /schedules/sessions/{id} [patch]
func (h *ScheduleHandler) UpdateSession(c *gin.Context) {
	var req dto.UpdateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.schedules.UpdateSession(c.Request.Context(), userIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// DeleteSession godoc
// @Summary Delete a study session
// @Tags Schedules
// @Param id path string true "Session ID"
// @Success 204
// @Router /schedules/sessions/{id} [delete]
func (h *ScheduleHandler) DeleteSession(c *gin.Context) {
	if err := h.schedules.DeleteSession(c.Request.Context(), userIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Export godoc
// @Summary Export study sessions
// @Tags Schedules
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Param from query string false "Window start (YYYY-MM-DD)"
// @Param to query string false "Window end (YYYY-MM-DD)"
// @Success 200 {file} binary
// @Router /schedules/export [get]
func (h *ScheduleHandler) Export(c *gin.Context) {
	var query dto.SessionQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	result, err := h.exports.Export(c.Request.Context(), userIDFromContext(c), format, query)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", "attachment; filename="+result.Filename)
	c.Data(http.StatusOK, result.ContentType, result.Payload)
}
