package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/service"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/response"
)

// AvailabilityHandler exposes weekly availability endpoints.
type AvailabilityHandler struct {
	availability *service.AvailabilityService
}

// NewAvailabilityHandler constructs AvailabilityHandler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{availability: availability}
}

// List godoc
// @Summary List availability slots
// @Tags Availability
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /availability [get]
func (h *AvailabilityHandler) List(c *gin.Context) {
	slots, err := h.availability.List(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil)
}

// Create godoc
// @Summary Create availability slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityRequest true "Availability payload"
// @Success 201 {object} response.Envelope
// @Router /availability [post]
func (h *AvailabilityHandler) Create(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.availability.Create(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, slot)
}

// Update godoc
// @Summary Update availability slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Slot ID"
// @Param payload body dto.AvailabilityRequest true "Availability payload"
// @Success 200 {object} response.Envelope
// @Router /availability/{id} [put]
func (h *AvailabilityHandler) Update(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slot, err := h.availability.Update(c.Request.Context(), userIDFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Delete godoc
// @Summary Delete availability slot
// @Tags Availability
// @Param id path string true "Slot ID"
// @Success 204
// @Router /availability/{id} [delete]
func (h *AvailabilityHandler) Delete(c *gin.Context) {
	if err := h.availability.Delete(c.Request.Context(), userIDFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
