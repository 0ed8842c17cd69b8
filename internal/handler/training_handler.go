package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aptora/aptora-api/internal/dto"
	"github.com/aptora/aptora-api/internal/models"
	"github.com/aptora/aptora-api/internal/service"
	appErrors "github.com/aptora/aptora-api/pkg/errors"
	"github.com/aptora/aptora-api/pkg/response"
)

// TrainingHandler exposes policy training endpoints.
type TrainingHandler struct {
	training *service.TrainingService
}

// NewTrainingHandler constructs TrainingHandler.
func NewTrainingHandler(training *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

// Run godoc
// @Summary Start a policy training run
// @Tags Training
// @Accept json
// @Produce json
// @Param payload body dto.TrainRequest false "Training parameters"
// @Success 202 {object} response.Envelope
// @Router /training/run [post]
func (h *TrainingHandler) Run(c *gin.Context) {
	var req dto.TrainRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
			return
		}
	}
	run, err := h.training.Enqueue(c.Request.Context(), userIDFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, dto.TrainJobResponse{ID: run.ID, Status: run.Status}, nil)
}

// Status godoc
// @Summary Get training run status
// @Tags Training
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} response.Envelope
// @Router /training/runs/{id} [get]
func (h *TrainingHandler) Status(c *gin.Context) {
	run, err := h.training.Status(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, trainStatusResponse(run), nil)
}

func trainStatusResponse(run *models.TrainingRun) dto.TrainStatusResponse {
	resp := dto.TrainStatusResponse{
		ID:         run.ID,
		Status:     run.Status,
		Budget:     run.Budget,
		Scenarios:  run.Scenarios,
		Episodes:   run.Episodes,
		BestReward: run.BestReward,
	}
	if run.ArtifactPath != "" {
		resp.ArtifactPath = &run.ArtifactPath
	}
	if run.Error != "" {
		resp.Error = &run.Error
	}
	return resp
}
