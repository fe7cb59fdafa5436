package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/martijn/homedash/internal/api/dto"
	"github.com/martijn/homedash/internal/core/telemetry"
)

type TelemetryHandler struct {
	generator *telemetry.Generator
}

func NewTelemetryHandler(generator *telemetry.Generator) *TelemetryHandler {
	return &TelemetryHandler{generator: generator}
}

// Metrics handles GET /metrics
func (h *TelemetryHandler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewMetricsResponse(h.generator.Metrics()))
}

// Dashboard handles GET /dashboard-data
func (h *TelemetryHandler) Dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewDashboardDataResponse(h.generator.Dashboard()))
}

// ToggleDevice handles POST /devices/:id/toggle
func (h *TelemetryHandler) ToggleDevice(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{
		Message: h.generator.ToggleDevice(c.Param("id")),
	})
}
