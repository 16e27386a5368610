package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/services"
)

// AnalyticsHandler exposes the behavior summary endpoint.
type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// GetSummary recomputes and returns the current user's behavior summary.
func (h *AnalyticsHandler) GetSummary(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	summary, err := h.analyticsService.GenerateSummary(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to build behavior summary")
		return
	}

	c.JSON(http.StatusOK, summary)
}
