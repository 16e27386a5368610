package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/repository"
	"github.com/hitoha/lifequest-api/internal/services"
)

// AchievementHandler exposes the achievement catalog, a user's unlocks and
// the on-demand evaluation endpoint.
type AchievementHandler struct {
	achievementService *services.AchievementService
	achievementRepo    repository.AchievementRepository
	taskService        *services.TaskService
	aiService          *services.AIService
}

// NewAchievementHandler creates a new AchievementHandler.
func NewAchievementHandler(
	achievementService *services.AchievementService,
	achievementRepo repository.AchievementRepository,
	taskService *services.TaskService,
	aiService *services.AIService,
) *AchievementHandler {
	return &AchievementHandler{
		achievementService: achievementService,
		achievementRepo:    achievementRepo,
		taskService:        taskService,
		aiService:          aiService,
	}
}

// ListCatalog returns every achievement definition.
func (h *AchievementHandler) ListCatalog(c *gin.Context) {
	catalog, err := h.achievementService.ListCatalog()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": catalog})
}

// ListUnlocked returns the current user's unlocked achievements.
func (h *AchievementHandler) ListUnlocked(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	unlocks, err := h.achievementService.ListUserAchievements(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch unlocked achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{"achievements": unlocks})
}

// CheckAchievements re-evaluates the catalog for the current user and
// returns whatever newly unlocked.
func (h *AchievementHandler) CheckAchievements(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	unlocked, err := h.achievementService.CheckAndUnlock(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to evaluate achievements")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"newly_unlocked": unlocked,
		"count":          len(unlocked),
	})
}

// GenerateForTask drafts an AI achievement tied to one of the user's tasks
// and adds it to the catalog.
func (h *AchievementHandler) GenerateForTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	task, err := h.taskService.GetTask(c.Param("id"), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	// Check if AI service is available
	if h.aiService == nil {
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
		return
	}

	achievement, err := h.aiService.GenerateAchievementForTask(c.Request.Context(), task)
	if err != nil {
		apierrors.InternalError(c, "Failed to generate achievement")
		return
	}

	if err := h.achievementRepo.Create(achievement); err != nil {
		apierrors.InternalError(c, "Failed to save achievement")
		return
	}

	c.JSON(http.StatusCreated, achievement)
}
