package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apierrors "github.com/hitoha/lifequest-api/internal/errors"
	"github.com/hitoha/lifequest-api/internal/middleware"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"github.com/hitoha/lifequest-api/internal/services"
	"gorm.io/gorm"
)

// ProfileHandler exposes the gamified profile, attribute and skill endpoints.
type ProfileHandler struct {
	profileRepo        repository.ProfileRepository
	skillRepo          repository.SkillRepository
	achievementService *services.AchievementService
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(
	profileRepo repository.ProfileRepository,
	skillRepo repository.SkillRepository,
	achievementService *services.AchievementService,
) *ProfileHandler {
	return &ProfileHandler{
		profileRepo:        profileRepo,
		skillRepo:          skillRepo,
		achievementService: achievementService,
	}
}

// GetProfile returns the current user's progression profile.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	profile, err := h.profileRepo.FindProfile(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Profile not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch profile")
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetAttributes returns the current user's six attribute scores.
func (h *ProfileHandler) GetAttributes(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	attrs, err := h.profileRepo.FindAttributes(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Attributes not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch attributes")
		return
	}

	c.JSON(http.StatusOK, attrs)
}

// UpdateAttributes overwrites the provided attribute scores. An attribute
// change can make *_attribute achievements eligible, so the catalog is
// re-evaluated afterwards.
func (h *ProfileHandler) UpdateAttributes(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type UpdateAttributesRequest struct {
		Intelligence *int `json:"intelligence" binding:"omitempty,min=0,max=100"`
		Endurance    *int `json:"endurance" binding:"omitempty,min=0,max=100"`
		Creativity   *int `json:"creativity" binding:"omitempty,min=0,max=100"`
		Social       *int `json:"social" binding:"omitempty,min=0,max=100"`
		Focus        *int `json:"focus" binding:"omitempty,min=0,max=100"`
		Adaptability *int `json:"adaptability" binding:"omitempty,min=0,max=100"`
	}

	var req UpdateAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	attrs, err := h.profileRepo.FindAttributes(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apierrors.NotFound(c, "Attributes not found")
			return
		}
		apierrors.InternalError(c, "Failed to fetch attributes")
		return
	}

	if req.Intelligence != nil {
		attrs.Intelligence = *req.Intelligence
	}
	if req.Endurance != nil {
		attrs.Endurance = *req.Endurance
	}
	if req.Creativity != nil {
		attrs.Creativity = *req.Creativity
	}
	if req.Social != nil {
		attrs.Social = *req.Social
	}
	if req.Focus != nil {
		attrs.Focus = *req.Focus
	}
	if req.Adaptability != nil {
		attrs.Adaptability = *req.Adaptability
	}

	if err := h.profileRepo.UpdateAttributes(attrs); err != nil {
		apierrors.InternalError(c, "Failed to update attributes")
		return
	}

	if _, err := h.achievementService.CheckAndUnlock(userID); err != nil {
		log.Printf("achievement evaluation after attribute update for user %s failed: %v", userID, err)
	}

	c.JSON(http.StatusOK, attrs)
}

// ListSkills returns the current user's skills.
func (h *ProfileHandler) ListSkills(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	skills, err := h.skillRepo.ListByUser(userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch skills")
		return
	}

	c.JSON(http.StatusOK, gin.H{"skills": skills})
}

// CreateSkill registers a new skill for the current user.
func (h *ProfileHandler) CreateSkill(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateSkillRequest struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		Level       int    `json:"level" binding:"omitempty,min=1,max=10"`
	}

	var req CreateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	level := req.Level
	if level == 0 {
		level = 1
	}

	skill := &models.Skill{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        req.Name,
		Description: req.Description,
		Level:       level,
	}
	if err := h.skillRepo.Create(skill); err != nil {
		apierrors.InternalError(c, "Failed to create skill")
		return
	}

	c.JSON(http.StatusCreated, skill)
}
