package repository

import (
	"github.com/hitoha/lifequest-api/internal/models"
	"gorm.io/gorm"
)

// GormAchievementRepository is a GORM implementation of AchievementRepository
type GormAchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &GormAchievementRepository{db: db}
}

// Create adds a catalog entry
func (r *GormAchievementRepository) Create(achievement *models.Achievement) error {
	return r.db.Create(achievement).Error
}

// ListAll returns the full catalog in insertion order
func (r *GormAchievementRepository) ListAll() ([]models.Achievement, error) {
	var achievements []models.Achievement
	err := r.db.Order("created_at ASC, id ASC").Find(&achievements).Error
	return achievements, err
}

// ListUnlockedIDs returns the set of achievement ids a user has unlocked
func (r *GormAchievementRepository) ListUnlockedIDs(userID string) (map[string]bool, error) {
	var ids []string
	err := r.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Pluck("achievement_id", &ids).Error
	if err != nil {
		return nil, err
	}

	unlocked := make(map[string]bool, len(ids))
	for _, id := range ids {
		unlocked[id] = true
	}
	return unlocked, nil
}

// ListUnlockedNames returns the names of a user's unlocked achievements
func (r *GormAchievementRepository) ListUnlockedNames(userID string) ([]string, error) {
	var names []string
	err := r.db.Model(&models.Achievement{}).
		Joins("JOIN user_achievements ON user_achievements.achievement_id = achievements.id").
		Where("user_achievements.user_id = ?", userID).
		Pluck("achievements.name", &names).Error
	return names, err
}

// CreateUserAchievement records one unlock
func (r *GormAchievementRepository) CreateUserAchievement(ua *models.UserAchievement) error {
	return r.db.Create(ua).Error
}

// ListUserAchievements lists a user's unlocks with catalog rows preloaded
func (r *GormAchievementRepository) ListUserAchievements(userID string) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	err := r.db.
		Preload("Achievement").
		Where("user_id = ?", userID).
		Order("achieved_at DESC").
		Find(&unlocks).Error
	return unlocks, err
}
