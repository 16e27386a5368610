package repository

import (
	"github.com/hitoha/lifequest-api/internal/models"
	"gorm.io/gorm"
)

// GormSkillRepository is a GORM implementation of SkillRepository
type GormSkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new SkillRepository
func NewSkillRepository(db *gorm.DB) SkillRepository {
	return &GormSkillRepository{db: db}
}

func (r *GormSkillRepository) Create(skill *models.Skill) error {
	return r.db.Create(skill).Error
}

func (r *GormSkillRepository) ListByUser(userID string) ([]models.Skill, error) {
	var skills []models.Skill
	err := r.db.Where("user_id = ?", userID).Order("created_at ASC").Find(&skills).Error
	return skills, err
}

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

func (r *GormProfileRepository) FindProfile(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := r.db.Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *GormProfileRepository) FindAttributes(userID string) (*models.UserAttributes, error) {
	var attrs models.UserAttributes
	if err := r.db.Where("user_id = ?", userID).First(&attrs).Error; err != nil {
		return nil, err
	}
	return &attrs, nil
}

func (r *GormProfileRepository) UpdateAttributes(attrs *models.UserAttributes) error {
	return r.db.Save(attrs).Error
}

// GormSubtaskTemplateRepository is a GORM implementation of SubtaskTemplateRepository
type GormSubtaskTemplateRepository struct {
	db *gorm.DB
}

// NewSubtaskTemplateRepository creates a new SubtaskTemplateRepository
func NewSubtaskTemplateRepository(db *gorm.DB) SubtaskTemplateRepository {
	return &GormSubtaskTemplateRepository{db: db}
}

func (r *GormSubtaskTemplateRepository) CreateBatch(templates []models.SubtaskTemplate) error {
	if len(templates) == 0 {
		return nil
	}
	return r.db.Create(&templates).Error
}

func (r *GormSubtaskTemplateRepository) ListByParent(parentTaskID string) ([]models.SubtaskTemplate, error) {
	var templates []models.SubtaskTemplate
	err := r.db.
		Where("parent_task_id = ?", parentTaskID).
		Order("task_order ASC").
		Find(&templates).Error
	return templates, err
}
