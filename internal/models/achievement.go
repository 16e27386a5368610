package models

import (
	"strings"
	"time"
)

// Achievement requirement types. An empty RequirementType means the
// achievement can never be satisfied; the evaluator logs and skips it.
const (
	RequirementTaskComplete         = "task_complete"
	RequirementLearningTaskComplete = "learning_task_complete"
	RequirementSkillLevel           = "skill_level"
	RequirementConsecutiveDays      = "consecutive_days"
	RequirementStreakRecovery       = "streak_recovery"

	// Attribute requirements share the "_attribute" suffix:
	// intelligence_attribute, endurance_attribute, creativity_attribute,
	// social_attribute, focus_attribute, adaptability_attribute.
	attributeRequirementSuffix = "_attribute"
)

// AttributeRequirementName extracts the attribute name from an
// "<attribute>_attribute" requirement type.
func AttributeRequirementName(requirementType string) (string, bool) {
	if !strings.HasSuffix(requirementType, attributeRequirementSuffix) {
		return "", false
	}
	return strings.TrimSuffix(requirementType, attributeRequirementSuffix), true
}

// Achievement is a catalog entry. Rows are authored externally (seed, admin
// or AI generation) and are read-only to the evaluator.
type Achievement struct {
	ID               string `gorm:"type:varchar(36);primarykey" json:"id"`
	Name             string `gorm:"not null" json:"name"`
	Description      string `gorm:"type:text" json:"description"`
	Icon             string `gorm:"type:varchar(50)" json:"icon"`
	Category         string `gorm:"type:varchar(50)" json:"category"`
	RequirementType  string `gorm:"type:varchar(40);index" json:"requirement_type"`
	RequirementValue int    `gorm:"not null;default:0" json:"requirement_value"`
	ExperienceReward int    `gorm:"not null;default:0" json:"experience_reward"`

	// RelatedTaskID scopes a task_complete requirement to one task.
	RelatedTaskID *string `gorm:"type:varchar(36);index" json:"related_task_id"`

	CreatedAt time.Time `json:"created_at"`
}

// UserAchievement records one unlock. The (user_id, achievement_id) unique
// index is what protects concurrent evaluations from duplicate unlocks.
type UserAchievement struct {
	ID            string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID        string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	AchievementID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	AchievedAt    time.Time `json:"achieved_at"`
	Progress      int       `gorm:"not null;default:0" json:"progress"`

	// Relations
	Achievement Achievement `gorm:"foreignKey:AchievementID" json:"achievement,omitempty"`
}
