package models

import "time"

// Skill is a user-owned ability tracked for the skill_level achievement
// requirement. Level runs 1-10.
type Skill struct {
	ID          string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID      string    `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Level       int       `gorm:"not null;default:1" json:"level"`
	Progress    float64   `gorm:"not null;default:0" json:"progress"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
