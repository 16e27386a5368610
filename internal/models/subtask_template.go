package models

import "time"

// SubtaskTemplate describes one step of a recurring parent task. Daily
// generation stamps each template into a dated child instance.
type SubtaskTemplate struct {
	ID           string    `gorm:"type:varchar(36);primarykey" json:"id"`
	ParentTaskID string    `gorm:"type:varchar(36);not null;index" json:"parent_task_id"`
	Title        string    `gorm:"not null" json:"title"`
	Description  string    `gorm:"type:text" json:"description"`
	Difficulty   int       `gorm:"not null;default:1" json:"difficulty"`
	Experience   int       `gorm:"not null;default:10" json:"experience"`
	TaskOrder    int       `gorm:"not null;default:0" json:"task_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
