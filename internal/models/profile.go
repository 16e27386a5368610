package models

import "time"

// UserProfile holds the gamified progression counters for a user. The
// consecutive_days achievement requirement reads ConsecutiveLoginDays.
type UserProfile struct {
	ID                   string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID               string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Level                int       `gorm:"not null;default:1" json:"level"`
	Experience           int       `gorm:"not null;default:0" json:"experience"`
	MaxExperience        int       `gorm:"not null;default:100" json:"max_experience"`
	Title                string    `gorm:"type:varchar(50)" json:"title"`
	AdventureDays        int       `gorm:"not null;default:0" json:"adventure_days"`
	ConsecutiveLoginDays int       `gorm:"not null;default:0" json:"consecutive_login_days"`
	PersonaType          string    `gorm:"type:varchar(20)" json:"persona_type"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

// Attribute names accepted by UserAttributes.Score.
const (
	AttributeIntelligence = "intelligence"
	AttributeEndurance    = "endurance"
	AttributeCreativity   = "creativity"
	AttributeSocial       = "social"
	AttributeFocus        = "focus"
	AttributeAdaptability = "adaptability"
)

// UserAttributes is the single per-user record of the six named attribute
// scores (0-100) consumed by the *_attribute achievement requirements.
type UserAttributes struct {
	ID           string    `gorm:"type:varchar(36);primarykey" json:"id"`
	UserID       string    `gorm:"type:varchar(36);not null;uniqueIndex" json:"user_id"`
	Intelligence int       `gorm:"not null;default:0" json:"intelligence"`
	Endurance    int       `gorm:"not null;default:0" json:"endurance"`
	Creativity   int       `gorm:"not null;default:0" json:"creativity"`
	Social       int       `gorm:"not null;default:0" json:"social"`
	Focus        int       `gorm:"not null;default:0" json:"focus"`
	Adaptability int       `gorm:"not null;default:0" json:"adaptability"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Score returns the named attribute value. Unknown names report false.
func (a UserAttributes) Score(name string) (int, bool) {
	switch name {
	case AttributeIntelligence:
		return a.Intelligence, true
	case AttributeEndurance:
		return a.Endurance, true
	case AttributeCreativity:
		return a.Creativity, true
	case AttributeSocial:
		return a.Social, true
	case AttributeFocus:
		return a.Focus, true
	case AttributeAdaptability:
		return a.Adaptability, true
	default:
		return 0, false
	}
}
