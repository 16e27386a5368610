package repository

import (
	"errors"
	"fmt"

	"github.com/hitoha/lifequest-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the signup transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateProfile is returned when creating the gamified profile fails inside the signup transaction.
	ErrCreateProfile = errors.New("user repository: create profile failed")
	// ErrCreateAttributes is returned when creating the attribute record fails inside the signup transaction.
	ErrCreateAttributes = errors.New("user repository: create attributes failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// CreateWithGamifiedDefaults creates a user, their profile and their attribute record atomically.
func (r *GormUserRepository) CreateWithGamifiedDefaults(user *models.User, profile *models.UserProfile, attrs *models.UserAttributes) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProfile, err)
		}

		attrs.UserID = user.ID
		if err := tx.Create(attrs).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateAttributes, err)
		}

		return nil
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
