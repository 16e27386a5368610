package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/database"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"github.com/hitoha/lifequest-api/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// AchievementHandlerTestSuite defines the test suite for AchievementHandler
type AchievementHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *AchievementHandler
	userID  string
}

// SetupTest runs before each test
func (suite *AchievementHandlerTestSuite) SetupTest() {
	var err error

	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(
		&models.Task{},
		&models.SubtaskTemplate{},
		&models.Skill{},
		&models.UserProfile{},
		&models.UserAttributes{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
	suite.Require().NoError(err)

	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	achievementRepo := repository.NewAchievementRepository(suite.db)
	achievementService := services.NewAchievementService(
		achievementRepo,
		taskRepo,
		repository.NewSkillRepository(suite.db),
		repository.NewProfileRepository(suite.db),
	)
	taskService := services.NewTaskService(taskRepo, repository.NewSubtaskTemplateRepository(suite.db), achievementService)

	// Create handler (without AI service for tests)
	suite.handler = NewAchievementHandler(achievementService, achievementRepo, taskService, nil)
	suite.userID = uuid.NewString()

	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *AchievementHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *AchievementHandlerTestSuite) createContext(method, url string, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, url, nil)
	c.Set(constants.ContextKeyUserID, userID)
	return c, w
}

// TestCheckAchievements_ReportsNewUnlocks tests the on-demand evaluation endpoint
func (suite *AchievementHandlerTestSuite) TestCheckAchievements_ReportsNewUnlocks() {
	achievement := &models.Achievement{
		ID:               uuid.NewString(),
		Name:             "first step",
		RequirementType:  models.RequirementTaskComplete,
		RequirementValue: 1,
	}
	suite.Require().NoError(suite.db.Create(achievement).Error)
	task := &models.Task{
		ID:       uuid.NewString(),
		UserID:   suite.userID,
		Title:    "Done already",
		Status:   models.TaskStatusCompleted,
		TaskType: models.TaskTypeSide,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	c, w := suite.createContext("POST", "/api/achievements/check", suite.userID)

	suite.handler.CheckAchievements(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var count int64
	suite.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND achievement_id = ?", suite.userID, achievement.ID).
		Count(&count)
	assert.Equal(suite.T(), int64(1), count)
}

// TestGenerateForTask_AIServiceUnavailable tests generation without an AI service
func (suite *AchievementHandlerTestSuite) TestGenerateForTask_AIServiceUnavailable() {
	task := &models.Task{
		ID:       uuid.NewString(),
		UserID:   suite.userID,
		Title:    "Read a chapter",
		Status:   models.TaskStatusPending,
		TaskType: models.TaskTypeSide,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	c, w := suite.createContext("POST", "/api/tasks/"+task.ID+"/achievement", suite.userID)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.GenerateForTask(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestGenerateForTask_OtherUsersTask tests generation against a foreign task
func (suite *AchievementHandlerTestSuite) TestGenerateForTask_OtherUsersTask() {
	task := &models.Task{
		ID:       uuid.NewString(),
		UserID:   uuid.NewString(),
		Title:    "Not yours",
		Status:   models.TaskStatusPending,
		TaskType: models.TaskTypeSide,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	c, w := suite.createContext("POST", "/api/tasks/"+task.ID+"/achievement", suite.userID)
	c.Params = gin.Params{{Key: "id", Value: task.ID}}

	suite.handler.GenerateForTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestSuite runs the test suite
func TestAchievementHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AchievementHandlerTestSuite))
}
