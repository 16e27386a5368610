package handlers

import (
	"bytes"
	"encoding/json"
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

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	handler *TaskHandler
	userID  string
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	// Run migrations
	err = suite.db.AutoMigrate(
		&models.User{},
		&models.Task{},
		&models.SubtaskTemplate{},
		&models.Skill{},
		&models.UserProfile{},
		&models.UserAttributes{},
		&models.Achievement{},
		&models.UserAchievement{},
	)
	suite.Require().NoError(err)

	// Set the test DB as the default database
	database.SetDB(suite.db)

	taskRepo := repository.NewTaskRepository(suite.db)
	evaluator := services.NewAchievementService(
		repository.NewAchievementRepository(suite.db),
		taskRepo,
		repository.NewSkillRepository(suite.db),
		repository.NewProfileRepository(suite.db),
	)
	taskService := services.NewTaskService(taskRepo, repository.NewSubtaskTemplateRepository(suite.db), evaluator)

	// Create handler (without AI service for tests)
	suite.handler = NewTaskHandler(taskService, nil)
	suite.userID = uuid.NewString()

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

// TearDownTest runs after each test
func (suite *TaskHandlerTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

// Helper function to create test data
func (suite *TaskHandlerTestSuite) createTestTask(title string, status models.TaskStatus) *models.Task {
	task := &models.Task{
		ID:       uuid.NewString(),
		UserID:   suite.userID,
		Title:    title,
		Status:   status,
		TaskType: models.TaskTypeSide,
	}
	suite.db.Create(task)
	return task
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

func (suite *TaskHandlerTestSuite) setIDParam(c *gin.Context, id string) {
	c.Params = gin.Params{{Key: "id", Value: id}}
}

// TestListTasks_Success tests successful task listing
func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	task := suite.createTestTask("Morning run", models.TaskStatusPending)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.userID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Contains(suite.T(), response, "tasks")
	assert.Contains(suite.T(), response, "pagination")

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)

	firstTask := tasks[0].(map[string]interface{})
	assert.Equal(suite.T(), task.Title, firstTask["title"])
}

// TestListTasks_StatusFilter tests filtering by status
func (suite *TaskHandlerTestSuite) TestListTasks_StatusFilter() {
	suite.createTestTask("Pending task", models.TaskStatusPending)
	suite.createTestTask("Done task", models.TaskStatusCompleted)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.userID)
	c.Request.URL.RawQuery = "status=2"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)

	tasks := response["tasks"].([]interface{})
	assert.Len(suite.T(), tasks, 1)
	assert.Equal(suite.T(), "Done task", tasks[0].(map[string]interface{})["title"])
}

// TestListTasks_InvalidStatus tests listing with an out-of-range status
func (suite *TaskHandlerTestSuite) TestListTasks_InvalidStatus() {
	c, w := suite.createAuthContext("GET", "/api/tasks", nil, suite.userID)
	c.Request.URL.RawQuery = "status=42"

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestListTasks_Unauthorized tests listing without authentication
func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

// TestGetTask_Success tests successful task retrieval
func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	task := suite.createTestTask("Read a chapter", models.TaskStatusPending)

	c, w := suite.createAuthContext("GET", "/api/tasks/"+task.ID, nil, suite.userID)
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.Task
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), task.ID, response.ID)
	assert.Equal(suite.T(), task.Title, response.Title)
}

// TestGetTask_OtherUsersTask tests that foreign tasks read as missing
func (suite *TaskHandlerTestSuite) TestGetTask_OtherUsersTask() {
	task := suite.createTestTask("Private task", models.TaskStatusPending)

	c, w := suite.createAuthContext("GET", "/api/tasks/"+task.ID, nil, uuid.NewString())
	suite.setIDParam(c, task.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestCreateTask_Success tests successful task creation
func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	requestBody := map[string]interface{}{
		"title":       "New quest",
		"description": "A small daily win",
		"category":    "fitness",
		"difficulty":  2,
		"experience":  20,
		"skill_tags":  []string{"endurance"},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.userID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response models.Task
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "New quest", response.Title)
	assert.Equal(suite.T(), suite.userID, response.UserID)
	assert.Equal(suite.T(), models.TaskTypeSide, response.TaskType)
}

// TestCreateTask_InvalidRequest tests task creation with invalid request
func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	// Missing required field: title
	requestBody := map[string]interface{}{
		"description": "no title here",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, suite.userID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestCreateRecurringTask_Success tests creating a recurring parent
func (suite *TaskHandlerTestSuite) TestCreateRecurringTask_Success() {
	requestBody := map[string]interface{}{
		"title":              "Morning routine",
		"recurrence_pattern": "weekdays",
		"subtask_templates": []map[string]interface{}{
			{"title": "Stretch", "difficulty": 1},
			{"title": "Journal", "difficulty": 2},
		},
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/recurring", body, suite.userID)

	suite.handler.CreateRecurringTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response models.Task
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), response.IsParentTask)
	assert.True(suite.T(), response.IsRecurring)
	assert.Equal(suite.T(), models.PatternWeekdays, response.RecurrencePattern)

	var templateCount int64
	suite.db.Model(&models.SubtaskTemplate{}).Where("parent_task_id = ?", response.ID).Count(&templateCount)
	assert.Equal(suite.T(), int64(2), templateCount)
}

// TestCreateRecurringTask_UnknownPattern tests rejection of unknown patterns
func (suite *TaskHandlerTestSuite) TestCreateRecurringTask_UnknownPattern() {
	requestBody := map[string]interface{}{
		"title":              "Fortnightly chores",
		"recurrence_pattern": "fortnightly",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/recurring", body, suite.userID)

	suite.handler.CreateRecurringTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_Success tests successful task update
func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	task := suite.createTestTask("Old title", models.TaskStatusPending)

	requestBody := map[string]interface{}{
		"title":       "Updated title",
		"description": "Updated description",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, suite.userID)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response models.Task
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Updated title", response.Title)
	assert.Equal(suite.T(), "Updated description", response.Description)
}

// TestUpdateTask_InvalidStatus tests updating to an out-of-range status
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidStatus() {
	task := suite.createTestTask("Test task", models.TaskStatusPending)

	requestBody := map[string]interface{}{
		"status": 42,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, body, suite.userID)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestUpdateTask_InvalidRequest tests task update with invalid request
func (suite *TaskHandlerTestSuite) TestUpdateTask_InvalidRequest() {
	task := suite.createTestTask("Test task", models.TaskStatusPending)

	c, w := suite.createAuthContext("PUT", "/api/tasks/"+task.ID, []byte("invalid json"), suite.userID)
	suite.setIDParam(c, task.ID)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

// TestDeleteTask_Success tests successful task deletion
func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	task := suite.createTestTask("Task to delete", models.TaskStatusPending)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, suite.userID)
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response map[string]interface{}
	err := json.Unmarshal(w.Body.Bytes(), &response)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Task deleted successfully", response["message"])

	var deletedTask models.Task
	err = suite.db.First(&deletedTask, "id = ?", task.ID).Error
	assert.Error(suite.T(), err)
}

// TestDeleteTask_OtherUsersTask tests deletion of a foreign task
func (suite *TaskHandlerTestSuite) TestDeleteTask_OtherUsersTask() {
	task := suite.createTestTask("Task to delete", models.TaskStatusPending)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/"+task.ID, nil, uuid.NewString())
	suite.setIDParam(c, task.ID)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusNotFound, w.Code)
}

// TestGenerateTasks_AIServiceUnavailable tests generation without an AI service
func (suite *TaskHandlerTestSuite) TestGenerateTasks_AIServiceUnavailable() {
	requestBody := map[string]interface{}{
		"text": "tomorrow: buy groceries and go for a run",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks/generate", body, suite.userID)

	suite.handler.GenerateTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

// TestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
