package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ProgressServiceTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *ProgressService
}

func (suite *ProgressServiceTestSuite) SetupTest() {
	var err error
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	suite.Require().NoError(err)

	err = suite.db.AutoMigrate(&models.Task{})
	suite.Require().NoError(err)

	suite.service = NewProgressService(repository.NewTaskRepository(suite.db))
}

func (suite *ProgressServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ProgressServiceTestSuite) createInstance(parentID, taskDate string, status models.TaskStatus) {
	task := &models.Task{
		ID:           uuid.NewString(),
		UserID:       "user-1",
		Title:        "instance",
		Status:       status,
		TaskType:     models.TaskTypeInstance,
		ParentTaskID: &parentID,
		TaskDate:     &taskDate,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
}

func (suite *ProgressServiceTestSuite) TestNonRecurringCompleted() {
	task := &models.Task{
		ID:     uuid.NewString(),
		UserID: "user-1",
		Title:  "write report",
		Status: models.TaskStatusCompleted,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	progress, err := suite.service.Calculate(task.ID)
	suite.Require().NoError(err)

	suite.Equal(1, progress.TotalDays)
	suite.Equal(1, progress.CompletedDays)
	suite.Zero(progress.RemainingDays)
	suite.Equal(1.0, progress.CompletionRate)
	suite.Equal(1.0, progress.TargetRate)
	suite.True(progress.IsDailyCompleted)
}

func (suite *ProgressServiceTestSuite) TestNonRecurringPendingUsesTarget() {
	target := 0.6
	task := &models.Task{
		ID:               uuid.NewString(),
		UserID:           "user-1",
		Title:            "write report",
		Status:           models.TaskStatusPending,
		CompletionTarget: &target,
	}
	suite.Require().NoError(suite.db.Create(task).Error)

	progress, err := suite.service.Calculate(task.ID)
	suite.Require().NoError(err)

	suite.Zero(progress.CompletedDays)
	suite.Equal(1, progress.RemainingDays)
	suite.Zero(progress.CompletionRate)
	suite.Equal(0.6, progress.TargetRate)
	suite.False(progress.IsDailyCompleted)
}

func (suite *ProgressServiceTestSuite) TestRecurringProgressCounts() {
	// A daily task that started ten days ago and runs ten more days.
	start := time.Now().UTC().AddDate(0, 0, -10)
	end := time.Now().UTC().AddDate(0, 0, 10)
	parent := &models.Task{
		ID:                uuid.NewString(),
		UserID:            "user-1",
		Title:             "meditation",
		IsParentTask:      true,
		IsRecurring:       true,
		RecurrencePattern: models.PatternDaily,
		StartDate:         &start,
		EndDate:           &end,
	}
	suite.Require().NoError(suite.db.Create(parent).Error)

	for offset := -10; offset <= -7; offset++ {
		day := time.Now().UTC().AddDate(0, 0, offset).Format("2006-01-02")
		suite.createInstance(parent.ID, day, models.TaskStatusDailyCompleted)
	}
	// two distinct completions on one date count once
	repeated := time.Now().UTC().AddDate(0, 0, -7).Format("2006-01-02")
	suite.createInstance(parent.ID, repeated, models.TaskStatusCompleted)
	// a pending instance contributes nothing
	suite.createInstance(parent.ID, time.Now().UTC().AddDate(0, 0, -6).Format("2006-01-02"), models.TaskStatusPending)

	progress, err := suite.service.Calculate(parent.ID)
	suite.Require().NoError(err)

	suite.Equal(21, progress.TotalDays)
	suite.Equal(4, progress.CompletedDays)
	suite.Equal(11-4, progress.MissedDays) // 11 elapsed pattern days
	suite.Equal(10, progress.RemainingDays)
	suite.InDelta(4.0/21.0, progress.CompletionRate, 1e-9)
	suite.GreaterOrEqual(progress.CompletionRate, 0.0)
	suite.LessOrEqual(progress.CompletionRate, 1.0)
	suite.Equal(0.8, progress.TargetRate)
	suite.False(progress.IsDailyCompleted)
}

func (suite *ProgressServiceTestSuite) TestRecurringDailyCompletedToday() {
	start := time.Now().UTC().AddDate(0, 0, -1)
	end := time.Now().UTC().AddDate(0, 0, 5)
	parent := &models.Task{
		ID:                uuid.NewString(),
		UserID:            "user-1",
		Title:             "meditation",
		IsParentTask:      true,
		IsRecurring:       true,
		RecurrencePattern: models.PatternDaily,
		StartDate:         &start,
		EndDate:           &end,
	}
	suite.Require().NoError(suite.db.Create(parent).Error)

	today := time.Now().UTC().Format("2006-01-02")
	suite.createInstance(parent.ID, today, models.TaskStatusDailyCompleted)
	suite.createInstance(parent.ID, today, models.TaskStatusCompleted)

	progress, err := suite.service.Calculate(parent.ID)
	suite.Require().NoError(err)
	suite.True(progress.IsDailyCompleted)

	// one unfinished instance today flips the flag
	suite.createInstance(parent.ID, today, models.TaskStatusPending)
	progress, err = suite.service.Calculate(parent.ID)
	suite.Require().NoError(err)
	suite.False(progress.IsDailyCompleted)
}

func (suite *ProgressServiceTestSuite) TestMissingTask() {
	_, err := suite.service.Calculate("nope")
	suite.ErrorIs(err, ErrTaskNotFound)
}

func TestProgressServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProgressServiceTestSuite))
}
