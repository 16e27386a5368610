package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/hitoha/lifequest-api/internal/constants"
	"github.com/hitoha/lifequest-api/internal/models"
	"github.com/hitoha/lifequest-api/internal/repository"
	"gorm.io/gorm"
)

// AchievementService evaluates the achievement catalog against a user's
// current state and persists new unlocks. Callers invoke CheckAndUnlock
// after any event that could change eligibility; the service itself has no
// event mechanism.
type AchievementService struct {
	achievementRepo repository.AchievementRepository
	taskRepo        repository.TaskRepository
	skillRepo       repository.SkillRepository
	profileRepo     repository.ProfileRepository
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(
	achievementRepo repository.AchievementRepository,
	taskRepo repository.TaskRepository,
	skillRepo repository.SkillRepository,
	profileRepo repository.ProfileRepository,
) *AchievementService {
	return &AchievementService{
		achievementRepo: achievementRepo,
		taskRepo:        taskRepo,
		skillRepo:       skillRepo,
		profileRepo:     profileRepo,
	}
}

// evalState lazily loads the per-user aggregates shared by several
// requirement types, so one pass over a large catalog hits the store once
// per aggregate instead of once per achievement.
type evalState struct {
	svc    *AchievementService
	userID string

	completedCount  *int64
	maxSkillLevel   *int
	consecutiveDays *int
	attributes      *models.UserAttributes

	recoveryLoaded bool
	recoveryCount  int64
	hasCancelled   bool
}

func (st *evalState) totalCompleted() (int64, error) {
	if st.completedCount == nil {
		n, err := st.svc.taskRepo.CountByUserAndStatuses(st.userID, models.CompletedTerminalStatuses())
		if err != nil {
			return 0, fmt.Errorf("failed to count completed tasks: %w", err)
		}
		st.completedCount = &n
	}
	return *st.completedCount, nil
}

func (st *evalState) highestSkillLevel() (int, error) {
	if st.maxSkillLevel == nil {
		skills, err := st.svc.skillRepo.ListByUser(st.userID)
		if err != nil {
			return 0, fmt.Errorf("failed to list skills: %w", err)
		}
		max := 0
		for _, s := range skills {
			if s.Level > max {
				max = s.Level
			}
		}
		st.maxSkillLevel = &max
	}
	return *st.maxSkillLevel, nil
}

func (st *evalState) loginStreak() (int, error) {
	if st.consecutiveDays == nil {
		profile, err := st.svc.profileRepo.FindProfile(st.userID)
		if err != nil {
			return 0, fmt.Errorf("failed to load profile: %w", err)
		}
		st.consecutiveDays = &profile.ConsecutiveLoginDays
	}
	return *st.consecutiveDays, nil
}

func (st *evalState) attributeScore(name string) (int, bool, error) {
	if st.attributes == nil {
		attrs, err := st.svc.profileRepo.FindAttributes(st.userID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to load attributes: %w", err)
		}
		st.attributes = attrs
	}
	score, ok := st.attributes.Score(name)
	return score, ok, nil
}

// recoveryProgress returns how many tasks were completed strictly after the
// user's most recent cancellation. A user who never cancelled anything can
// never qualify.
func (st *evalState) recoveryProgress() (int64, bool, error) {
	if !st.recoveryLoaded {
		cancelledAt, err := st.svc.taskRepo.LatestCancellation(st.userID)
		if err != nil {
			return 0, false, fmt.Errorf("failed to find latest cancellation: %w", err)
		}
		if cancelledAt != nil {
			count, err := st.svc.taskRepo.CountCompletedAfter(st.userID, *cancelledAt)
			if err != nil {
				return 0, false, fmt.Errorf("failed to count completions after cancellation: %w", err)
			}
			st.hasCancelled = true
			st.recoveryCount = count
		}
		st.recoveryLoaded = true
	}
	return st.recoveryCount, st.hasCancelled, nil
}

// CheckAndUnlock evaluates every catalog achievement the user has not yet
// unlocked and persists the ones that qualify. The unlocked set is queried
// fresh on every call; duplicate unlocks from racing evaluations are stopped
// by the storage-level unique index, not by locking here.
//
// Evaluation is a single linear pass in catalog order. A failed predicate
// lookup or a failed insert is logged and skipped; the rest of the catalog
// still runs.
func (s *AchievementService) CheckAndUnlock(userID string) ([]models.Achievement, error) {
	catalog, err := s.achievementRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to load achievement catalog: %w", err)
	}

	unlocked, err := s.achievementRepo.ListUnlockedIDs(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked achievements: %w", err)
	}

	state := &evalState{svc: s, userID: userID}
	newlyUnlocked := []models.Achievement{}

	for _, achievement := range catalog {
		if unlocked[achievement.ID] {
			continue
		}

		qualifies, err := s.evaluate(achievement, state)
		if err != nil {
			log.Printf("skipping achievement %s (%s): %v", achievement.ID, achievement.Name, err)
			continue
		}
		if !qualifies {
			continue
		}

		ua := &models.UserAchievement{
			ID:            uuid.NewString(),
			UserID:        userID,
			AchievementID: achievement.ID,
			AchievedAt:    time.Now(),
			Progress:      achievement.RequirementValue,
		}
		if err := s.achievementRepo.CreateUserAchievement(ua); err != nil {
			log.Printf("failed to record unlock of achievement %s for user %s: %v",
				achievement.ID, userID, err)
			continue
		}

		newlyUnlocked = append(newlyUnlocked, achievement)
	}

	return newlyUnlocked, nil
}

// evaluate runs one achievement's requirement predicate. An error means the
// predicate could not be decided, which the caller treats as "does not
// currently qualify".
func (s *AchievementService) evaluate(a models.Achievement, state *evalState) (bool, error) {
	switch a.RequirementType {
	case models.RequirementTaskComplete:
		if a.RelatedTaskID != nil {
			return s.relatedTaskCompleted(*a.RelatedTaskID)
		}
		count, err := state.totalCompleted()
		if err != nil {
			return false, err
		}
		return count >= int64(a.RequirementValue), nil

	case models.RequirementLearningTaskComplete:
		count, err := s.taskRepo.CountCompletedWithSkillTag(state.userID, constants.LearningSkillTag)
		if err != nil {
			return false, fmt.Errorf("failed to count learning completions: %w", err)
		}
		return count >= int64(a.RequirementValue), nil

	case models.RequirementSkillLevel:
		level, err := state.highestSkillLevel()
		if err != nil {
			return false, err
		}
		return level >= a.RequirementValue, nil

	case models.RequirementConsecutiveDays:
		days, err := state.loginStreak()
		if err != nil {
			return false, err
		}
		return days >= a.RequirementValue, nil

	case models.RequirementStreakRecovery:
		count, hasCancelled, err := state.recoveryProgress()
		if err != nil {
			return false, err
		}
		return hasCancelled && count >= int64(a.RequirementValue), nil

	case "":
		return false, errors.New("no requirement type")
	}

	if name, ok := models.AttributeRequirementName(a.RequirementType); ok {
		score, known, err := state.attributeScore(name)
		if err != nil {
			return false, err
		}
		if !known {
			return false, fmt.Errorf("unknown attribute %q", name)
		}
		return score >= a.RequirementValue, nil
	}

	return false, fmt.Errorf("unknown requirement type %q", a.RequirementType)
}

func (s *AchievementService) relatedTaskCompleted(taskID string) (bool, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("related task %s not found", taskID)
		}
		return false, fmt.Errorf("failed to load related task: %w", err)
	}
	return task.Status == models.TaskStatusCompleted, nil
}

// ListUserAchievements returns a user's unlocks with catalog data attached.
func (s *AchievementService) ListUserAchievements(userID string) ([]models.UserAchievement, error) {
	unlocks, err := s.achievementRepo.ListUserAchievements(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list user achievements: %w", err)
	}
	return unlocks, nil
}

// ListCatalog returns the full achievement catalog.
func (s *AchievementService) ListCatalog() ([]models.Achievement, error) {
	catalog, err := s.achievementRepo.ListAll()
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return catalog, nil
}
