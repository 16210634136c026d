package service

import (
	"fmt"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"
	"testprep_backend/pkg/monitoring"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// masteryXPPerLevel is awarded for every mastery level gained in a subject.
const masteryXPPerLevel = 100

type ProgressionService struct {
	ProgressRepo    *repository.ProgressRepository
	MasteryRepo     *repository.MasteryRepository
	AchievementRepo *repository.AchievementRepository
	RewardRepo      *repository.RewardRepository
	ActivityRepo    *repository.ActivityRepository
	LevelConfigRepo *repository.LevelConfigRepository
	DB              *gorm.DB

	studentLocks *keyMutex
}

func NewProgressionService(
	progressRepo *repository.ProgressRepository,
	masteryRepo *repository.MasteryRepository,
	achievementRepo *repository.AchievementRepository,
	rewardRepo *repository.RewardRepository,
	activityRepo *repository.ActivityRepository,
	levelConfigRepo *repository.LevelConfigRepository,
	db *gorm.DB,
) *ProgressionService {
	return &ProgressionService{
		ProgressRepo:    progressRepo,
		MasteryRepo:     masteryRepo,
		AchievementRepo: achievementRepo,
		RewardRepo:      rewardRepo,
		ActivityRepo:    activityRepo,
		LevelConfigRepo: levelConfigRepo,
		DB:              db,
		studentLocks:    newKeyMutex(),
	}
}

func studentKey(studentID uint) string {
	return fmt.Sprintf("student:%d", studentID)
}

// lockStudent serializes progression updates per student so two attempts
// completing at once cannot lose XP or streak updates.
func (s *ProgressionService) lockStudent(studentID uint) func() {
	key := studentKey(studentID)
	s.studentLocks.Lock(key)
	return func() { s.studentLocks.Unlock(key) }
}

// LockStudent is for collaborators (the execution service) that run
// progression effects inside their own transaction.
func (s *ProgressionService) LockStudent(studentID uint) func() {
	return s.lockStudent(studentID)
}

// applyXP adds a positive XP amount, levelling up at most one step per
// call. An award large enough to cross two thresholds still advances a
// single level; the surplus stays banked toward the next one.
func applyXP(p *model.StudentProgress, amount int, nextThreshold func(level int) (int, error)) (bool, error) {
	if amount <= 0 {
		return false, util.ValidationError("xp amount must be positive")
	}

	p.CurrentXP += amount
	p.Points += amount

	if p.CurrentXP < p.NextLevelXP {
		return false, nil
	}

	p.CurrentXP -= p.NextLevelXP
	p.Level++
	threshold, err := nextThreshold(p.Level)
	if err != nil {
		return false, err
	}
	p.NextLevelXP = threshold
	return true, nil
}

// advanceStreak applies the calendar-day streak rule: previous activity on
// the immediately preceding day advances the streak, the same day leaves it
// alone, and a longer gap leaves the count untouched as well (no reset).
// The last-activity date is always refreshed. First-ever activity starts
// the streak at 1.
func advanceStreak(p *model.StudentProgress, now time.Time) bool {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	advanced := false
	if p.LastActivity == nil {
		p.StreakDays = 1
		advanced = true
	} else {
		last := *p.LastActivity
		lastDay := time.Date(last.Year(), last.Month(), last.Day(), 0, 0, 0, 0, now.Location())
		if lastDay.AddDate(0, 0, 1).Equal(today) {
			p.StreakDays++
			advanced = true
		}
	}

	p.LastActivity = &today
	return advanced
}

// applyMasteryAnswer folds one graded answer into the mastery counters and
// recomputes the cached level.
func applyMasteryAnswer(m *model.SubjectMastery, correct bool) (oldLevel, newLevel int) {
	oldLevel = m.Level
	m.Attempted++
	if correct {
		m.Correct++
	}
	m.Level = m.ComputeLevel()
	return oldLevel, m.Level
}

func (s *ProgressionService) nextThresholdFn(tx *gorm.DB) func(level int) (int, error) {
	return func(level int) (int, error) {
		cfg, err := s.LevelConfigRepo.FindByLevel(tx, level)
		if err == gorm.ErrRecordNotFound {
			return 0, util.ValidationError(fmt.Sprintf("no level configuration for level %d", level))
		}
		if err != nil {
			return 0, err
		}
		return cfg.XPRequired, nil
	}
}

// addXPTx awards XP inside an existing transaction; callers hold the
// student lock.
func (s *ProgressionService) addXPTx(tx *gorm.DB, studentID uint, amount int) (*model.StudentProgress, error) {
	progress, err := s.ProgressRepo.FindOrCreate(tx, studentID, defaultFirstLevelXP)
	if err != nil {
		return nil, err
	}

	leveledUp, err := applyXP(progress, amount, s.nextThresholdFn(tx))
	if err != nil {
		return nil, err
	}
	if err := s.ProgressRepo.Save(tx, progress); err != nil {
		return nil, err
	}
	monitoring.XPAwarded.Add(float64(amount))

	if leveledUp {
		if err := s.logActivity(tx, studentID, model.ActivityLevelUp, 0, model.ActivityDetails{
			"level": progress.Level,
		}); err != nil {
			return nil, err
		}
	}
	return progress, nil
}

const defaultFirstLevelXP = 1000

// AddXP awards XP outside of a test-completion flow.
func (s *ProgressionService) AddXP(studentID uint, amount int) (*model.StudentProgress, error) {
	unlock := s.lockStudent(studentID)
	defer unlock()

	var progress *model.StudentProgress
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		p, err := s.addXPTx(tx, studentID, amount)
		if err != nil {
			return err
		}
		progress = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return progress, nil
}

// ApplyCompletion runs every progression side effect of a completed
// attempt inside the caller's transaction: completion XP (floor(score*10)),
// the streak update, per-answer subject mastery, and the TEST_COMPLETION
// log entry. The caller holds the attempt lock; this acquires nothing, so
// it must be invoked under lockStudent via the execution service.
func (s *ProgressionService) ApplyCompletion(tx *gorm.DB, attempt *model.TestAttempt, summary ScoreSummary) error {
	xp := summary.Score * 10

	if xp > 0 {
		if _, err := s.addXPTx(tx, attempt.StudentID, xp); err != nil {
			return err
		}
	}

	progress, err := s.ProgressRepo.FindOrCreate(tx, attempt.StudentID, defaultFirstLevelXP)
	if err != nil {
		return err
	}
	if advanceStreak(progress, time.Now()) {
		if err := s.logActivity(tx, attempt.StudentID, model.ActivityStreakAdvance, 0, model.ActivityDetails{
			"streakDays": progress.StreakDays,
		}); err != nil {
			return err
		}
	}
	if err := s.ProgressRepo.Save(tx, progress); err != nil {
		return err
	}

	if err := s.applyMastery(tx, attempt); err != nil {
		return err
	}

	if err := s.logActivity(tx, attempt.StudentID, model.ActivityTestCompletion, xp, model.ActivityDetails{
		"attemptId":      attempt.ID,
		"planId":         attempt.PlanID,
		"score":          summary.Score,
		"totalQuestions": summary.TotalQuestions,
		"correctAnswers": summary.CorrectAnswers,
	}); err != nil {
		return err
	}

	monitoring.TestsCompleted.Inc()
	return nil
}

// applyMastery folds every graded response of the attempt into the
// per-subject counters, awarding XP for each mastery level gained.
func (s *ProgressionService) applyMastery(tx *gorm.DB, attempt *model.TestAttempt) error {
	for i := range attempt.Responses {
		resp := &attempt.Responses[i]
		if resp.Correct == nil {
			continue
		}
		q := attempt.QuestionFor(resp.QuestionID)
		if q == nil {
			return util.InternalError(fmt.Sprintf("response references unknown question %d", resp.QuestionID))
		}

		mastery, err := s.MasteryRepo.FindOrCreate(tx, attempt.StudentID, q.SubjectID)
		if err != nil {
			return err
		}
		oldLevel, newLevel := applyMasteryAnswer(mastery, *resp.Correct)
		if err := s.MasteryRepo.Save(tx, mastery); err != nil {
			return err
		}

		if newLevel > oldLevel {
			xp := (newLevel - oldLevel) * masteryXPPerLevel
			if _, err := s.addXPTx(tx, attempt.StudentID, xp); err != nil {
				return err
			}
			if err := s.logActivity(tx, attempt.StudentID, model.ActivityMasteryLevelUp, xp, model.ActivityDetails{
				"subjectId": q.SubjectID,
				"oldLevel":  oldLevel,
				"newLevel":  newLevel,
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// UnlockAchievement records an unlock and awards its point value as XP.
// Unlocking twice is a validation error, not a silent no-op.
func (s *ProgressionService) UnlockAchievement(studentID, achievementID uint) (*model.StudentAchievement, error) {
	achievement, err := s.AchievementRepo.FindByID(achievementID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.NotFoundError("achievement not found")
	}
	if err != nil {
		return nil, err
	}

	unlock := s.lockStudent(studentID)
	defer unlock()

	var created *model.StudentAchievement
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.AchievementRepo.FindUnlock(tx, studentID, achievementID); err == nil {
			return util.ValidationError("achievement already unlocked")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		ua := &model.StudentAchievement{
			StudentID:     studentID,
			AchievementID: achievementID,
			UnlockedAt:    time.Now(),
		}
		if err := s.AchievementRepo.CreateUnlock(tx, ua); err != nil {
			return err
		}
		if achievement.Points > 0 {
			if _, err := s.addXPTx(tx, studentID, achievement.Points); err != nil {
				return err
			}
		}
		if err := s.logActivity(tx, studentID, model.ActivityAchievementUnlock, achievement.Points, model.ActivityDetails{
			"achievementId": achievementID,
			"code":          achievement.Code,
		}); err != nil {
			return err
		}
		created = ua
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("achievement unlocked",
		zap.Uint("studentId", studentID),
		zap.Uint("achievementId", achievementID))
	return created, nil
}

// PurchaseReward debits the point balance atomically with the purchase
// record. Duplicate purchases and insufficient balances are rejected.
func (s *ProgressionService) PurchaseReward(studentID, rewardID uint) (*model.RewardPurchase, error) {
	reward, err := s.RewardRepo.FindByID(rewardID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.NotFoundError("reward not found")
	}
	if err != nil {
		return nil, err
	}
	if !reward.Enabled {
		return nil, util.ValidationError("reward is not available")
	}

	unlock := s.lockStudent(studentID)
	defer unlock()

	var purchase *model.RewardPurchase
	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.RewardRepo.FindPurchase(tx, studentID, rewardID); err == nil {
			return util.ValidationError("reward already purchased")
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		progress, err := s.ProgressRepo.FindOrCreate(tx, studentID, defaultFirstLevelXP)
		if err != nil {
			return err
		}
		if progress.Points < reward.Cost {
			return util.ValidationError("insufficient point balance")
		}
		progress.Points -= reward.Cost
		if err := s.ProgressRepo.Save(tx, progress); err != nil {
			return err
		}

		p := &model.RewardPurchase{
			StudentID:   studentID,
			RewardID:    rewardID,
			Cost:        reward.Cost,
			PurchasedAt: time.Now(),
		}
		if err := s.RewardRepo.CreatePurchase(tx, p); err != nil {
			return err
		}
		if err := s.logActivity(tx, studentID, model.ActivityRewardPurchase, 0, model.ActivityDetails{
			"rewardId": rewardID,
			"cost":     reward.Cost,
		}); err != nil {
			return err
		}
		purchase = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return purchase, nil
}

func (s *ProgressionService) logActivity(tx *gorm.DB, studentID uint, typ model.ActivityType, xpDelta int, details model.ActivityDetails) error {
	return s.ActivityRepo.Create(tx, &model.ActivityLog{
		StudentID:  studentID,
		Type:       typ,
		XPDelta:    xpDelta,
		Details:    details,
		OccurredAt: time.Now(),
	})
}

func (s *ProgressionService) GetProgress(studentID uint) (*model.StudentProgress, []model.SubjectMastery, error) {
	progress, err := s.ProgressRepo.FindByStudent(studentID)
	if err == gorm.ErrRecordNotFound {
		// no recorded activity yet; report the level-1 baseline
		progress = &model.StudentProgress{
			StudentID:   studentID,
			Level:       1,
			NextLevelXP: defaultFirstLevelXP,
		}
	} else if err != nil {
		return nil, nil, err
	}

	masteries, err := s.MasteryRepo.FindByStudent(studentID)
	if err != nil {
		return nil, nil, err
	}
	return progress, masteries, nil
}

func (s *ProgressionService) GetActivity(studentID uint, page, limit int) ([]model.ActivityLog, int64, error) {
	return s.ActivityRepo.FindByStudent(studentID, page, limit)
}

func (s *ProgressionService) GetLeaderboard(limit int) ([]repository.LeaderboardRow, error) {
	return s.ProgressRepo.TopByXP(limit)
}
