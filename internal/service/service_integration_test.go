package service

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type integrationEnv struct {
	db          *gorm.DB
	execution   *ExecutionService
	progression *ProgressionService
	planRepo    *repository.TestPlanRepository
}

func newIntegrationEnv(t *testing.T) *integrationEnv {
	t.Helper()
	if os.Getenv("TESTPREP_INTEGRATION") != "1" {
		t.Skip("set TESTPREP_INTEGRATION=1 to run integration tests")
	}

	dsn := os.Getenv("TESTPREP_TEST_DSN")
	if strings.TrimSpace(dsn) == "" {
		dsn = "root:root@tcp(127.0.0.1:3306)/testprep_test?charset=utf8mb4&parseTime=true&loc=Local"
	}

	logger.Log = zap.NewNop()

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Question{},
		&model.TestPlan{},
		&model.TestAttempt{},
		&model.StudentProgress{},
		&model.LevelConfig{},
		&model.SubjectMastery{},
		&model.Achievement{},
		&model.StudentAchievement{},
		&model.Reward{},
		&model.RewardPurchase{},
		&model.ActivityLog{},
	)
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	for level := 1; level <= 5; level++ {
		cfg := model.LevelConfig{Level: level, XPRequired: 1000 + (level-1)*500}
		if err := db.Where("level = ?", level).FirstOrCreate(&cfg).Error; err != nil {
			t.Fatalf("seed level config %d: %v", level, err)
		}
	}

	planRepo := repository.NewTestPlanRepository(db)
	progression := NewProgressionService(
		repository.NewProgressRepository(db, nil),
		repository.NewMasteryRepository(db),
		repository.NewAchievementRepository(db),
		repository.NewRewardRepository(db),
		repository.NewActivityRepository(db),
		repository.NewLevelConfigRepository(db),
		db,
	)
	execution := NewExecutionService(
		repository.NewTestAttemptRepository(db),
		planRepo,
		repository.NewQuestionRepository(db),
		progression,
		NewAccessGuard(repository.NewUserRepository(db)),
		db,
	)

	return &integrationEnv{
		db:          db,
		execution:   execution,
		progression: progression,
		planRepo:    planRepo,
	}
}

func integrationStudentID() uint {
	return uint(time.Now().UnixNano() & 0x3fffffff)
}

// seedPlan creates a subject, three questions and an active plan for the
// student, answers alpha/bravo/charlie in plan order.
func (e *integrationEnv) seedPlan(t *testing.T, studentID uint) *model.TestPlan {
	t.Helper()

	subject := model.Subject{
		Code:    fmt.Sprintf("itest-subj-%d", studentID),
		Name:    "Integration Subject",
		Enabled: true,
	}
	if err := e.db.Create(&subject).Error; err != nil {
		t.Fatalf("seed subject: %v", err)
	}

	var questionIDs model.UintList
	for i, answer := range []string{"alpha", "bravo", "charlie"} {
		q := model.Question{
			SubjectID:     subject.ID,
			Prompt:        fmt.Sprintf("integration question %d", i+1),
			CorrectAnswer: answer,
			Difficulty:    "easy",
		}
		if err := e.db.Create(&q).Error; err != nil {
			t.Fatalf("seed question %d: %v", i+1, err)
		}
		questionIDs = append(questionIDs, q.ID)
	}

	plan := &model.TestPlan{
		Title:       "Integration Plan",
		StudentID:   studentID,
		CreatorID:   studentID + 1,
		SubjectID:   subject.ID,
		QuestionIDs: questionIDs,
		Active:      true,
	}
	if err := e.planRepo.Create(plan); err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}

func (e *integrationEnv) cleanupStudent(studentID uint, plan *model.TestPlan) {
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.TestAttempt{})
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.StudentProgress{})
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.SubjectMastery{})
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.ActivityLog{})
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.StudentAchievement{})
	e.db.Unscoped().Where("student_id = ?", studentID).Delete(&model.RewardPurchase{})
	if plan != nil {
		for _, qid := range plan.QuestionIDs {
			e.db.Unscoped().Delete(&model.Question{}, qid)
		}
		e.db.Unscoped().Delete(&model.Subject{}, plan.SubjectID)
		e.db.Unscoped().Delete(&model.TestPlan{}, plan.ID)
	}
}

// Three questions, two answered correctly: score 67, completion XP 670,
// plus 500 mastery XP from the subject reaching level 5 on the first
// correct answer, crossing the 1000 XP threshold into level 2.
func TestAttemptCompletionFlow_DBIntegration(t *testing.T) {
	e := newIntegrationEnv(t)
	studentID := integrationStudentID()
	plan := e.seedPlan(t, studentID)
	defer e.cleanupStudent(studentID, plan)

	attempt, err := e.execution.CreateAttempt(plan.ID, studentID)
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	again, err := e.execution.CreateAttempt(plan.ID, studentID)
	if err != nil {
		t.Fatalf("second create: %v", err)
	}
	if again.ID != attempt.ID {
		t.Fatalf("expected the NOT_STARTED attempt to be reused, got %d and %d", attempt.ID, again.ID)
	}

	if _, err := e.execution.StartAttempt(attempt.ID, studentID); err != nil {
		t.Fatalf("start: %v", err)
	}

	qs := plan.QuestionIDs
	if _, err := e.execution.SubmitAnswer(attempt.ID, studentID, qs[0], "Alpha!", 30); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if _, err := e.execution.SubmitAnswer(attempt.ID, studentID, qs[1], "bravo", 20); err != nil {
		t.Fatalf("second answer: %v", err)
	}
	final, err := e.execution.SubmitAnswer(attempt.ID, studentID, qs[2], "delta", 10)
	if err != nil {
		t.Fatalf("last answer: %v", err)
	}

	if final.Status != model.AttemptCompleted {
		t.Fatalf("filling the last slot should auto-complete, got %s", final.Status)
	}
	if final.Score == nil || *final.Score != 67 {
		t.Fatalf("Score = %v, want 67", final.Score)
	}

	results, err := e.execution.GetResults(attempt.ID, studentID)
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if results.CorrectAnswers != 2 || results.TotalQuestions != 3 {
		t.Fatalf("results = %d/%d, want 2/3", results.CorrectAnswers, results.TotalQuestions)
	}

	progress, _, err := e.progression.GetProgress(studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Points != 1170 {
		t.Errorf("Points = %d, want 1170 (670 completion + 500 mastery)", progress.Points)
	}
	if progress.Level != 2 || progress.CurrentXP != 170 {
		t.Errorf("level/xp = %d/%d, want 2/170", progress.Level, progress.CurrentXP)
	}
	if progress.StreakDays != 1 {
		t.Errorf("StreakDays = %d, want 1", progress.StreakDays)
	}

	entries, _, err := e.progression.GetActivity(studentID, 1, 50)
	if err != nil {
		t.Fatalf("activity: %v", err)
	}
	var completion *model.ActivityLog
	for i := range entries {
		if entries[i].Type == model.ActivityTestCompletion {
			completion = &entries[i]
			break
		}
	}
	if completion == nil {
		t.Fatal("no TEST_COMPLETION activity entry written")
	}
	if completion.XPDelta != 670 {
		t.Errorf("completion XPDelta = %d, want 670", completion.XPDelta)
	}
	if score, ok := completion.Details["score"].(float64); !ok || score != 67 {
		t.Errorf("completion details score = %v, want 67", completion.Details["score"])
	}
}

func TestUnlockAchievementDuplicate_DBIntegration(t *testing.T) {
	e := newIntegrationEnv(t)
	studentID := integrationStudentID()

	achievement := model.Achievement{
		Code:   fmt.Sprintf("itest-ach-%d", studentID),
		Name:   "Integration Achievement",
		Points: 150,
	}
	if err := e.db.Create(&achievement).Error; err != nil {
		t.Fatalf("seed achievement: %v", err)
	}
	defer func() {
		e.cleanupStudent(studentID, nil)
		e.db.Unscoped().Delete(&model.Achievement{}, achievement.ID)
	}()

	first, err := e.progression.UnlockAchievement(studentID, achievement.ID)
	if err != nil {
		t.Fatalf("first unlock: %v", err)
	}
	if first.AchievementID != achievement.ID {
		t.Fatalf("unlock references achievement %d, want %d", first.AchievementID, achievement.ID)
	}

	if _, err := e.progression.UnlockAchievement(studentID, achievement.ID); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("second unlock should be a validation error, got %v", err)
	}

	progress, _, err := e.progression.GetProgress(studentID)
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Points != 150 {
		t.Errorf("Points = %d, want 150 credited exactly once", progress.Points)
	}

	var unlocks int64
	e.db.Model(&model.StudentAchievement{}).
		Where("student_id = ? AND achievement_id = ?", studentID, achievement.ID).
		Count(&unlocks)
	if unlocks != 1 {
		t.Errorf("unlock rows = %d, want 1", unlocks)
	}
}

func TestPurchaseRewardInsufficientBalance_DBIntegration(t *testing.T) {
	e := newIntegrationEnv(t)
	studentID := integrationStudentID()

	reward := model.Reward{
		Code:    fmt.Sprintf("itest-rw-%d", studentID),
		Name:    "Integration Reward",
		Cost:    1000000,
		Enabled: true,
	}
	if err := e.db.Create(&reward).Error; err != nil {
		t.Fatalf("seed reward: %v", err)
	}
	defer func() {
		e.cleanupStudent(studentID, nil)
		e.db.Unscoped().Delete(&model.Reward{}, reward.ID)
	}()

	if _, err := e.progression.PurchaseReward(studentID, reward.ID); !util.IsKind(err, util.KindValidation) {
		t.Fatalf("purchase without balance should be a validation error, got %v", err)
	}

	var purchases int64
	e.db.Model(&model.RewardPurchase{}).
		Where("student_id = ? AND reward_id = ?", studentID, reward.ID).
		Count(&purchases)
	if purchases != 0 {
		t.Errorf("purchase rows = %d, want 0", purchases)
	}
}
