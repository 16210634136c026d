package service

import (
	"fmt"
	"time"

	"testprep_backend/internal/model"
	"testprep_backend/internal/repository"
	"testprep_backend/internal/util"
	"testprep_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExecutionService owns the lifecycle of a test attempt: creation with a
// frozen question set, the start/pause/resume transitions, answer
// submission, and completion with its progression side effects.
type ExecutionService struct {
	AttemptRepo  *repository.TestAttemptRepository
	PlanRepo     *repository.TestPlanRepository
	QuestionRepo *repository.QuestionRepository
	Progression  *ProgressionService
	Guard        *AccessGuard
	DB           *gorm.DB

	attemptLocks *keyMutex
}

func NewExecutionService(
	attemptRepo *repository.TestAttemptRepository,
	planRepo *repository.TestPlanRepository,
	questionRepo *repository.QuestionRepository,
	progression *ProgressionService,
	guard *AccessGuard,
	db *gorm.DB,
) *ExecutionService {
	return &ExecutionService{
		AttemptRepo:  attemptRepo,
		PlanRepo:     planRepo,
		QuestionRepo: questionRepo,
		Progression:  progression,
		Guard:        guard,
		DB:           db,
		attemptLocks: newKeyMutex(),
	}
}

func (s *ExecutionService) lockAttempt(attemptID uint) func() {
	key := fmt.Sprintf("attempt:%d", attemptID)
	s.attemptLocks.Lock(key)
	return func() { s.attemptLocks.Unlock(key) }
}

func (s *ExecutionService) lockPlan(planID uint) func() {
	key := fmt.Sprintf("plan:%d", planID)
	s.attemptLocks.Lock(key)
	return func() { s.attemptLocks.Unlock(key) }
}

// --- pure transition rules ---

func startAttempt(a *model.TestAttempt, now time.Time) error {
	if a.Status != model.AttemptNotStarted {
		return util.ValidationError(fmt.Sprintf("cannot start a test in status %s", a.Status))
	}
	a.Status = model.AttemptInProgress
	a.StartedAt = &now
	return nil
}

func pauseAttempt(a *model.TestAttempt, now time.Time) error {
	if a.Status != model.AttemptInProgress {
		return util.ValidationError(fmt.Sprintf("cannot pause a test in status %s", a.Status))
	}
	a.Status = model.AttemptPaused
	a.PausedAt = &now
	return nil
}

func resumeAttempt(a *model.TestAttempt) error {
	if a.Status != model.AttemptPaused {
		return util.ValidationError(fmt.Sprintf("cannot resume a test in status %s", a.Status))
	}
	a.Status = model.AttemptInProgress
	a.PausedAt = nil
	return nil
}

// checkCompletable rejects completion from every non-completable status
// with the specific reason.
func checkCompletable(a *model.TestAttempt) error {
	switch a.Status {
	case model.AttemptNotStarted:
		return util.ValidationError("test must be started first")
	case model.AttemptCompleted:
		return util.ValidationError("test already completed")
	case model.AttemptPaused:
		return util.ValidationError("resume the test before completing it")
	}
	return nil
}

// applyAnswer grades and records one answer in its response slot.
func applyAnswer(a *model.TestAttempt, questionID uint, answer string, timeSpent int) error {
	if a.Status == model.AttemptCompleted {
		return util.ValidationError("test already completed")
	}
	if timeSpent < 0 {
		return util.ValidationError("time spent cannot be negative")
	}
	q := a.QuestionFor(questionID)
	if q == nil {
		return util.NotFoundError(fmt.Sprintf("question %d is not part of this test", questionID))
	}
	slot := a.ResponseFor(questionID)
	if slot == nil {
		return util.InternalError(fmt.Sprintf("no response slot for question %d", questionID))
	}

	correct := EvaluateAnswer(q, &answer)
	slot.Answer = &answer
	slot.Correct = &correct
	slot.TimeSpent = timeSpent
	return nil
}

// BulkAnswer is one entry of a whole-test submission.
type BulkAnswer struct {
	QuestionID uint   `json:"questionId"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"timeSpent"`
}

// BulkSubmission carries every answer of a test in one request; completion
// stays an explicit separate call. EndTime is the client-reported finish
// time, recorded on the attempt and honored as the completion timestamp.
type BulkSubmission struct {
	EndTime   *time.Time   `json:"endTime"`
	Responses []BulkAnswer `json:"responses"`
}

// validateBulk enforces the structural rules on a whole-test submission;
// the first violation rejects the entire batch.
func validateBulk(entries []BulkAnswer) error {
	if len(entries) == 0 {
		return util.ValidationError("submission contains no responses")
	}
	for i, e := range entries {
		if e.QuestionID == 0 {
			return util.ValidationError(fmt.Sprintf("response %d is missing a question id", i))
		}
		if e.Answer == "" {
			return util.ValidationError(fmt.Sprintf("response %d has an empty answer", i))
		}
		if e.TimeSpent < 0 {
			return util.ValidationError(fmt.Sprintf("response %d has a negative time spent", i))
		}
	}
	return nil
}

// applyBulk merges a whole-test submission into the response set. It never
// advances the status.
func applyBulk(a *model.TestAttempt, submission BulkSubmission) error {
	if a.Status != model.AttemptInProgress {
		return util.ValidationError(fmt.Sprintf("cannot submit answers for a test in status %s", a.Status))
	}
	if err := validateBulk(submission.Responses); err != nil {
		return err
	}
	if submission.EndTime != nil {
		if a.StartedAt != nil && submission.EndTime.Before(*a.StartedAt) {
			return util.ValidationError("end time precedes the test start")
		}
		a.SubmittedAt = submission.EndTime
	}
	for _, entry := range submission.Responses {
		if err := applyAnswer(a, entry.QuestionID, entry.Answer, entry.TimeSpent); err != nil {
			return err
		}
	}
	return nil
}

// validateIntegrity guards against malformed persisted attempts; a response
// set out of step with the question set is a data fault, not user error.
func validateIntegrity(a *model.TestAttempt) error {
	if len(a.Responses) != len(a.Questions) {
		return util.InternalError(fmt.Sprintf("attempt %d has %d response slots for %d questions", a.ID, len(a.Responses), len(a.Questions)))
	}
	return nil
}

// --- operations ---

// CreateAttempt materializes an attempt for a plan with the question set
// frozen from the catalog. Creation is idempotent: an existing NOT_STARTED
// attempt for the plan is returned instead of a duplicate.
func (s *ExecutionService) CreateAttempt(planID, callerID uint) (*model.TestAttempt, error) {
	plan, err := s.PlanRepo.FindByID(planID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.NotFoundError("test plan not found")
	}
	if err != nil {
		return nil, err
	}
	if err := s.Guard.PlanAccess(callerID, plan); err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, util.ValidationError("test plan is not active")
	}
	if len(plan.QuestionIDs) == 0 {
		return nil, util.ValidationError("test plan has no questions")
	}

	unlock := s.lockPlan(planID)
	defer unlock()

	if existing, err := s.AttemptRepo.FindNotStartedByPlan(planID); err == nil {
		return existing, nil
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	questions, err := s.QuestionRepo.FindByIDs(plan.QuestionIDs)
	if err != nil {
		return nil, err
	}
	if len(questions) != len(plan.QuestionIDs) {
		return nil, util.NotFoundError("one or more plan questions are missing from the catalog")
	}

	byID := make(map[uint]*model.Question, len(questions))
	for i := range questions {
		byID[questions[i].ID] = &questions[i]
	}

	// freeze the question set in plan order, one response slot each
	attempt := &model.TestAttempt{
		PlanID:    planID,
		StudentID: plan.StudentID,
		Status:    model.AttemptNotStarted,
		Questions: make(model.QuestionSet, 0, len(plan.QuestionIDs)),
		Responses: make(model.ResponseSet, 0, len(plan.QuestionIDs)),
	}
	for _, qid := range plan.QuestionIDs {
		q := byID[qid]
		attempt.Questions = append(attempt.Questions, model.AttemptQuestion{
			QuestionID:     q.ID,
			SubjectID:      q.SubjectID,
			Prompt:         q.Prompt,
			Options:        q.Options,
			CorrectAnswer:  q.CorrectAnswer,
			PlainAnswer:    q.PlainAnswer,
			UsePlainAnswer: q.UsePlainAnswer,
			Difficulty:     q.Difficulty,
		})
		attempt.Responses = append(attempt.Responses, model.AttemptResponse{QuestionID: q.ID})
	}

	if err := s.AttemptRepo.Create(attempt); err != nil {
		return nil, err
	}
	logger.Log.Info("attempt created",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("planId", planID),
		zap.Uint("studentId", plan.StudentID))
	return attempt, nil
}

// loadGuarded loads the attempt and its plan and checks caller access.
func (s *ExecutionService) loadGuarded(attemptID, callerID uint) (*model.TestAttempt, error) {
	attempt, err := s.AttemptRepo.FindByID(attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.NotFoundError("attempt not found")
	}
	if err != nil {
		return nil, err
	}

	plan, err := s.PlanRepo.FindByID(attempt.PlanID)
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, err
	}
	if err := s.Guard.AttemptAccess(callerID, attempt, plan); err != nil {
		return nil, err
	}
	if err := validateIntegrity(attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// save persists a mutated attempt with the compare-and-swap check.
func (s *ExecutionService) save(tx *gorm.DB, attempt *model.TestAttempt) error {
	ok, err := s.AttemptRepo.UpdateWithVersion(tx, attempt)
	if err != nil {
		return err
	}
	if !ok {
		return util.ValidationError("attempt was modified concurrently, please retry")
	}
	return nil
}

func (s *ExecutionService) StartAttempt(attemptID, callerID uint) (*model.TestAttempt, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := startAttempt(attempt, time.Now()); err != nil {
		return nil, err
	}
	if err := s.save(s.DB, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *ExecutionService) PauseAttempt(attemptID, callerID uint) (*model.TestAttempt, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := pauseAttempt(attempt, time.Now()); err != nil {
		return nil, err
	}
	if err := s.save(s.DB, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *ExecutionService) ResumeAttempt(attemptID, callerID uint) (*model.TestAttempt, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := resumeAttempt(attempt); err != nil {
		return nil, err
	}
	if err := s.save(s.DB, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAnswer records one answer. Filling the last empty slot completes
// the attempt as a side effect, including scoring and progression.
func (s *ExecutionService) SubmitAnswer(attemptID, callerID, questionID uint, answer string, timeSpent int) (*model.TestAttempt, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := applyAnswer(attempt, questionID, answer, timeSpent); err != nil {
		return nil, err
	}

	if attempt.AllAnswered() {
		if _, err := s.finalize(attempt); err != nil {
			return nil, err
		}
		return attempt, nil
	}

	if err := s.save(s.DB, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// SubmitAllAnswers merges a whole-test submission into the response set.
// It never advances the status; completion remains an explicit call.
func (s *ExecutionService) SubmitAllAnswers(attemptID, callerID uint, submission BulkSubmission) (*model.TestAttempt, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if err := applyBulk(attempt, submission); err != nil {
		return nil, err
	}

	if err := s.save(s.DB, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// CompleteAttempt closes the attempt explicitly.
func (s *ExecutionService) CompleteAttempt(attemptID, callerID uint) (*model.TestAttempt, ScoreSummary, error) {
	unlock := s.lockAttempt(attemptID)
	defer unlock()

	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, ScoreSummary{}, err
	}
	if err := checkCompletable(attempt); err != nil {
		return nil, ScoreSummary{}, err
	}
	summary, err := s.finalize(attempt)
	if err != nil {
		return nil, ScoreSummary{}, err
	}
	return attempt, summary, nil
}

// finalize scores the attempt, marks it COMPLETED and runs every
// progression side effect in one transaction, so completion cannot succeed
// with progression silently missing.
func (s *ExecutionService) finalize(attempt *model.TestAttempt) (ScoreSummary, error) {
	unlockStudent := s.Progression.LockStudent(attempt.StudentID)
	defer unlockStudent()

	summary := ScoreAttempt(attempt.Questions, attempt.Responses)
	completedAt := time.Now()
	if attempt.SubmittedAt != nil && attempt.SubmittedAt.Before(completedAt) {
		completedAt = *attempt.SubmittedAt
	}
	attempt.Score = &summary.Score
	attempt.CompletedAt = &completedAt
	attempt.PausedAt = nil
	attempt.Status = model.AttemptCompleted

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.save(tx, attempt); err != nil {
			return err
		}
		return s.Progression.ApplyCompletion(tx, attempt, summary)
	})
	if err != nil {
		return ScoreSummary{}, err
	}

	logger.Log.Info("attempt completed",
		zap.Uint("attemptId", attempt.ID),
		zap.Uint("studentId", attempt.StudentID),
		zap.Int("score", summary.Score))
	return summary, nil
}

// AttemptResults is the read model for a finished attempt.
type AttemptResults struct {
	Score          int               `json:"score"`
	TotalQuestions int               `json:"totalQuestions"`
	CorrectAnswers int               `json:"correctAnswers"`
	Questions      model.QuestionSet `json:"questions"`
	Responses      model.ResponseSet `json:"responses"`
}

func (s *ExecutionService) GetResults(attemptID, callerID uint) (*AttemptResults, error) {
	attempt, err := s.loadGuarded(attemptID, callerID)
	if err != nil {
		return nil, err
	}
	if attempt.Status != model.AttemptCompleted {
		return nil, util.ValidationError("test is not completed yet")
	}

	summary := ScoreAttempt(attempt.Questions, attempt.Responses)
	return &AttemptResults{
		Score:          summary.Score,
		TotalQuestions: summary.TotalQuestions,
		CorrectAnswers: summary.CorrectAnswers,
		Questions:      attempt.Questions,
		Responses:      attempt.Responses,
	}, nil
}

// ListPlans returns the active test plans assigned to a student.
func (s *ExecutionService) ListPlans(studentID, callerID uint) ([]model.TestPlan, error) {
	if err := s.Guard.StudentAccess(callerID, studentID); err != nil {
		return nil, err
	}
	return s.PlanRepo.FindByStudent(studentID)
}

// ListAttempts returns a student's attempt history, newest first.
func (s *ExecutionService) ListAttempts(studentID, callerID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	if err := s.Guard.StudentAccess(callerID, studentID); err != nil {
		return nil, 0, err
	}
	return s.AttemptRepo.FindByStudent(studentID, page, limit)
}
