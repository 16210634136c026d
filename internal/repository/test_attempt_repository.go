package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type TestAttemptRepository struct {
	DB *gorm.DB
}

func NewTestAttemptRepository(db *gorm.DB) *TestAttemptRepository {
	return &TestAttemptRepository{DB: db}
}

func (r *TestAttemptRepository) Create(attempt *model.TestAttempt) error {
	return r.DB.Create(attempt).Error
}

func (r *TestAttemptRepository) FindByID(id uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// FindNotStartedByPlan backs idempotent attempt creation: an existing
// NOT_STARTED attempt for the plan is returned instead of duplicated.
func (r *TestAttemptRepository) FindNotStartedByPlan(planID uint) (*model.TestAttempt, error) {
	var a model.TestAttempt
	err := r.DB.Where("plan_id = ? AND status = ?", planID, model.AttemptNotStarted).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *TestAttemptRepository) FindByStudent(studentID uint, page, limit int) ([]model.TestAttempt, int64, error) {
	var attempts []model.TestAttempt
	var total int64
	q := r.DB.Model(&model.TestAttempt{}).Where("student_id = ?", studentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&attempts).Error
	return attempts, total, err
}

// UpdateWithVersion performs a compare-and-swap on the attempt row so a
// concurrent read-modify-write from another instance cannot silently drop
// an answer or double-apply a completion.
func (r *TestAttemptRepository) UpdateWithVersion(tx *gorm.DB, attempt *model.TestAttempt) (bool, error) {
	current := attempt.Version
	attempt.Version = current + 1
	res := tx.Model(&model.TestAttempt{}).
		Where("id = ? AND version = ?", attempt.ID, current).
		Updates(map[string]interface{}{
			"status":       attempt.Status,
			"started_at":   attempt.StartedAt,
			"paused_at":    attempt.PausedAt,
			"submitted_at": attempt.SubmittedAt,
			"completed_at": attempt.CompletedAt,
			"score":        attempt.Score,
			"responses":    attempt.Responses,
			"version":      attempt.Version,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
