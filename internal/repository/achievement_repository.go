package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type AchievementRepository struct {
	DB *gorm.DB
}

func NewAchievementRepository(db *gorm.DB) *AchievementRepository {
	return &AchievementRepository{DB: db}
}

func (r *AchievementRepository) FindByID(id uint) (*model.Achievement, error) {
	var a model.Achievement
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AchievementRepository) ListAll() ([]model.Achievement, error) {
	var achievements []model.Achievement
	err := r.DB.Order("points ASC").Find(&achievements).Error
	return achievements, err
}

func (r *AchievementRepository) FindUnlock(tx *gorm.DB, studentID, achievementID uint) (*model.StudentAchievement, error) {
	var ua model.StudentAchievement
	err := tx.Where("student_id = ? AND achievement_id = ?", studentID, achievementID).First(&ua).Error
	if err != nil {
		return nil, err
	}
	return &ua, nil
}

func (r *AchievementRepository) CreateUnlock(tx *gorm.DB, unlock *model.StudentAchievement) error {
	return tx.Create(unlock).Error
}

func (r *AchievementRepository) FindUnlocksByStudent(studentID uint) ([]model.StudentAchievement, error) {
	var unlocks []model.StudentAchievement
	err := r.DB.Where("student_id = ?", studentID).Order("unlocked_at DESC").Find(&unlocks).Error
	return unlocks, err
}
