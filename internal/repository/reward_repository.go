package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type RewardRepository struct {
	DB *gorm.DB
}

func NewRewardRepository(db *gorm.DB) *RewardRepository {
	return &RewardRepository{DB: db}
}

func (r *RewardRepository) FindByID(id uint) (*model.Reward, error) {
	var reward model.Reward
	if err := r.DB.First(&reward, id).Error; err != nil {
		return nil, err
	}
	return &reward, nil
}

func (r *RewardRepository) ListEnabled() ([]model.Reward, error) {
	var rewards []model.Reward
	err := r.DB.Where("enabled = ?", true).Order("cost ASC").Find(&rewards).Error
	return rewards, err
}

func (r *RewardRepository) FindPurchase(tx *gorm.DB, studentID, rewardID uint) (*model.RewardPurchase, error) {
	var p model.RewardPurchase
	err := tx.Where("student_id = ? AND reward_id = ?", studentID, rewardID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RewardRepository) CreatePurchase(tx *gorm.DB, purchase *model.RewardPurchase) error {
	return tx.Create(purchase).Error
}

func (r *RewardRepository) FindPurchasesByStudent(studentID uint) ([]model.RewardPurchase, error) {
	var purchases []model.RewardPurchase
	err := r.DB.Where("student_id = ?", studentID).Order("purchased_at DESC").Find(&purchases).Error
	return purchases, err
}
