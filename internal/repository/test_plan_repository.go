package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type TestPlanRepository struct {
	DB *gorm.DB
}

func NewTestPlanRepository(db *gorm.DB) *TestPlanRepository {
	return &TestPlanRepository{DB: db}
}

func (r *TestPlanRepository) FindByID(id uint) (*model.TestPlan, error) {
	var p model.TestPlan
	if err := r.DB.First(&p, id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *TestPlanRepository) FindByStudent(studentID uint) ([]model.TestPlan, error) {
	var plans []model.TestPlan
	err := r.DB.Where("student_id = ? AND active = ?", studentID, true).Order("created_at DESC").Find(&plans).Error
	return plans, err
}

func (r *TestPlanRepository) Create(plan *model.TestPlan) error {
	return r.DB.Create(plan).Error
}
