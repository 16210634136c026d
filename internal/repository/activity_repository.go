package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) Create(tx *gorm.DB, entry *model.ActivityLog) error {
	return tx.Create(entry).Error
}

func (r *ActivityRepository) FindByStudent(studentID uint, page, limit int) ([]model.ActivityLog, int64, error) {
	var entries []model.ActivityLog
	var total int64
	q := r.DB.Model(&model.ActivityLog{}).Where("student_id = ?", studentID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("occurred_at DESC").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error
	return entries, total, err
}
