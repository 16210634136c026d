package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type MasteryRepository struct {
	DB *gorm.DB
}

func NewMasteryRepository(db *gorm.DB) *MasteryRepository {
	return &MasteryRepository{DB: db}
}

func (r *MasteryRepository) FindOrCreate(tx *gorm.DB, studentID, subjectID uint) (*model.SubjectMastery, error) {
	var m model.SubjectMastery
	err := tx.Where("student_id = ? AND subject_id = ?", studentID, subjectID).First(&m).Error
	if err == nil {
		return &m, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	m = model.SubjectMastery{StudentID: studentID, SubjectID: subjectID}
	if err := tx.Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MasteryRepository) FindByStudent(studentID uint) ([]model.SubjectMastery, error) {
	var masteries []model.SubjectMastery
	err := r.DB.Where("student_id = ?", studentID).Find(&masteries).Error
	return masteries, err
}

func (r *MasteryRepository) Save(tx *gorm.DB, m *model.SubjectMastery) error {
	return tx.Save(m).Error
}
