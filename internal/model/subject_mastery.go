package model

// SubjectMastery accumulates per-subject accuracy for one student. Level is
// a cache of floor(accuracy*5) clamped to 5, recomputed on every graded
// answer rather than trusted as ground truth.
type SubjectMastery struct {
	BaseModel
	StudentID uint `gorm:"uniqueIndex:idx_student_subject;not null" json:"studentId"`
	SubjectID uint `gorm:"uniqueIndex:idx_student_subject;not null" json:"subjectId"`
	Level     int  `gorm:"default:0" json:"level"`
	Attempted int  `gorm:"default:0" json:"attempted"`
	Correct   int  `gorm:"default:0" json:"correct"`
}

func (SubjectMastery) TableName() string {
	return "subject_masteries"
}

// ComputeLevel derives the mastery level from the counters.
func (m *SubjectMastery) ComputeLevel() int {
	if m.Attempted == 0 {
		return 0
	}
	level := int(float64(m.Correct) / float64(m.Attempted) * 5)
	if level > 5 {
		level = 5
	}
	return level
}
