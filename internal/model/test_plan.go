package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// UintList is stored as a JSON array in a single column.
type UintList []uint

func (l UintList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *UintList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for UintList", value)
	}
}

// TestPlan assigns a fixed list of catalog questions to a student. Attempts
// materialize from the plan; the plan itself is authored elsewhere.
type TestPlan struct {
	BaseModel
	Title            string   `gorm:"size:200;not null" json:"title"`
	StudentID        uint     `gorm:"index;not null" json:"studentId"`
	CreatorID        uint     `gorm:"index;not null" json:"creatorId"`
	SubjectID        uint     `gorm:"index;not null" json:"subjectId"`
	QuestionIDs      UintList `gorm:"type:json" json:"questionIds"`
	TimeLimitMinutes int      `gorm:"default:0" json:"timeLimitMinutes"`
	Active           bool     `gorm:"default:true" json:"active"`
}

func (TestPlan) TableName() string {
	return "test_plans"
}
