package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// StringList is stored as a JSON array in a single column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type %T for StringList", value)
	}
}

// Question is read-only catalog data owned by the question bank. The correct
// answer exists in two representations: a rich formatted form and a plain
// form; UsePlainAnswer selects which one is authoritative for grading.
type Question struct {
	BaseModel
	SubjectID      uint       `gorm:"index;not null" json:"subjectId"`
	Prompt         string     `gorm:"type:text;not null" json:"prompt"`
	Options        StringList `gorm:"type:json" json:"options"`
	CorrectAnswer  string     `gorm:"type:text" json:"-"`
	PlainAnswer    string     `gorm:"type:text" json:"-"`
	UsePlainAnswer bool       `gorm:"default:false" json:"-"`
	Difficulty     string     `gorm:"size:20;default:'medium'" json:"difficulty"`
}

func (Question) TableName() string {
	return "questions"
}

// GradingAnswer returns the authoritative correct-answer representation.
func (q *Question) GradingAnswer() string {
	if q.UsePlainAnswer {
		return q.PlainAnswer
	}
	return q.CorrectAnswer
}
