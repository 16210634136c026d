package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type AttemptStatus string

const (
	AttemptNotStarted AttemptStatus = "NOT_STARTED"
	AttemptInProgress AttemptStatus = "IN_PROGRESS"
	AttemptPaused     AttemptStatus = "PAUSED"
	AttemptCompleted  AttemptStatus = "COMPLETED"
)

// AttemptQuestion is the per-attempt snapshot of a catalog question, frozen
// at attempt creation so later catalog edits never change a running test.
type AttemptQuestion struct {
	QuestionID     uint     `json:"questionId"`
	SubjectID      uint     `json:"subjectId"`
	Prompt         string   `json:"prompt"`
	Options        []string `json:"options"`
	CorrectAnswer  string   `json:"correctAnswer"`
	PlainAnswer    string   `json:"plainAnswer"`
	UsePlainAnswer bool     `json:"usePlainAnswer"`
	Difficulty     string   `json:"difficulty"`
}

// GradingAnswer returns the authoritative correct-answer representation.
func (q *AttemptQuestion) GradingAnswer() string {
	if q.UsePlainAnswer {
		return q.PlainAnswer
	}
	return q.CorrectAnswer
}

// AttemptResponse is one response slot; Answer and Correct stay nil until
// the student answers and the answer is graded.
type AttemptResponse struct {
	QuestionID uint    `json:"questionId"`
	Answer     *string `json:"answer"`
	Correct    *bool   `json:"correct"`
	TimeSpent  int     `json:"timeSpent"`
}

type QuestionSet []AttemptQuestion

func (s QuestionSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *QuestionSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type %T for QuestionSet", value)
	}
}

type ResponseSet []AttemptResponse

func (s ResponseSet) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *ResponseSet) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	default:
		return fmt.Errorf("unsupported type %T for ResponseSet", value)
	}
}

// TestAttempt is one instance of a student taking a test plan. The question
// set is immutable after creation; the response set always holds exactly one
// slot per question. Attempts are never deleted.
type TestAttempt struct {
	BaseModel
	PlanID      uint          `gorm:"index;not null" json:"planId"`
	StudentID   uint          `gorm:"index;not null" json:"studentId"`
	Status      AttemptStatus `gorm:"size:20;default:'NOT_STARTED';index" json:"status"`
	StartedAt   *time.Time    `json:"startedAt"`
	PausedAt    *time.Time    `json:"pausedAt"`
	SubmittedAt *time.Time    `json:"submittedAt"`
	CompletedAt *time.Time    `json:"completedAt"`
	Score       *int          `json:"score"`
	Questions   QuestionSet   `gorm:"type:json" json:"questions"`
	Responses   ResponseSet   `gorm:"type:json" json:"responses"`
	Version     int           `gorm:"default:0" json:"-"`
}

func (TestAttempt) TableName() string {
	return "test_attempts"
}

// ResponseFor returns the response slot for a question id, or nil.
func (a *TestAttempt) ResponseFor(questionID uint) *AttemptResponse {
	for i := range a.Responses {
		if a.Responses[i].QuestionID == questionID {
			return &a.Responses[i]
		}
	}
	return nil
}

// QuestionFor returns the frozen question for a question id, or nil.
func (a *TestAttempt) QuestionFor(questionID uint) *AttemptQuestion {
	for i := range a.Questions {
		if a.Questions[i].QuestionID == questionID {
			return &a.Questions[i]
		}
	}
	return nil
}

// AllAnswered reports whether every response slot has an answer.
func (a *TestAttempt) AllAnswered() bool {
	if len(a.Responses) == 0 {
		return false
	}
	for i := range a.Responses {
		if a.Responses[i].Answer == nil {
			return false
		}
	}
	return true
}
