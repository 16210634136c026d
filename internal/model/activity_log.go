package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type ActivityType string

const (
	ActivityTestCompletion    ActivityType = "TEST_COMPLETION"
	ActivityStreakAdvance     ActivityType = "STREAK_ADVANCE"
	ActivityMasteryLevelUp    ActivityType = "MASTERY_LEVEL_UP"
	ActivityAchievementUnlock ActivityType = "ACHIEVEMENT_UNLOCK"
	ActivityRewardPurchase    ActivityType = "REWARD_PURCHASE"
	ActivityLevelUp           ActivityType = "LEVEL_UP"
)

// ActivityDetails is a small structured payload stored as JSON.
type ActivityDetails map[string]interface{}

func (d ActivityDetails) Value() (driver.Value, error) {
	if d == nil {
		return "{}", nil
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *ActivityDetails) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*d = nil
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	default:
		return fmt.Errorf("unsupported type %T for ActivityDetails", value)
	}
}

// ActivityLog is the append-only audit trail for every XP-bearing or
// state-changing progression event.
type ActivityLog struct {
	UUIDBase
	StudentID  uint            `gorm:"index;not null" json:"studentId"`
	Type       ActivityType    `gorm:"size:40;not null;index" json:"type"`
	XPDelta    int             `gorm:"default:0" json:"xpDelta"`
	Details    ActivityDetails `gorm:"type:json" json:"details"`
	OccurredAt time.Time       `gorm:"not null;index" json:"occurredAt"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}
