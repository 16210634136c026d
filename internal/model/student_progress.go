package model

import "time"

// StudentProgress is the single progression row per student. CurrentXP can
// exceed NextLevelXP when a large award banks surplus toward the next
// level; Level only ever increases.
type StudentProgress struct {
	BaseModel
	StudentID    uint       `gorm:"uniqueIndex;not null" json:"studentId"`
	Level        int        `gorm:"default:1" json:"level"`
	CurrentXP    int        `gorm:"default:0" json:"currentXp"`
	NextLevelXP  int        `gorm:"default:1000" json:"nextLevelXp"`
	StreakDays   int        `gorm:"default:0" json:"streakDays"`
	LastActivity *time.Time `json:"lastActivity"`
	Points       int        `gorm:"default:0" json:"points"`
}

func (StudentProgress) TableName() string {
	return "student_progress"
}

// LevelConfig holds the XP required to pass each level; missing rows are a
// configuration fault surfaced as a validation error on award.
type LevelConfig struct {
	BaseModel
	Level      int `gorm:"uniqueIndex;not null" json:"level"`
	XPRequired int `gorm:"not null" json:"xpRequired"`
}

func (LevelConfig) TableName() string {
	return "level_configs"
}
