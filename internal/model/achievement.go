package model

import "time"

// Achievement is shared catalog data; unlocks live in StudentAchievement.
type Achievement struct {
	BaseModel
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Icon        string `gorm:"size:255" json:"icon"`
	Points      int    `gorm:"default:0" json:"points"`
}

func (Achievement) TableName() string {
	return "achievements"
}

type StudentAchievement struct {
	BaseModel
	StudentID     uint      `gorm:"uniqueIndex:idx_student_achievement;not null" json:"studentId"`
	AchievementID uint      `gorm:"uniqueIndex:idx_student_achievement;not null" json:"achievementId"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlockedAt"`
}

func (StudentAchievement) TableName() string {
	return "student_achievements"
}
