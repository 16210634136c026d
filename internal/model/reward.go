package model

import "time"

// Reward is catalog data students can spend points on.
type Reward struct {
	BaseModel
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Cost        int    `gorm:"not null" json:"cost"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (Reward) TableName() string {
	return "rewards"
}

type RewardPurchase struct {
	BaseModel
	StudentID   uint      `gorm:"uniqueIndex:idx_student_reward;not null" json:"studentId"`
	RewardID    uint      `gorm:"uniqueIndex:idx_student_reward;not null" json:"rewardId"`
	Cost        int       `gorm:"not null" json:"cost"`
	PurchasedAt time.Time `gorm:"not null" json:"purchasedAt"`
}

func (RewardPurchase) TableName() string {
	return "reward_purchases"
}
