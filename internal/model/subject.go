package model

// Subject is shared catalog reference data (e.g. an exam board subject).
type Subject struct {
	BaseModel
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string `gorm:"size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description"`
	Enabled     bool   `gorm:"default:true" json:"enabled"`
}

func (Subject) TableName() string {
	return "subjects"
}
