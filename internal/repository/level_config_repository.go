package repository

import (
	"testprep_backend/internal/model"

	"gorm.io/gorm"
)

type LevelConfigRepository struct {
	DB *gorm.DB
}

func NewLevelConfigRepository(db *gorm.DB) *LevelConfigRepository {
	return &LevelConfigRepository{DB: db}
}

func (r *LevelConfigRepository) FindByLevel(tx *gorm.DB, level int) (*model.LevelConfig, error) {
	var cfg model.LevelConfig
	if err := tx.Where("level = ?", level).First(&cfg).Error; err != nil {
		return nil, err
	}
	return &cfg, nil
}
