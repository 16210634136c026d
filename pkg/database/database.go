package database

import (
	"fmt"
	"log"

	"testprep_backend/internal/config"
	"testprep_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Subject{},
		&model.Question{},
		&model.TestPlan{},
		&model.TestAttempt{},
		&model.StudentProgress{},
		&model.LevelConfig{},
		&model.SubjectMastery{},
		&model.Achievement{},
		&model.StudentAchievement{},
		&model.Reward{},
		&model.RewardPurchase{},
		&model.ActivityLog{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// seedDefaults inserts the level curve and a starter catalog on first run.
func seedDefaults(db *gorm.DB) {
	var lcCount int64
	db.Model(&model.LevelConfig{}).Count(&lcCount)
	if lcCount == 0 {
		// 1000 XP for level 1, +500 per level thereafter
		for level := 1; level <= 50; level++ {
			db.Create(&model.LevelConfig{
				Level:      level,
				XPRequired: 1000 + (level-1)*500,
			})
		}
	}

	var subjCount int64
	db.Model(&model.Subject{}).Count(&subjCount)
	if subjCount == 0 {
		defaults := []model.Subject{
			{Code: "math", Name: "Mathematics", Enabled: true},
			{Code: "english", Name: "English", Enabled: true},
			{Code: "science", Name: "Science", Enabled: true},
		}
		for _, s := range defaults {
			db.Create(&s)
		}
	}

	var achCount int64
	db.Model(&model.Achievement{}).Count(&achCount)
	if achCount == 0 {
		defaults := []model.Achievement{
			{Code: "first_test", Name: "First Steps", Description: "Complete your first test", Points: 100},
			{Code: "perfect_score", Name: "Perfectionist", Description: "Score 100% on a test", Points: 500},
			{Code: "week_streak", Name: "Committed", Description: "Keep a 7-day streak", Points: 300},
			{Code: "subject_master", Name: "Subject Master", Description: "Reach mastery level 5 in a subject", Points: 1000},
		}
		for _, a := range defaults {
			db.Create(&a)
		}
	}

	var rwCount int64
	db.Model(&model.Reward{}).Count(&rwCount)
	if rwCount == 0 {
		defaults := []model.Reward{
			{Code: "avatar_frame", Name: "Avatar Frame", Description: "A decorative frame for your avatar", Cost: 500},
			{Code: "theme_dark", Name: "Dark Theme", Description: "Unlock the dark color theme", Cost: 1000},
			{Code: "badge_gold", Name: "Gold Badge", Description: "Show a gold badge on your profile", Cost: 2500},
		}
		for _, r := range defaults {
			db.Create(&r)
		}
	}
}
