package repository

import (
	"context"
	"strconv"

	"testprep_backend/internal/model"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const leaderboardKey = "leaderboard:xp"

type ProgressRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
}

func NewProgressRepository(db *gorm.DB, rdb *redis.Client) *ProgressRepository {
	return &ProgressRepository{DB: db, Redis: rdb}
}

func (r *ProgressRepository) FindByStudent(studentID uint) (*model.StudentProgress, error) {
	var p model.StudentProgress
	if err := r.DB.Where("student_id = ?", studentID).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// FindOrCreate returns the progress row, materializing it lazily at level 1.
func (r *ProgressRepository) FindOrCreate(tx *gorm.DB, studentID uint, firstLevelXP int) (*model.StudentProgress, error) {
	var p model.StudentProgress
	err := tx.Where("student_id = ?", studentID).First(&p).Error
	if err == nil {
		return &p, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}
	p = model.StudentProgress{
		StudentID:   studentID,
		Level:       1,
		NextLevelXP: firstLevelXP,
	}
	if err := tx.Create(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProgressRepository) Save(tx *gorm.DB, p *model.StudentProgress) error {
	if err := tx.Save(p).Error; err != nil {
		return err
	}
	r.updateLeaderboard(p)
	return nil
}

// rankScore orders students by level first, in-level XP second.
func rankScore(p *model.StudentProgress) float64 {
	return float64(p.Level)*1e6 + float64(p.CurrentXP)
}

// updateLeaderboard mirrors the ranking into a redis sorted set; the set is
// a cache, so failures are ignored and reads fall back to the database.
func (r *ProgressRepository) updateLeaderboard(p *model.StudentProgress) {
	if r.Redis == nil {
		return
	}
	r.Redis.ZAdd(context.Background(), leaderboardKey, &redis.Z{
		Score:  rankScore(p),
		Member: strconv.FormatUint(uint64(p.StudentID), 10),
	})
}

type LeaderboardRow struct {
	StudentID uint `json:"studentId"`
	Level     int  `json:"level"`
	CurrentXP int  `json:"currentXp"`
}

func (r *ProgressRepository) TopByXP(limit int) ([]LeaderboardRow, error) {
	if r.Redis != nil {
		members, err := r.Redis.ZRevRange(context.Background(), leaderboardKey, 0, int64(limit-1)).Result()
		if err == nil && len(members) > 0 {
			ids := make([]uint, 0, len(members))
			for _, m := range members {
				id, err := strconv.ParseUint(m, 10, 64)
				if err != nil {
					continue
				}
				ids = append(ids, uint(id))
			}
			return r.rowsForStudents(ids)
		}
	}

	var progresses []model.StudentProgress
	if err := r.DB.Order("level DESC, current_xp DESC").Limit(limit).Find(&progresses).Error; err != nil {
		return nil, err
	}
	rows := make([]LeaderboardRow, len(progresses))
	for i, p := range progresses {
		rows[i] = LeaderboardRow{StudentID: p.StudentID, Level: p.Level, CurrentXP: p.CurrentXP}
	}
	return rows, nil
}

// rowsForStudents loads progress rows preserving the given ranking order.
func (r *ProgressRepository) rowsForStudents(ids []uint) ([]LeaderboardRow, error) {
	var progresses []model.StudentProgress
	if err := r.DB.Where("student_id IN ?", ids).Find(&progresses).Error; err != nil {
		return nil, err
	}
	byID := make(map[uint]model.StudentProgress, len(progresses))
	for _, p := range progresses {
		byID[p.StudentID] = p
	}
	rows := make([]LeaderboardRow, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			rows = append(rows, LeaderboardRow{StudentID: p.StudentID, Level: p.Level, CurrentXP: p.CurrentXP})
		}
	}
	return rows, nil
}
