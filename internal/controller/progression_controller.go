package controller

import (
	"strconv"

	"testprep_backend/internal/repository"
	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressionController struct {
	ProgressionService *service.ProgressionService
	UserRepo           *repository.UserRepository
}

func NewProgressionController(progressionService *service.ProgressionService, userRepo *repository.UserRepository) *ProgressionController {
	return &ProgressionController{
		ProgressionService: progressionService,
		UserRepo:           userRepo,
	}
}

// @Summary Get my progression
// @Description Level, XP, streak, point balance and per-subject mastery
// @Tags progression
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/progression [get]
func (c *ProgressionController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	progress, masteries, err := c.ProgressionService.GetProgress(user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	lastActivityDate := ""
	if progress.LastActivity != nil {
		lastActivityDate = progress.LastActivity.Format(util.DateFormat)
	}
	util.Success(ctx, gin.H{
		"progress":         progress,
		"masteries":        masteries,
		"lastActivityDate": lastActivityDate,
	})
}

// @Summary Get my activity history
// @Tags progression
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/progression/activity [get]
func (c *ProgressionController) GetActivity(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	entries, total, err := c.ProgressionService.GetActivity(user.UserID, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  entries,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// LeaderboardEntry is a ranked row decorated with the student's display name.
type LeaderboardEntry struct {
	StudentID uint   `json:"studentId"`
	Name      string `json:"name"`
	Level     int    `json:"level"`
	CurrentXP int    `json:"currentXp"`
}

// @Summary Get the XP leaderboard
// @Tags progression
// @Produce json
// @Security BearerAuth
// @Param limit query int false "entries" default(10)
// @Success 200 {object} util.Response
// @Router /api/progression/leaderboard [get]
func (c *ProgressionController) GetLeaderboard(ctx *gin.Context) {
	limit := 10
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}

	rows, err := c.ProgressionService.GetLeaderboard(limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	ids := make([]uint, len(rows))
	for i, row := range rows {
		ids[i] = row.StudentID
	}
	users, err := c.UserRepo.FindByIDs(ids)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	names := make(map[uint]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	entries := make([]LeaderboardEntry, len(rows))
	for i, row := range rows {
		entries[i] = LeaderboardEntry{
			StudentID: row.StudentID,
			Name:      names[row.StudentID],
			Level:     row.Level,
			CurrentXP: row.CurrentXP,
		}
	}
	util.Success(ctx, entries)
}
