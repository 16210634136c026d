package controller

import (
	"strconv"

	"testprep_backend/internal/repository"
	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	ProgressionService *service.ProgressionService
	AchievementRepo    *repository.AchievementRepository
}

func NewAchievementController(progressionService *service.ProgressionService, achievementRepo *repository.AchievementRepository) *AchievementController {
	return &AchievementController{
		ProgressionService: progressionService,
		AchievementRepo:    achievementRepo,
	}
}

// @Summary List achievements with my unlocks
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/achievements [get]
func (c *AchievementController) ListAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	achievements, err := c.AchievementRepo.ListAll()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	unlocks, err := c.AchievementRepo.FindUnlocksByStudent(user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"achievements": achievements,
		"unlocks":      unlocks,
	})
}

// @Summary Unlock an achievement
// @Description Unlocking the same achievement twice is rejected
// @Tags achievements
// @Produce json
// @Security BearerAuth
// @Param id path int true "achievement id"
// @Success 201 {object} util.Response
// @Router /api/achievements/{id}/unlock [post]
func (c *AchievementController) UnlockAchievement(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid achievement id")
		return
	}

	unlock, err := c.ProgressionService.UnlockAchievement(user.UserID, uint(id))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, unlock)
}
