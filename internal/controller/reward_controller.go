package controller

import (
	"strconv"

	"testprep_backend/internal/repository"
	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type RewardController struct {
	ProgressionService *service.ProgressionService
	RewardRepo         *repository.RewardRepository
}

func NewRewardController(progressionService *service.ProgressionService, rewardRepo *repository.RewardRepository) *RewardController {
	return &RewardController{
		ProgressionService: progressionService,
		RewardRepo:         rewardRepo,
	}
}

// @Summary List rewards with my purchases
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/rewards [get]
func (c *RewardController) ListRewards(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rewards, err := c.RewardRepo.ListEnabled()
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	purchases, err := c.RewardRepo.FindPurchasesByStudent(user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"rewards":   rewards,
		"purchases": purchases,
	})
}

// @Summary Purchase a reward
// @Description Rejects duplicate purchases and insufficient balances
// @Tags rewards
// @Produce json
// @Security BearerAuth
// @Param id path int true "reward id"
// @Success 201 {object} util.Response
// @Router /api/rewards/{id}/purchase [post]
func (c *RewardController) PurchaseReward(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid reward id")
		return
	}

	purchase, err := c.ProgressionService.PurchaseReward(user.UserID, uint(id))
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Created(ctx, purchase)
}
