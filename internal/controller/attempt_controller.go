package controller

import (
	"strconv"

	"testprep_backend/internal/service"
	"testprep_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AttemptController struct {
	ExecutionService *service.ExecutionService
}

func NewAttemptController(executionService *service.ExecutionService) *AttemptController {
	return &AttemptController{ExecutionService: executionService}
}

func attemptID(ctx *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		util.BadRequest(ctx, "invalid attempt id")
		return 0, false
	}
	return uint(id), true
}

// @Summary Create a test attempt
// @Description Materializes an attempt for a test plan; returns the existing one if the plan already has a NOT_STARTED attempt
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body controller.CreateAttemptRequest true "plan to attempt"
// @Success 201 {object} util.Response
// @Router /api/attempts [post]
func (c *AttemptController) CreateAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req CreateAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.ExecutionService.CreateAttempt(req.PlanID, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}

	util.Created(ctx, attempt)
}

type CreateAttemptRequest struct {
	PlanID uint `json:"planId" binding:"required"`
}

// @Summary List my test plans
// @Description Active plans assigned to the caller, ready to attempt
// @Tags plans
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/plans [get]
func (c *AttemptController) ListPlans(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	plans, err := c.ExecutionService.ListPlans(user.UserID, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, plans)
}

// @Summary Start an attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/start [post]
func (c *AttemptController) StartAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	attempt, err := c.ExecutionService.StartAttempt(id, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Pause an attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/pause [post]
func (c *AttemptController) PauseAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	attempt, err := c.ExecutionService.PauseAttempt(id, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Resume a paused attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/resume [post]
func (c *AttemptController) ResumeAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	attempt, err := c.ExecutionService.ResumeAttempt(id, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

type SubmitAnswerRequest struct {
	QuestionID uint   `json:"questionId" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
	TimeSpent  int    `json:"timeSpent"`
}

// @Summary Submit a single answer
// @Description Answering the last open question completes the attempt automatically
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Param request body controller.SubmitAnswerRequest true "answer"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers [post]
func (c *AttemptController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	var req SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.ExecutionService.SubmitAnswer(id, user.UserID, req.QuestionID, req.Answer, req.TimeSpent)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Submit all answers at once
// @Description Merges a whole-test submission; completion stays a separate explicit call
// @Tags attempts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Param request body service.BulkSubmission true "all answers"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/answers/bulk [post]
func (c *AttemptController) SubmitAllAnswers(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	var req service.BulkSubmission
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	attempt, err := c.ExecutionService.SubmitAllAnswers(id, user.UserID, req)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, attempt)
}

// @Summary Complete an attempt
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/complete [post]
func (c *AttemptController) CompleteAttempt(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	attempt, summary, err := c.ExecutionService.CompleteAttempt(id, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"attempt": attempt,
		"score":   summary.Score,
	})
}

// @Summary Get attempt results
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param id path int true "attempt id"
// @Success 200 {object} util.Response
// @Router /api/attempts/{id}/results [get]
func (c *AttemptController) GetResults(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	id, ok := attemptID(ctx)
	if !ok {
		return
	}

	results, err := c.ExecutionService.GetResults(id, user.UserID)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, results)
}

// @Summary List my attempts
// @Tags attempts
// @Produce json
// @Security BearerAuth
// @Param page query int false "page" default(1)
// @Param limit query int false "page size" default(20)
// @Success 200 {object} util.Response
// @Router /api/attempts [get]
func (c *AttemptController) ListAttempts(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := pagination(ctx)
	attempts, total, err := c.ExecutionService.ListAttempts(user.UserID, user.UserID, page, limit)
	if err != nil {
		util.FromError(ctx, err)
		return
	}
	util.Success(ctx, util.PageResponse{
		List:  attempts,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

func pagination(ctx *gin.Context) (int, int) {
	page := 1
	limit := 20
	if v, err := strconv.Atoi(ctx.Query("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(ctx.Query("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}
	return page, limit
}
