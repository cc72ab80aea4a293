package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/hangman/internal/repository"
	"github.com/wfunc/hangman/internal/service"
	"go.uber.org/zap"
)

// GameHandler 对局记录处理器
type GameHandler struct {
	games  service.GameService
	logger *zap.Logger
}

// NewGameHandler 创建对局记录处理器
func NewGameHandler(games service.GameService, logger *zap.Logger) *GameHandler {
	return &GameHandler{games: games, logger: logger}
}

// List 对局列表
// @Summary 对局列表
// @Description 最新的对局在前；带 page 参数时分页
// @Tags Games
// @Produce json
// @Param page query int false "页码"
// @Param pageSize query int false "每页数量"
// @Success 200 {array} models.Game
// @Failure 500 {object} ErrorResponse
// @Router /games [get]
func (h *GameHandler) List(c *gin.Context) {
	var pagination *repository.Pagination
	if page := c.Query("page"); page != "" {
		p, _ := strconv.Atoi(page)
		size, _ := strconv.Atoi(c.Query("pageSize"))
		pagination = repository.NewPagination(p, size)
	}

	games, err := h.games.ListGames(c.Request.Context(), pagination)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, games)
}

// Get 对局详情
// @Summary 对局详情
// @Tags Games
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} models.GameDetail
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /games/{id} [get]
func (h *GameHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}

	detail, err := h.games.GetGame(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// Create 新建对局
// @Summary 新建对局
// @Tags Games
// @Accept json
// @Produce json
// @Param body body service.CreateGameRequest true "对局"
// @Success 201 {object} IDResponse
// @Failure 400 {object} ErrorResponse
// @Router /games [post]
func (h *GameHandler) Create(c *gin.Context) {
	var req service.CreateGameRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	id, err := h.games.CreateGame(c.Request.Context(), &req)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, IDResponse{ID: id})
}

// Step 记录一次猜测
// @Summary 记录一次猜测
// @Tags Games
// @Accept json
// @Produce json
// @Param id path int true "对局ID"
// @Param body body service.StepRequest true "猜测"
// @Success 201 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /step/{id} [post]
func (h *GameHandler) Step(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}

	var req service.StepRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	if err := h.games.AddStep(c.Request.Context(), id, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, statusOK)
}

// Finish 结束对局
// @Summary 写入对局结果
// @Tags Games
// @Accept json
// @Produce json
// @Param id path int true "对局ID"
// @Param body body service.FinishGameRequest true "结果 win|lose"
// @Success 200 {object} StatusResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /games/{id} [post]
func (h *GameHandler) Finish(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}

	var req service.FinishGameRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	if err := h.games.FinishGame(c.Request.Context(), id, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statusOK)
}

// Delete 删除对局
// @Summary 删除对局及其猜测
// @Tags Games
// @Param id path int true "对局ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /games/{id} [delete]
func (h *GameHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	if err := h.games.DeleteGame(c.Request.Context(), id); err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statusOK)
}

// Replay 回放对局
// @Summary 逐步回放对局
// @Tags Games
// @Produce json
// @Param id path int true "对局ID"
// @Success 200 {object} service.ReplayResult
// @Failure 404 {object} ErrorResponse
// @Router /games/{id}/replay [get]
func (h *GameHandler) Replay(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	replay, err := h.games.ReplayGame(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, replay)
}
