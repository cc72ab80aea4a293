package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/hangman/internal/service"
	"go.uber.org/zap"
)

// PlayHandler 服务端对局处理器
type PlayHandler struct {
	play   service.PlayService
	logger *zap.Logger
}

// NewPlayHandler 创建服务端对局处理器
func NewPlayHandler(play service.PlayService, logger *zap.Logger) *PlayHandler {
	return &PlayHandler{play: play, logger: logger}
}

// StartRequest 开局请求
type StartRequest struct {
	PlayerName string `json:"playerName"`
}

// GuessRequest 猜测请求
type GuessRequest struct {
	Letter string `json:"letter"`
}

// Start 开始一局
// @Summary 开始服务端对局
// @Tags Play
// @Accept json
// @Produce json
// @Param body body StartRequest false "玩家"
// @Success 201 {object} service.PlaySnapshot
// @Failure 429 {object} ErrorResponse
// @Router /play [post]
func (h *PlayHandler) Start(c *gin.Context) {
	var req StartRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	snap, err := h.play.Start(c.Request.Context(), req.PlayerName)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}

// Get 会话状态
// @Summary 会话状态
// @Tags Play
// @Produce json
// @Param session path string true "会话ID"
// @Success 200 {object} service.PlaySnapshot
// @Failure 404 {object} ErrorResponse
// @Router /play/{session} [get]
func (h *PlayHandler) Get(c *gin.Context) {
	snap, err := h.play.Get(c.Param("session"))
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// Guess 猜一个字母
// @Summary 猜一个字母
// @Tags Play
// @Accept json
// @Produce json
// @Param session path string true "会话ID"
// @Param body body GuessRequest true "字母"
// @Success 200 {object} service.GuessResult
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /play/{session}/guess [post]
func (h *PlayHandler) Guess(c *gin.Context) {
	var req GuessRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	result, err := h.play.Guess(c.Request.Context(), c.Param("session"), req.Letter)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// End 结束会话
// @Summary 结束会话
// @Tags Play
// @Param session path string true "会话ID"
// @Success 200 {object} StatusResponse
// @Failure 404 {object} ErrorResponse
// @Router /play/{session} [delete]
func (h *PlayHandler) End(c *gin.Context) {
	if err := h.play.End(c.Param("session")); err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, statusOK)
}

// Resume 恢复进行中的对局
// @Summary 按猜测记录恢复进行中的对局
// @Tags Play
// @Produce json
// @Param id path int true "对局ID"
// @Success 201 {object} service.PlaySnapshot
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /games/{id}/resume [post]
func (h *PlayHandler) Resume(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	snap, err := h.play.Resume(c.Request.Context(), id)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, snap)
}
