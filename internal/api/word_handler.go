package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wfunc/hangman/internal/game"
	"github.com/wfunc/hangman/internal/service"
	"go.uber.org/zap"
)

// WordHandler 词库处理器
type WordHandler struct {
	words  service.WordService
	logger *zap.Logger
}

// NewWordHandler 创建词库处理器
func NewWordHandler(words service.WordService, logger *zap.Logger) *WordHandler {
	return &WordHandler{words: words, logger: logger}
}

// AddWordRequest 添加单词请求
type AddWordRequest struct {
	Word string `json:"word"`
}

// AddWordResponse 添加单词响应
type AddWordResponse struct {
	Word  string `json:"word"`
	Added bool   `json:"added"`
}

// List 单词列表
// @Summary 单词列表
// @Tags Words
// @Produce json
// @Success 200 {array} models.Word
// @Router /words [get]
func (h *WordHandler) List(c *gin.Context) {
	words, err := h.words.List(c.Request.Context())
	if err != nil {
		renderError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, words)
}

// Add 添加单词，已存在时 added=false
// @Summary 添加单词
// @Tags Words
// @Accept json
// @Produce json
// @Param body body AddWordRequest true "6个字母的单词"
// @Success 201 {object} AddWordResponse
// @Success 200 {object} AddWordResponse
// @Failure 400 {object} ErrorResponse
// @Router /words [post]
func (h *WordHandler) Add(c *gin.Context) {
	var req AddWordRequest
	if err := bindBody(c, &req); err != nil {
		renderError(c, h.logger, err)
		return
	}

	added, err := h.words.Add(c.Request.Context(), req.Word)
	if err != nil {
		renderError(c, h.logger, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, AddWordResponse{Word: game.NormalizeWord(req.Word), Added: added})
}
