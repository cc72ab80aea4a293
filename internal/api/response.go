package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/wfunc/hangman/internal/errors"
	"go.uber.org/zap"
)

// ErrorResponse 错误响应
type ErrorResponse struct {
	Error string              `json:"error"`
	Code  apperrors.ErrorCode `json:"code,omitempty"`
}

// StatusResponse 操作结果
type StatusResponse struct {
	Status string `json:"status"`
}

// IDResponse 新建资源ID
type IDResponse struct {
	ID uint `json:"id"`
}

var statusOK = StatusResponse{Status: "ok"}

// renderError 按错误码输出JSON错误
func renderError(c *gin.Context, log *zap.Logger, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		log.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "Internal server error",
			Code:  apperrors.ErrUnknown,
		})
		return
	}

	status := appErr.HTTPStatus()
	if status >= http.StatusInternalServerError {
		log.Error("请求处理失败",
			zap.String("path", c.Request.URL.Path),
			zap.Int("code", int(appErr.Code)),
			zap.Error(err))
		// 服务端错误不向客户端暴露内部信息
		c.JSON(status, ErrorResponse{Error: "Internal server error", Code: appErr.Code})
		return
	}
	c.JSON(status, ErrorResponse{Error: appErr.Message, Code: appErr.Code})
}

// bindBody 读取JSON请求体，空请求体保持零值交给业务校验
func bindBody(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return apperrors.Wrap(err, apperrors.ErrInvalidBody)
	}
	return nil
}

// parseID 解析路径中的对局ID
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.Newf(apperrors.ErrInvalidGameID, "%s=%q", name, c.Param(name))
	}
	return uint(id), nil
}
