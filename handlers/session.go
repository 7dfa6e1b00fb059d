package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/services"
)

// SessionHandler 暴露会话快照的保存与恢复接口。
type SessionHandler struct {
	service *services.SessionService
}

// NewSessionHandler 创建一个新的 SessionHandler 实例。
func NewSessionHandler(service *services.SessionService) *SessionHandler {
	return &SessionHandler{service: service}
}

type sessionArgs struct {
	Path string `json:"path" binding:"required"`
}

// Write 将当前全部数据保存为指定路径的快照文件。
func (h *SessionHandler) Write(c *gin.Context) {
	var args sessionArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 path"))
		return
	}
	if err := h.service.Save(c.Request.Context(), args.Path); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Read 从指定路径的快照文件恢复数据，现有数据被整体替换。
func (h *SessionHandler) Read(c *gin.Context) {
	var args sessionArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 path"))
		return
	}
	if _, err := os.Stat(args.Path); err != nil {
		c.JSON(http.StatusNotFound, NewNotFoundError("会话文件"))
		return
	}
	if err := h.service.Load(c.Request.Context(), args.Path); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("恢复会话失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
