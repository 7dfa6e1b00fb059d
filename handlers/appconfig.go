package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/models"
	"abyss-player/services"
)

// AppConfigHandler 暴露应用配置的读写接口。
type AppConfigHandler struct {
	service *services.AppConfigService
}

// NewAppConfigHandler 创建一个新的 AppConfigHandler 实例。
func NewAppConfigHandler(service *services.AppConfigService) *AppConfigHandler {
	return &AppConfigHandler{service: service}
}

// Show 返回当前应用配置。
func (h *AppConfigHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Get())
}

// Update 覆盖写入应用配置。
func (h *AppConfigHandler) Update(c *gin.Context) {
	var config models.AppConfig
	if err := c.ShouldBindJSON(&config); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的应用配置"))
		return
	}
	if config.Locale == "" {
		c.JSON(http.StatusBadRequest, NewValidationError("locale 不能为空"))
		return
	}
	if err := h.service.Save(config); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存应用配置失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, config)
}
