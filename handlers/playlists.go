package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/models"
	"abyss-player/services"
)

// PlaylistHandler 负责处理播放列表的 CRUD 请求。
type PlaylistHandler struct {
	store services.Store
}

// NewPlaylistHandler 创建一个新的 PlaylistHandler 实例。
func NewPlaylistHandler(store services.Store) *PlaylistHandler {
	return &PlaylistHandler{store: store}
}

// Index 返回所有播放列表。
func (h *PlaylistHandler) Index(c *gin.Context) {
	playlists, err := h.store.Playlists().All(c.Request.Context())
	if err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("获取播放列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, playlists)
}

type createPlaylistArgs struct {
	Name string `json:"name" binding:"required"`
}

// Create 创建一个新的播放列表。
// 名称决定 ID，重复创建同名播放列表等价于覆盖保存。
func (h *PlaylistHandler) Create(c *gin.Context) {
	var args createPlaylistArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少播放列表名称"))
		return
	}
	playlist := models.NewPlaylist(args.Name)
	if err := h.store.Playlists().Save(c.Request.Context(), playlist); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存播放列表失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusCreated, playlist)
}

// Show 返回指定 ID 的播放列表。
func (h *PlaylistHandler) Show(c *gin.Context) {
	playlist, err := h.store.Playlists().Find(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("播放列表"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, playlist)
}

// Destroy 删除指定的播放列表及其下属分组与条目。
func (h *PlaylistHandler) Destroy(c *gin.Context) {
	err := h.store.Playlists().Destroy(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("播放列表"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
