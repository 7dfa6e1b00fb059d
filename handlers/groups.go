package handlers

import (
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/models"
	"abyss-player/services"
)

// GroupHandler 负责处理分组的 CRUD、排序与移位请求。
type GroupHandler struct {
	store services.Store
}

// NewGroupHandler 创建一个新的 GroupHandler 实例。
func NewGroupHandler(store services.Store) *GroupHandler {
	return &GroupHandler{store: store}
}

// Index 返回分组列表。
// 给出 playlist_id 查询参数时仅返回该播放列表下的分组。
func (h *GroupHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if playlistID := c.Query("playlist_id"); playlistID != "" {
		groups, err := h.store.Groups().FindByPlaylist(ctx, playlistID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, NewInternalError(err))
			return
		}
		c.JSON(http.StatusOK, groups)
		return
	}
	groups, err := h.store.Groups().All(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, groups)
}

type createGroupArgs struct {
	PlaylistID string `json:"playlist_id" binding:"required"`
	Path       string `json:"path" binding:"required"`
}

// Create 在指定播放列表下创建一个分组。
// 分组路径必须实际存在于文件系统中。
func (h *GroupHandler) Create(c *gin.Context) {
	var args createGroupArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 playlist_id 或 path"))
		return
	}
	if _, err := os.Stat(args.Path); err != nil {
		c.JSON(http.StatusNotFound, NewNotFoundError("分组路径"))
		return
	}
	meta, err := models.NewMeta(args.Path)
	if err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("读取分组元数据失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	group := models.NewGroup(meta, args.PlaylistID)
	if err := h.store.Groups().Save(c.Request.Context(), group); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存分组失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusCreated, group)
}

// Sort 按给定规则对全部分组重新排序。
func (h *GroupHandler) Sort(c *gin.Context) {
	var spec models.SortSpec
	if err := c.ShouldBindJSON(&spec); err != nil || !spec.Valid() {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的排序规则"))
		return
	}
	if err := h.store.Groups().Sort(c.Request.Context(), spec); err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Show 返回指定 ID 的分组。
func (h *GroupHandler) Show(c *gin.Context) {
	group, err := h.store.Groups().Find(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("分组"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, group)
}

// Destroy 删除指定分组及其下属条目。
func (h *GroupHandler) Destroy(c *gin.Context) {
	err := h.store.Groups().Destroy(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("分组"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

type shiftArgs struct {
	Offset int `json:"offset"`
}

// Shift 将指定分组在顺序中移动 offset 个位置。
func (h *GroupHandler) Shift(c *gin.Context) {
	var args shiftArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 offset"))
		return
	}
	err := h.store.Groups().Shift(c.Request.Context(), c.Param("id"), args.Offset)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("分组"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
