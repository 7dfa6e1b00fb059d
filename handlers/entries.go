package handlers

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/models"
	"abyss-player/services"
)

// EntryHandler 负责处理条目的 CRUD、排序与移位请求。
type EntryHandler struct {
	store services.Store
}

// NewEntryHandler 创建一个新的 EntryHandler 实例。
func NewEntryHandler(store services.Store) *EntryHandler {
	return &EntryHandler{store: store}
}

// Index 返回条目列表。
// 给出 group_id 查询参数时仅返回该分组下的条目。
func (h *EntryHandler) Index(c *gin.Context) {
	ctx := c.Request.Context()
	if groupID := c.Query("group_id"); groupID != "" {
		entries, err := h.store.Entries().FindByGroup(ctx, groupID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, NewInternalError(err))
			return
		}
		c.JSON(http.StatusOK, entries)
		return
	}
	entries, err := h.store.Entries().All(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createEntryArgs struct {
	GroupID string `json:"group_id" binding:"required"`
	Path    string `json:"path" binding:"required"`
}

// Create 在指定分组下创建一个条目。
// 条目路径必须实际存在于文件系统中。
func (h *EntryHandler) Create(c *gin.Context) {
	var args createEntryArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 group_id 或 path"))
		return
	}
	if _, err := os.Stat(args.Path); err != nil {
		c.JSON(http.StatusNotFound, NewNotFoundError("条目路径"))
		return
	}
	meta, err := models.NewMeta(args.Path)
	if err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("读取条目元数据失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	entry := models.NewEntry(meta, args.GroupID)
	if err := h.store.Entries().Save(c.Request.Context(), entry); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存条目失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// Sort 按给定规则对全部条目重新排序。
func (h *EntryHandler) Sort(c *gin.Context) {
	var spec models.SortSpec
	if err := c.ShouldBindJSON(&spec); err != nil || !spec.Valid() {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的排序规则"))
		return
	}
	if err := h.store.Entries().Sort(c.Request.Context(), spec); err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// entryDetails 是条目详情响应，音频条目附带内嵌标签。
type entryDetails struct {
	models.Entry
	Tags *models.MediaTags `json:"tags,omitempty"`
}

// Show 返回指定 ID 的条目详情。
// 音频条目会尝试读取文件内嵌的标题、艺术家等标签。
func (h *EntryHandler) Show(c *gin.Context) {
	entry, err := h.store.Entries().Find(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("条目"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	details := entryDetails{Entry: entry}
	if strings.HasPrefix(entry.Mime, "audio/") {
		details.Tags = models.ReadMediaTags(entry.Meta.Path)
	}
	c.JSON(http.StatusOK, details)
}

// Destroy 删除指定条目。
func (h *EntryHandler) Destroy(c *gin.Context) {
	err := h.store.Entries().Destroy(c.Request.Context(), c.Param("id"))
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("条目"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Shift 将指定条目在顺序中移动 offset 个位置。
func (h *EntryHandler) Shift(c *gin.Context) {
	var args shiftArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 offset"))
		return
	}
	err := h.store.Entries().Shift(c.Request.Context(), c.Param("id"), args.Offset)
	if errors.Is(err, services.ErrNotFound) {
		c.JSON(http.StatusNotFound, NewNotFoundError("条目"))
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}
