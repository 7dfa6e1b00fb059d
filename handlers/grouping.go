package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"abyss-player/grouping"
	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/services"
)

// GroupingHandler 暴露扫描-分组-提交工作流。
// 工作流状态保存在单个 grouping.Session 中：先扫描得到
// 未分组路径，反复应用分组规则，最后提交为持久化记录。
type GroupingHandler struct {
	scanner services.Scanner
	store   services.Store
	session *grouping.Session
}

// NewGroupingHandler 创建一个新的 GroupingHandler 实例。
func NewGroupingHandler(scanner services.Scanner, store services.Store) *GroupingHandler {
	return &GroupingHandler{
		scanner: scanner,
		store:   store,
		session: grouping.NewSession(),
	}
}

// Show 返回工作流当前状态的快照。
func (h *GroupingHandler) Show(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.Snapshot())
}

type groupingScanArgs struct {
	RootPath     string   `json:"root_path" binding:"required"`
	AllowedMimes []string `json:"allowed_mimes" binding:"required"`
}

// Scan 执行一次扫描并以结果初始化分组状态。
// 扫描结果为空也会进入分组阶段。
func (h *GroupingHandler) Scan(c *gin.Context) {
	var args groupingScanArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewValidationError("缺少 root_path 或 allowed_mimes"))
		return
	}
	if len(args.AllowedMimes) == 0 {
		c.JSON(http.StatusBadRequest, NewValidationError("allowed_mimes 不能为空"))
		return
	}

	paths, err := h.scanner.Scan(c.Request.Context(), args.RootPath, args.AllowedMimes)
	if err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("扫描失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	h.session.Begin(paths)
	c.JSON(http.StatusOK, h.session.Snapshot())
}

// Apply 对当前未分组路径应用一条分组规则。
func (h *GroupingHandler) Apply(c *gin.Context) {
	if h.session.State() != grouping.StateGrouping {
		c.JSON(http.StatusBadRequest, NewBadRequestError("尚未执行扫描"))
		return
	}
	var rule grouping.Rule
	if err := c.ShouldBindJSON(&rule); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的分组规则"))
		return
	}
	if rule.Prefix == "" {
		c.JSON(http.StatusBadRequest, NewValidationError("prefix 不能为空"))
		return
	}
	h.session.Apply(rule)
	c.JSON(http.StatusOK, h.session.Snapshot())
}

type groupingCommitArgs struct {
	PlaylistID string `json:"playlist_id" binding:"required"`
}

// Commit 将分组结果提交为指定播放列表下的分组与条目。
// 任一创建失败时立即中止，已创建的记录保留。
func (h *GroupingHandler) Commit(c *gin.Context) {
	if h.session.State() != grouping.StateGrouping {
		c.JSON(http.StatusBadRequest, NewBadRequestError("尚未执行扫描"))
		return
	}
	var args groupingCommitArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 playlist_id"))
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.Playlists().Find(ctx, args.PlaylistID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, NewNotFoundError("播放列表"))
			return
		}
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	if err := h.session.Commit(ctx, args.PlaylistID, h.store.Groups(), h.store.Entries()); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("提交分组失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset 丢弃所有未提交的分组状态，回到扫描阶段。
func (h *GroupingHandler) Reset(c *gin.Context) {
	h.session.Reset()
	c.Status(http.StatusNoContent)
}
