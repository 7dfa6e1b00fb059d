package handlers

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"abyss-player/logger"
	"abyss-player/middleware"
	"abyss-player/models"
	"abyss-player/player"
	"abyss-player/services"
)

// PlayerHandler 暴露播放开关与播放顺序推进接口。
// 自动推进采用轮询模型：媒体播放完毕后客户端上报 Completed，
// 服务端按间隔计算下一个目标并缓存，客户端轮询 Pending 取走。
type PlayerHandler struct {
	store     services.Store
	flags     player.FlagsStore
	sequencer *player.Sequencer
	advancer  *player.AutoAdvancer

	mu      sync.Mutex
	pending *player.Target
}

// NewPlayerHandler 创建一个新的 PlayerHandler 实例。
func NewPlayerHandler(store services.Store, flags player.FlagsStore) *PlayerHandler {
	return &PlayerHandler{
		store:     store,
		flags:     flags,
		sequencer: player.NewSequencer(store.Entries()),
		advancer:  player.NewAutoAdvancer(),
	}
}

// ShowFlags 返回当前全部播放开关。
func (h *PlayerHandler) ShowFlags(c *gin.Context) {
	c.JSON(http.StatusOK, player.LoadFlags(h.flags))
}

// UpdateFlags 覆盖写入全部播放开关。
// 开关变更会使已排定的自动推进失效，因此先取消定时器。
func (h *PlayerHandler) UpdateFlags(c *gin.Context) {
	var flags player.Flags
	if err := c.ShouldBindJSON(&flags); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("无效的播放开关"))
		return
	}
	if flags.AutoIntervalSeconds < 1 {
		c.JSON(http.StatusBadRequest, NewValidationError("auto_interval 必须不小于 1"))
		return
	}
	h.advancer.Cancel()
	h.clearPending()
	if err := player.SaveFlags(h.flags, flags); err != nil {
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("保存播放开关失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, flags)
}

type advanceArgs struct {
	Direction  string `json:"direction" binding:"required"`
	PlaylistID string `json:"playlist_id" binding:"required"`
	GroupID    string `json:"group_id" binding:"required"`
	EntryID    string `json:"entry_id" binding:"required"`
}

func parseDirection(raw string) (player.Direction, bool) {
	switch raw {
	case "next":
		return player.Next, true
	case "previous":
		return player.Previous, true
	}
	return 0, false
}

// Advance 从给定位置按当前播放开关计算目标位置并立即返回。
func (h *PlayerHandler) Advance(c *gin.Context) {
	var args advanceArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 direction、playlist_id、group_id 或 entry_id"))
		return
	}
	dir, ok := parseDirection(args.Direction)
	if !ok {
		c.JSON(http.StatusBadRequest, NewValidationError("direction 必须为 next 或 previous"))
		return
	}

	target, err := h.advance(c.Request.Context(), dir, args.PlaylistID, args.GroupID, args.EntryID)
	if err != nil {
		if errors.Is(err, player.ErrPositionNotFound) {
			c.JSON(http.StatusNotFound, &APIError{
				Code:    "POSITION_NOT_FOUND",
				Message: "当前播放位置不存在",
			})
			return
		}
		logger.WithRequestID(middleware.GetRequestID(c)).Errorf("计算播放目标失败: %v", err)
		c.JSON(http.StatusInternalServerError, NewInternalError(err))
		return
	}
	c.JSON(http.StatusOK, target)
}

type completedArgs struct {
	PlaylistID string `json:"playlist_id" binding:"required"`
	GroupID    string `json:"group_id" binding:"required"`
	EntryID    string `json:"entry_id" binding:"required"`
}

// Completed 处理一次播放完毕上报。
// 自动推进开启时按间隔排定一次推进计算，结果写入待取目标；
// 关闭时仅取消已有定时器。
func (h *PlayerHandler) Completed(c *gin.Context) {
	var args completedArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, NewBadRequestError("缺少 playlist_id、group_id 或 entry_id"))
		return
	}

	flags := player.LoadFlags(h.flags)
	if !flags.Auto {
		h.advancer.Cancel()
		h.clearPending()
		c.Status(http.StatusNoContent)
		return
	}

	requestID := middleware.GetRequestID(c)
	interval := time.Duration(flags.AutoIntervalSeconds) * time.Second
	h.advancer.Arm(interval, func() {
		// 定时器触发时重新计算，推进结果反映触发时刻的数据与开关。
		target, err := h.advance(context.Background(), player.Next, args.PlaylistID, args.GroupID, args.EntryID)
		if err != nil {
			logger.WithRequestID(requestID).Errorf("自动推进失败: %v", err)
			return
		}
		h.mu.Lock()
		h.pending = &target
		h.mu.Unlock()
	})
	c.Status(http.StatusAccepted)
}

// Pending 返回并取走已排定的自动推进目标，没有时返回 204。
func (h *PlayerHandler) Pending(c *gin.Context) {
	h.mu.Lock()
	target := h.pending
	h.pending = nil
	h.mu.Unlock()
	if target == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, target)
}

func (h *PlayerHandler) clearPending() {
	h.mu.Lock()
	h.pending = nil
	h.mu.Unlock()
}

// advance 获取推进所需的分组与条目列表并调用顺序计算。
func (h *PlayerHandler) advance(ctx context.Context, dir player.Direction, playlistID, groupID, entryID string) (player.Target, error) {
	var groups []models.Group
	var entries []models.Entry
	var err error
	if groups, err = h.store.Groups().FindByPlaylist(ctx, playlistID); err != nil {
		return player.Target{}, err
	}
	if entries, err = h.store.Entries().FindByGroup(ctx, groupID); err != nil {
		return player.Target{}, err
	}
	flags := player.LoadFlags(h.flags)
	return h.sequencer.Advance(ctx, dir, groups, groupID, entries, entryID, flags)
}
