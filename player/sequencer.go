package player

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"abyss-player/models"
	"abyss-player/services"
)

// Direction 表示推进方向。
type Direction int

const (
	// Next 表示向后推进。
	Next Direction = 1
	// Previous 表示向前回退。
	Previous Direction = -1
)

// ErrPositionNotFound 表示当前分组或条目不在给定列表中，
// 通常意味着它们已被并发删除。
var ErrPositionNotFound = errors.New("当前播放位置不存在")

// Target 是一次推进计算的结果。
type Target struct {
	// GroupID 与 EntryID 是目标位置；Moved 为 false 时两者
	// 保持当前位置不变，调用方不应跳转。
	GroupID string `json:"group_id"`
	EntryID string `json:"entry_id"`
	Moved   bool   `json:"moved"`
	// Restart 为 true 时，调用方应让跳转后展示的媒体从头播放。
	Restart bool `json:"restart"`
}

// Sequencer 根据播放开关计算下一个播放位置。
// 跨组跳转所需的目标分组条目列表通过注入的 EntryStore 获取。
type Sequencer struct {
	entries services.EntryStore
	// intn 返回 [0, n) 内的随机数，可注入以便测试。
	intn func(n int) int
}

// NewSequencer 创建一个使用默认随机源的 Sequencer。
func NewSequencer(entries services.EntryStore) *Sequencer {
	return &Sequencer{
		entries: entries,
		intn:    rand.Intn,
	}
}

// NewSequencerWithRand 创建一个使用指定随机源的 Sequencer。
func NewSequencerWithRand(entries services.EntryStore, intn func(n int) int) *Sequencer {
	return &Sequencer{entries: entries, intn: intn}
}

// Advance 计算从当前位置沿 dir 方向推进后的目标位置。
//
// 优先级固定：组内随机 → 组内顺序 → 组内循环 → 随机换组 →
// 顺序换组 → 分组循环 → 原地不动。组内随机生效期间永远不会
// 离开当前分组。所有顺序与边界逻辑在 Previous 方向上镜像。
//
// 跨组跳转时目标条目取目标分组的第一个（向后）或最后一个
// （向前）条目；获取目标分组条目失败时不发生任何跳转。
// 顺序耗尽（无处可去）不是错误，返回 Moved 为 false 的结果。
func (s *Sequencer) Advance(ctx context.Context, dir Direction, groups []models.Group, currentGroupID string, entries []models.Entry, currentEntryID string, flags Flags) (Target, error) {
	target := Target{
		GroupID: currentGroupID,
		EntryID: currentEntryID,
		Restart: flags.Repeat,
	}

	groupIndex := -1
	for i, group := range groups {
		if group.ID == currentGroupID {
			groupIndex = i
			break
		}
	}
	entryIndex := -1
	for i, entry := range entries {
		if entry.ID == currentEntryID {
			entryIndex = i
			break
		}
	}
	if groupIndex < 0 || entryIndex < 0 {
		return Target{}, ErrPositionNotFound
	}

	nextGroupIndex := groupIndex
	nextEntryIndex := entryIndex
	forward := dir == Next

	switch {
	case flags.Random:
		// 与当前位置无关的均匀随机，允许连续命中同一条目。
		nextEntryIndex = s.intn(len(entries))
	case forward && entryIndex < len(entries)-1:
		nextEntryIndex = entryIndex + 1
	case !forward && entryIndex > 0:
		nextEntryIndex = entryIndex - 1
	case flags.Loop:
		if forward {
			nextEntryIndex = 0
		} else {
			nextEntryIndex = len(entries) - 1
		}
	case flags.GroupRandom:
		nextGroupIndex = s.intn(len(groups))
	case forward && groupIndex < len(groups)-1:
		nextGroupIndex = groupIndex + 1
	case !forward && groupIndex > 0:
		nextGroupIndex = groupIndex - 1
	case flags.GroupLoop:
		if forward {
			nextGroupIndex = 0
		} else {
			nextGroupIndex = len(groups) - 1
		}
	}

	if nextGroupIndex != groupIndex {
		// 换组时当前条目列表不再适用，需要重新获取目标分组的条目。
		targetGroup := groups[nextGroupIndex]
		targetEntries, err := s.entries.FindByGroup(ctx, targetGroup.ID)
		if err != nil {
			return Target{}, fmt.Errorf("获取分组条目失败: %w", err)
		}
		if len(targetEntries) == 0 {
			return Target{}, fmt.Errorf("分组 %s 没有条目", targetGroup.ID)
		}
		if forward {
			target.EntryID = targetEntries[0].ID
		} else {
			target.EntryID = targetEntries[len(targetEntries)-1].ID
		}
		target.GroupID = targetGroup.ID
		target.Moved = true
		return target, nil
	}

	if nextEntryIndex != entryIndex {
		target.EntryID = entries[nextEntryIndex].ID
		target.Moved = true
		return target, nil
	}

	// 顺序耗尽，原地不动。
	return target, nil
}
