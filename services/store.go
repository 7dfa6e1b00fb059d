package services

import (
	"context"
	"errors"

	"abyss-player/models"
)

// ErrNotFound 表示请求的记录不存在。
var ErrNotFound = errors.New("记录不存在")

// PlaylistStore 定义了播放列表的持久化操作。
type PlaylistStore interface {
	// All 返回所有播放列表，保持既定顺序。
	All(ctx context.Context) ([]models.Playlist, error)

	// Find 根据 ID 查找播放列表，不存在时返回 ErrNotFound。
	Find(ctx context.Context, id string) (models.Playlist, error)

	// Save 保存播放列表；ID 已存在时覆盖原记录。
	Save(ctx context.Context, playlist models.Playlist) error

	// Destroy 删除播放列表及其下属的所有分组与条目。
	Destroy(ctx context.Context, id string) error
}

// GroupStore 定义了分组的持久化操作。
type GroupStore interface {
	// All 返回所有分组，保持既定顺序。
	All(ctx context.Context) ([]models.Group, error)

	// FindByPlaylist 返回指定播放列表下的分组，保持既定顺序。
	FindByPlaylist(ctx context.Context, playlistID string) ([]models.Group, error)

	// Find 根据 ID 查找分组，不存在时返回 ErrNotFound。
	Find(ctx context.Context, id string) (models.Group, error)

	// Save 保存分组；ID 已存在时覆盖原记录。
	Save(ctx context.Context, group models.Group) error

	// Destroy 删除分组及其下属的所有条目。
	Destroy(ctx context.Context, id string) error

	// Sort 按指定规则对全部分组重新排序。
	Sort(ctx context.Context, spec models.SortSpec) error

	// Shift 将指定分组在全局顺序中移动 offset 个位置，
	// 目标位置越界时收敛到边界。
	Shift(ctx context.Context, id string, offset int) error
}

// EntryStore 定义了条目的持久化操作。
type EntryStore interface {
	// All 返回所有条目，保持既定顺序。
	All(ctx context.Context) ([]models.Entry, error)

	// FindByGroup 返回指定分组下的条目，保持既定顺序。
	FindByGroup(ctx context.Context, groupID string) ([]models.Entry, error)

	// Find 根据 ID 查找条目，不存在时返回 ErrNotFound。
	Find(ctx context.Context, id string) (models.Entry, error)

	// Save 保存条目；ID 已存在时覆盖原记录。
	Save(ctx context.Context, entry models.Entry) error

	// Destroy 删除条目。
	Destroy(ctx context.Context, id string) error

	// Sort 按指定规则对全部条目重新排序。
	Sort(ctx context.Context, spec models.SortSpec) error

	// Shift 将指定条目在全局顺序中移动 offset 个位置，
	// 目标位置越界时收敛到边界。
	Shift(ctx context.Context, id string, offset int) error
}

// Store 聚合了三类持久化操作，并提供整体快照的导出与导入。
// 具体后端在启动时由配置显式选择。
type Store interface {
	Playlists() PlaylistStore
	Groups() GroupStore
	Entries() EntryStore

	// Export 导出当前全部数据的快照。
	Export(ctx context.Context) (models.Session, error)

	// Import 用快照整体替换当前数据。
	Import(ctx context.Context, session models.Session) error
}
