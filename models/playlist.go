package models

import "encoding/base64"

// Playlist 表示一个播放列表。
type Playlist struct {
	// ID 是播放列表的唯一标识符，由名称经 URL 安全的 Base64 编码生成。
	ID string `json:"id"`
	// Name 是播放列表的显示名称。
	Name string `json:"name"`
}

// NewPlaylist 根据名称创建一个新的 Playlist 实例。
// 相同名称总是产生相同的 ID，因此重复创建等价于覆盖保存。
func NewPlaylist(name string) Playlist {
	return Playlist{
		ID:   base64.URLEncoding.EncodeToString([]byte(name)),
		Name: name,
	}
}
