package models

import "encoding/base64"

// Group 表示播放列表中按路径前缀划分的一个分组。
type Group struct {
	// ID 是分组的唯一标识符，由所属播放列表 ID 与分组路径拼接生成。
	ID string `json:"id"`
	// Meta 是分组路径的元数据，Meta.Path 即分组前缀。
	Meta Meta `json:"meta"`
	// PlaylistID 是所属播放列表的 ID。
	PlaylistID string `json:"playlist_id"`
}

// NewGroup 根据路径元数据和播放列表 ID 创建一个新的 Group 实例。
// 同一播放列表下相同路径总是产生相同的 ID。
func NewGroup(meta Meta, playlistID string) Group {
	return Group{
		ID:         playlistID + base64.URLEncoding.EncodeToString([]byte(meta.Path)),
		Meta:       meta,
		PlaylistID: playlistID,
	}
}
