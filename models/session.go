package models

// Session 是播放列表、分组与条目的完整快照，
// 用于会话的保存与恢复。
type Session struct {
	Playlists []Playlist `json:"playlists"`
	Groups    []Group    `json:"groups"`
	Entries   []Entry    `json:"entries"`
}
