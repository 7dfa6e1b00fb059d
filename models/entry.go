package models

import (
	"encoding/base64"
	"os"

	"github.com/dhowden/tag"
	"github.com/gabriel-vasile/mimetype"
)

// Entry 表示分组中的一个可播放媒体文件。
type Entry struct {
	// ID 是条目的唯一标识符，由所属分组 ID 与文件路径拼接生成。
	ID string `json:"id"`
	// Mime 是文件的 MIME 类型，无法识别时为空字符串。
	Mime string `json:"mime"`
	// Meta 是媒体文件的元数据。
	Meta Meta `json:"meta"`
	// GroupID 是所属分组的 ID。
	GroupID string `json:"group_id"`
}

// NewEntry 根据文件元数据和分组 ID 创建一个新的 Entry 实例。
// MIME 类型通过文件内容探测；探测失败时保持为空，不视为错误。
func NewEntry(meta Meta, groupID string) Entry {
	mime := ""
	if detected, err := mimetype.DetectFile(meta.Path); err == nil {
		mime = detected.String()
	}
	return Entry{
		ID:      groupID + base64.URLEncoding.EncodeToString([]byte(meta.Path)),
		Mime:    mime,
		Meta:    meta,
		GroupID: groupID,
	}
}

// MediaTags 是从音频文件内嵌标签中读取的展示用元数据。
type MediaTags struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// ReadMediaTags 尝试读取条目文件的内嵌标签。
// 文件无标签或格式不支持时返回 nil，不视为错误。
func ReadMediaTags(path string) *MediaTags {
	file, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return nil
	}
	return &MediaTags{
		Title:  metadata.Title(),
		Artist: metadata.Artist(),
		Album:  metadata.Album(),
	}
}
