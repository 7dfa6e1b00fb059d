package models

import (
	"os"
	"strings"
	"time"
)

// SortBy 表示排序所依据的元数据字段。
type SortBy string

const (
	// SortByDefault 保持当前顺序（仅受升降序影响）。
	SortByDefault SortBy = "default"
	// SortByPath 按文件路径的字典序排序。
	SortByPath SortBy = "path"
	// SortByCreatedAt 按创建时间排序。
	SortByCreatedAt SortBy = "created_at"
	// SortByUpdatedAt 按修改时间排序。
	SortByUpdatedAt SortBy = "updated_at"
)

// SortSpec 定义了一次排序操作的字段与方向。
type SortSpec struct {
	By     SortBy `json:"by"`
	Ascend bool   `json:"ascend"`
}

// Valid 检查排序字段是否为已知值。
func (s SortSpec) Valid() bool {
	switch s.By {
	case SortByDefault, SortByPath, SortByCreatedAt, SortByUpdatedAt:
		return true
	}
	return false
}

// Meta 记录了一个文件系统路径的基本元数据。
type Meta struct {
	// Path 是文件或目录的绝对路径。
	Path string `json:"path"`
	// CreatedAt 是路径的创建时间（不可得时取修改时间）。
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt 是路径的最后修改时间。
	UpdatedAt time.Time `json:"updated_at"`
}

// NewMeta 读取路径的元数据并构造 Meta。
// 路径不存在或不可读时返回错误。
func NewMeta(path string) (Meta, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Meta{}, err
	}
	// Go 的可移植接口不暴露创建时间，统一使用修改时间。
	return Meta{
		Path:      path,
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
	}, nil
}

// Less 根据排序规则比较两个 Meta。
// 返回 true 表示 m 应排在 other 之前。
func (m Meta) Less(other Meta, spec SortSpec) bool {
	switch spec.By {
	case SortByPath:
		if spec.Ascend {
			return strings.Compare(m.Path, other.Path) < 0
		}
		return strings.Compare(other.Path, m.Path) < 0
	case SortByCreatedAt:
		if spec.Ascend {
			return m.CreatedAt.Before(other.CreatedAt)
		}
		return other.CreatedAt.Before(m.CreatedAt)
	case SortByUpdatedAt:
		if spec.Ascend {
			return m.UpdatedAt.Before(other.UpdatedAt)
		}
		return other.UpdatedAt.Before(m.UpdatedAt)
	default:
		// 默认顺序不在此处比较，由存储层直接保持或反转整体顺序。
		return false
	}
}
