package services

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MediaScanner 是基于文件系统遍历的 Scanner 实现。
// 每次调用针对调用方给出的根目录执行一次完整扫描，不持有跨调用状态。
type MediaScanner struct{}

// NewMediaScanner 创建并返回一个新的 MediaScanner 实例。
func NewMediaScanner() *MediaScanner {
	return &MediaScanner{}
}

// MatchMime 判断 MIME 类型是否与任一允许的模式前缀匹配。
// 模式既可以是完整类型（如 "image/png"），也可以是大类前缀（如 "image"）。
func MatchMime(mime string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.HasPrefix(mime, pattern) {
			return true
		}
	}
	return false
}

// Scan 实现 Scanner 接口。
// 单个文件的探测失败会被跳过，不会中断整次扫描。
func (s *MediaScanner) Scan(ctx context.Context, rootPath string, allowedMimes []string) ([]string, error) {
	// 确保根目录存在且可读。
	if _, err := os.Stat(rootPath); err != nil {
		return nil, fmt.Errorf("根目录不可访问: %w", err)
	}

	paths := make([]string, 0)
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// 子目录或文件不可读时跳过，保持与根目录错误的区分。
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}

		detected, err := mimetype.DetectFile(path)
		if err != nil {
			return nil
		}
		if MatchMime(detected.String(), allowedMimes) {
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			paths = append(paths, abs)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("扫描目录时出错: %w", err)
	}

	return paths, nil
}
