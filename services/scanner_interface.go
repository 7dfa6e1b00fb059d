package services

import "context"

// Scanner 定义了媒体文件扫描器的接口。
// 扫描器在给定根目录下查找 MIME 类型匹配的媒体文件。
type Scanner interface {
	// Scan 遍历 rootPath 下的所有文件，返回 MIME 类型
	// 与 allowedMimes 中任一模式前缀匹配的文件的绝对路径，
	// 顺序为遍历顺序。根目录不可读时返回错误。
	Scan(ctx context.Context, rootPath string, allowedMimes []string) ([]string, error)
}
