package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"abyss-player/models"
)

// SessionService 负责将 Store 的完整快照保存到文件或从文件恢复。
type SessionService struct {
	store Store
}

// NewSessionService 创建一个基于给定 Store 的 SessionService。
func NewSessionService(store Store) *SessionService {
	return &SessionService{store: store}
}

// Save 将当前快照以 JSON 形式写入指定路径。
func (s *SessionService) Save(ctx context.Context, path string) error {
	session, err := s.store.Export(ctx)
	if err != nil {
		return fmt.Errorf("导出会话失败: %w", err)
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("序列化会话失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入会话文件失败: %w", err)
	}
	return nil
}

// Load 从指定路径读取快照并整体替换当前数据。
func (s *SessionService) Load(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("读取会话文件失败: %w", err)
	}
	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return fmt.Errorf("解析会话文件失败: %w", err)
	}
	if err := s.store.Import(ctx, session); err != nil {
		return fmt.Errorf("导入会话失败: %w", err)
	}
	return nil
}
