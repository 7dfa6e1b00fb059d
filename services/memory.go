package services

import (
	"context"
	"sort"
	"sync"

	"abyss-player/models"
)

// MemoryStore 是基于内存切片的 Store 实现。
// 切片顺序即展示顺序；所有操作通过读写锁保证并发安全。
type MemoryStore struct {
	mu        sync.RWMutex
	playlists []models.Playlist
	groups    []models.Group
	entries   []models.Entry
}

// NewMemoryStore 创建一个空的 MemoryStore。
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		playlists: make([]models.Playlist, 0),
		groups:    make([]models.Group, 0),
		entries:   make([]models.Entry, 0),
	}
}

// Playlists 返回播放列表操作视图。
func (s *MemoryStore) Playlists() PlaylistStore { return (*memoryPlaylists)(s) }

// Groups 返回分组操作视图。
func (s *MemoryStore) Groups() GroupStore { return (*memoryGroups)(s) }

// Entries 返回条目操作视图。
func (s *MemoryStore) Entries() EntryStore { return (*memoryEntries)(s) }

// Export 实现 Store 接口。
func (s *MemoryStore) Export(ctx context.Context) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session := models.Session{
		Playlists: make([]models.Playlist, len(s.playlists)),
		Groups:    make([]models.Group, len(s.groups)),
		Entries:   make([]models.Entry, len(s.entries)),
	}
	copy(session.Playlists, s.playlists)
	copy(session.Groups, s.groups)
	copy(session.Entries, s.entries)
	return session, nil
}

// Import 实现 Store 接口。
func (s *MemoryStore) Import(ctx context.Context, session models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playlists = append([]models.Playlist(nil), session.Playlists...)
	s.groups = append([]models.Group(nil), session.Groups...)
	s.entries = append([]models.Entry(nil), session.Entries...)
	return nil
}

// sortByMeta 按排序规则对切片做稳定排序。
// Default 规则不做逐项比较：升序保持原序，降序整体反转。
func sortByMeta[T any](items []T, meta func(T) models.Meta, spec models.SortSpec) {
	if spec.By == models.SortByDefault {
		if !spec.Ascend {
			for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
				items[i], items[j] = items[j], items[i]
			}
		}
		return
	}
	sort.SliceStable(items, func(i, j int) bool {
		return meta(items[i]).Less(meta(items[j]), spec)
	})
}

// shiftByID 将 id 对应的元素移动 offset 个位置，越界时收敛到边界。
func shiftByID[T any](items []T, id func(T) string, target string, offset int) bool {
	index := -1
	for i, item := range items {
		if id(item) == target {
			index = i
			break
		}
	}
	if index < 0 {
		return false
	}
	newIndex := index + offset
	if newIndex < 0 {
		newIndex = 0
	}
	if newIndex > len(items)-1 {
		newIndex = len(items) - 1
	}
	moved := items[index]
	items = append(items[:index], items[index+1:]...)
	// append 就地收缩后在新位置插入。
	items = append(items, moved)
	copy(items[newIndex+1:], items[newIndex:len(items)-1])
	items[newIndex] = moved
	return true
}

type memoryPlaylists MemoryStore

func (s *memoryPlaylists) All(ctx context.Context) ([]models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	playlists := make([]models.Playlist, len(s.playlists))
	copy(playlists, s.playlists)
	return playlists, nil
}

func (s *memoryPlaylists) Find(ctx context.Context, id string) (models.Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, playlist := range s.playlists {
		if playlist.ID == id {
			return playlist, nil
		}
	}
	return models.Playlist{}, ErrNotFound
}

func (s *memoryPlaylists) Save(ctx context.Context, playlist models.Playlist) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.playlists {
		if existing.ID == playlist.ID {
			s.playlists[i] = playlist
			return nil
		}
	}
	s.playlists = append(s.playlists, playlist)
	return nil
}

func (s *memoryPlaylists) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := -1
	for i, playlist := range s.playlists {
		if playlist.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNotFound
	}
	s.playlists = append(s.playlists[:index], s.playlists[index+1:]...)

	// 级联删除下属分组与条目。
	removedGroups := make(map[string]bool)
	groups := s.groups[:0]
	for _, group := range s.groups {
		if group.PlaylistID == id {
			removedGroups[group.ID] = true
			continue
		}
		groups = append(groups, group)
	}
	s.groups = groups

	entries := s.entries[:0]
	for _, entry := range s.entries {
		if removedGroups[entry.GroupID] {
			continue
		}
		entries = append(entries, entry)
	}
	s.entries = entries
	return nil
}

type memoryGroups MemoryStore

func (s *memoryGroups) All(ctx context.Context) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]models.Group, len(s.groups))
	copy(groups, s.groups)
	return groups, nil
}

func (s *memoryGroups) FindByPlaylist(ctx context.Context, playlistID string) ([]models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	groups := make([]models.Group, 0)
	for _, group := range s.groups {
		if group.PlaylistID == playlistID {
			groups = append(groups, group)
		}
	}
	return groups, nil
}

func (s *memoryGroups) Find(ctx context.Context, id string) (models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, group := range s.groups {
		if group.ID == id {
			return group, nil
		}
	}
	return models.Group{}, ErrNotFound
}

func (s *memoryGroups) Save(ctx context.Context, group models.Group) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.groups {
		if existing.ID == group.ID {
			s.groups[i] = group
			return nil
		}
	}
	s.groups = append(s.groups, group)
	return nil
}

func (s *memoryGroups) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	index := -1
	for i, group := range s.groups {
		if group.ID == id {
			index = i
			break
		}
	}
	if index < 0 {
		return ErrNotFound
	}
	s.groups = append(s.groups[:index], s.groups[index+1:]...)

	entries := s.entries[:0]
	for _, entry := range s.entries {
		if entry.GroupID == id {
			continue
		}
		entries = append(entries, entry)
	}
	s.entries = entries
	return nil
}

func (s *memoryGroups) Sort(ctx context.Context, spec models.SortSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sortByMeta(s.groups, func(g models.Group) models.Meta { return g.Meta }, spec)
	return nil
}

func (s *memoryGroups) Shift(ctx context.Context, id string, offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !shiftByID(s.groups, func(g models.Group) string { return g.ID }, id, offset) {
		return ErrNotFound
	}
	return nil
}

type memoryEntries MemoryStore

func (s *memoryEntries) All(ctx context.Context) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]models.Entry, len(s.entries))
	copy(entries, s.entries)
	return entries, nil
}

func (s *memoryEntries) FindByGroup(ctx context.Context, groupID string) ([]models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]models.Entry, 0)
	for _, entry := range s.entries {
		if entry.GroupID == groupID {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

func (s *memoryEntries) Find(ctx context.Context, id string) (models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, entry := range s.entries {
		if entry.ID == id {
			return entry, nil
		}
	}
	return models.Entry{}, ErrNotFound
}

func (s *memoryEntries) Save(ctx context.Context, entry models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.entries {
		if existing.ID == entry.ID {
			s.entries[i] = entry
			return nil
		}
	}
	s.entries = append(s.entries, entry)
	return nil
}

func (s *memoryEntries) Destroy(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, entry := range s.entries {
		if entry.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (s *memoryEntries) Sort(ctx context.Context, spec models.SortSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sortByMeta(s.entries, func(e models.Entry) models.Meta { return e.Meta }, spec)
	return nil
}

func (s *memoryEntries) Shift(ctx context.Context, id string, offset int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !shiftByID(s.entries, func(e models.Entry) string { return e.ID }, id, offset) {
		return ErrNotFound
	}
	return nil
}
