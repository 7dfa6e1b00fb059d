// Package player 实现播放顺序控制：根据当前位置与播放开关
// 计算下一个/上一个播放目标，并管理自动推进定时器。
package player

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
)

// Flags 是用户可配置的播放顺序开关集合。
type Flags struct {
	// Auto 为 true 时，当前媒体播放完毕后自动推进。
	Auto bool `json:"auto"`
	// AutoIntervalSeconds 是自动推进前的等待秒数，最小为 1。
	AutoIntervalSeconds int `json:"auto_interval"`
	// Repeat 为 true 时，每次推进前先让当前媒体从头播放。
	Repeat bool `json:"repeat"`
	// Random 为 true 时，在当前分组内随机选取条目。
	Random bool `json:"random"`
	// Loop 为 true 时，条目在分组内循环。
	Loop bool `json:"loop"`
	// GroupRandom 为 true 时，跨组推进随机选取分组。
	GroupRandom bool `json:"group_random"`
	// GroupLoop 为 true 时，分组在播放列表内循环。
	GroupLoop bool `json:"group_loop"`
}

// DefaultFlags 返回全部开关关闭、间隔为 1 秒的默认值。
func DefaultFlags() Flags {
	return Flags{AutoIntervalSeconds: 1}
}

// 各开关在键值存储中的键名。
const (
	keyAuto         = "auto"
	keyAutoInterval = "auto_interval"
	keyRepeat       = "repeat"
	keyRandom       = "random"
	keyLoop         = "loop"
	keyGroupRandom  = "group_random"
	keyGroupLoop    = "group_loop"
)

// FlagsStore 定义了播放开关的持久化接口。
// 取值以字符串编码：布尔为 "true"/"false"，整数为十进制字符串。
// 键不存在时 Get 返回空字符串，不视为错误。
type FlagsStore interface {
	Get(key string) string
	Set(key, value string) error
}

// LoadFlags 从存储读取全部开关，缺失或非法的值回落到默认值。
func LoadFlags(store FlagsStore) Flags {
	flags := DefaultFlags()
	flags.Auto = store.Get(keyAuto) == "true"
	flags.Repeat = store.Get(keyRepeat) == "true"
	flags.Random = store.Get(keyRandom) == "true"
	flags.Loop = store.Get(keyLoop) == "true"
	flags.GroupRandom = store.Get(keyGroupRandom) == "true"
	flags.GroupLoop = store.Get(keyGroupLoop) == "true"
	if interval, err := strconv.Atoi(store.Get(keyAutoInterval)); err == nil && interval >= 1 {
		flags.AutoIntervalSeconds = interval
	}
	return flags
}

// SaveFlags 将全部开关写入存储，任一写入失败立即返回。
func SaveFlags(store FlagsStore, flags Flags) error {
	pairs := []struct {
		key   string
		value string
	}{
		{keyAuto, strconv.FormatBool(flags.Auto)},
		{keyAutoInterval, strconv.Itoa(flags.AutoIntervalSeconds)},
		{keyRepeat, strconv.FormatBool(flags.Repeat)},
		{keyRandom, strconv.FormatBool(flags.Random)},
		{keyLoop, strconv.FormatBool(flags.Loop)},
		{keyGroupRandom, strconv.FormatBool(flags.GroupRandom)},
		{keyGroupLoop, strconv.FormatBool(flags.GroupLoop)},
	}
	for _, pair := range pairs {
		if err := store.Set(pair.key, pair.value); err != nil {
			return err
		}
	}
	return nil
}

// MemoryFlagsStore 是基于内存 map 的 FlagsStore 实现，主要用于测试。
type MemoryFlagsStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryFlagsStore 创建一个空的 MemoryFlagsStore。
func NewMemoryFlagsStore() *MemoryFlagsStore {
	return &MemoryFlagsStore{values: make(map[string]string)}
}

// Get 实现 FlagsStore 接口。
func (s *MemoryFlagsStore) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.values[key]
}

// Set 实现 FlagsStore 接口。
func (s *MemoryFlagsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

// FileFlagsStore 是基于 JSON 文件的 FlagsStore 实现，
// 使播放开关在会话之间保持。
type FileFlagsStore struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// NewFileFlagsStore 创建文件存储并加载现有内容。
// 文件不存在或无法解析时从空状态开始。
func NewFileFlagsStore(path string) *FileFlagsStore {
	store := &FileFlagsStore{
		path:   path,
		values: make(map[string]string),
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return store
	}
	var loaded map[string]string
	if err := json.Unmarshal(data, &loaded); err == nil {
		store.values = loaded
	}
	return store
}

// Get 实现 FlagsStore 接口。
func (s *FileFlagsStore) Get(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[key]
}

// Set 实现 FlagsStore 接口，每次写入后立即落盘。
func (s *FileFlagsStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	data, err := json.MarshalIndent(s.values, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
