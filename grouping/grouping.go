// Package grouping 实现扫描结果的路径分组工作流：
// 将一次扫描得到的平铺文件路径，按用户反复给出的前缀规则
// 划分进命名分组，最终作为分组与条目记录提交到存储层。
package grouping

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"abyss-player/models"
	"abyss-player/services"
)

// Rule 是一次分组操作的规则。
type Rule struct {
	// Prefix 是分组所依据的目录前缀，结尾的分隔符会被去除。
	Prefix string `json:"prefix"`
	// OneLevelDeeper 为 true 时，按 Prefix 的每个直接子目录
	// 各生成一个分组；为 false 时仅以 Prefix 本身为分组。
	OneLevelDeeper bool `json:"one_level_deeper"`
}

// State 表示工作流当前所处的阶段。
type State string

const (
	// StateScanning 表示尚未获得扫描结果。
	StateScanning State = "scanning"
	// StateGrouping 表示已有扫描结果，等待分组与提交。
	StateGrouping State = "grouping"
)

// Snapshot 是工作流状态的只读视图。
type Snapshot struct {
	State     State          `json:"state"`
	Ungrouped []string       `json:"ungrouped"`
	Groups    []GroupedPaths `json:"groups"`
}

// GroupedPaths 是一个已命名分组及其包含的路径。
type GroupedPaths struct {
	Path    string   `json:"path"`
	Entries []string `json:"entries"`
}

// Session 承载一次扫描-分组-提交流程的可变状态。
// 不变量：未分组集合与各分组互不相交，且两者的并集
// 恰好等于最初的扫描结果。
type Session struct {
	mu        sync.Mutex
	scanned   bool
	ungrouped []string
	grouped   map[string][]string
	// groupOrder 记录分组键的插入顺序，用于展示与提交。
	groupOrder []string
}

// NewSession 创建一个处于扫描阶段的空 Session。
func NewSession() *Session {
	return &Session{
		grouped: make(map[string][]string),
	}
}

// State 返回当前阶段。
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.scanned {
		return StateScanning
	}
	return StateGrouping
}

// Begin 以一次扫描结果初始化分组状态，进入分组阶段。
// 空的扫描结果也是合法输入。
func (s *Session) Begin(paths []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanned = true
	s.ungrouped = append([]string(nil), paths...)
	s.grouped = make(map[string][]string)
	s.groupOrder = nil
}

// Reset 丢弃所有未提交状态，回到扫描阶段。
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scanned = false
	s.ungrouped = nil
	s.grouped = make(map[string][]string)
	s.groupOrder = nil
}

// Snapshot 返回当前状态的副本。
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := Snapshot{
		Ungrouped: append([]string{}, s.ungrouped...),
		Groups:    make([]GroupedPaths, 0, len(s.groupOrder)),
	}
	if s.scanned {
		snapshot.State = StateGrouping
	} else {
		snapshot.State = StateScanning
	}
	for _, key := range s.groupOrder {
		snapshot.Groups = append(snapshot.Groups, GroupedPaths{
			Path:    key,
			Entries: append([]string{}, s.grouped[key]...),
		})
	}
	return snapshot
}

// Apply 按规则执行一次分组。
// 候选分组键按在未分组集合中首次出现的顺序枚举；每条路径
// 被移入第一个与之前缀匹配的候选分组。前缀匹配是纯字符串
// 匹配，不检查路径分隔符边界，与既有分组数据保持兼容。
// 规则不命中任何路径时本次调用为空操作。
func (s *Session) Apply(rule Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prefix := strings.TrimSuffix(rule.Prefix, "/")

	// 第一步：计算候选分组键，去重并保持首次出现的顺序。
	var candidates []string
	if rule.OneLevelDeeper {
		seen := make(map[string]bool)
		for _, path := range s.ungrouped {
			segment, ok := oneLevelSegment(path, prefix)
			if !ok {
				continue
			}
			key := prefix + "/" + segment
			if !seen[key] {
				seen[key] = true
				candidates = append(candidates, key)
			}
		}
	} else {
		candidates = []string{prefix}
	}

	// 第二步：每条未分组路径匹配到第一个命中的候选分组键。
	toMove := make(map[string][]string)
	remaining := s.ungrouped[:0]
	for _, path := range s.ungrouped {
		matched := ""
		for _, candidate := range candidates {
			if strings.HasPrefix(path, candidate) {
				matched = candidate
				break
			}
		}
		if matched == "" {
			remaining = append(remaining, path)
			continue
		}
		toMove[matched] = append(toMove[matched], path)
	}
	s.ungrouped = remaining

	// 第三步：只为实际命中的分组键建桶，按候选顺序追加。
	for _, candidate := range candidates {
		paths := toMove[candidate]
		if len(paths) == 0 {
			continue
		}
		if _, ok := s.grouped[candidate]; !ok {
			s.grouped[candidate] = nil
			s.groupOrder = append(s.groupOrder, candidate)
		}
		s.grouped[candidate] = append(s.grouped[candidate], paths...)
	}
}

// oneLevelSegment 判断 path 是否匹配 “prefix/<单个路径段>/...” 的
// 形式，并返回该路径段。
func oneLevelSegment(path, prefix string) (string, bool) {
	if !strings.HasPrefix(path, prefix+"/") {
		return "", false
	}
	rest := path[len(prefix)+1:]
	slash := strings.Index(rest, "/")
	if slash < 0 {
		// 前缀之后没有下一级目录，只剩文件名。
		return "", false
	}
	return rest[:slash], true
}

// Commit 将当前分组结果提交为持久化的分组与条目记录，
// 按分组键的插入顺序逐组创建，任一创建失败立即中止，
// 已创建的记录不回滚。提交成功后回到扫描阶段。
func (s *Session) Commit(ctx context.Context, playlistID string, groups services.GroupStore, entries services.EntryStore) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range s.groupOrder {
		meta, err := models.NewMeta(key)
		if err != nil {
			// 分组前缀可能不是真实存在的目录（如单层规则的裁剪结果），
			// 此时记录路径本身，时间元数据留空。
			meta = models.Meta{Path: key}
		}
		group := models.NewGroup(meta, playlistID)
		if err := groups.Save(ctx, group); err != nil {
			return fmt.Errorf("创建分组 %s 失败: %w", key, err)
		}
		for _, path := range s.grouped[key] {
			entryMeta, err := models.NewMeta(path)
			if err != nil {
				return fmt.Errorf("读取条目元数据失败 %s: %w", path, err)
			}
			if err := entries.Save(ctx, models.NewEntry(entryMeta, group.ID)); err != nil {
				return fmt.Errorf("创建条目 %s 失败: %w", path, err)
			}
		}
	}

	// 提交成功后清空工作状态。
	s.scanned = false
	s.ungrouped = nil
	s.grouped = make(map[string][]string)
	s.groupOrder = nil
	return nil
}
