package player

import (
	"sync"
	"time"
)

// AutoAdvancer 管理自动推进的一次性定时器。
// 任意时刻最多只有一个待触发的定时器：重新装载会先取消
// 之前的定时器；触发后定时器即失效，由调用方在下一次
// 播放完成事件时重新装载。
type AutoAdvancer struct {
	mu    sync.Mutex
	timer *time.Timer
}

// NewAutoAdvancer 创建一个空闲的 AutoAdvancer。
func NewAutoAdvancer() *AutoAdvancer {
	return &AutoAdvancer{}
}

// Arm 在 interval 之后触发一次 fn。
// 已有待触发的定时器时先将其取消。
func (a *AutoAdvancer) Arm(interval time.Duration, fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(interval, func() {
		a.mu.Lock()
		a.timer = nil
		a.mu.Unlock()
		fn()
	})
}

// Cancel 取消待触发的定时器（如有）。
func (a *AutoAdvancer) Cancel() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Pending 报告当前是否有待触发的定时器。
func (a *AutoAdvancer) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}
