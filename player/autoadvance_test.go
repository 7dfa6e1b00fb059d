package player

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAutoAdvancerFiresOnce(t *testing.T) {
	advancer := NewAutoAdvancer()
	fired := make(chan struct{})

	advancer.Arm(10*time.Millisecond, func() { close(fired) })
	assert.True(t, advancer.Pending())

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("定时器未在预期时间内触发")
	}
	// 触发后定时器失效。
	assert.Eventually(t, func() bool { return !advancer.Pending() }, time.Second, 5*time.Millisecond)
}

func TestAutoAdvancerRearmReplacesTimer(t *testing.T) {
	advancer := NewAutoAdvancer()
	var first, second atomic.Bool
	done := make(chan struct{})

	advancer.Arm(time.Hour, func() { first.Store(true) })
	advancer.Arm(10*time.Millisecond, func() {
		second.Store(true)
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("替换后的定时器未触发")
	}
	assert.False(t, first.Load())
	assert.True(t, second.Load())
}

func TestAutoAdvancerCancel(t *testing.T) {
	advancer := NewAutoAdvancer()
	var fired atomic.Bool

	advancer.Arm(20*time.Millisecond, func() { fired.Store(true) })
	advancer.Cancel()
	assert.False(t, advancer.Pending())

	time.Sleep(50 * time.Millisecond)
	assert.False(t, fired.Load())

	// 空闲状态下取消是安全的。
	advancer.Cancel()
}
