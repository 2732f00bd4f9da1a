// Package clock はテスト可能な時刻取得を提供する。
package clock

import (
	"sync"
	"time"
)

// Clock は現在時刻を返すインターフェース。
// トークンの発行時刻・有効期限判定に使用する。
type Clock interface {
	Now() time.Time
}

// RealClock はシステム時刻を返す本番用の実装。
type RealClock struct{}

// NewRealClock はRealClockを生成する。
func NewRealClock() Clock {
	return RealClock{}
}

// Now は現在のシステム時刻を返す。
func (RealClock) Now() time.Time {
	return time.Now()
}

// FixedClock は任意の時刻を返すテスト用の実装。
type FixedClock struct {
	mu      sync.Mutex
	current time.Time
}

// NewFixedClock は指定時刻から開始するFixedClockを生成する。
func NewFixedClock(start time.Time) *FixedClock {
	return &FixedClock{current: start}
}

// Now は保持している時刻を返す。
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Advance は時刻をdだけ進める。
func (c *FixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current = c.current.Add(d)
}
