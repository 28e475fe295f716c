// Timer queue for rxlite
// 外部定时队列，超时调度器把真实时间的延迟全部托付给它
package rxlite

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// ============================================================================
// TimerQueue 定时队列
// ============================================================================

// TimerHandle 定时条目的句柄
type TimerHandle string

// TimerQueue 定时队列接口，超时调度器只依赖这两个能力
type TimerQueue interface {
	// CallDelayed 延迟执行动作，返回可撤销的句柄
	CallDelayed(delay time.Duration, action func()) TimerHandle
	// Cancel 撤销尚未触发的条目，句柄无效或已触发时为空操作
	Cancel(handle TimerHandle)
}

// timerQueue 基于time.AfterFunc的缺省实现，句柄为uuid
type timerQueue struct {
	mu      sync.Mutex
	entries map[TimerHandle]*time.Timer
}

// NewTimerQueue 创建缺省定时队列
func NewTimerQueue() TimerQueue {
	return &timerQueue{entries: make(map[TimerHandle]*time.Timer)}
}

// CallDelayed 延迟执行动作
func (q *timerQueue) CallDelayed(delay time.Duration, action func()) TimerHandle {
	if action == nil {
		panic(NewArgumentError("CallDelayed", "action is required"))
	}
	handle := TimerHandle(uuid.NewString())
	q.mu.Lock()
	q.entries[handle] = time.AfterFunc(delay, func() {
		q.mu.Lock()
		delete(q.entries, handle)
		q.mu.Unlock()
		action()
	})
	q.mu.Unlock()
	return handle
}

// Cancel 撤销条目
func (q *timerQueue) Cancel(handle TimerHandle) {
	q.mu.Lock()
	timer, ok := q.entries[handle]
	if ok {
		delete(q.entries, handle)
	}
	q.mu.Unlock()
	if ok {
		timer.Stop()
	}
}

// Len 返回尚未触发的条目数
func (q *timerQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// StopAll 撤销全部尚未触发的条目
func (q *timerQueue) StopAll() {
	q.mu.Lock()
	timers := make([]*time.Timer, 0, len(q.entries))
	for handle, timer := range q.entries {
		timers = append(timers, timer)
		delete(q.entries, handle)
	}
	q.mu.Unlock()
	for _, timer := range timers {
		timer.Stop()
	}
}
