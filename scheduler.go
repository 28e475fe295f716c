// Scheduler implementations for rxlite
// 调度器系统，决定动作与协作式任务的执行时机
package rxlite

import (
	"sync"
	"time"
)

// ============================================================================
// 调度器契约
// ============================================================================

// RoutineFunc 协作式任务体
// 任务通过yield让出控制权，参数为期望休眠的时长；yield返回后任务继续执行
type RoutineFunc func(yield func(sleep time.Duration))

// Scheduler 调度器接口
type Scheduler interface {
	// Schedule 调度一次性动作，返回可撤销的订阅句柄
	Schedule(action func(), delay time.Duration) *Subscription
	// ScheduleRoutine 调度可多次挂起恢复的协作式任务
	ScheduleRoutine(body RoutineFunc, delay time.Duration) *Subscription
}

// ============================================================================
// 立即调度器 - Immediate Scheduler
// ============================================================================

// ImmediateScheduler 同步调度器
// 动作在当前调用栈上立即执行，延迟参数被忽略
type ImmediateScheduler struct{}

// NewImmediateScheduler 创建立即调度器
func NewImmediateScheduler() *ImmediateScheduler {
	return &ImmediateScheduler{}
}

// Schedule 立即执行动作
// 返回的订阅撤销时无事可做：拿到它时动作已经执行完毕
func (s *ImmediateScheduler) Schedule(action func(), delay time.Duration) *Subscription {
	if action == nil {
		panic(NewArgumentError("Schedule", "action is required"))
	}
	action()
	return NewSubscription(nil)
}

// ScheduleRoutine 同步驱动任务直至结束，每次yield都立即恢复
func (s *ImmediateScheduler) ScheduleRoutine(body RoutineFunc, delay time.Duration) *Subscription {
	if body == nil {
		panic(NewArgumentError("ScheduleRoutine", "body is required"))
	}
	body(func(time.Duration) {})
	return NewSubscription(nil)
}

// ============================================================================
// 超时调度器 - Timeout Scheduler
// ============================================================================

// TimeoutScheduler 委托外部定时队列执行真实延迟的调度器，本身只做薄适配
type TimeoutScheduler struct {
	queue TimerQueue
}

// NewTimeoutScheduler 创建超时调度器，queue为nil时使用缺省定时队列
func NewTimeoutScheduler(queue TimerQueue) *TimeoutScheduler {
	if queue == nil {
		queue = NewTimerQueue()
	}
	return &TimeoutScheduler{queue: queue}
}

// Schedule 将动作转交定时队列延迟执行，撤销订阅即撤销对应的队列条目
func (s *TimeoutScheduler) Schedule(action func(), delay time.Duration) *Subscription {
	if action == nil {
		panic(NewArgumentError("Schedule", "action is required"))
	}
	handle := s.queue.CallDelayed(delay, action)
	return NewSubscription(func() {
		s.queue.Cancel(handle)
	})
}

// ScheduleRoutine 驱动协作式任务，每次yield的休眠由定时队列重新排期
// 任务体内未被守护的panic会传播到定时回调所在的goroutine
func (s *TimeoutScheduler) ScheduleRoutine(body RoutineFunc, delay time.Duration) *Subscription {
	if body == nil {
		panic(NewArgumentError("ScheduleRoutine", "body is required"))
	}
	routine := NewRoutine(func(yield func(interface{})) {
		body(func(sleep time.Duration) {
			yield(sleep)
		})
	})

	var (
		mu     sync.Mutex
		handle TimerHandle
		done   bool
	)
	var step func()
	step = func() {
		mu.Lock()
		if done {
			mu.Unlock()
			return
		}
		value, finished, err := routine.Resume()
		if finished {
			done = true
			mu.Unlock()
			if err != nil {
				panic(err)
			}
			return
		}
		sleep, _ := value.(time.Duration)
		handle = s.queue.CallDelayed(sleep, step)
		mu.Unlock()
	}

	mu.Lock()
	handle = s.queue.CallDelayed(delay, step)
	mu.Unlock()

	return NewSubscription(func() {
		mu.Lock()
		if done {
			mu.Unlock()
			return
		}
		done = true
		h := handle
		routine.Close()
		mu.Unlock()
		s.queue.Cancel(h)
	})
}

// ============================================================================
// 带指标的调度器 - Monitored Scheduler
// ============================================================================

// MonitoredScheduler 包装任意调度器，把调度、完成与失败计数上报指标收集器
type MonitoredScheduler struct {
	inner     Scheduler
	collector *MetricsCollector
	name      string
}

// NewMonitoredScheduler 创建带指标的调度器，name用作指标标签
func NewMonitoredScheduler(inner Scheduler, collector *MetricsCollector, name string) *MonitoredScheduler {
	if inner == nil {
		panic(NewArgumentError("NewMonitoredScheduler", "inner scheduler is required"))
	}
	if collector == nil {
		panic(NewArgumentError("NewMonitoredScheduler", "collector is required"))
	}
	return &MonitoredScheduler{inner: inner, collector: collector, name: name}
}

// Schedule 调度动作并记录指标
func (s *MonitoredScheduler) Schedule(action func(), delay time.Duration) *Subscription {
	if action == nil {
		panic(NewArgumentError("Schedule", "action is required"))
	}
	s.collector.taskScheduled(s.name)
	return s.inner.Schedule(func() {
		defer func() {
			if r := recover(); r != nil {
				s.collector.taskFailed(s.name)
				panic(r)
			}
			s.collector.taskCompleted(s.name)
		}()
		action()
	}, delay)
}

// ScheduleRoutine 调度协作式任务并记录指标
func (s *MonitoredScheduler) ScheduleRoutine(body RoutineFunc, delay time.Duration) *Subscription {
	if body == nil {
		panic(NewArgumentError("ScheduleRoutine", "body is required"))
	}
	s.collector.taskScheduled(s.name)
	return s.inner.ScheduleRoutine(func(yield func(time.Duration)) {
		defer func() {
			if r := recover(); r != nil {
				// 被放弃的任务既非完成也非失败，不计数
				if r != errRoutineAbandoned {
					s.collector.taskFailed(s.name)
				}
				panic(r)
			}
			s.collector.taskCompleted(s.name)
		}()
		body(yield)
	}, delay)
}
