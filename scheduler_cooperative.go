// Cooperative scheduler for rxlite
// 协作式虚拟时钟调度器，适用于确定性测试与帧驱动环境
package rxlite

import (
	"sync"
	"time"
)

// ============================================================================
// 协作式调度器 - Cooperative Scheduler
// ============================================================================

// cooperativeTask 队列中的待执行任务
type cooperativeTask struct {
	routine *Routine
	dueTime time.Duration
}

// CooperativeScheduler 协作式调度器
// 维护虚拟时钟与任务队列，不做任何后台执行，完全由调用方通过Update驱动。
// 任务只在虚拟时间到达其到期时间后被恢复，每轮Update至多恢复一次；
// 未结束的任务按其让出的休眠时长重新排期，且到期时间永不回拨
type CooperativeScheduler struct {
	mu          sync.Mutex
	currentTime time.Duration
	tasks       []*cooperativeTask
}

// NewCooperativeScheduler 创建协作式调度器，可指定虚拟时钟起点
func NewCooperativeScheduler(startTime ...time.Duration) *CooperativeScheduler {
	s := &CooperativeScheduler{}
	if len(startTime) > 0 {
		s.currentTime = startTime[0]
	}
	return s
}

// Schedule 调度一次性动作，到期时间为当前虚拟时间加延迟
func (s *CooperativeScheduler) Schedule(action func(), delay time.Duration) *Subscription {
	if action == nil {
		panic(NewArgumentError("Schedule", "action is required"))
	}
	return s.ScheduleRoutine(func(func(time.Duration)) { action() }, delay)
}

// ScheduleRoutine 调度协作式任务
// 返回的订阅在任务尚未结束时可将其移出队列并放弃其例程
func (s *CooperativeScheduler) ScheduleRoutine(body RoutineFunc, delay time.Duration) *Subscription {
	if body == nil {
		panic(NewArgumentError("ScheduleRoutine", "body is required"))
	}
	task := &cooperativeTask{
		routine: NewRoutine(func(yield func(interface{})) {
			body(func(sleep time.Duration) { yield(sleep) })
		}),
	}
	s.mu.Lock()
	task.dueTime = s.currentTime + delay
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()

	return NewSubscription(func() {
		s.remove(task)
		task.routine.Close()
	})
}

// Update 将虚拟时钟拨快delta，并把每个到期任务恢复一次
// 恢复过程中新调度的到期任务也会在本轮运行。任务失败对本轮tick是致命的：
// 该任务出队、错误返回给调用方；队列中其余任务不受影响，后续Update照常运行
func (s *CooperativeScheduler) Update(delta time.Duration) error {
	if delta < 0 {
		panic(NewArgumentError("Update", "delta must not be negative"))
	}
	s.mu.Lock()
	s.currentTime += delta
	now := s.currentTime
	s.mu.Unlock()

	index := 0
	for {
		s.mu.Lock()
		if index >= len(s.tasks) {
			s.mu.Unlock()
			return nil
		}
		task := s.tasks[index]
		s.mu.Unlock()

		if task.dueTime > now {
			index++
			continue
		}

		value, finished, err := task.routine.Resume()
		if err != nil {
			s.remove(task)
			return err
		}
		if finished {
			// 出队后不递增下标，后续任务前移补位
			s.remove(task)
			continue
		}
		sleep, _ := value.(time.Duration)
		next := task.dueTime + sleep
		if next < now {
			next = now
		}
		task.dueTime = next
		index++
	}
}

// remove 按身份将任务移出队列
func (s *CooperativeScheduler) remove(task *cooperativeTask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, queued := range s.tasks {
		if queued == task {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			return
		}
	}
}

// IsEmpty 检查队列中是否还有任务
func (s *CooperativeScheduler) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks) == 0
}

// Now 返回当前虚拟时间
func (s *CooperativeScheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentTime
}
