// Resumable routines for rxlite
// 可挂起恢复的执行单元，调度器用它承载协作式任务
package rxlite

import (
	"errors"
	"sync"
)

// ============================================================================
// Routine 可恢复例程
// ============================================================================

// errRoutineAbandoned 在Close时让挂起中的例程体退栈的哨兵
var errRoutineAbandoned = errors.New("rxlite: routine abandoned")

// routineSignal 例程体向驱动方传递的信号
type routineSignal struct {
	value    interface{}
	finished bool
	err      error
}

// Routine 可恢复的计算单元
// 由专属goroutine承载，通过无缓冲信道与驱动方握手：任一时刻只有例程体或
// 驱动方在运行，从不并行。例程体通过yield挂起自己并向驱动方传出一个值。
// Resume与Close遵循单线程驱动模型，不应并发调用
type Routine struct {
	mu       sync.Mutex
	resume   chan struct{}
	yielded  chan routineSignal
	started  bool
	finished bool
	closed   bool
	body     func(yield func(value interface{}))
}

// NewRoutine 创建可恢复例程，例程体在首次Resume时才开始执行
func NewRoutine(body func(yield func(value interface{}))) *Routine {
	if body == nil {
		panic(NewArgumentError("NewRoutine", "body is required"))
	}
	return &Routine{
		resume:  make(chan struct{}),
		yielded: make(chan routineSignal),
		body:    body,
	}
}

// Resume 恢复例程执行，直到例程体再次yield或返回
// 返回例程体让出的值；finished为真表示例程体已返回或失败；
// 例程体内未被捕获的panic以err形式返回
func (r *Routine) Resume() (value interface{}, finished bool, err error) {
	r.mu.Lock()
	if r.finished || r.closed {
		r.mu.Unlock()
		return nil, true, nil
	}
	if !r.started {
		r.started = true
		go r.run()
	}
	r.mu.Unlock()

	r.resume <- struct{}{}
	signal := <-r.yielded
	if signal.finished {
		r.mu.Lock()
		r.finished = true
		r.mu.Unlock()
	}
	return signal.value, signal.finished, signal.err
}

// Finished 检查例程是否已结束或被放弃
func (r *Routine) Finished() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finished || r.closed
}

// Close 放弃例程
// 挂起中的例程体通过哨兵panic退栈，其defer得以执行；之后的Resume立即返回结束
func (r *Routine) Close() {
	r.mu.Lock()
	if r.closed || r.finished {
		r.closed = true
		r.mu.Unlock()
		return
	}
	r.closed = true
	started := r.started
	r.mu.Unlock()
	if started {
		close(r.resume)
	}
}

// run 例程体的宿主goroutine
func (r *Routine) run() {
	defer func() {
		if rec := recover(); rec != nil {
			if rec == errRoutineAbandoned {
				return
			}
			r.yielded <- routineSignal{finished: true, err: recoveredError(rec)}
			return
		}
		r.yielded <- routineSignal{finished: true}
	}()

	if _, ok := <-r.resume; !ok {
		panic(errRoutineAbandoned)
	}
	r.body(func(value interface{}) {
		r.yielded <- routineSignal{value: value}
		if _, ok := <-r.resume; !ok {
			panic(errRoutineAbandoned)
		}
	})
}

// ============================================================================
// Generator 值生成器
// ============================================================================

// GeneratorFunc 生成器体，每次调用yield产出一个流值
type GeneratorFunc func(yield func(value interface{}))

// Generator 可挂起的值生成器，FromGenerator用调度器逐步驱动它
// 多个订阅者共享同一实例时也共享其产出进度
type Generator struct {
	mu      sync.Mutex
	routine *Routine
}

// NewGenerator 创建生成器
func NewGenerator(fn GeneratorFunc) *Generator {
	if fn == nil {
		panic(NewArgumentError("NewGenerator", "generator function is required"))
	}
	return &Generator{
		routine: NewRoutine(func(yield func(interface{})) { fn(yield) }),
	}
}

// Resume 产出下一个值
// ok为假表示生成器已枯竭；err为生成器体内未被捕获的失败
func (g *Generator) Resume() (interface{}, bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	value, finished, err := g.routine.Resume()
	if err != nil {
		return nil, false, err
	}
	return value, !finished, nil
}

// Close 放弃生成器
func (g *Generator) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.routine.Close()
}

// Finished 检查生成器是否已枯竭或被放弃
func (g *Generator) Finished() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.routine.Finished()
}
