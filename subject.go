// Subject implementations for rxlite
// 主题系统，包括Subject、AsyncSubject、BehaviorSubject、ReplaySubject
package rxlite

import (
	"sync"
)

// ============================================================================
// Subject - 多播主题
// ============================================================================

// Subject 多播主题，同时是事件接收方与Observable
// 推入的事件被扇出给当前注册的全部观察者。Observable能力通过内嵌委托获得：
// 内嵌Observable的订阅函数就是注册逻辑，因此Subject天然拥有完整的操作符表面
type Subject struct {
	*Observable

	mu        sync.Mutex
	observers []*Observer
	stopped   bool
	err       error
}

// NewSubject 创建多播主题
func NewSubject() *Subject {
	s := &Subject{}
	s.Observable = NewObservable(s.register)
	return s
}

// register 共享的注册逻辑：追加观察者，返回将其移除的订阅
func (s *Subject) register(observer *Observer) *Subscription {
	s.mu.Lock()
	s.observers = append(s.observers, observer)
	s.mu.Unlock()
	return NewSubscription(func() {
		s.removeObserver(observer)
	})
}

// removeObserver 按身份移除观察者
func (s *Subject) removeObserver(observer *Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.observers) - 1; i >= 0; i-- {
		if s.observers[i] == observer {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return
		}
	}
}

// fanoutTargets 主题已终止时返回nil，否则返回注册逆序的观察者快照
// 逆序扇出让观察者在收到事件时移除自己也不影响本轮其余递送
func (s *Subject) fanoutTargets() []*Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil
	}
	return s.reversedLocked()
}

// reversedLocked 在持锁状态下构造注册逆序的快照
func (s *Subject) reversedLocked() []*Observer {
	reversed := make([]*Observer, 0, len(s.observers))
	for i := len(s.observers) - 1; i >= 0; i-- {
		reversed = append(reversed, s.observers[i])
	}
	return reversed
}

// terminate 原子地标记终止并取出最后一批观察者
func (s *Subject) terminate(err error) ([]*Observer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return nil, false
	}
	s.stopped = true
	s.err = err
	return s.reversedLocked(), true
}

// terminalState 读取终止状态，err仅在错误终止时非nil
func (s *Subject) terminalState() (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped, s.err
}

// OnNext 向全部观察者推送一个值，主题终止后为空操作
func (s *Subject) OnNext(value interface{}) {
	s.dispatch(value)
}

// dispatch 扇出一个值
func (s *Subject) dispatch(value interface{}) {
	for _, observer := range s.fanoutTargets() {
		observer.OnNext(value)
	}
}

// OnError 向全部观察者广播错误并永久终止主题，仅首次生效
func (s *Subject) OnError(err error) {
	targets, ok := s.terminate(err)
	if !ok {
		return
	}
	for _, observer := range targets {
		observer.OnError(err)
	}
}

// OnComplete 向全部观察者广播完成并永久终止主题，仅首次生效
func (s *Subject) OnComplete() {
	targets, ok := s.terminate(nil)
	if !ok {
		return
	}
	for _, observer := range targets {
		observer.OnComplete()
	}
}

// Stopped 主题是否已终止
func (s *Subject) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// ObserverCount 当前注册的观察者数量
func (s *Subject) ObserverCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

// HasObservers 是否有观察者注册
func (s *Subject) HasObservers() bool {
	return s.ObserverCount() > 0
}

// ============================================================================
// AsyncSubject - 异步主题
// ============================================================================

// AsyncSubject 只在完成时发射最后一个值的主题
// 终止后订阅立即重放终止结果：完成路径重放最后值加完成，错误路径重放错误
type AsyncSubject struct {
	*Subject

	mu       sync.Mutex
	value    interface{}
	hasValue bool
}

// NewAsyncSubject 创建异步主题
func NewAsyncSubject() *AsyncSubject {
	a := &AsyncSubject{Subject: NewSubject()}
	a.Observable = NewObservable(a.subscribeAsync)
	return a
}

// subscribeAsync 注册观察者；主题已终止时直接重放终止结果
func (a *AsyncSubject) subscribeAsync(observer *Observer) *Subscription {
	stopped, err := a.terminalState()
	if !stopped {
		return a.register(observer)
	}
	if err != nil {
		observer.OnError(err)
		return NewSubscription(nil)
	}
	a.mu.Lock()
	value, hasValue := a.value, a.hasValue
	a.mu.Unlock()
	if hasValue {
		observer.OnNext(value)
	}
	observer.OnComplete()
	return NewSubscription(nil)
}

// OnNext 记住最后推入的值，不向观察者转发
func (a *AsyncSubject) OnNext(value interface{}) {
	if a.Subject.Stopped() {
		return
	}
	a.mu.Lock()
	a.value, a.hasValue = value, true
	a.mu.Unlock()
}

// OnComplete 将最后值发给全部观察者并完成，仅首次生效
func (a *AsyncSubject) OnComplete() {
	a.mu.Lock()
	value, hasValue := a.value, a.hasValue
	a.mu.Unlock()
	targets, ok := a.terminate(nil)
	if !ok {
		return
	}
	for _, observer := range targets {
		if hasValue {
			observer.OnNext(value)
		}
		observer.OnComplete()
	}
}

// ============================================================================
// BehaviorSubject - 行为主题
// ============================================================================

// BehaviorSubject 缓存当前值的主题
// 新订阅者先同步收到当前值（若有），随后接收后续推送
type BehaviorSubject struct {
	*Subject

	mu       sync.Mutex
	value    interface{}
	hasValue bool
}

// NewBehaviorSubject 创建行为主题，可选地给定初始值
func NewBehaviorSubject(initial ...interface{}) *BehaviorSubject {
	b := &BehaviorSubject{Subject: NewSubject()}
	if len(initial) > 0 {
		b.value, b.hasValue = initial[0], true
	}
	b.Observable = NewObservable(b.subscribeBehavior)
	return b
}

// subscribeBehavior 注册观察者并立即重放当前值
func (b *BehaviorSubject) subscribeBehavior(observer *Observer) *Subscription {
	sub := b.register(observer)
	b.mu.Lock()
	value, hasValue := b.value, b.hasValue
	b.mu.Unlock()
	if hasValue {
		observer.OnNext(value)
	}
	return sub
}

// OnNext 更新当前值并扇出，主题终止后为空操作
func (b *BehaviorSubject) OnNext(value interface{}) {
	if b.Subject.Stopped() {
		return
	}
	b.mu.Lock()
	b.value, b.hasValue = value, true
	b.mu.Unlock()
	b.dispatch(value)
}

// Value 读取当前缓存值，尚无值时第二个返回值为假
func (b *BehaviorSubject) Value() (interface{}, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, b.hasValue
}

// ============================================================================
// ReplaySubject - 重放主题
// ============================================================================

// ReplaySubject 缓存历史值的主题
// 新订阅者先按从旧到新的顺序收到缓冲内容；缓冲有界时按先进先出淘汰最旧值
type ReplaySubject struct {
	*Subject

	mu     sync.Mutex
	buffer []interface{}
	size   int // 0表示无界
}

// NewReplaySubject 创建重放主题，可选地限定缓冲大小
func NewReplaySubject(bufferSize ...int) *ReplaySubject {
	r := &ReplaySubject{Subject: NewSubject()}
	if len(bufferSize) > 0 {
		if bufferSize[0] <= 0 {
			panic(NewArgumentError("NewReplaySubject", "buffer size must be positive"))
		}
		r.size = bufferSize[0]
	}
	r.Observable = NewObservable(r.subscribeReplay)
	return r
}

// subscribeReplay 注册观察者并重放当前缓冲
func (r *ReplaySubject) subscribeReplay(observer *Observer) *Subscription {
	sub := r.register(observer)
	r.mu.Lock()
	replay := append([]interface{}(nil), r.buffer...)
	r.mu.Unlock()
	for _, value := range replay {
		observer.OnNext(value)
	}
	return sub
}

// OnNext 记录到缓冲并扇出，缓冲超界时淘汰最旧值
func (r *ReplaySubject) OnNext(value interface{}) {
	if r.Subject.Stopped() {
		return
	}
	r.mu.Lock()
	r.buffer = append(r.buffer, value)
	if r.size > 0 && len(r.buffer) > r.size {
		r.buffer = r.buffer[1:]
	}
	r.mu.Unlock()
	r.dispatch(value)
}

// BufferedCount 当前缓冲中的值数量
func (r *ReplaySubject) BufferedCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}
