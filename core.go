// Package rxlite provides push-based reactive stream primitives for Go
// 基于推送模型的响应式流核心库，提供Observable、Observer、Subject与可插拔调度器
package rxlite

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// ============================================================================
// 函数类型定义
// ============================================================================

// OnNext 处理下一个值的函数
type OnNext func(value interface{})

// OnError 处理错误的函数
type OnError func(err error)

// OnComplete 处理完成的函数
type OnComplete func()

// Predicate 谓词函数，用于过滤
type Predicate func(value interface{}) bool

// Transformer 转换函数，用于映射
type Transformer func(value interface{}) (interface{}, error)

// Reducer 归约函数，用于聚合
type Reducer func(accumulator, current interface{}) interface{}

// Comparator 比较函数，判断两个值是否相等
type Comparator func(a, b interface{}) bool

// Combiner 组合函数，将多个源的最新值组合为一个结果
type Combiner func(values ...interface{}) interface{}

// SubscribeFunc 订阅函数，Observable持有的唯一属性
// 返回值可为nil，公开入口会将其规范化为空订阅
type SubscribeFunc func(observer *Observer) *Subscription

// ============================================================================
// Observer 观察者
// ============================================================================

// Subscriber 三类事件的接收方接口，Observer与全部Subject都实现它
type Subscriber interface {
	OnNext(value interface{})
	OnError(err error)
	OnComplete()
}

// Observer 观察者，持有三个回调与终止标志
// 首个终止事件（OnError或OnComplete）之后，任何方法调用都是空操作，
// 用户回调至多收到一个终止事件
type Observer struct {
	stopped    int32
	onNext     OnNext
	onError    OnError
	onComplete OnComplete
}

// NewObserver 创建观察者，三个回调均可为nil
// onNext与onComplete缺省为空操作；onError缺省为panic，未被观察的错误不会被静默吞掉
func NewObserver(onNext OnNext, onError OnError, onComplete OnComplete) *Observer {
	return &Observer{
		onNext:     onNext,
		onError:    onError,
		onComplete: onComplete,
	}
}

// OnNext 推送下一个值，终止后为空操作
func (o *Observer) OnNext(value interface{}) {
	if atomic.LoadInt32(&o.stopped) == 1 {
		return
	}
	if o.onNext != nil {
		o.onNext(value)
	}
}

// OnError 推送错误并终止，仅首次调用生效
func (o *Observer) OnError(err error) {
	if atomic.CompareAndSwapInt32(&o.stopped, 0, 1) {
		if o.onError != nil {
			o.onError(err)
			return
		}
		panic(err)
	}
}

// OnComplete 推送完成信号并终止，仅首次调用生效
func (o *Observer) OnComplete() {
	if atomic.CompareAndSwapInt32(&o.stopped, 0, 1) {
		if o.onComplete != nil {
			o.onComplete()
		}
	}
}

// Stopped 检查观察者是否已终止，同步生产循环据此及时退出
func (o *Observer) Stopped() bool {
	return atomic.LoadInt32(&o.stopped) == 1
}

// stop 仅标记终止，不触发任何回调
// 操作符向下游发出终止事件后，用它切断上游的后续推送
func (o *Observer) stop() {
	atomic.StoreInt32(&o.stopped, 1)
}

// ============================================================================
// Subscription 订阅句柄
// ============================================================================

// Subscription 订阅句柄，封装一次性的清理动作
type Subscription struct {
	unsubscribed int32
	action       func()
}

// NewSubscription 创建订阅句柄，action可为nil
func NewSubscription(action func()) *Subscription {
	return &Subscription{action: action}
}

// Unsubscribe 取消订阅，清理动作至多执行一次
func (s *Subscription) Unsubscribe() {
	if atomic.CompareAndSwapInt32(&s.unsubscribed, 0, 1) {
		if s.action != nil {
			s.action()
		}
	}
}

// IsUnsubscribed 检查是否已取消订阅
func (s *Subscription) IsUnsubscribed() bool {
	return atomic.LoadInt32(&s.unsubscribed) == 1
}

// ============================================================================
// CompositeSubscription 组合订阅
// ============================================================================

// CompositeSubscription 组合订阅，取消时级联取消全部子订阅
// 创建了多个内部订阅的操作符用它保证整条流水线可被一次性拆除
type CompositeSubscription struct {
	mu           sync.Mutex
	unsubscribed bool
	children     []*Subscription
}

// NewCompositeSubscription 创建组合订阅
func NewCompositeSubscription(subs ...*Subscription) *CompositeSubscription {
	return &CompositeSubscription{children: append([]*Subscription(nil), subs...)}
}

// Add 添加子订阅；若整体已取消则立即取消新加入者
func (c *CompositeSubscription) Add(sub *Subscription) {
	if sub == nil {
		return
	}
	c.mu.Lock()
	if c.unsubscribed {
		c.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	c.children = append(c.children, sub)
	c.mu.Unlock()
}

// Unsubscribe 取消全部子订阅，至多执行一次
func (c *CompositeSubscription) Unsubscribe() {
	c.mu.Lock()
	if c.unsubscribed {
		c.mu.Unlock()
		return
	}
	c.unsubscribed = true
	children := c.children
	c.children = nil
	c.mu.Unlock()

	for _, sub := range children {
		sub.Unsubscribe()
	}
}

// IsUnsubscribed 检查整体是否已取消
func (c *CompositeSubscription) IsUnsubscribed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.unsubscribed
}

// ToSubscription 将组合订阅装箱为普通订阅句柄
func (c *CompositeSubscription) ToSubscription() *Subscription {
	return NewSubscription(c.Unsubscribe)
}

// ============================================================================
// 错误类型
// ============================================================================

// ArgumentError 参数错误
// 工厂与操作符在构造期校验参数，非法参数立即panic并携带该错误，而不是等到订阅时
type ArgumentError struct {
	Op     string
	Reason string
}

// NewArgumentError 创建参数错误
func NewArgumentError(op, reason string) *ArgumentError {
	return &ArgumentError{Op: op, Reason: reason}
}

// Error 返回错误描述
func (e *ArgumentError) Error() string {
	return fmt.Sprintf("rxlite: %s: %s", e.Op, e.Reason)
}
