// Time-based operators for rxlite
// 时间操作符实现，包含Debounce、Delay、Sample、Buffer、Window、Throttle
package rxlite

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ============================================================================
// 时间操作符实现
// ============================================================================

// Debounce 防抖：静默期内到来的新事件会顶替同类的待发事件
// 待发槽位按事件种类独立，新值只取消待发的旧值，不影响待发的终止事件
func (o *Observable) Debounce(duration time.Duration, scheduler Scheduler) *Observable {
	if duration < 0 {
		panic(NewArgumentError("Debounce", "duration must not be negative"))
	}
	if scheduler == nil {
		panic(NewArgumentError("Debounce", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			mu      sync.Mutex
			pending [3]*Subscription
		)
		reschedule := func(kind EmissionKind, deliver func()) {
			mu.Lock()
			previous := pending[kind]
			mu.Unlock()
			if previous != nil {
				previous.Unsubscribe()
			}
			sub := scheduler.Schedule(deliver, duration)
			mu.Lock()
			pending[kind] = sub
			mu.Unlock()
		}
		source := o.subscribe(NewObserver(func(value interface{}) {
			reschedule(EmissionNext, func() { observer.OnNext(value) })
		}, func(err error) {
			reschedule(EmissionError, func() { observer.OnError(err) })
		}, func() {
			reschedule(EmissionComplete, observer.OnComplete)
		}))
		return NewSubscription(func() {
			mu.Lock()
			slots := pending
			mu.Unlock()
			for _, current := range slots {
				if current != nil {
					current.Unsubscribe()
				}
			}
			source.Unsubscribe()
		})
	})
}

// Delay 将每个事件（含终止事件）延后固定时长
func (o *Observable) Delay(duration time.Duration, scheduler Scheduler) *Observable {
	if duration < 0 {
		panic(NewArgumentError("Delay", "duration must not be negative"))
	}
	return o.DelayFunc(ConstantDuration(duration), scheduler)
}

// DelayFunc 将每个事件延后，时长由函数按事件逐次重新计算
func (o *Observable) DelayFunc(delay func() time.Duration, scheduler Scheduler) *Observable {
	if delay == nil {
		panic(NewArgumentError("DelayFunc", "delay function is required"))
	}
	if scheduler == nil {
		panic(NewArgumentError("DelayFunc", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		schedule := func(deliver func()) {
			var d time.Duration
			if err := tryCall(func() { d = delay() }); err != nil {
				observer.OnError(err)
				return
			}
			group.Add(scheduler.Schedule(deliver, d))
		}
		group.Add(o.subscribe(NewObserver(func(value interface{}) {
			schedule(func() { observer.OnNext(value) })
		}, func(err error) {
			schedule(func() { observer.OnError(err) })
		}, func() {
			schedule(observer.OnComplete)
		})))
		return group.ToSubscription()
	})
}

// Sample 记住源的最新值，在采样源发声时重发它
// 尚无值时采样不发射；源与采样源的终止事件都会转发
func (o *Observable) Sample(sampler *Observable) *Observable {
	if sampler == nil {
		panic(NewArgumentError("Sample", "sampler observable is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu       sync.Mutex
			latest   interface{}
			hasValue bool
		)
		group.Add(o.subscribe(NewObserver(func(value interface{}) {
			mu.Lock()
			latest, hasValue = value, true
			mu.Unlock()
		}, observer.OnError, observer.OnComplete)))
		group.Add(sampler.subscribe(NewObserver(func(interface{}) {
			mu.Lock()
			value, ok := latest, hasValue
			mu.Unlock()
			if ok {
				observer.OnNext(value)
			}
		}, observer.OnError, observer.OnComplete)))
		return group.ToSubscription()
	})
}

// Buffer 攒满size个值后把它们作为一个元组发射
// 完成时冲刷剩余缓冲；错误时缓冲被丢弃
func (o *Observable) Buffer(size int) *Observable {
	if size <= 0 {
		panic(NewArgumentError("Buffer", "size must be positive"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		chunk := make([]interface{}, 0, size)
		flush := func() {
			if len(chunk) == 0 {
				return
			}
			tuple := chunk
			chunk = make([]interface{}, 0, size)
			observer.OnNext(tuple)
		}
		return o.subscribe(NewObserver(func(value interface{}) {
			chunk = append(chunk, value)
			if len(chunk) >= size {
				flush()
			}
		}, observer.OnError, func() {
			flush()
			observer.OnComplete()
		}))
	})
}

// Window 滑动窗口：窗口满后每个新值都携带最近size个值的元组发射
// 完成时不冲刷未满的窗口
func (o *Observable) Window(size int) *Observable {
	if size <= 0 {
		panic(NewArgumentError("Window", "size must be positive"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		window := make([]interface{}, 0, size)
		return o.subscribe(NewObserver(func(value interface{}) {
			window = append(window, value)
			if len(window) >= size {
				tuple := append([]interface{}(nil), window...)
				observer.OnNext(tuple)
				window = window[1:]
			}
		}, observer.OnError, observer.OnComplete))
	})
}

// Throttle 以令牌桶限流，配额不足时丢弃值
// 终止事件不受限流影响
func (o *Observable) Throttle(limiter *rate.Limiter) *Observable {
	if limiter == nil {
		panic(NewArgumentError("Throttle", "limiter is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		return o.subscribe(NewObserver(func(value interface{}) {
			if limiter.Allow() {
				observer.OnNext(value)
			}
		}, observer.OnError, observer.OnComplete))
	})
}
