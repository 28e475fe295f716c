// Error handling operators for rxlite
// 错误处理操作符实现，包含Catch、OnErrorResumeNext、Retry、Finally
package rxlite

import (
	"sync"
)

// ============================================================================
// 错误处理操作符实现
// ============================================================================

// CatchFunc 错误处理函数，返回接替原流的Observable；返回nil表示静默完成
type CatchFunc func(err error) *Observable

// Catch 捕获错误并交由处理函数接管
// 处理函数返回的Observable无缝续行原流；处理函数自身的失败作为最终错误转发
func (o *Observable) Catch(handler CatchFunc) *Observable {
	if handler == nil {
		panic(NewArgumentError("Catch", "handler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(o.subscribe(NewObserver(observer.OnNext, func(err error) {
			var fallback *Observable
			if herr := tryCall(func() { fallback = handler(err) }); herr != nil {
				observer.OnError(herr)
				return
			}
			if fallback == nil {
				observer.OnComplete()
				return
			}
			group.Add(fallback.subscribe(observer))
		}, observer.OnComplete)))
		return group.ToSubscription()
	})
}

// OnErrorResumeNext 出错时改为订阅给定的后备源
func (o *Observable) OnErrorResumeNext(fallback *Observable) *Observable {
	if fallback == nil {
		panic(NewArgumentError("OnErrorResumeNext", "fallback observable is required"))
	}
	return o.Catch(func(error) *Observable {
		return fallback
	})
}

// Retry 出错时重新订阅原始源
// count为重试次数：Retry(2)最多订阅3次；耗尽后转发最后一次错误；
// 未给定次数则无限重试
func (o *Observable) Retry(count ...int) *Observable {
	if len(count) > 0 && count[0] < 0 {
		panic(NewArgumentError("Retry", "count must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu        sync.Mutex
			remaining = -1
		)
		if len(count) > 0 {
			remaining = count[0]
		}
		var attempt func()
		attempt = func() {
			group.Add(o.subscribe(NewObserver(observer.OnNext, func(err error) {
				mu.Lock()
				retryable := remaining != 0
				if remaining > 0 {
					remaining--
				}
				mu.Unlock()
				if retryable {
					attempt()
					return
				}
				observer.OnError(err)
			}, observer.OnComplete)))
		}
		attempt()
		return group.ToSubscription()
	})
}

// Finally 在流终止或退订时执行一次清理动作，至多执行一次
func (o *Observable) Finally(action func()) *Observable {
	if action == nil {
		panic(NewArgumentError("Finally", "action is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		// 清理至多一次的语义直接复用订阅句柄
		once := NewSubscription(action)
		source := o.subscribe(NewObserver(observer.OnNext, func(err error) {
			observer.OnError(err)
			once.Unsubscribe()
		}, func() {
			observer.OnComplete()
			once.Unsubscribe()
		}))
		return NewSubscription(func() {
			source.Unsubscribe()
			once.Unsubscribe()
		})
	})
}
