// Side effect operators for rxlite
// 副作用操作符实现，包含Tap、DoOnNext、StartWith、Log等
package rxlite

import (
	"go.uber.org/zap"
)

// ============================================================================
// 副作用操作符实现
// ============================================================================

// Tap 注入副作用钩子，钩子先于转发执行
// 任一钩子内的panic被捕获并以onError终止流
func (o *Observable) Tap(onNext OnNext, onError OnError, onComplete OnComplete) *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if onNext != nil {
				if err := tryCall(func() { onNext(value) }); err != nil {
					observer.OnError(err)
					up.stop()
					return
				}
			}
			observer.OnNext(value)
		}, func(err error) {
			if onError != nil {
				if herr := tryCall(func() { onError(err) }); herr != nil {
					observer.OnError(herr)
					return
				}
			}
			observer.OnError(err)
		}, func() {
			if onComplete != nil {
				if err := tryCall(onComplete); err != nil {
					observer.OnError(err)
					return
				}
			}
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// DoOnNext 只挂接值钩子
func (o *Observable) DoOnNext(action OnNext) *Observable {
	return o.Tap(action, nil, nil)
}

// DoOnError 只挂接错误钩子
func (o *Observable) DoOnError(action OnError) *Observable {
	return o.Tap(nil, action, nil)
}

// DoOnComplete 只挂接完成钩子
func (o *Observable) DoOnComplete(action OnComplete) *Observable {
	return o.Tap(nil, nil, action)
}

// StartWith 订阅源之前先同步发射给定的各值
func (o *Observable) StartWith(values ...interface{}) *Observable {
	prefix := Pack(values...)
	return NewObservable(func(observer *Observer) *Subscription {
		for _, value := range prefix {
			if observer.Stopped() {
				return nil
			}
			observer.OnNext(value)
		}
		return o.subscribe(observer)
	})
}

// DefaultIfEmpty 源没有发射任何值就完成时，以给定的缺省值顶替
// 单个缺省值原样发射，多个缺省值作为一个元组发射
func (o *Observable) DefaultIfEmpty(values ...interface{}) *Observable {
	fallback := packValues(Pack(values...))
	hasFallback := len(values) > 0
	return NewObservable(func(observer *Observer) *Subscription {
		empty := true
		return o.subscribe(NewObserver(func(value interface{}) {
			empty = false
			observer.OnNext(value)
		}, observer.OnError, func() {
			if empty && hasFallback {
				observer.OnNext(fallback)
			}
			observer.OnComplete()
		}))
	})
}

// IgnoreElements 抑制全部值，只转发终止事件
func (o *Observable) IgnoreElements() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		return o.subscribe(NewObserver(nil, observer.OnError, observer.OnComplete))
	})
}

// Log 以结构化日志追踪流经的每个事件
// 值与完成记为debug级，错误记为error级；logger为nil时不产生任何输出
func (o *Observable) Log(logger *zap.Logger, tag string) *Observable {
	if logger == nil {
		logger = zap.NewNop()
	}
	log := logger.With(zap.String("stream", tag))
	return o.Tap(func(value interface{}) {
		log.Debug("onNext", zap.Any("value", value))
	}, func(err error) {
		log.Error("onError", zap.Error(err))
	}, func() {
		log.Debug("onComplete")
	})
}
