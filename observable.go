// Observable implementation for rxlite
// 同步推送模型的Observable核心实现
package rxlite

// ============================================================================
// Observable 核心实现
// ============================================================================

// Observable 惰性的事件生产者
// 只持有一个订阅函数：接收Observer、执行生产逻辑并返回Subscription。
// 操作符通过包装源的订阅函数构造新的Observable，组合本身不产生任何副作用，
// 直到消费方最终调用Subscribe
type Observable struct {
	subscribeFn SubscribeFunc
}

// NewObservable 从订阅函数创建Observable
func NewObservable(subscribe SubscribeFunc) *Observable {
	if subscribe == nil {
		panic(NewArgumentError("NewObservable", "subscribe function is required"))
	}
	return &Observable{subscribeFn: subscribe}
}

// Subscribe 订阅一个接收方，在当前调用栈上同步执行订阅函数
// 传入*Observer时直接使用；传入Subject等其他实现时经转发Observer接入
func (o *Observable) Subscribe(subscriber Subscriber) *Subscription {
	return o.subscribe(asObserver(subscriber))
}

// SubscribeWithCallbacks 以回调方式订阅，任一回调均可为nil
// 错误回调为nil时，流中的错误会以panic形式抛出，未被观察的失败不会被吞掉
func (o *Observable) SubscribeWithCallbacks(onNext OnNext, onError OnError, onComplete OnComplete) *Subscription {
	return o.subscribe(NewObserver(onNext, onError, onComplete))
}

// subscribe 内部订阅入口，将订阅函数的nil返回值规范化为惰性订阅句柄
func (o *Observable) subscribe(observer *Observer) *Subscription {
	if sub := o.subscribeFn(observer); sub != nil {
		return sub
	}
	return NewSubscription(nil)
}

// asObserver 将任意Subscriber适配为*Observer
func asObserver(subscriber Subscriber) *Observer {
	if subscriber == nil {
		return NewObserver(nil, nil, nil)
	}
	if observer, ok := subscriber.(*Observer); ok {
		return observer
	}
	return NewObserver(subscriber.OnNext, subscriber.OnError, subscriber.OnComplete)
}

// ToSlice 同步订阅并收集全部值
// 适用于同步完成的有限源；流以错误终止时返回已收集的值和该错误
func (o *Observable) ToSlice() ([]interface{}, error) {
	var (
		values []interface{}
		outErr error
	)
	o.SubscribeWithCallbacks(func(value interface{}) {
		values = append(values, value)
	}, func(err error) {
		outErr = err
	}, nil)
	return values, outErr
}

// ============================================================================
// 调度相关操作符
// ============================================================================

// SubscribeOn 用调度器驱动订阅动作本身，Subscribe调用立即返回
func (o *Observable) SubscribeOn(scheduler Scheduler) *Observable {
	if scheduler == nil {
		panic(NewArgumentError("SubscribeOn", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(scheduler.Schedule(func() {
			if !group.IsUnsubscribed() {
				group.Add(o.subscribe(observer))
			}
		}, 0))
		return group.ToSubscription()
	})
}

// ObserveOn 将每个事件的递送交由调度器执行
func (o *Observable) ObserveOn(scheduler Scheduler) *Observable {
	if scheduler == nil {
		panic(NewArgumentError("ObserveOn", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		deliver := func(event func()) {
			if group.IsUnsubscribed() {
				return
			}
			scheduler.Schedule(func() {
				if !group.IsUnsubscribed() {
					event()
				}
			}, 0)
		}
		group.Add(o.subscribe(NewObserver(
			func(value interface{}) { deliver(func() { observer.OnNext(value) }) },
			func(err error) { deliver(func() { observer.OnError(err) }) },
			func() { deliver(observer.OnComplete) },
		)))
		return group.ToSubscription()
	})
}
