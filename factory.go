// Factory functions for rxlite
// 工厂函数，提供符合Go习惯的流构造入口
package rxlite

import (
	"time"
)

// ============================================================================
// 基础工厂函数
// ============================================================================

// Empty 创建立即完成且不发射任何值的Observable
func Empty() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		observer.OnComplete()
		return nil
	})
}

// Never 创建永不发射任何事件的Observable
func Never() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		return nil
	})
}

// Throw 创建立即以给定错误终止的Observable
func Throw(err error) *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		observer.OnError(err)
		return nil
	})
}

// Of 创建按参数顺序发射各值然后完成的Observable
func Of(values ...interface{}) *Observable {
	items := Pack(values...)
	return NewObservable(func(observer *Observer) *Subscription {
		for _, value := range items {
			if observer.Stopped() {
				break
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
		return nil
	})
}

// FromSlice 创建按切片顺序发射各元素的Observable
func FromSlice(items []interface{}) *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		for _, value := range items {
			if observer.Stopped() {
				break
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
		return nil
	})
}

// FromRange 创建发射等差数列的Observable，区间两端均包含
// 步长缺省为1，可为负；零步长视为参数错误
func FromRange(start, stop int, step ...int) *Observable {
	delta := 1
	if len(step) > 0 {
		delta = step[0]
	}
	if delta == 0 {
		panic(NewArgumentError("FromRange", "step must not be zero"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		if delta > 0 {
			for i := start; i <= stop && !observer.Stopped(); i += delta {
				observer.OnNext(i)
			}
		} else {
			for i := start; i >= stop && !observer.Stopped(); i += delta {
				observer.OnNext(i)
			}
		}
		observer.OnComplete()
		return nil
	})
}

// Entry 带键遍历map时发射的键值对
type Entry struct {
	Key   interface{}
	Value interface{}
}

// FromMap 创建遍历map并发射其值的Observable，遍历顺序与Go的range一致
func FromMap(m map[interface{}]interface{}) *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		for _, value := range m {
			if observer.Stopped() {
				break
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
		return nil
	})
}

// FromMapEntries 创建遍历map并发射Entry键值对的Observable
func FromMapEntries(m map[interface{}]interface{}) *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		for key, value := range m {
			if observer.Stopped() {
				break
			}
			observer.OnNext(Entry{Key: key, Value: value})
		}
		observer.OnComplete()
		return nil
	})
}

// FromIterable 创建由调用方信道驱动的Observable
// iterable在每次订阅时被重新调用，信道关闭即完成
func FromIterable(iterable func() <-chan interface{}) *Observable {
	if iterable == nil {
		panic(NewArgumentError("FromIterable", "iterable is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		for value := range iterable() {
			if observer.Stopped() {
				break
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
		return nil
	})
}

// Defer 创建每次订阅时调用工厂函数的Observable，构造副作用推迟到订阅发生
func Defer(factory func() *Observable) *Observable {
	if factory == nil {
		panic(NewArgumentError("Defer", "factory is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		source := factory()
		if source == nil {
			observer.OnError(NewArgumentError("Defer", "factory returned nil"))
			return nil
		}
		return source.subscribe(observer)
	})
}

// Replicate 创建重复发射同一个值的Observable
// 给定次数时发射count次后完成；未给定时持续发射，直到消费方终止
func Replicate(value interface{}, count ...int) *Observable {
	if len(count) > 0 && count[0] < 0 {
		panic(NewArgumentError("Replicate", "count must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		if len(count) > 0 {
			for i := 0; i < count[0] && !observer.Stopped(); i++ {
				observer.OnNext(value)
			}
		} else {
			for !observer.Stopped() {
				observer.OnNext(value)
			}
		}
		observer.OnComplete()
		return nil
	})
}

// ============================================================================
// 生成器工厂
// ============================================================================

// FromGenerator 创建由调度器逐步驱动既有生成器的Observable
// 多个订阅者共享同一生成器的进度；生成器枯竭后的订阅者只收到完成信号
func FromGenerator(gen *Generator, scheduler Scheduler) *Observable {
	if gen == nil {
		panic(NewArgumentError("FromGenerator", "generator is required"))
	}
	if scheduler == nil {
		panic(NewArgumentError("FromGenerator", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(scheduler.ScheduleRoutine(func(yield func(time.Duration)) {
			for !observer.Stopped() {
				value, ok, err := gen.Resume()
				if err != nil {
					observer.OnError(err)
					return
				}
				if !ok {
					observer.OnComplete()
					return
				}
				observer.OnNext(value)
				yield(0)
			}
		}, 0))
		return group.ToSubscription()
	})
}

// FromGeneratorFunc 创建每次订阅都获得全新生成器的Observable
func FromGeneratorFunc(fn GeneratorFunc, scheduler Scheduler) *Observable {
	if fn == nil {
		panic(NewArgumentError("FromGeneratorFunc", "generator function is required"))
	}
	if scheduler == nil {
		panic(NewArgumentError("FromGeneratorFunc", "scheduler is required"))
	}
	return Defer(func() *Observable {
		return FromGenerator(NewGenerator(fn), scheduler)
	})
}

// ============================================================================
// 定时工厂
// ============================================================================

// Interval 创建按固定周期发射递增序号的Observable，从0开始
// 首个值在一个周期之后到达
func Interval(period time.Duration, scheduler Scheduler) *Observable {
	if period < 0 {
		panic(NewArgumentError("Interval", "period must not be negative"))
	}
	if scheduler == nil {
		panic(NewArgumentError("Interval", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(scheduler.ScheduleRoutine(func(yield func(time.Duration)) {
			for i := 0; !observer.Stopped(); i++ {
				observer.OnNext(i)
				yield(period)
			}
		}, period))
		return group.ToSubscription()
	})
}

// Timer 创建在给定延迟后发射0并完成的Observable
func Timer(due time.Duration, scheduler Scheduler) *Observable {
	if due < 0 {
		panic(NewArgumentError("Timer", "due must not be negative"))
	}
	if scheduler == nil {
		panic(NewArgumentError("Timer", "scheduler is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(scheduler.Schedule(func() {
			observer.OnNext(0)
			observer.OnComplete()
		}, due))
		return group.ToSubscription()
	})
}

// ============================================================================
// 组合工厂
// ============================================================================

// Merge 交错合并多个源，全部源完成后才完成
func Merge(sources ...*Observable) *Observable {
	validateSources("Merge", sources)
	return mergeAll(sources)
}

// Concat 顺序连接多个源，前一个完成后才订阅下一个
func Concat(sources ...*Observable) *Observable {
	validateSources("Concat", sources)
	return concatAll(sources)
}

// Zip 将各源的第i个值配对为元组发射
// 任一源已完成且其缓冲耗尽时，整体立即完成
func Zip(sources ...*Observable) *Observable {
	validateSources("Zip", sources)
	return zipAll(nil, sources)
}

// ZipWith 以自定义组合函数配对各源的第i个值
func ZipWith(combiner Combiner, sources ...*Observable) *Observable {
	if combiner == nil {
		panic(NewArgumentError("ZipWith", "combiner is required"))
	}
	validateSources("ZipWith", sources)
	return zipAll(combiner, sources)
}

// CombineLatest 任一源发射时以全部源的最新值组成元组重新发射
// 每个源都至少发射过一次后才开始产出
func CombineLatest(sources ...*Observable) *Observable {
	validateSources("CombineLatest", sources)
	return combineLatestAll(nil, sources)
}

// CombineLatestWith 任一源发射时以自定义组合函数对全部最新值重算
func CombineLatestWith(combiner Combiner, sources ...*Observable) *Observable {
	if combiner == nil {
		panic(NewArgumentError("CombineLatestWith", "combiner is required"))
	}
	validateSources("CombineLatestWith", sources)
	return combineLatestAll(combiner, sources)
}

// Amb 让多个源竞速，最先发出任何事件者胜出，其余被取消
func Amb(sources ...*Observable) *Observable {
	validateSources("Amb", sources)
	return ambAll(sources)
}
