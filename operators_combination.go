// Combination operators for rxlite
// 组合操作符实现，包含Merge、Concat、Zip、CombineLatest、Amb、Flatten、Switch等
package rxlite

import (
	"fmt"
	"sync"
)

// ============================================================================
// 共同校验
// ============================================================================

// validateSources 组合构造前的共同校验
func validateSources(op string, sources []*Observable) {
	for _, source := range sources {
		if source == nil {
			panic(NewArgumentError(op, "nil source"))
		}
	}
}

// ============================================================================
// 顺序连接
// ============================================================================

// concatAll 顺序连接：前一个源完成后才订阅下一个
func concatAll(sources []*Observable) *Observable {
	if len(sources) == 0 {
		return Empty()
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var subscribeAt func(index int)
		subscribeAt = func(index int) {
			if index >= len(sources) {
				observer.OnComplete()
				return
			}
			group.Add(sources[index].subscribe(NewObserver(
				observer.OnNext,
				observer.OnError,
				func() { subscribeAt(index + 1) },
			)))
		}
		subscribeAt(0)
		return group.ToSubscription()
	})
}

// Concat 在当前源完成后顺序续接其他源
func (o *Observable) Concat(others ...*Observable) *Observable {
	validateSources("Concat", others)
	return concatAll(append([]*Observable{o}, others...))
}

// ============================================================================
// 交错合并
// ============================================================================

// mergeAll 交错合并：事件即到即发，全部源完成后才完成
// 任一源出错时错误直达下游，其余源被退订
func mergeAll(sources []*Observable) *Observable {
	if len(sources) == 0 {
		return Empty()
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu        sync.Mutex
			remaining = len(sources)
		)
		completeOne := func() {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				observer.OnComplete()
			}
		}
		for _, source := range sources {
			group.Add(source.subscribe(NewObserver(
				observer.OnNext,
				func(err error) {
					observer.OnError(err)
					group.Unsubscribe()
				},
				completeOne,
			)))
			if observer.Stopped() {
				break
			}
		}
		return group.ToSubscription()
	})
}

// Merge 将当前源与其他源交错合并
func (o *Observable) Merge(others ...*Observable) *Observable {
	validateSources("Merge", others)
	return mergeAll(append([]*Observable{o}, others...))
}

// ============================================================================
// 配对
// ============================================================================

// zipAll 将各源的第i个值配对
// combiner为nil时发射元组；任一源已完成且其缓冲耗尽时，整体立即完成
func zipAll(combiner Combiner, sources []*Observable) *Observable {
	if len(sources) == 0 {
		return Empty()
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu        sync.Mutex
			buffers   = make([][]interface{}, len(sources))
			completed = make([]bool, len(sources))
		)

		// drainedLocked 检查“已完成且缓冲耗尽”的终止条件，须持锁调用
		drainedLocked := func() bool {
			for i := range sources {
				if completed[i] && len(buffers[i]) == 0 {
					return true
				}
			}
			return false
		}

		onEvent := func() {
			for {
				mu.Lock()
				ready := true
				for i := range buffers {
					if len(buffers[i]) == 0 {
						ready = false
						break
					}
				}
				if !ready {
					finished := drainedLocked()
					mu.Unlock()
					if finished {
						observer.OnComplete()
						group.Unsubscribe()
					}
					return
				}
				tuple := make([]interface{}, len(buffers))
				for i := range buffers {
					tuple[i] = buffers[i][0]
					buffers[i] = buffers[i][1:]
				}
				finished := drainedLocked()
				mu.Unlock()

				if combiner != nil {
					result, err := tryCombine(combiner, tuple)
					if err != nil {
						observer.OnError(err)
						group.Unsubscribe()
						return
					}
					observer.OnNext(result)
				} else {
					observer.OnNext(tuple)
				}
				if finished {
					observer.OnComplete()
					group.Unsubscribe()
					return
				}
			}
		}

		for i, source := range sources {
			index := i
			group.Add(source.subscribe(NewObserver(
				func(value interface{}) {
					mu.Lock()
					buffers[index] = append(buffers[index], value)
					mu.Unlock()
					onEvent()
				},
				func(err error) {
					observer.OnError(err)
					group.Unsubscribe()
				},
				func() {
					mu.Lock()
					completed[index] = true
					mu.Unlock()
					onEvent()
				},
			)))
			if observer.Stopped() {
				break
			}
		}
		return group.ToSubscription()
	})
}

// Zip 将当前源与其他源按第i个值配对为元组
func (o *Observable) Zip(others ...*Observable) *Observable {
	validateSources("Zip", others)
	return zipAll(nil, append([]*Observable{o}, others...))
}

// ZipWith 以自定义组合函数配对当前源与其他源
func (o *Observable) ZipWith(combiner Combiner, others ...*Observable) *Observable {
	if combiner == nil {
		panic(NewArgumentError("ZipWith", "combiner is required"))
	}
	validateSources("ZipWith", others)
	return zipAll(combiner, append([]*Observable{o}, others...))
}

// ============================================================================
// 最新值组合
// ============================================================================

// combineLatestAll 任一源发射时用全部源的最新值重算
// 每个源都至少发射一次后才开始产出；全部源完成后完成
func combineLatestAll(combiner Combiner, sources []*Observable) *Observable {
	if len(sources) == 0 {
		return Empty()
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu        sync.Mutex
			latest    = make([]interface{}, len(sources))
			hasValue  = make([]bool, len(sources))
			remaining = len(sources)
		)
		for i, source := range sources {
			index := i
			group.Add(source.subscribe(NewObserver(
				func(value interface{}) {
					mu.Lock()
					latest[index] = value
					hasValue[index] = true
					ready := true
					for _, ok := range hasValue {
						if !ok {
							ready = false
							break
						}
					}
					var tuple []interface{}
					if ready {
						tuple = append([]interface{}(nil), latest...)
					}
					mu.Unlock()
					if !ready {
						return
					}
					if combiner == nil {
						observer.OnNext(tuple)
						return
					}
					result, err := tryCombine(combiner, tuple)
					if err != nil {
						observer.OnError(err)
						group.Unsubscribe()
						return
					}
					observer.OnNext(result)
				},
				func(err error) {
					observer.OnError(err)
					group.Unsubscribe()
				},
				func() {
					mu.Lock()
					remaining--
					done := remaining == 0
					mu.Unlock()
					if done {
						observer.OnComplete()
					}
				},
			)))
			if observer.Stopped() {
				break
			}
		}
		return group.ToSubscription()
	})
}

// CombineLatest 与其他源组合，任一源发射时以全部最新值组成元组重新发射
func (o *Observable) CombineLatest(others ...*Observable) *Observable {
	validateSources("CombineLatest", others)
	return combineLatestAll(nil, append([]*Observable{o}, others...))
}

// CombineLatestWith 与其他源组合，任一源发射时以组合函数对全部最新值重算
func (o *Observable) CombineLatestWith(combiner Combiner, others ...*Observable) *Observable {
	if combiner == nil {
		panic(NewArgumentError("CombineLatestWith", "combiner is required"))
	}
	validateSources("CombineLatestWith", others)
	return combineLatestAll(combiner, append([]*Observable{o}, others...))
}

// ============================================================================
// 竞速
// ============================================================================

// ambAll 竞速：最先发出任何事件的源胜出，其余被退订
func ambAll(sources []*Observable) *Observable {
	if len(sources) < 2 {
		panic(NewArgumentError("Amb", "at least two sources are required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu     sync.Mutex
			winner = -1
		)
		subs := make([]*Subscription, len(sources))
		cancelLosers := func(won int) {
			for i, sub := range subs {
				if i != won && sub != nil {
					sub.Unsubscribe()
				}
			}
		}
		claim := func(index int) bool {
			mu.Lock()
			first := winner == -1
			if first {
				winner = index
			}
			ok := winner == index
			mu.Unlock()
			if first {
				cancelLosers(index)
			}
			return ok
		}
		for i, source := range sources {
			index := i
			mu.Lock()
			decided := winner != -1
			mu.Unlock()
			if decided {
				break
			}
			subs[index] = source.subscribe(NewObserver(
				func(value interface{}) {
					if claim(index) {
						observer.OnNext(value)
					}
				},
				func(err error) {
					if claim(index) {
						observer.OnError(err)
					}
				},
				func() {
					if claim(index) {
						observer.OnComplete()
					}
				},
			))
			group.Add(subs[index])
		}
		return group.ToSubscription()
	})
}

// Amb 与其他源竞速，最先发出任何事件者胜出
func (o *Observable) Amb(others ...*Observable) *Observable {
	validateSources("Amb", others)
	return ambAll(append([]*Observable{o}, others...))
}

// ============================================================================
// 附带最新值
// ============================================================================

// With 在每个源值上附带各辅助源的最新值，组成元组发射
// 辅助源不门控发射节奏，其终止事件也被忽略
func (o *Observable) With(sources ...*Observable) *Observable {
	validateSources("With", sources)
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var mu sync.Mutex
		latest := make([]interface{}, len(sources))
		for i, source := range sources {
			index := i
			group.Add(source.subscribe(NewObserver(func(value interface{}) {
				mu.Lock()
				latest[index] = value
				mu.Unlock()
			}, func(error) {}, func() {})))
		}
		group.Add(o.subscribe(NewObserver(func(value interface{}) {
			mu.Lock()
			tuple := make([]interface{}, 0, len(latest)+1)
			tuple = append(tuple, value)
			tuple = append(tuple, latest...)
			mu.Unlock()
			observer.OnNext(tuple)
		}, observer.OnError, observer.OnComplete)))
		return group.ToSubscription()
	})
}

// ============================================================================
// 嵌套流展平
// ============================================================================

// Flatten 展平嵌套的Observable流
// 剩余计数从1（外层）起步：每订阅一个内层加一，内外层每完成一个减一，
// 归零时整体完成
func (o *Observable) Flatten() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		var (
			mu        sync.Mutex
			remaining = 1
		)
		arrive := func() {
			mu.Lock()
			remaining++
			mu.Unlock()
		}
		depart := func() {
			mu.Lock()
			remaining--
			done := remaining == 0
			mu.Unlock()
			if done {
				observer.OnComplete()
			}
		}
		var up *Observer
		up = NewObserver(func(value interface{}) {
			source, ok := value.(*Observable)
			if !ok || source == nil {
				observer.OnError(fmt.Errorf("rxlite: Flatten: expected *Observable, got %T", value))
				up.stop()
				group.Unsubscribe()
				return
			}
			arrive()
			group.Add(source.subscribe(NewObserver(
				observer.OnNext,
				func(err error) {
					observer.OnError(err)
					group.Unsubscribe()
				},
				depart,
			)))
		}, func(err error) {
			observer.OnError(err)
			group.Unsubscribe()
		}, depart)
		group.Add(o.subscribe(up))
		return group.ToSubscription()
	})
}

// Switch 订阅源发射出的内层Observable，新内层到来时退订旧内层
// 只有最新的内层存活；内层完成被忽略，源完成即整体完成
func (o *Observable) Switch() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			mu    sync.Mutex
			inner *Subscription
		)
		var up *Observer
		up = NewObserver(func(value interface{}) {
			source, ok := value.(*Observable)
			if !ok || source == nil {
				observer.OnError(fmt.Errorf("rxlite: Switch: expected *Observable, got %T", value))
				up.stop()
				return
			}
			mu.Lock()
			previous := inner
			mu.Unlock()
			if previous != nil {
				previous.Unsubscribe()
			}
			sub := source.subscribe(NewObserver(observer.OnNext, observer.OnError, nil))
			mu.Lock()
			inner = sub
			mu.Unlock()
		}, observer.OnError, observer.OnComplete)
		outer := o.subscribe(up)
		return NewSubscription(func() {
			mu.Lock()
			current := inner
			mu.Unlock()
			if current != nil {
				current.Unsubscribe()
			}
			outer.Unsubscribe()
		})
	})
}

// FlatMap 将每个值映射为Observable并展平其输出
func (o *Observable) FlatMap(projector func(value interface{}) *Observable) *Observable {
	if projector == nil {
		panic(NewArgumentError("FlatMap", "projector is required"))
	}
	return o.Map(func(value interface{}) (interface{}, error) {
		return projector(value), nil
	}).Flatten()
}

// FlatMapLatest 将每个值映射为Observable，只保留最新内层的输出
func (o *Observable) FlatMapLatest(projector func(value interface{}) *Observable) *Observable {
	if projector == nil {
		panic(NewArgumentError("FlatMapLatest", "projector is required"))
	}
	return o.Map(func(value interface{}) (interface{}, error) {
		return projector(value), nil
	}).Switch()
}
