// Filtering operators for rxlite
// 过滤类操作符：谓词筛选、去重、截取与跳过
package rxlite

// ============================================================================
// 谓词过滤
// ============================================================================

// Filter 只保留满足谓词的值
func (o *Observable) Filter(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("Filter", "predicate is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			ok, err := tryPredicate(predicate, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			if ok {
				observer.OnNext(value)
			}
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// Reject 丢弃满足谓词的值，与Filter互补
func (o *Observable) Reject(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("Reject", "predicate is required"))
	}
	return o.Filter(func(value interface{}) bool {
		return !predicate(value)
	})
}

// Compact 丢弃空值：nil与false被过滤掉
func (o *Observable) Compact() *Observable {
	return o.Filter(func(value interface{}) bool {
		return value != nil && value != false
	})
}

// Find 发射首个满足谓词的值后立即完成
func (o *Observable) Find(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("Find", "predicate is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			ok, err := tryPredicate(predicate, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			if ok {
				observer.OnNext(value)
				observer.OnComplete()
				up.stop()
			}
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// ============================================================================
// 去重
// ============================================================================

// Distinct 只放行首次出现的值
// 以值本身做哈希键，不可哈希的值会让流以错误终止
func (o *Observable) Distinct() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		seen := make(map[interface{}]bool)
		var up *Observer
		up = NewObserver(func(value interface{}) {
			var fresh bool
			err := tryCall(func() {
				if !seen[value] {
					seen[value] = true
					fresh = true
				}
			})
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			if fresh {
				observer.OnNext(value)
			}
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// DistinctUntilChanged 丢弃与上一个值相等的连续重复，比较函数缺省为Eq
func (o *Observable) DistinctUntilChanged(comparator ...Comparator) *Observable {
	var compare Comparator = Eq
	if len(comparator) > 0 {
		if comparator[0] == nil {
			panic(NewArgumentError("DistinctUntilChanged", "comparator must not be nil"))
		}
		compare = comparator[0]
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			last    interface{}
			hasLast bool
		)
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if hasLast {
				equal, err := tryCompare(compare, last, value)
				if err != nil {
					observer.OnError(err)
					up.stop()
					return
				}
				if equal {
					return
				}
			}
			last, hasLast = value, true
			observer.OnNext(value)
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// ============================================================================
// 按位置截取
// ============================================================================

// First 只取第一个值
func (o *Observable) First() *Observable {
	return o.Take(1)
}

// Last 完成时发射最后一个值，空源只完成
func (o *Observable) Last() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			last    interface{}
			hasLast bool
		)
		return o.subscribe(NewObserver(func(value interface{}) {
			last, hasLast = value, true
		}, observer.OnError, func() {
			if hasLast {
				observer.OnNext(last)
			}
			observer.OnComplete()
		}))
	})
}

// ElementAt 发射指定下标的值后完成，源提前结束则只完成
func (o *Observable) ElementAt(index int) *Observable {
	if index < 0 {
		panic(NewArgumentError("ElementAt", "index must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		current := 0
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if current == index {
				observer.OnNext(value)
				observer.OnComplete()
				up.stop()
				return
			}
			current++
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// Take 只取前count个值，取满后立即完成
func (o *Observable) Take(count int) *Observable {
	if count < 0 {
		panic(NewArgumentError("Take", "count must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		if count == 0 {
			observer.OnComplete()
			return nil
		}
		remaining := count
		var up *Observer
		up = NewObserver(func(value interface{}) {
			remaining--
			observer.OnNext(value)
			if remaining == 0 {
				observer.OnComplete()
				up.stop()
			}
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// TakeWhile 持续取值直到谓词首次不满足
func (o *Observable) TakeWhile(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("TakeWhile", "predicate is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			ok, err := tryPredicate(predicate, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			if !ok {
				observer.OnComplete()
				up.stop()
				return
			}
			observer.OnNext(value)
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// TakeLast 完成时按原顺序发射最后count个值
func (o *Observable) TakeLast(count int) *Observable {
	if count < 0 {
		panic(NewArgumentError("TakeLast", "count must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var tail []interface{}
		return o.subscribe(NewObserver(func(value interface{}) {
			tail = append(tail, value)
			if len(tail) > count {
				tail = tail[1:]
			}
		}, observer.OnError, func() {
			for _, value := range tail {
				if observer.Stopped() {
					break
				}
				observer.OnNext(value)
			}
			observer.OnComplete()
		}))
	})
}

// TakeUntil 放行源的事件，直到另一Observable发出任何事件即完成
func (o *Observable) TakeUntil(other *Observable) *Observable {
	if other == nil {
		panic(NewArgumentError("TakeUntil", "other observable is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		group.Add(other.subscribe(NewObserver(
			func(interface{}) { observer.OnComplete() },
			func(error) { observer.OnComplete() },
			observer.OnComplete,
		)))
		if !observer.Stopped() {
			group.Add(o.subscribe(observer))
		}
		return group.ToSubscription()
	})
}

// ============================================================================
// 跳过
// ============================================================================

// Skip 跳过前count个值
func (o *Observable) Skip(count int) *Observable {
	if count < 0 {
		panic(NewArgumentError("Skip", "count must not be negative"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		skipped := 0
		return o.subscribe(NewObserver(func(value interface{}) {
			if skipped < count {
				skipped++
				return
			}
			observer.OnNext(value)
		}, observer.OnError, observer.OnComplete))
	})
}

// SkipWhile 跳过值直到谓词首次不满足，此后全部放行
func (o *Observable) SkipWhile(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("SkipWhile", "predicate is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		skipping := true
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if skipping {
				ok, err := tryPredicate(predicate, value)
				if err != nil {
					observer.OnError(err)
					up.stop()
					return
				}
				if ok {
					return
				}
				skipping = false
			}
			observer.OnNext(value)
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// SkipLast 丢弃最后count个值，其余按原顺序转发
func (o *Observable) SkipLast(count int) *Observable {
	if count < 0 {
		panic(NewArgumentError("SkipLast", "count must not be negative"))
	}
	if count == 0 {
		return o
	}
	return NewObservable(func(observer *Observer) *Subscription {
		buffer := make([]interface{}, 0, count)
		return o.subscribe(NewObserver(func(value interface{}) {
			buffer = append(buffer, value)
			if len(buffer) > count {
				observer.OnNext(buffer[0])
				buffer = buffer[1:]
			}
		}, observer.OnError, observer.OnComplete))
	})
}

// SkipUntil 丢弃全部事件，直到另一Observable发出任何事件后才放行
func (o *Observable) SkipUntil(other *Observable) *Observable {
	if other == nil {
		panic(NewArgumentError("SkipUntil", "other observable is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		group := NewCompositeSubscription()
		triggered := false
		group.Add(other.subscribe(NewObserver(
			func(interface{}) { triggered = true },
			func(error) { triggered = true },
			func() { triggered = true },
		)))
		group.Add(o.subscribe(NewObserver(func(value interface{}) {
			if triggered {
				observer.OnNext(value)
			}
		}, func(err error) {
			if triggered {
				observer.OnError(err)
			}
		}, func() {
			if triggered {
				observer.OnComplete()
			}
		})))
		return group.ToSubscription()
	})
}
