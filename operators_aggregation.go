// Aggregation operators for rxlite
// 聚合操作符实现，包含Count、Sum、Average、Min、Max、All、Any、Contains
package rxlite

import (
	"fmt"
)

// ============================================================================
// 数值辅助
// ============================================================================

// numericValue 将常见数值类型规范化为float64
func numericValue(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case int:
		return float64(v), true
	case int8:
		return float64(v), true
	case int16:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint8:
		return float64(v), true
	case uint16:
		return float64(v), true
	case uint32:
		return float64(v), true
	case uint64:
		return float64(v), true
	case float32:
		return float64(v), true
	case float64:
		return v, true
	}
	return 0, false
}

// addValues 数值相加；两个int相加保持int，其余走float64
// 非数值操作数panic，由守护包装转为onError
func addValues(accumulator, current interface{}) interface{} {
	if ai, ok := accumulator.(int); ok {
		if bi, ok := current.(int); ok {
			return ai + bi
		}
	}
	af, ok := numericValue(accumulator)
	if !ok {
		panic(fmt.Sprintf("rxlite: Sum: non-numeric value %v", accumulator))
	}
	bf, ok := numericValue(current)
	if !ok {
		panic(fmt.Sprintf("rxlite: Sum: non-numeric value %v", current))
	}
	return af + bf
}

// compareValues 通用比较：数值按大小，字符串按字典序；不可比较时panic
func compareValues(a, b interface{}) int {
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			switch {
			case as < bs:
				return -1
			case as > bs:
				return 1
			default:
				return 0
			}
		}
	}
	af, aok := numericValue(a)
	bf, bok := numericValue(b)
	if !aok || !bok {
		panic(fmt.Sprintf("rxlite: cannot compare %T with %T", a, b))
	}
	switch {
	case af < bf:
		return -1
	case af > bf:
		return 1
	default:
		return 0
	}
}

// ============================================================================
// 聚合操作符实现
// ============================================================================

// Count 统计值的数量并在完成时发射，给定谓词时只统计满足者
func (o *Observable) Count(predicate ...Predicate) *Observable {
	var match Predicate
	if len(predicate) > 0 {
		if predicate[0] == nil {
			panic(NewArgumentError("Count", "predicate must not be nil"))
		}
		match = predicate[0]
	}
	return NewObservable(func(observer *Observer) *Subscription {
		count := 0
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if match != nil {
				ok, err := tryPredicate(match, value)
				if err != nil {
					observer.OnError(err)
					up.stop()
					return
				}
				if !ok {
					return
				}
			}
			count++
		}, observer.OnError, func() {
			observer.OnNext(count)
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// Sum 数值求和，完成时发射；空源得0
func (o *Observable) Sum() *Observable {
	return o.Reduce(addValues, 0)
}

// Average 数值平均，完成时发射；空源只完成不发值
func (o *Observable) Average() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			sum   float64
			count int
		)
		var up *Observer
		up = NewObserver(func(value interface{}) {
			v, ok := numericValue(value)
			if !ok {
				observer.OnError(fmt.Errorf("rxlite: Average: non-numeric value %v", value))
				up.stop()
				return
			}
			sum += v
			count++
		}, observer.OnError, func() {
			if count > 0 {
				observer.OnNext(sum / float64(count))
			}
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// Min 取最小值，完成时发射；空源只完成不发值
func (o *Observable) Min() *Observable {
	return o.Reduce(func(accumulator, current interface{}) interface{} {
		if compareValues(current, accumulator) < 0 {
			return current
		}
		return accumulator
	})
}

// Max 取最大值，完成时发射；空源只完成不发值
func (o *Observable) Max() *Observable {
	return o.Reduce(func(accumulator, current interface{}) interface{} {
		if compareValues(current, accumulator) > 0 {
			return current
		}
		return accumulator
	})
}

// All 判断是否全部值满足谓词
// 出现反例时立即发射false并完成，否则在源完成时发射true
func (o *Observable) All(predicate Predicate) *Observable {
	if predicate == nil {
		panic(NewArgumentError("All", "predicate is required"))
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
				observer.OnNext(false)
				observer.OnComplete()
				up.stop()
			}
		}, observer.OnError, func() {
			observer.OnNext(true)
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// Any 判断是否存在满足谓词的值，缺省谓词恒真
// 命中即发射true并完成，否则在源完成时发射false
func (o *Observable) Any(predicate ...Predicate) *Observable {
	match := Predicate(func(interface{}) bool { return true })
	if len(predicate) > 0 {
		if predicate[0] == nil {
			panic(NewArgumentError("Any", "predicate must not be nil"))
		}
		match = predicate[0]
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			ok, err := tryPredicate(match, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			if ok {
				observer.OnNext(true)
				observer.OnComplete()
				up.stop()
			}
		}, observer.OnError, func() {
			observer.OnNext(false)
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// Contains 判断是否出现过给定值，等值判断使用Eq
func (o *Observable) Contains(target interface{}) *Observable {
	return o.Any(func(value interface{}) bool {
		return Eq(value, target)
	})
}
