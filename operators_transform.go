// Transformation operators for rxlite
// 变换类操作符：映射、累积与字段提取
package rxlite

import (
	"reflect"
)

// ============================================================================
// 变换操作符
// ============================================================================

// Map 对每个值应用变换函数
// 变换函数返回error或panic时，流以该错误终止
func (o *Observable) Map(transformer Transformer) *Observable {
	if transformer == nil {
		panic(NewArgumentError("Map", "transformer is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var up *Observer
		up = NewObserver(func(value interface{}) {
			result, err := tryTransform(transformer, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			observer.OnNext(result)
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// Scan 滚动累积，发射每一个中间结果
func (o *Observable) Scan(reducer Reducer, seed interface{}) *Observable {
	if reducer == nil {
		panic(NewArgumentError("Scan", "reducer is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		accumulator := seed
		var up *Observer
		up = NewObserver(func(value interface{}) {
			result, err := tryReduce(reducer, accumulator, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			accumulator = result
			observer.OnNext(result)
		}, observer.OnError, observer.OnComplete)
		return o.subscribe(up)
	})
}

// Reduce 静默累积，完成时只发射最终结果
// 未给种子时以首个值为初始累积值；无种子的空源直接完成，不发值
func (o *Observable) Reduce(reducer Reducer, seed ...interface{}) *Observable {
	if reducer == nil {
		panic(NewArgumentError("Reduce", "reducer is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		var (
			accumulator interface{}
			hasValue    bool
		)
		if len(seed) > 0 {
			accumulator, hasValue = seed[0], true
		}
		var up *Observer
		up = NewObserver(func(value interface{}) {
			if !hasValue {
				accumulator, hasValue = value, true
				return
			}
			result, err := tryReduce(reducer, accumulator, value)
			if err != nil {
				observer.OnError(err)
				up.stop()
				return
			}
			accumulator = result
		}, observer.OnError, func() {
			if hasValue {
				observer.OnNext(accumulator)
			}
			observer.OnComplete()
		})
		return o.subscribe(up)
	})
}

// Pluck 从每个值中按键逐层提取字段，支持map、结构体与切片
// 缺失的键产出nil；多个键时逐层下钻
func (o *Observable) Pluck(keys ...interface{}) *Observable {
	if len(keys) == 0 {
		panic(NewArgumentError("Pluck", "at least one key is required"))
	}
	result := o
	for _, key := range keys {
		k := key
		result = result.Map(func(value interface{}) (interface{}, error) {
			return pluckValue(value, k), nil
		})
	}
	return result
}

// pluckValue 反射提取单个键，遇到指针先解引用
func pluckValue(value, key interface{}) interface{} {
	if value == nil {
		return nil
	}
	v := reflect.ValueOf(value)
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Map:
		kv := reflect.ValueOf(key)
		if !kv.IsValid() || !kv.Type().AssignableTo(v.Type().Key()) {
			return nil
		}
		item := v.MapIndex(kv)
		if !item.IsValid() {
			return nil
		}
		return item.Interface()
	case reflect.Struct:
		name, ok := key.(string)
		if !ok {
			return nil
		}
		field := v.FieldByName(name)
		if !field.IsValid() || !field.CanInterface() {
			return nil
		}
		return field.Interface()
	case reflect.Slice, reflect.Array:
		index, ok := key.(int)
		if !ok || index < 0 || index >= v.Len() {
			return nil
		}
		return v.Index(index).Interface()
	default:
		return nil
	}
}

// Unwrap 将元组值重新展开为逐个事件，非元组值原样转发
func (o *Observable) Unwrap() *Observable {
	return NewObservable(func(observer *Observer) *Subscription {
		return o.subscribe(NewObserver(func(value interface{}) {
			tuple, ok := value.([]interface{})
			if !ok {
				observer.OnNext(value)
				return
			}
			for _, item := range tuple {
				if observer.Stopped() {
					return
				}
				observer.OnNext(item)
			}
		}, observer.OnError, observer.OnComplete))
	})
}
