package rxlite

import (
	"fmt"
	"time"
)

// ============================================================================
// 序列打包与通用小函数
// ============================================================================

// Pack 将变长参数打包为一个元组
// 元组自带长度，末尾的nil同样被保留
func Pack(values ...interface{}) []interface{} {
	packed := make([]interface{}, len(values))
	copy(packed, values)
	return packed
}

// Unpack 将元组展开为值切片，非元组值按单元素处理
func Unpack(value interface{}) []interface{} {
	if tuple, ok := value.([]interface{}); ok {
		return tuple
	}
	return []interface{}{value}
}

// packValues 按事件模型收纳变长值：单个值保持原样，多个值打包成元组
func packValues(values []interface{}) interface{} {
	switch len(values) {
	case 0:
		return nil
	case 1:
		return values[0]
	default:
		return Pack(values...)
	}
}

// Identity 恒等函数
func Identity(value interface{}) interface{} {
	return value
}

// Constant 返回恒定值的函数
func Constant(value interface{}) func() interface{} {
	return func() interface{} { return value }
}

// ConstantDuration 返回恒定时长的函数，用于按事件重算延迟的场合
func ConstantDuration(d time.Duration) func() time.Duration {
	return func() time.Duration { return d }
}

// Noop 空操作
func Noop() {}

// Eq 等值比较；不可比较的类型不会panic，而是判为不等
func Eq(a, b interface{}) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}

// ============================================================================
// 守护执行
// ============================================================================
// 操作符运行用户提供的谓词、变换与累积函数时统一经过以下守护包装，
// 用户代码中的panic被规范化为error，由调用方转交给观察者的OnError

// recoveredError 将recover到的值规范化为error
func recoveredError(r interface{}) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("rxlite: callback panic: %v", r)
}

// tryCall 守护执行无参动作
func tryCall(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()
	fn()
	return nil
}

// tryTransform 守护执行变换函数
func tryTransform(fn Transformer, value interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, recoveredError(r)
		}
	}()
	return fn(value)
}

// tryPredicate 守护执行谓词
func tryPredicate(fn Predicate, value interface{}) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, recoveredError(r)
		}
	}()
	return fn(value), nil
}

// tryReduce 守护执行累积函数
func tryReduce(fn Reducer, accumulator, current interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, recoveredError(r)
		}
	}()
	return fn(accumulator, current), nil
}

// tryCompare 守护执行比较函数
func tryCompare(fn Comparator, a, b interface{}) (equal bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			equal, err = false, recoveredError(r)
		}
	}()
	return fn(a, b), nil
}

// tryCombine 守护执行组合函数
func tryCombine(fn Combiner, values []interface{}) (result interface{}, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, recoveredError(r)
		}
	}()
	return fn(values...), nil
}
