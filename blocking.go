// Blocking consumption helpers for rxlite
// 阻塞式消费：在当前goroutine上等待异步流的值或终止事件，经context取消
package rxlite

import (
	"context"
	"errors"
	"sync"
)

// ErrEmpty 流在发出任何值之前就完成了
var ErrEmpty = errors.New("rxlite: no elements in stream")

// blockingResult 单槽结果，首个写入者生效
type blockingResult struct {
	value    interface{}
	hasValue bool
	err      error
}

func resolveOnce(done chan blockingResult) func(blockingResult) {
	return func(r blockingResult) {
		select {
		case done <- r:
		default:
		}
	}
}

// BlockingFirst 阻塞等待第一个值
// 空流返回ErrEmpty；context取消时返回ctx.Err()并退订上游
func (o *Observable) BlockingFirst(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		panic(NewArgumentError("BlockingFirst", "context is required"))
	}
	done := make(chan blockingResult, 1)
	resolve := resolveOnce(done)
	sub := o.First().SubscribeWithCallbacks(func(value interface{}) {
		resolve(blockingResult{value: value, hasValue: true})
	}, func(err error) {
		resolve(blockingResult{err: err})
	}, func() {
		resolve(blockingResult{err: ErrEmpty})
	})
	defer sub.Unsubscribe()

	select {
	case r := <-done:
		if r.hasValue {
			return r.value, nil
		}
		return nil, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BlockingLast 阻塞等待最后一个值，完成时才返回
// 空流返回ErrEmpty；context取消时返回ctx.Err()并退订上游
func (o *Observable) BlockingLast(ctx context.Context) (interface{}, error) {
	if ctx == nil {
		panic(NewArgumentError("BlockingLast", "context is required"))
	}
	done := make(chan blockingResult, 1)
	resolve := resolveOnce(done)
	sub := o.Last().SubscribeWithCallbacks(func(value interface{}) {
		resolve(blockingResult{value: value, hasValue: true})
	}, func(err error) {
		resolve(blockingResult{err: err})
	}, func() {
		resolve(blockingResult{err: ErrEmpty})
	})
	defer sub.Unsubscribe()

	select {
	case r := <-done:
		if r.hasValue {
			return r.value, nil
		}
		return nil, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BlockingToSlice 阻塞收集全部值直至终止
// 流以错误终止时返回已收集的值和该错误；context取消时丢弃已收集的值
func (o *Observable) BlockingToSlice(ctx context.Context) ([]interface{}, error) {
	if ctx == nil {
		panic(NewArgumentError("BlockingToSlice", "context is required"))
	}
	var (
		mu     sync.Mutex
		values []interface{}
	)
	done := make(chan blockingResult, 1)
	resolve := resolveOnce(done)
	sub := o.SubscribeWithCallbacks(func(value interface{}) {
		mu.Lock()
		values = append(values, value)
		mu.Unlock()
	}, func(err error) {
		resolve(blockingResult{err: err})
	}, func() {
		resolve(blockingResult{})
	})
	defer sub.Unsubscribe()

	select {
	case r := <-done:
		mu.Lock()
		collected := values
		mu.Unlock()
		return collected, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// BlockingWait 阻塞等待流终止，忽略所有值
// 返回流的终止错误；context取消时返回ctx.Err()并退订上游
func (o *Observable) BlockingWait(ctx context.Context) error {
	if ctx == nil {
		panic(NewArgumentError("BlockingWait", "context is required"))
	}
	done := make(chan blockingResult, 1)
	resolve := resolveOnce(done)
	sub := o.SubscribeWithCallbacks(nil, func(err error) {
		resolve(blockingResult{err: err})
	}, func() {
		resolve(blockingResult{})
	})
	defer sub.Unsubscribe()

	select {
	case r := <-done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
