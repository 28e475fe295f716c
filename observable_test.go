// Observable core tests for rxlite
// Observable惰性、订阅入口与调度操作符测试
package rxlite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// 惰性与订阅
// ============================================================================

func TestObservableLaziness(t *testing.T) {
	t.Run("订阅前不执行生产逻辑", func(t *testing.T) {
		invocations := 0
		source := NewObservable(func(observer *Observer) *Subscription {
			invocations++
			observer.OnNext("hello")
			observer.OnComplete()
			return nil
		})

		mapped := source.Map(func(value interface{}) (interface{}, error) {
			return value, nil
		})
		assert.Equal(t, 0, invocations)

		rec := newRecorder()
		rec.subscribe(mapped)
		assert.Equal(t, 1, invocations)

		rec.subscribe(mapped)
		assert.Equal(t, 2, invocations, "每次订阅都应重新执行生产逻辑")
	})

	t.Run("nil订阅函数拒绝", func(t *testing.T) {
		assert.Panics(t, func() { NewObservable(nil) })
	})

	t.Run("订阅函数返回nil时规范化", func(t *testing.T) {
		source := NewObservable(func(observer *Observer) *Subscription {
			observer.OnComplete()
			return nil
		})
		sub := source.SubscribeWithCallbacks(nil, nil, nil)
		require.NotNil(t, sub)
		assert.NotPanics(t, sub.Unsubscribe)
	})
}

func TestObservableSubscribe(t *testing.T) {
	t.Run("直接订阅Observer", func(t *testing.T) {
		rec := newRecorder()
		Of(1, 2, 3).Subscribe(rec.observer())

		assert.Equal(t, []interface{}{1, 2, 3}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("已终止的Observer不再接收", func(t *testing.T) {
		rec := newRecorder()
		obs := rec.observer()
		obs.OnComplete()

		Of(1, 2, 3).Subscribe(obs)
		assert.Empty(t, rec.values)
		assert.Equal(t, 1, rec.completes)
	})

	t.Run("Subject作为Subscriber接入", func(t *testing.T) {
		subject := NewSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		Of("a", "b").Subscribe(subject)

		assert.Equal(t, []interface{}{"a", "b"}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("未观察的错误以panic抛出", func(t *testing.T) {
		boom := errors.New("boom")
		assert.PanicsWithValue(t, boom, func() {
			Throw(boom).SubscribeWithCallbacks(nil, nil, nil)
		})
	})
}

func TestToSlice(t *testing.T) {
	t.Run("收集全部值", func(t *testing.T) {
		values, err := FromRange(1, 4).ToSlice()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{1, 2, 3, 4}, values)
	})

	t.Run("错误终止时返回已收集的值", func(t *testing.T) {
		boom := errors.New("boom")
		values, err := Of(1, 2).Concat(Throw(boom)).ToSlice()
		assert.Equal(t, boom, err)
		assert.Equal(t, []interface{}{1, 2}, values)
	})

	t.Run("空源", func(t *testing.T) {
		values, err := Empty().ToSlice()
		require.NoError(t, err)
		assert.Empty(t, values)
	})
}

// ============================================================================
// 调度操作符
// ============================================================================

func TestSubscribeOn(t *testing.T) {
	t.Run("订阅动作交由调度器", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		rec := newRecorder()
		rec.subscribe(Of(1, 2).SubscribeOn(scheduler))

		assert.Empty(t, rec.values, "Update之前不应有事件")

		require.NoError(t, scheduler.Update(0))
		assert.Equal(t, []interface{}{1, 2}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("退订后不再订阅上游", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		rec := newRecorder()
		sub := rec.subscribe(Of(1).SubscribeOn(scheduler))
		sub.Unsubscribe()

		require.NoError(t, scheduler.Update(0))
		assert.Empty(t, rec.values)
		assert.False(t, rec.completed())
	})
}

func TestObserveOn(t *testing.T) {
	t.Run("事件递送交由调度器", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		rec := newRecorder()
		rec.subscribe(Of("x", "y").ObserveOn(scheduler))

		assert.Empty(t, rec.values)

		require.NoError(t, scheduler.Update(0))
		assert.Equal(t, []interface{}{"x", "y"}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("退订丢弃未递送的事件", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		rec := newRecorder()
		sub := rec.subscribe(Of("x").ObserveOn(scheduler))
		sub.Unsubscribe()

		require.NoError(t, scheduler.Update(0))
		assert.Empty(t, rec.values)
		assert.False(t, rec.completed())
	})
}
