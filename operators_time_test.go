// Time-based operator tests for rxlite
// 时间操作符测试，由协作式调度器的虚拟时钟驱动
package rxlite

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestDebounce(t *testing.T) {
	t.Run("静默期内只留最后一个值", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Debounce(10*time.Millisecond, scheduler))

		source.OnNext(1)
		source.OnNext(2)
		source.OnNext(3)
		assert.Empty(t, rec.values)

		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Equal(t, []interface{}{3}, rec.values)
	})

	t.Run("静默期外的值各自发射", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Debounce(10*time.Millisecond, scheduler))

		source.OnNext("a")
		require.NoError(t, scheduler.Update(10*time.Millisecond))
		source.OnNext("b")
		require.NoError(t, scheduler.Update(10*time.Millisecond))

		assert.Equal(t, []interface{}{"a", "b"}, rec.values)
	})

	t.Run("终止事件不顶替待发的值", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Debounce(10*time.Millisecond, scheduler))

		source.OnNext(1)
		source.OnComplete()
		require.NoError(t, scheduler.Update(10*time.Millisecond))

		assert.Equal(t, []interface{}{1}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("新值顶替待发的旧值", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Debounce(10*time.Millisecond, scheduler))

		source.OnNext(1)
		source.OnNext(2)
		source.OnComplete()
		require.NoError(t, scheduler.Update(10*time.Millisecond))

		assert.Equal(t, []interface{}{2}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("退订取消全部待发事件", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		sub := rec.subscribe(source.Debounce(10*time.Millisecond, scheduler))

		source.OnNext(1)
		sub.Unsubscribe()
		require.NoError(t, scheduler.Update(10*time.Millisecond))

		assert.Empty(t, rec.values)
		assert.False(t, source.HasObservers())
	})
}

func TestDelay(t *testing.T) {
	t.Run("全部事件整体延后", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Delay(10*time.Millisecond, scheduler))

		source.OnNext(1)
		source.OnNext(2)
		source.OnComplete()
		assert.Empty(t, rec.values)
		assert.False(t, rec.completed())

		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Equal(t, []interface{}{1, 2}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("错误同样延后", func(t *testing.T) {
		boom := errors.New("boom")
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Delay(10*time.Millisecond, scheduler))

		source.OnNext(1)
		source.OnError(boom)
		assert.Nil(t, rec.err())

		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Equal(t, []interface{}{1}, rec.values)
		assert.Equal(t, boom, rec.err())
	})

	t.Run("退订丢弃未送达事件", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		sub := rec.subscribe(source.Delay(10*time.Millisecond, scheduler))

		source.OnNext(1)
		sub.Unsubscribe()
		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Empty(t, rec.values)
	})
}

func TestDelayFunc(t *testing.T) {
	t.Run("延迟按事件重新计算", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		calls := 0
		rec := newRecorder()
		rec.subscribe(source.DelayFunc(func() time.Duration {
			calls++
			return time.Duration(calls) * 10 * time.Millisecond
		}, scheduler))

		source.OnNext("a")
		source.OnNext("b")

		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Equal(t, []interface{}{"a"}, rec.values)
		require.NoError(t, scheduler.Update(10*time.Millisecond))
		assert.Equal(t, []interface{}{"a", "b"}, rec.values)
	})

	t.Run("延迟函数panic立即以错误终止", func(t *testing.T) {
		scheduler := NewCooperativeScheduler()
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.DelayFunc(func() time.Duration {
			panic("delay exploded")
		}, scheduler))

		source.OnNext(1)
		assert.ErrorContains(t, rec.err(), "delay exploded")
	})
}

func TestSample(t *testing.T) {
	t.Run("采样时重发最新值", func(t *testing.T) {
		source := NewSubject()
		sampler := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Sample(sampler.Observable))

		sampler.OnNext("tick")
		assert.Empty(t, rec.values, "尚无值时采样静默")

		source.OnNext(1)
		source.OnNext(2)
		sampler.OnNext("tick")
		sampler.OnNext("tick")

		assert.Equal(t, []interface{}{2, 2}, rec.values)
	})

	t.Run("采样源完成同样结束下游", func(t *testing.T) {
		source := NewSubject()
		sampler := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Sample(sampler.Observable))

		source.OnNext(1)
		sampler.OnComplete()
		assert.True(t, rec.completed())
	})

	t.Run("源错误立即转发", func(t *testing.T) {
		boom := errors.New("boom")
		source := NewSubject()
		sampler := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Sample(sampler.Observable))

		source.OnError(boom)
		assert.Equal(t, boom, rec.err())
	})
}

func TestBuffer(t *testing.T) {
	t.Run("攒满发元组且完成时冲刷", func(t *testing.T) {
		values, err := FromRange(1, 5).Buffer(2).ToSlice()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{
			[]interface{}{1, 2},
			[]interface{}{3, 4},
			[]interface{}{5},
		}, values)
	})

	t.Run("错误丢弃缓冲", func(t *testing.T) {
		boom := errors.New("boom")
		source := NewSubject()
		rec := newRecorder()
		rec.subscribe(source.Buffer(3))

		source.OnNext(1)
		source.OnError(boom)

		assert.Empty(t, rec.values)
		assert.Equal(t, boom, rec.err())
	})

	t.Run("非法大小拒绝", func(t *testing.T) {
		assert.Panics(t, func() { Of(1).Buffer(0) })
	})
}

func TestWindow(t *testing.T) {
	t.Run("滑动窗口逐值发射", func(t *testing.T) {
		values, err := FromRange(1, 4).Window(2).ToSlice()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{
			[]interface{}{1, 2},
			[]interface{}{2, 3},
			[]interface{}{3, 4},
		}, values)
	})

	t.Run("完成时不冲刷未满窗口", func(t *testing.T) {
		values, err := Of(1).Window(2).ToSlice()
		require.NoError(t, err)
		assert.Empty(t, values)
	})

	t.Run("非法大小拒绝", func(t *testing.T) {
		assert.Panics(t, func() { Of(1).Window(-1) })
	})
}

func TestThrottle(t *testing.T) {
	t.Run("配额不足时丢弃值", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 2)
		values, err := FromRange(1, 5).Throttle(limiter).ToSlice()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{1, 2}, values)
	})

	t.Run("配额宽裕时全部放行", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Inf, 1)
		values, err := FromRange(1, 5).Throttle(limiter).ToSlice()
		require.NoError(t, err)
		assert.Equal(t, []interface{}{1, 2, 3, 4, 5}, values)
	})

	t.Run("终止事件不受限流影响", func(t *testing.T) {
		limiter := rate.NewLimiter(rate.Every(time.Hour), 1)
		boom := errors.New("boom")
		rec := newRecorder()
		rec.subscribe(Of(1, 2).Concat(Throw(boom)).Throttle(limiter))

		assert.Equal(t, []interface{}{1}, rec.values)
		assert.Equal(t, boom, rec.err())
	})

	t.Run("nil限流器拒绝", func(t *testing.T) {
		assert.Panics(t, func() { Of(1).Throttle(nil) })
	})
}
