// Subject tests for rxlite
// 主题测试：多播扇出、终止语义与三种重放策略
package rxlite

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

// ============================================================================
// Subject 多播
// ============================================================================

func TestSubjectFanout(t *testing.T) {
	t.Run("推送扇出给全部观察者", func(t *testing.T) {
		subject := NewSubject()
		first := newRecorder()
		second := newRecorder()
		first.subscribe(subject.Observable)
		second.subscribe(subject.Observable)

		subject.OnNext(1)
		subject.OnNext(2)

		assert.Equal(t, []interface{}{1, 2}, first.values)
		assert.Equal(t, []interface{}{1, 2}, second.values)
	})

	t.Run("按注册逆序递送", func(t *testing.T) {
		subject := NewSubject()
		var order []string
		subject.Subscribe(NewObserver(func(interface{}) { order = append(order, "first") }, nil, nil))
		subject.Subscribe(NewObserver(func(interface{}) { order = append(order, "second") }, nil, nil))

		subject.OnNext("x")
		assert.Equal(t, []string{"second", "first"}, order)
	})

	t.Run("订阅前的值不补发", func(t *testing.T) {
		subject := NewSubject()
		subject.OnNext("missed")

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		subject.OnNext("seen")

		assert.Equal(t, []interface{}{"seen"}, rec.values)
	})

	t.Run("退订后不再接收", func(t *testing.T) {
		subject := NewSubject()
		rec := newRecorder()
		sub := rec.subscribe(subject.Observable)
		assert.True(t, subject.HasObservers())
		assert.Equal(t, 1, subject.ObserverCount())

		subject.OnNext(1)
		sub.Unsubscribe()
		subject.OnNext(2)

		assert.Equal(t, []interface{}{1}, rec.values)
		assert.False(t, subject.HasObservers())
	})

	t.Run("递送中自我移除不影响本轮其余观察者", func(t *testing.T) {
		subject := NewSubject()
		other := newRecorder()
		other.subscribe(subject.Observable)

		var selfSub *Subscription
		seen := 0
		selfSub = subject.Observable.Subscribe(NewObserver(func(interface{}) {
			seen++
			selfSub.Unsubscribe()
		}, nil, nil))

		subject.OnNext("a")
		subject.OnNext("b")

		assert.Equal(t, 1, seen)
		assert.Equal(t, []interface{}{"a", "b"}, other.values)
	})

	t.Run("主题可作为下游订阅者", func(t *testing.T) {
		subject := NewSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		Of(1, 2, 3).Subscribe(subject)

		assert.Equal(t, []interface{}{1, 2, 3}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("操作符表面直接可用", func(t *testing.T) {
		subject := NewSubject()
		rec := newRecorder()
		rec.subscribe(subject.Map(func(v interface{}) (interface{}, error) {
			return v.(int) * 10, nil
		}))

		subject.OnNext(4)
		assert.Equal(t, []interface{}{40}, rec.values)
	})
}

func TestSubjectTerminal(t *testing.T) {
	t.Run("完成只生效一次并冻结主题", func(t *testing.T) {
		subject := NewSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		subject.OnNext(1)
		subject.OnComplete()
		subject.OnNext(2)
		subject.OnComplete()
		subject.OnError(errors.New("late"))

		assert.Equal(t, []interface{}{1}, rec.values)
		assert.Equal(t, 1, rec.completes)
		assert.Nil(t, rec.err())
		assert.True(t, subject.Stopped())
	})

	t.Run("错误终止广播给全部观察者", func(t *testing.T) {
		subject := NewSubject()
		boom := errors.New("boom")
		first := newRecorder()
		second := newRecorder()
		first.subscribe(subject.Observable)
		second.subscribe(subject.Observable)

		subject.OnError(boom)

		assert.Equal(t, boom, first.err())
		assert.Equal(t, boom, second.err())
	})

	t.Run("终止后的订阅者收不到任何事件", func(t *testing.T) {
		subject := NewSubject()
		subject.OnNext(1)
		subject.OnComplete()

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		subject.OnNext(2)

		assert.Empty(t, rec.values)
		assert.False(t, rec.completed())
	})
}

func TestSubjectConcurrentPush(t *testing.T) {
	subject := NewSubject()
	var count int64
	subject.Subscribe(NewObserver(func(interface{}) {
		atomic.AddInt64(&count, 1)
	}, nil, nil))

	var g errgroup.Group
	for i := 0; i < 4; i++ {
		g.Go(func() error {
			for j := 0; j < 100; j++ {
				subject.OnNext(j)
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())
	subject.OnComplete()

	assert.Equal(t, int64(400), atomic.LoadInt64(&count))
}

// ============================================================================
// AsyncSubject
// ============================================================================

func TestAsyncSubject(t *testing.T) {
	t.Run("完成时只发射最后一个值", func(t *testing.T) {
		subject := NewAsyncSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		subject.OnNext(1)
		subject.OnNext(2)
		subject.OnNext(3)
		assert.Empty(t, rec.values, "完成前不发射")

		subject.OnComplete()
		assert.Equal(t, []interface{}{3}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("无值完成只发完成", func(t *testing.T) {
		subject := NewAsyncSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		subject.OnComplete()
		assert.Empty(t, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("错误终止不发值", func(t *testing.T) {
		subject := NewAsyncSubject()
		boom := errors.New("boom")
		rec := newRecorder()
		rec.subscribe(subject.Observable)

		subject.OnNext(1)
		subject.OnError(boom)
		assert.Empty(t, rec.values)
		assert.Equal(t, boom, rec.err())
	})

	t.Run("终止后订阅立即重放结果", func(t *testing.T) {
		subject := NewAsyncSubject()
		subject.OnNext("final")
		subject.OnComplete()

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Equal(t, []interface{}{"final"}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("错误终止后订阅重放错误", func(t *testing.T) {
		subject := NewAsyncSubject()
		boom := errors.New("boom")
		subject.OnError(boom)

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Equal(t, boom, rec.err())
	})
}

// ============================================================================
// BehaviorSubject
// ============================================================================

func TestBehaviorSubject(t *testing.T) {
	t.Run("初始值立即重放", func(t *testing.T) {
		subject := NewBehaviorSubject("seed")
		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Equal(t, []interface{}{"seed"}, rec.values)
	})

	t.Run("无初始值时不重放", func(t *testing.T) {
		subject := NewBehaviorSubject()
		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Empty(t, rec.values)

		_, ok := subject.Value()
		assert.False(t, ok)
	})

	t.Run("新订阅者先收当前值再跟流", func(t *testing.T) {
		subject := NewBehaviorSubject()
		subject.OnNext(1)

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		subject.OnNext(2)

		assert.Equal(t, []interface{}{1, 2}, rec.values)
		value, ok := subject.Value()
		assert.True(t, ok)
		assert.Equal(t, 2, value)
	})

	t.Run("终止后值被冻结", func(t *testing.T) {
		subject := NewBehaviorSubject()
		subject.OnNext(1)
		subject.OnComplete()
		subject.OnNext(9)

		value, _ := subject.Value()
		assert.Equal(t, 1, value)
	})
}

// ============================================================================
// ReplaySubject
// ============================================================================

func TestReplaySubject(t *testing.T) {
	t.Run("无界缓冲重放全部历史", func(t *testing.T) {
		subject := NewReplaySubject()
		subject.OnNext(1)
		subject.OnNext(2)
		subject.OnNext(3)

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Equal(t, []interface{}{1, 2, 3}, rec.values)
		assert.Equal(t, 3, subject.BufferedCount())
	})

	t.Run("有界缓冲只留最近N个", func(t *testing.T) {
		subject := NewReplaySubject(2)
		subject.OnNext(1)
		subject.OnNext(2)
		subject.OnNext(3)

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		assert.Equal(t, []interface{}{2, 3}, rec.values)
		assert.Equal(t, 2, subject.BufferedCount())
	})

	t.Run("先重放后跟流", func(t *testing.T) {
		subject := NewReplaySubject()
		subject.OnNext("old")

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		subject.OnNext("new")

		assert.Equal(t, []interface{}{"old", "new"}, rec.values)
	})

	t.Run("非法缓冲大小拒绝", func(t *testing.T) {
		assert.Panics(t, func() { NewReplaySubject(0) })
		assert.Panics(t, func() { NewReplaySubject(-1) })
	})
}

func TestReplaySubjectBoundProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("late subscriber replays exactly the most recent values within the bound", prop.ForAll(
		func(values []int, bound int) bool {
			subject := NewReplaySubject(bound)
			for _, v := range values {
				subject.OnNext(v)
			}

			rec := newRecorder()
			rec.subscribe(subject.Observable)

			start := len(values) - bound
			if start < 0 {
				start = 0
			}
			expected := values[start:]
			if len(rec.values) != len(expected) {
				t.Logf("replayed %d values, expected %d", len(rec.values), len(expected))
				return false
			}
			for i, v := range expected {
				if rec.values[i] != v {
					t.Logf("replay mismatch at %d: got %v, expected %v", i, rec.values[i], v)
					return false
				}
			}
			return subject.BufferedCount() == len(expected)
		},
		gen.SliceOf(gen.IntRange(-50, 50)),
		gen.IntRange(1, 8),
	))

	properties.TestingRun(t)
}
