// ConnectableObservable tests for rxlite
// 可连接多播测试
package rxlite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnectable(t *testing.T) {
	t.Run("连接前不订阅上游", func(t *testing.T) {
		subscriptions := 0
		source := Defer(func() *Observable {
			subscriptions++
			return Of(1, 2)
		})

		connectable := source.Publish()
		rec := newRecorder()
		rec.subscribe(connectable.Observable)
		assert.Equal(t, 0, subscriptions)
		assert.Empty(t, rec.values)

		connectable.Connect()
		assert.Equal(t, 1, subscriptions)
		assert.Equal(t, []interface{}{1, 2}, rec.values)
		assert.True(t, rec.completed())
	})

	t.Run("多个订阅者共享一次上游订阅", func(t *testing.T) {
		subscriptions := 0
		source := Defer(func() *Observable {
			subscriptions++
			return Of("shared")
		})

		connectable := source.Publish()
		first := newRecorder()
		second := newRecorder()
		first.subscribe(connectable.Observable)
		second.subscribe(connectable.Observable)
		connectable.Connect()

		assert.Equal(t, 1, subscriptions)
		assert.Equal(t, []interface{}{"shared"}, first.values)
		assert.Equal(t, []interface{}{"shared"}, second.values)
	})

	t.Run("连接存活期间重复Connect幂等", func(t *testing.T) {
		subscriptions := 0
		gate := NewSubject()
		source := Defer(func() *Observable {
			subscriptions++
			return gate.Observable
		})

		connectable := source.Publish()
		assert.False(t, connectable.IsConnected())

		first := connectable.Connect()
		second := connectable.Connect()
		assert.Equal(t, 1, subscriptions)
		assert.Same(t, first, second)
		assert.True(t, connectable.IsConnected())

		first.Unsubscribe()
		assert.False(t, connectable.IsConnected())
	})

	t.Run("经指定Subject多播", func(t *testing.T) {
		subject := NewSubject()
		connectable := Of(1).Multicast(subject)

		rec := newRecorder()
		rec.subscribe(subject.Observable)
		connectable.Connect()

		assert.Equal(t, []interface{}{1}, rec.values)
	})

	t.Run("nil主题拒绝", func(t *testing.T) {
		assert.Panics(t, func() { Of(1).Multicast(nil) })
	})
}

func TestRefCount(t *testing.T) {
	t.Run("首个订阅者触发连接", func(t *testing.T) {
		subscriptions := 0
		gate := NewSubject()
		source := Defer(func() *Observable {
			subscriptions++
			return gate.Observable
		})
		shared := source.Publish().RefCount()

		first := newRecorder()
		subFirst := first.subscribe(shared)
		assert.Equal(t, 1, subscriptions)

		second := newRecorder()
		subSecond := second.subscribe(shared)
		assert.Equal(t, 1, subscriptions, "后续订阅者复用连接")

		gate.OnNext("x")
		assert.Equal(t, []interface{}{"x"}, first.values)
		assert.Equal(t, []interface{}{"x"}, second.values)

		subFirst.Unsubscribe()
		gate.OnNext("y")
		assert.Equal(t, []interface{}{"x"}, first.values)
		assert.Equal(t, []interface{}{"x", "y"}, second.values)

		subSecond.Unsubscribe()
		assert.False(t, gate.HasObservers(), "最后一个订阅者退订即断开上游")
	})

	t.Run("Share等价于Publish加RefCount", func(t *testing.T) {
		subscriptions := 0
		gate := NewSubject()
		source := Defer(func() *Observable {
			subscriptions++
			return gate.Observable
		})
		shared := source.Share()

		rec := newRecorder()
		sub := rec.subscribe(shared)
		assert.Equal(t, 1, subscriptions)

		gate.OnNext(1)
		assert.Equal(t, []interface{}{1}, rec.values)

		sub.Unsubscribe()
		assert.False(t, gate.HasObservers())
	})
}
