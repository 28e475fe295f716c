// ConnectableObservable implementation for rxlite
// 可连接的多播源：订阅注册与上游连接分离
package rxlite

import (
	"sync"
)

// ============================================================================
// ConnectableObservable 实现
// ============================================================================

// ConnectableObservable 冷源的多播外壳
// 订阅者先注册到内部Subject上，Connect后才订阅上游并开始推送
type ConnectableObservable struct {
	*Observable

	source  *Observable
	subject *Subject

	mu       sync.Mutex
	upstream *Subscription
}

// Multicast 经由给定Subject将源多播
func (o *Observable) Multicast(subject *Subject) *ConnectableObservable {
	if subject == nil {
		panic(NewArgumentError("Multicast", "subject is required"))
	}
	return &ConnectableObservable{
		Observable: subject.Observable,
		source:     o,
		subject:    subject,
	}
}

// Publish 经由全新Subject多播
func (o *Observable) Publish() *ConnectableObservable {
	return o.Multicast(NewSubject())
}

// Connect 订阅上游并开始向注册的订阅者推送
// 连接存活期间重复调用幂等，返回既有的上游订阅
func (c *ConnectableObservable) Connect() *Subscription {
	c.mu.Lock()
	if c.upstream != nil && !c.upstream.IsUnsubscribed() {
		existing := c.upstream
		c.mu.Unlock()
		return existing
	}
	c.mu.Unlock()

	sub := c.source.Subscribe(c.subject)
	c.mu.Lock()
	c.upstream = sub
	c.mu.Unlock()
	return sub
}

// IsConnected 是否已连接上游
func (c *ConnectableObservable) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.upstream != nil && !c.upstream.IsUnsubscribed()
}

// RefCount 引用计数自动连接
// 首个订阅者触发连接，最后一个订阅者退订时断开上游
func (c *ConnectableObservable) RefCount() *Observable {
	var (
		mu       sync.Mutex
		count    int
		upstream *Subscription
	)
	return NewObservable(func(observer *Observer) *Subscription {
		inner := c.subscribe(observer)
		mu.Lock()
		count++
		connect := count == 1
		mu.Unlock()
		if connect {
			sub := c.Connect()
			mu.Lock()
			upstream = sub
			mu.Unlock()
		}
		return NewSubscription(func() {
			inner.Unsubscribe()
			mu.Lock()
			count--
			disconnect := count == 0
			current := upstream
			mu.Unlock()
			if disconnect && current != nil {
				current.Unsubscribe()
			}
		})
	})
}

// Share 多播共享，等价于Publish后RefCount
func (o *Observable) Share() *Observable {
	return o.Publish().RefCount()
}
