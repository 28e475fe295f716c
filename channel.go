// Channel bridges for rxlite
// 流与Go信道之间的桥接
package rxlite

// ============================================================================
// 物化事件
// ============================================================================

// EmissionKind 物化事件的种类
type EmissionKind int

const (
	// EmissionNext 值事件
	EmissionNext EmissionKind = iota
	// EmissionError 错误事件
	EmissionError
	// EmissionComplete 完成事件
	EmissionComplete
)

// Emission 物化的流事件，用于跨信道传递
type Emission struct {
	Kind  EmissionKind
	Value interface{}
	Err   error
}

// ============================================================================
// 信道桥接
// ============================================================================

// FromChannel 将Go信道桥接为Observable
// 在订阅方goroutine上同步消费信道，信道关闭即完成
func FromChannel(ch <-chan interface{}) *Observable {
	if ch == nil {
		panic(NewArgumentError("FromChannel", "channel is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		for value := range ch {
			if observer.Stopped() {
				break
			}
			observer.OnNext(value)
		}
		observer.OnComplete()
		return nil
	})
}

// FromEmissionChannel 将物化事件信道桥接为Observable
// 读到错误或完成事件即终止，不再继续消费；信道关闭视为完成
func FromEmissionChannel(ch <-chan Emission) *Observable {
	if ch == nil {
		panic(NewArgumentError("FromEmissionChannel", "channel is required"))
	}
	return NewObservable(func(observer *Observer) *Subscription {
		for emission := range ch {
			if observer.Stopped() {
				break
			}
			switch emission.Kind {
			case EmissionNext:
				observer.OnNext(emission.Value)
			case EmissionError:
				observer.OnError(emission.Err)
				return nil
			case EmissionComplete:
				observer.OnComplete()
				return nil
			}
		}
		observer.OnComplete()
		return nil
	})
}

// ToChannel 订阅源并把物化事件写入带缓冲的信道
// 终止事件写入后信道被关闭。订阅在调用方goroutine上同步发生，
// 同步完成的源需要配足缓冲，否则写入会阻塞
func (o *Observable) ToChannel(buffer int) <-chan Emission {
	if buffer < 0 {
		panic(NewArgumentError("ToChannel", "buffer must not be negative"))
	}
	ch := make(chan Emission, buffer)
	o.SubscribeWithCallbacks(func(value interface{}) {
		ch <- Emission{Kind: EmissionNext, Value: value}
	}, func(err error) {
		ch <- Emission{Kind: EmissionError, Err: err}
		close(ch)
	}, func() {
		ch <- Emission{Kind: EmissionComplete}
		close(ch)
	})
	return ch
}
