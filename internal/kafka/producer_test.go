package kafka

import (
	"context"
	"testing"
)

// The shutdown path runs Close before cancelling the context; both must be
// able to fire in either order without the loop closing the inbox twice.
func TestProducerShutdownOrdering(t *testing.T) {
	t.Run("close then cancel", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			p := NewProducer([]string{"127.0.0.1:9092"}, "market.order.created", 8)
			ctx, cancel := context.WithCancel(context.Background())
			p.Start(ctx)
			p.Close()
			cancel()
			p.WaitClosed()
		}
	})

	t.Run("cancel then close", func(t *testing.T) {
		for i := 0; i < 200; i++ {
			p := NewProducer([]string{"127.0.0.1:9092"}, "market.order.created", 8)
			ctx, cancel := context.WithCancel(context.Background())
			p.Start(ctx)
			cancel()
			p.Close()
			p.WaitClosed()
		}
	})
}

func TestProducerCloseIdempotent(t *testing.T) {
	p := NewProducer([]string{"127.0.0.1:9092"}, "market.order.created", 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	p.Close()
	p.Close()
	p.WaitClosed()
}
