package engine

import (
	"context"
	"sync"
	"sync/atomic"
)

// Cancellation is a write-once stop flag shared by one pipeline run.
// Workers poll Cancelled between chunks; blocking waits select on Done.
type Cancellation struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

func NewCancellation() *Cancellation {
	return &Cancellation{done: make(chan struct{})}
}

// Cancel sets the flag. It reports true only for the call that set it.
func (c *Cancellation) Cancel() bool {
	first := false
	c.once.Do(func() {
		c.flag.Store(true)
		close(c.done)
		first = true
	})
	return first
}

func (c *Cancellation) Cancelled() bool {
	return c.flag.Load()
}

func (c *Cancellation) Done() <-chan struct{} {
	return c.done
}

// Context derives a context that ends when parent ends or the flag is set.
// In-flight requests bound to it unwind as soon as Cancel is called.
func (c *Cancellation) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-c.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
