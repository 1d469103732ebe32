package progress

import "sync/atomic"

// Overall counts finished jobs out of the run's total. Advance is the only
// mutator and never moves the counter past Total.
type Overall struct {
	done  atomic.Int64
	total int64
}

func NewOverall(total int) *Overall {
	return &Overall{total: int64(total)}
}

// Advance atomically adds one and returns the new value. ok is false when the
// counter was already at Total.
func (o *Overall) Advance() (done int64, ok bool) {
	for {
		cur := o.done.Load()
		if cur >= o.total {
			return cur, false
		}
		if o.done.CompareAndSwap(cur, cur+1) {
			return cur + 1, true
		}
	}
}

func (o *Overall) Done() int64  { return o.done.Load() }
func (o *Overall) Total() int64 { return o.total }
