package domain

import "sync/atomic"

// Counter is the interpreter-wide AutoIncrement source. It must be
// atomic: the single Parallel fork point may evaluate AutoIncrement
// concurrently from multiple goroutines.
type Counter struct {
	next atomic.Int64
}

// Next returns the counter's current value and advances it by one.
func (c *Counter) Next() int64 {
	return c.next.Add(1) - 1
}
