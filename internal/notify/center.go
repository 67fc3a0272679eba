package notify

import (
	"sync"
	"time"
)

// DefaultDuration is used when a caller passes a non-positive duration.
const DefaultDuration = 3 * time.Second

// Center displays at most one transient message at a time. A newer Show
// replaces the current message and re-arms expiry; the replaced message's
// timer can never clear the newer one. There is no queue.
type Center struct {
	mu       sync.Mutex
	message  string
	seq      uint64
	timer    *time.Timer
	onChange func(message string)
}

// NewCenter creates an empty Center. onChange, when non-nil, is invoked with
// the new message on every Show and with "" when a message expires; it lets
// a non-reactive front end render transitions.
func NewCenter(onChange func(message string)) *Center {
	return &Center{onChange: onChange}
}

// Show replaces any displayed message with msg and arms a timer to clear it
// after d.
func (c *Center) Show(msg string, d time.Duration) {
	if d <= 0 {
		d = DefaultDuration
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.seq++
	mine := c.seq
	c.message = msg
	c.timer = time.AfterFunc(d, func() { c.expire(mine) })
	cb := c.onChange
	c.mu.Unlock()

	if cb != nil {
		cb(msg)
	}
}

// expire clears the message armed at sequence mine. A Show that happened
// after arming bumps the sequence, making the stale clear a no-op.
func (c *Center) expire(mine uint64) {
	c.mu.Lock()
	if c.seq != mine {
		c.mu.Unlock()
		return
	}
	c.message = ""
	cb := c.onChange
	c.mu.Unlock()

	if cb != nil {
		cb("")
	}
}

// Current returns the displayed message, or "" when nothing is displayed.
func (c *Center) Current() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// Close stops any pending expiry timer.
func (c *Center) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
