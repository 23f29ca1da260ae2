package ecs

// Subscription identifies a handler added to a Delegate.
type Subscription uint64

type handler[F any] struct {
	sub Subscription
	fn  F
}

// Delegate is a synchronous multicast list of callbacks. Adding or removing
// handlers while the delegate is firing never disturbs the running dispatch:
// the handler slice is copied on write and a dispatch walks the slice it
// started with.
type Delegate[F any] struct {
	handlers []handler[F]
	next     Subscription
}

// Add registers fn and returns a token for Remove.
func (d *Delegate[F]) Add(fn F) Subscription {
	d.next++
	hs := make([]handler[F], len(d.handlers), len(d.handlers)+1)
	copy(hs, d.handlers)
	d.handlers = append(hs, handler[F]{sub: d.next, fn: fn})
	return d.next
}

// Remove unregisters the handler added under sub. Unknown tokens are ignored.
func (d *Delegate[F]) Remove(sub Subscription) {
	for i, h := range d.handlers {
		if h.sub != sub {
			continue
		}
		hs := make([]handler[F], 0, len(d.handlers)-1)
		hs = append(hs, d.handlers[:i]...)
		d.handlers = append(hs, d.handlers[i+1:]...)
		return
	}
}

// Clear removes every handler.
func (d *Delegate[F]) Clear() { d.handlers = nil }

// Len reports the number of registered handlers.
func (d *Delegate[F]) Len() int { return len(d.handlers) }

func (d *Delegate[F]) each(call func(F)) {
	for _, h := range d.handlers {
		call(h.fn)
	}
}
