package live

import "sync"

// Subscription delivers snapshots on C. Each snapshot replaces the previous
// one; an undelivered snapshot is dropped in favour of a newer one. C is
// closed once the subscription is cancelled.
type Subscription[T any] struct {
	C <-chan T

	ch     chan T
	last   uint64
	once   sync.Once
	cancel func()
}

func newSubscription[T any]() *Subscription[T] {
	ch := make(chan T, 1)
	return &Subscription[T]{C: ch, ch: ch}
}

// Cancel stops delivery and closes C. It is safe to call more than once.
func (s *Subscription[T]) Cancel() {
	s.once.Do(s.cancel)
}

// offer must be called with the hub lock held. Snapshots loaded under an
// older ticket than the last delivered one are ignored.
func (s *Subscription[T]) offer(seq uint64, v T) {
	if seq <= s.last {
		return
	}
	s.last = seq

	select {
	case s.ch <- v:
		return
	default:
	}
	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}
