package game

import "context"

// Mailbox carries continuations from other goroutines back to the one
// goroutine that owns the game state. Post may be called from anywhere;
// Drain and Await only from the owner.
type Mailbox struct {
	ch chan func()
}

func NewMailbox(size int) *Mailbox {
	if size < 1 {
		size = 16
	}
	return &Mailbox{ch: make(chan func(), size)}
}

// Post queues fn, blocking while the mailbox is full or until ctx ends.
func (m *Mailbox) Post(ctx context.Context, fn func()) bool {
	if m == nil || fn == nil {
		return false
	}
	select {
	case m.ch <- fn:
		return true
	case <-ctx.Done():
		return false
	}
}

// Drain runs every queued continuation without waiting and returns how
// many ran.
func (m *Mailbox) Drain() int {
	if m == nil {
		return 0
	}
	n := 0
	for {
		select {
		case fn := <-m.ch:
			fn()
			n++
		default:
			return n
		}
	}
}

// Await runs the next continuation, waiting for one to arrive.
func (m *Mailbox) Await(ctx context.Context) error {
	if m == nil {
		return context.Canceled
	}
	select {
	case fn := <-m.ch:
		fn()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
