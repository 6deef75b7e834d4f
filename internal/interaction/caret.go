package interaction

import (
	"context"
	"sync"
	"time"
)

const (
	// CaretPeriod is how long the caret stays in each of its on/off phases.
	CaretPeriod = 500 * time.Millisecond

	// BlinkInterval is how often an open text session asks for a repaint.
	BlinkInterval = 100 * time.Millisecond
)

// CaretVisible reports the caret phase after elapsed time in a session.
func CaretVisible(elapsed time.Duration) bool {
	if elapsed < 0 {
		return true
	}
	return (elapsed/CaretPeriod)%2 == 0
}

// Blinker calls tick at a fixed interval until stopped. tick runs on the
// blinker's goroutine; it should only schedule a repaint, not touch editor
// state.
type Blinker struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// StartBlinker starts ticking. The goroutine exits when Stop is called or
// parent is cancelled.
func StartBlinker(parent context.Context, interval time.Duration, tick func()) *Blinker {
	ctx, cancel := context.WithCancel(parent)
	b := &Blinker{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(b.done)
		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if tick != nil {
					tick()
				}
			}
		}
	}()
	return b
}

// Stop cancels the ticker and waits for its goroutine to exit. It is safe
// to call more than once.
func (b *Blinker) Stop() {
	if b == nil {
		return
	}
	b.once.Do(b.cancel)
	<-b.done
}

// Done is closed once the ticking goroutine has exited.
func (b *Blinker) Done() <-chan struct{} { return b.done }
