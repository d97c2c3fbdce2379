package orchestration

import "sync"

// notifier runs callbacks one at a time, in the order they were posted, on
// its own goroutine. Posting never blocks, so callbacks may call back into
// the orchestrator.
type notifier struct {
	mu      sync.Mutex
	pending []func()
	closed  bool

	wake    chan struct{}
	closeCh chan struct{}
	done    chan struct{}

	startOnce sync.Once
	closeOnce sync.Once
}

func newNotifier() *notifier {
	return &notifier{
		wake:    make(chan struct{}, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (n *notifier) start() {
	n.startOnce.Do(func() { go n.run() })
}

func (n *notifier) post(callback func()) {
	if callback == nil {
		return
	}

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return
	}
	n.pending = append(n.pending, callback)
	n.mu.Unlock()

	select {
	case n.wake <- struct{}{}:
	default:
	}
}

func (n *notifier) run() {
	defer close(n.done)
	for {
		select {
		case <-n.closeCh:
			return
		case <-n.wake:
		}

		for {
			callback, ok := n.next()
			if !ok {
				break
			}
			if err := panicSafeNamedCall("callback", callback); err != nil {
				logger.Error("callback failed", "error", err)
			}
		}
	}
}

func (n *notifier) next() (func(), bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed || len(n.pending) == 0 {
		return nil, false
	}
	callback := n.pending[0]
	n.pending[0] = nil
	n.pending = n.pending[1:]
	return callback, true
}

// close drops callbacks that have not started yet. It does not wait for the
// running one, so it is safe to call from inside a callback.
func (n *notifier) close() {
	n.closeOnce.Do(func() {
		n.mu.Lock()
		n.closed = true
		n.pending = nil
		n.mu.Unlock()
		close(n.closeCh)
	})
}
