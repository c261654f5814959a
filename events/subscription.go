package events

import (
	"context"
	"sync"
)

// Subscription is a handle to a stream of update notifications
type Subscription struct {
	ch     chan struct{}
	mgr    *SubscriptionManager
	cancel context.CancelFunc
	once   sync.Once
}

// Chan returns a read-only channel for self-handling events.
func (s *Subscription) Chan() <-chan struct{} { return s.ch }

// Cancel unsubscribes and closes the channel. Safe for repeated calls.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
		s.mgr.Unsubscribe(s.ch)
	})
}

// Watch starts a goroutine that calls cb on each event.
// If callNow is true, cb is called immediately.
// When parentCtx finishes, the subscription is automatically cancelled.
func (s *Subscription) Watch(parentCtx context.Context, cb func(), callNow bool) *Subscription {
	ctx, cancel := context.WithCancel(parentCtx)
	s.cancel = cancel

	if callNow {
		cb()
	}

	go func() {
		defer s.Cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.ch:
				cb()
			}
		}
	}()

	return s
}

// SubscriptionManager fans out update notifications to subscribers
type SubscriptionManager struct {
	mu          sync.RWMutex
	subscribers map[chan struct{}]struct{}
}

func NewSubscriptionManager() *SubscriptionManager {
	return &SubscriptionManager{
		subscribers: make(map[chan struct{}]struct{}),
	}
}

func (m *SubscriptionManager) Subscribe() *Subscription {
	ch := make(chan struct{}, 1)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	m.mu.Unlock()

	return &Subscription{ch: ch, mgr: m}
}

func (m *SubscriptionManager) Unsubscribe(ch chan struct{}) {
	m.mu.Lock()
	if _, ok := m.subscribers[ch]; ok {
		delete(m.subscribers, ch)
		close(ch)
	}
	m.mu.Unlock()
}

// Emit sends a notification to all subscribers. Subscribers whose channel is
// already full are skipped rather than blocked on.
func (m *SubscriptionManager) Emit(ctx context.Context) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for sub := range m.subscribers {
		select {
		case <-ctx.Done():
			return
		case sub <- struct{}{}:
		default:
		}
	}
}
