package notify

import "sync"

// ObserverManager owns a set of subscriptions and disposes them together.
// It bundles the lifetimes of many listeners into the lifetime of one owner.
type ObserverManager struct {
	mu   sync.Mutex
	subs []*Subscription
}

// NewObserverManager returns an empty manager.
func NewObserverManager() *ObserverManager { return &ObserverManager{} }

// Observe registers fn on ch and keeps the subscription in m.
func Observe[T any](m *ObserverManager, ch *Channel[T], fn func(T)) {
	m.add(ch.Observe(fn))
}

// ObserveFrom registers fn on ch for posts from source and keeps the subscription in m.
func ObserveFrom[T any](m *ObserverManager, ch *Channel[T], source any, fn func(T)) {
	m.add(ch.ObserveFrom(source, fn))
}

func (m *ObserverManager) add(sub *Subscription) {
	m.mu.Lock()
	m.subs = append(m.subs, sub)
	m.mu.Unlock()
}

// Len returns the number of subscriptions currently owned.
func (m *ObserverManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

// Dispose disposes every owned subscription in registration order and
// empties the manager. The manager can be reused afterwards.
func (m *ObserverManager) Dispose() {
	m.mu.Lock()
	subs := m.subs
	m.subs = nil
	m.mu.Unlock()
	for _, s := range subs {
		s.Dispose()
	}
}

// Close implements io.Closer so owners can release the manager from their own Close.
func (m *ObserverManager) Close() error {
	m.Dispose()
	return nil
}
