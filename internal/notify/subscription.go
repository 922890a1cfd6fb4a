package notify

import (
	"reflect"
	"sync/atomic"

	"github.com/google/uuid"
)

// Subscription is the handle for one registered listener.
// Dispose removes the listener; it is idempotent and safe from any goroutine,
// including from inside a listener during dispatch.
type Subscription struct {
	registry *Registry
	channel  uuid.UUID
	label    string
	id       uint64
	disposed atomic.Bool
}

// Channel returns the identity of the channel this subscription listens on.
func (s *Subscription) Channel() uuid.UUID { return s.channel }

// Disposed reports whether Dispose has been called.
func (s *Subscription) Disposed() bool { return s.disposed.Load() }

// Dispose removes the listener from the registry. Later calls are no-ops.
func (s *Subscription) Dispose() {
	if s == nil || !s.disposed.CompareAndSwap(false, true) {
		return
	}
	if s.registry.remove(s.channel, s.id) {
		subscriptionsActive.WithLabelValues(s.label).Dec()
	}
}

// Close implements io.Closer.
func (s *Subscription) Close() error {
	s.Dispose()
	return nil
}

// matchSource applies a listener's source filter: a nil filter accepts every
// post, otherwise the poster must be the same comparable value. Values whose
// dynamic contents cannot be compared (a struct holding a slice in an
// interface field, say) never match.
func matchSource(filter, source any) bool {
	if filter == nil {
		return true
	}
	if source == nil {
		return false
	}
	if reflect.TypeOf(filter) != reflect.TypeOf(source) {
		return false
	}
	if !reflect.ValueOf(filter).Comparable() || !reflect.ValueOf(source).Comparable() {
		return false
	}
	return filter == source
}
