package notify

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry maps channel identities to their listeners.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	slots  map[uuid.UUID]slot
	nextID atomic.Uint64
	log    *zerolog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger installs a structured logger used for debug traces.
func WithLogger(l zerolog.Logger) RegistryOption {
	return func(r *Registry) { r.log = &l }
}

// NewRegistry creates an empty registry. Tests use their own registry for isolation.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{slots: make(map[uuid.UUID]slot)}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry used by channels created without WithRegistry.
func Default() *Registry { return defaultRegistry }

// SetLogger installs a structured logger on the registry.
func (r *Registry) SetLogger(l zerolog.Logger) {
	r.mu.Lock()
	r.log = &l
	r.mu.Unlock()
}

// Listeners reports how many live listeners are registered for a channel identity.
func (r *Registry) Listeners(id uuid.UUID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[id]
	if !ok {
		return 0
	}
	return s.len()
}

// Channels reports how many channel identities currently have listeners.
func (r *Registry) Channels() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.slots)
}

// slot is the type-erased view of a listener list; the concrete type is
// *listeners[T] for the payload type of the channel that created it.
type slot interface {
	remove(id uint64) bool
	len() int
}

type listeners[T any] struct {
	entries []*entry[T]
}

func (l *listeners[T]) remove(id uint64) bool {
	for i, e := range l.entries {
		if e.id == id {
			l.entries = slices.Delete(l.entries, i, i+1)
			return true
		}
	}
	return false
}

func (l *listeners[T]) len() int { return len(l.entries) }

type entry[T any] struct {
	id       uint64
	source   any
	fn       func(T)
	disposed *atomic.Bool
}

// typedSlot recovers the listener list of a channel. The slot is always
// created by the same Channel[T], so a mismatch means the registry is corrupt.
func typedSlot[T any](s slot, ch *Channel[T]) *listeners[T] {
	l, ok := s.(*listeners[T])
	if !ok {
		panic(fmt.Sprintf("notify: channel %s (%s) holds %T, want *listeners[%T]", ch.id, ch.name, s, *new(T)))
	}
	return l
}

func register[T any](r *Registry, ch *Channel[T], source any, fn func(T)) *Subscription {
	sub := &Subscription{registry: r, channel: ch.id, label: ch.metricLabel()}
	e := &entry[T]{
		id:       r.nextID.Add(1),
		source:   source,
		fn:       fn,
		disposed: &sub.disposed,
	}
	sub.id = e.id

	log := addEntry(r, ch, e)

	subscriptionsActive.WithLabelValues(sub.label).Inc()
	if log != nil {
		log.Debug().Str("channel", ch.name).Str("channel_id", ch.id.String()).Uint64("subscription", e.id).Bool("filtered", source != nil).Msg("observe")
	}
	return sub
}

func addEntry[T any](r *Registry, ch *Channel[T], e *entry[T]) *zerolog.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()
	var l *listeners[T]
	if s, ok := r.slots[ch.id]; ok {
		l = typedSlot(s, ch)
	} else {
		l = &listeners[T]{}
		r.slots[ch.id] = l
	}
	l.entries = append(l.entries, e)
	return r.log
}

func (r *Registry) remove(channel uuid.UUID, id uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[channel]
	if !ok {
		return false
	}
	removed := s.remove(id)
	if s.len() == 0 {
		delete(r.slots, channel)
	}
	if removed && r.log != nil {
		r.log.Debug().Str("channel_id", channel.String()).Uint64("subscription", id).Msg("dispose")
	}
	return removed
}

// snapshot copies the listener list under the read lock. Callbacks run
// unlocked so they may post, observe or dispose re-entrantly.
func snapshot[T any](r *Registry, ch *Channel[T]) []*entry[T] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.slots[ch.id]
	if !ok {
		return nil
	}
	return slices.Clone(typedSlot(s, ch).entries)
}

func post[T any](r *Registry, ch *Channel[T], v T, source any) {
	snap := snapshot(r, ch)
	label := ch.metricLabel()
	postsTotal.WithLabelValues(label).Inc()
	delivered := 0
	for _, e := range snap {
		if e.disposed.Load() {
			continue
		}
		if !matchSource(e.source, source) {
			continue
		}
		e.fn(v)
		delivered++
	}
	if delivered > 0 {
		deliveriesTotal.WithLabelValues(label).Add(float64(delivered))
	}
}
