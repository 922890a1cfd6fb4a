// Package environment selects and persists the backend environment an app
// targets. Profiles come from a Source, the selection lives in a Store.
package environment

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bootkit/internal/notify"
)

// Manager resolves the persisted selection against a fixed profile list.
// It keeps no copy of the selection, so every Manager on the same Store
// observes the same current environment.
type Manager[P Profile] struct {
	envs    []P
	byName  map[string]int
	store   Store
	changed *notify.Channel[Change]
	log     *zerolog.Logger
}

type options struct {
	changed *notify.Channel[Change]
	log     *zerolog.Logger
}

// Option configures a Manager.
type Option func(*options)

// WithChangeChannel posts selection changes on ch instead of Changed.
func WithChangeChannel(ch *notify.Channel[Change]) Option {
	return func(o *options) { o.changed = ch }
}

// WithLogger installs a structured logger; dropped records are logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.log = &l }
}

// New loads every record from src and keeps the ones parse accepts, in
// source order. Duplicate names keep the first occurrence.
func New[P Profile](src Source, store Store, parse Parser[P], opts ...Option) (*Manager[P], error) {
	o := options{changed: Changed}
	for _, opt := range opts {
		opt(&o)
	}
	if store == nil {
		return nil, fmt.Errorf("environment manager requires a store")
	}
	records, err := src.Records()
	if err != nil {
		return nil, fmt.Errorf("load environments: %w", err)
	}
	m := &Manager[P]{
		byName:  make(map[string]int, len(records)),
		store:   store,
		changed: o.changed,
		log:     o.log,
	}
	for i, rec := range records {
		p, ok := parse(rec)
		if !ok {
			m.debug(i, "", "invalid record")
			continue
		}
		name := p.ProfileName()
		if _, dup := m.byName[name]; dup {
			m.debug(i, name, "duplicate name")
			continue
		}
		m.byName[name] = len(m.envs)
		m.envs = append(m.envs, p)
	}
	if len(m.envs) == 0 {
		return nil, ErrNoEnvironments
	}
	return m, nil
}

// NewEnvironments is New specialised to the stock Environment profile.
func NewEnvironments(src Source, store Store, opts ...Option) (*Manager[Environment], error) {
	return New[Environment](src, store, ParseEnvironment, opts...)
}

func (m *Manager[P]) debug(index int, name, reason string) {
	if m.log == nil {
		return
	}
	m.log.Debug().Int("index", index).Str("name", name).Str("reason", reason).Msg("environment record dropped")
}

// Environments returns the loaded profiles in load order.
func (m *Manager[P]) Environments() []P {
	out := make([]P, len(m.envs))
	copy(out, m.envs)
	return out
}

// Lookup finds a loaded profile by name.
func (m *Manager[P]) Lookup(name string) (P, bool) {
	i, ok := m.byName[name]
	if !ok {
		var zero P
		return zero, false
	}
	return m.envs[i], true
}

// Current returns the persisted selection, or the first profile when nothing
// persisted matches a loaded name.
func (m *Manager[P]) Current(ctx context.Context) (P, error) {
	name, ok, err := m.store.Get(ctx, StoreKey)
	if err != nil {
		var zero P
		return zero, fmt.Errorf("read current environment: %w", err)
	}
	if ok {
		if p, found := m.Lookup(name); found {
			return p, nil
		}
	}
	return m.envs[0], nil
}

// SetCurrent persists p's name as the selection and posts a Change.
func (m *Manager[P]) SetCurrent(ctx context.Context, p P) error {
	prev, _, err := m.store.Get(ctx, StoreKey)
	if err != nil {
		return fmt.Errorf("read current environment: %w", err)
	}
	name := p.ProfileName()
	if err := m.store.Set(ctx, StoreKey, name); err != nil {
		return fmt.Errorf("write current environment: %w", err)
	}
	if m.log != nil {
		m.log.Info().Str("previous", prev).Str("current", name).Msg("environment selected")
	}
	if m.changed != nil {
		m.changed.PostFrom(Change{Previous: prev, Current: name}, m.store)
	}
	return nil
}

// Use selects the profile called name.
func (m *Manager[P]) Use(ctx context.Context, name string) (P, error) {
	p, ok := m.Lookup(name)
	if !ok {
		return p, ErrUnknownEnvironment(name)
	}
	if err := m.SetCurrent(ctx, p); err != nil {
		var zero P
		return zero, err
	}
	return p, nil
}
