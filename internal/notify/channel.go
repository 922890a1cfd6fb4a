package notify

import "github.com/google/uuid"

// Channel is a uniquely identified notification carrying payloads of type T.
// Channels hold no listeners themselves; registrations live in the Registry
// under the channel's identity. Two channels are never equal, even with the
// same payload type.
//
// T can be any type: a struct, a tuple-like struct for multi-part payloads,
// or struct{} when there is no payload.
type Channel[T any] struct {
	id   uuid.UUID
	name string
	reg  *Registry
}

type channelConfig struct {
	name string
	reg  *Registry
}

// Option configures a Channel.
type Option func(*channelConfig)

// WithName sets a human readable label used in logs and metrics.
// Names are not identities; two channels may share a name.
func WithName(name string) Option {
	return func(c *channelConfig) { c.name = name }
}

// WithRegistry binds the channel to a registry other than Default().
func WithRegistry(r *Registry) Option {
	return func(c *channelConfig) {
		if r != nil {
			c.reg = r
		}
	}
}

// New allocates a channel with a fresh identity.
func New[T any](opts ...Option) *Channel[T] {
	cfg := channelConfig{reg: defaultRegistry}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Channel[T]{id: uuid.New(), name: cfg.name, reg: cfg.reg}
}

// ID returns the channel identity.
func (c *Channel[T]) ID() uuid.UUID { return c.id }

// Name returns the label given with WithName, or the identity when unnamed.
func (c *Channel[T]) Name() string {
	if c.name == "" {
		return c.id.String()
	}
	return c.name
}

// Registry returns the registry the channel dispatches through.
func (c *Channel[T]) Registry() *Registry { return c.reg }

// Post delivers v to every listener without a source filter.
func (c *Channel[T]) Post(v T) { c.PostFrom(v, nil) }

// PostFrom delivers v, declaring source as the poster. Listeners registered
// with a source filter only receive posts whose source matches it.
// Delivery is synchronous and completes before PostFrom returns.
func (c *Channel[T]) PostFrom(v T, source any) { post(c.reg, c, v, source) }

// Observe registers fn for every post on this channel.
// The caller owns the returned subscription and must dispose it.
func (c *Channel[T]) Observe(fn func(T)) *Subscription {
	return register(c.reg, c, nil, fn)
}

// ObserveFrom registers fn for posts declaring source as their poster.
// A nil source behaves like Observe.
func (c *Channel[T]) ObserveFrom(source any, fn func(T)) *Subscription {
	return register(c.reg, c, source, fn)
}

// metricLabel keeps unnamed channels from creating one series per identity.
func (c *Channel[T]) metricLabel() string {
	if c.name == "" {
		return "unnamed"
	}
	return c.name
}
