// Package notify provides strongly-typed notification channels on top of a
// process-wide dispatch registry. It is structured into small files by concern:
//
//   - channel.go: Channel[T], channel options, Post/PostFrom/Observe.
//   - registry.go: Registry, typed listener slots, the default registry.
//   - subscription.go: Subscription handles and source filtering.
//   - observer.go: ObserverManager, which owns a set of subscriptions.
//   - metrics.go: Prometheus counters for posts, deliveries and live subscriptions.
//
// A producer declares a channel once, usually as a package-level var:
//
//	var DidPrint = notify.New[string](notify.WithName("log.did_print"))
//
// Consumers register listeners through an ObserverManager and dispose it when
// the owning value is done:
//
//	type screen struct{ observers *notify.ObserverManager }
//
//	func (s *screen) Close() error { return s.observers.Close() }
//
//	notify.Observe(s.observers, DidPrint, func(line string) { ... })
//
// Go has no deterministic destructors, so an owner that keeps an
// ObserverManager in a field must dispose it from its own Close. A listener
// left registered keeps its closure (and everything it captures) reachable
// from the registry.
//
// Delivery is synchronous on the posting goroutine, in registration order.
// Listeners may post, observe or dispose from inside a callback.
package notify
