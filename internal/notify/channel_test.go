package notify

import (
	"testing"
)

func TestPost_DeliversValueOnceSynchronously(t *testing.T) {
	reg := NewRegistry()
	ch := New[string](WithRegistry(reg))
	var got []string
	sub := ch.Observe(func(s string) { got = append(got, s) })
	defer sub.Dispose()

	ch.Post("hello")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("expected exactly one delivery of %q, got %v", "hello", got)
	}
}

func TestPost_StructPayload(t *testing.T) {
	type moved struct {
		Index int
		Name  *string
	}
	reg := NewRegistry()
	ch := New[moved](WithRegistry(reg))
	name := "row"
	var got moved
	sub := ch.Observe(func(m moved) { got = m })
	defer sub.Dispose()

	ch.Post(moved{Index: 3, Name: &name})
	if got.Index != 3 || got.Name == nil || *got.Name != "row" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestPost_NoListenersIsNoop(t *testing.T) {
	reg := NewRegistry()
	ch := New[int](WithRegistry(reg))
	ch.Post(1)
	ch.PostFrom(2, &struct{}{})
	if reg.Channels() != 0 {
		t.Fatalf("posting must not create registry entries, got %d", reg.Channels())
	}
}

func TestNew_IdentityIsUnique(t *testing.T) {
	reg := NewRegistry()
	a := New[string](WithRegistry(reg), WithName("same"))
	b := New[string](WithRegistry(reg), WithName("same"))
	if a.ID() == b.ID() {
		t.Fatalf("channels share identity %s", a.ID())
	}

	var gotA, gotB int
	subA := a.Observe(func(string) { gotA++ })
	subB := b.Observe(func(string) { gotB++ })
	defer subA.Dispose()
	defer subB.Dispose()

	a.Post("x")
	if gotA != 1 || gotB != 0 {
		t.Fatalf("post on a leaked into b: a=%d b=%d", gotA, gotB)
	}
}

func TestName_FallsBackToID(t *testing.T) {
	ch := New[int](WithRegistry(NewRegistry()))
	if ch.Name() != ch.ID().String() {
		t.Fatalf("unnamed channel name=%q id=%s", ch.Name(), ch.ID())
	}
	named := New[int](WithRegistry(NewRegistry()), WithName("log.did_print"))
	if named.Name() != "log.did_print" {
		t.Fatalf("name=%q", named.Name())
	}
}

func TestWithRegistry_NilKeepsDefault(t *testing.T) {
	ch := New[int](WithRegistry(nil))
	if ch.Registry() != Default() {
		t.Fatalf("expected default registry")
	}
}

func TestPost_FIFOByRegistration(t *testing.T) {
	reg := NewRegistry()
	ch := New[int](WithRegistry(reg))
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		sub := ch.Observe(func(int) { order = append(order, i) })
		defer sub.Dispose()
	}
	ch.Post(0)
	for i, v := range order {
		if v != i {
			t.Fatalf("listeners ran out of order: %v", order)
		}
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 deliveries, got %d", len(order))
	}
}

func TestPostFrom_SourceFilter(t *testing.T) {
	type sender struct{ name string }
	reg := NewRegistry()
	ch := New[string](WithRegistry(reg))
	a, b := &sender{"a"}, &sender{"b"}

	var fromA, all []string
	subA := ch.ObserveFrom(a, func(s string) { fromA = append(fromA, s) })
	subAll := ch.Observe(func(s string) { all = append(all, s) })
	defer subA.Dispose()
	defer subAll.Dispose()

	ch.PostFrom("1", a)
	ch.PostFrom("2", b)
	ch.Post("3")

	if len(fromA) != 1 || fromA[0] != "1" {
		t.Fatalf("filtered listener got %v", fromA)
	}
	if len(all) != 3 {
		t.Fatalf("unfiltered listener got %v", all)
	}
}

// boxed is comparable by type but may hold uncomparable values at runtime.
type boxed struct{ v any }

func TestMatchSource(t *testing.T) {
	p := &struct{ n int }{}
	q := &struct{ n int }{}
	cases := []struct {
		name           string
		filter, source any
		want           bool
	}{
		{"nil filter", nil, p, true},
		{"nil filter nil source", nil, nil, true},
		{"nil source", p, nil, false},
		{"same pointer", p, p, true},
		{"other pointer", p, q, false},
		{"same string", "svc", "svc", true},
		{"different types", "1", 1, false},
		{"uncomparable", []int{1}, []int{1}, false},
		{"struct holding slice", boxed{v: []int{2}}, boxed{v: []int{1}}, false},
		{"struct holding same int", boxed{v: 7}, boxed{v: 7}, true},
		{"struct holding other int", boxed{v: 7}, boxed{v: 8}, false},
	}
	for _, c := range cases {
		if got := matchSource(c.filter, c.source); got != c.want {
			t.Fatalf("%s: matchSource=%v want %v", c.name, got, c.want)
		}
	}
}

func TestPostFrom_UncomparableSourceDoesNotPanic(t *testing.T) {
	ch := New[int](WithRegistry(NewRegistry()))
	var got []int
	sub := ch.ObserveFrom(boxed{v: []int{2}}, func(v int) { got = append(got, v) })
	defer sub.Dispose()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("PostFrom panicked: %v", r)
		}
	}()
	ch.PostFrom(1, boxed{v: []int{1}})
	ch.PostFrom(2, boxed{v: []int{2}})
	if len(got) != 0 {
		t.Fatalf("listener should not match uncomparable sources, got %v", got)
	}
}

func TestTypedSlot_MismatchPanics(t *testing.T) {
	reg := NewRegistry()
	ch := New[string](WithRegistry(reg))
	// Corrupt the registry on purpose: an int slot under a string channel.
	reg.slots[ch.ID()] = &listeners[int]{entries: []*entry[int]{{id: 1}}}

	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on payload type mismatch")
		}
	}()
	ch.Post("boom")
}

func TestTypedSlot_MismatchOnObserveReleasesLock(t *testing.T) {
	reg := NewRegistry()
	ch := New[string](WithRegistry(reg))
	reg.slots[ch.ID()] = &listeners[int]{}

	func() {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic on payload type mismatch")
			}
		}()
		ch.Observe(func(string) {})
	}()
	// the registry lock must not be left held
	if n := reg.Channels(); n != 1 {
		t.Fatalf("Channels=%d", n)
	}
}
