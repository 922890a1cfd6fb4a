package environment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"bootkit/internal/notify"
)

func testRecords() StaticSource {
	return StaticSource{
		{"Name": "Development", "Domain": "dev.example.com", "Key": "k-dev"},
		{"Name": "Stage", "Domain": "stage.example.com", "Key": "k-stage"},
		{"Name": "Production", "Domain": "example.com", "Key": "k-prod"},
	}
}

func newTestManager(t *testing.T, store Store, opts ...Option) *Manager[Environment] {
	t.Helper()
	m, err := NewEnvironments(testRecords(), store, opts...)
	if err != nil {
		t.Fatalf("NewEnvironments: %v", err)
	}
	return m
}

func TestCurrent_DefaultsToFirst(t *testing.T) {
	m := newTestManager(t, NewMemoryStore())
	cur, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Name != "Development" || cur.Domain != "dev.example.com" || cur.Key != "k-dev" {
		t.Fatalf("unexpected default: %+v", cur)
	}
}

func TestCurrent_HonoursPersistedName(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Set(context.Background(), StoreKey, "Stage")
	m := newTestManager(t, store)
	cur, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.Name != "Stage" {
		t.Fatalf("want Stage, got %q", cur.Name)
	}
}

func TestCurrent_UnknownPersistedFallsBack(t *testing.T) {
	store := NewMemoryStore()
	_ = store.Set(context.Background(), StoreKey, "Gone")
	m := newTestManager(t, store)
	cur, _ := m.Current(context.Background())
	if cur.Name != "Development" {
		t.Fatalf("want fallback to Development, got %q", cur.Name)
	}
	// the stale value is left untouched
	if v, _, _ := store.Get(context.Background(), StoreKey); v != "Gone" {
		t.Fatalf("store rewritten: %q", v)
	}
}

func TestSetCurrent_VisibleAcrossManagers(t *testing.T) {
	store := Suite(t.Name())
	a := newTestManager(t, store)
	b := newTestManager(t, store)
	ctx := context.Background()

	prod, _ := a.Lookup("Production")
	if err := a.SetCurrent(ctx, prod); err != nil {
		t.Fatalf("SetCurrent: %v", err)
	}
	cur, _ := b.Current(ctx)
	if cur.Name != "Production" {
		t.Fatalf("b sees %q", cur.Name)
	}
	if _, err := b.Use(ctx, "Stage"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	cur, _ = a.Current(ctx)
	if cur.Name != "Stage" {
		t.Fatalf("a sees %q", cur.Name)
	}
	// a third manager built later agrees too
	c := newTestManager(t, Suite(t.Name()))
	if cur, _ := c.Current(ctx); cur.Name != "Stage" {
		t.Fatalf("c sees %q", cur.Name)
	}
}

func TestUse_Unknown(t *testing.T) {
	store := NewMemoryStore()
	m := newTestManager(t, store)
	_, err := m.Use(context.Background(), "Nope")
	if !IsUnknownEnvironment(err) {
		t.Fatalf("want unknown environment error, got %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), StoreKey); ok {
		t.Fatalf("store written on unknown name")
	}
}

func TestNew_EmptySource(t *testing.T) {
	_, err := NewEnvironments(StaticSource{}, NewMemoryStore())
	if !errors.Is(err, ErrNoEnvironments) {
		t.Fatalf("want ErrNoEnvironments, got %v", err)
	}
}

func TestNew_AllInvalid(t *testing.T) {
	src := StaticSource{{"Name": "X"}, {"Domain": "d", "Key": "k"}}
	_, err := NewEnvironments(src, NewMemoryStore())
	if !errors.Is(err, ErrNoEnvironments) {
		t.Fatalf("want ErrNoEnvironments, got %v", err)
	}
}

func TestNew_DropsMalformedAndDuplicates(t *testing.T) {
	src := StaticSource{
		{"Name": "A", "Domain": "a.example.com", "Key": "ka"},
		{"Name": "B", "Domain": "b.example.com"},
		{"Name": "C", "Domain": "c.example.com", "Key": 42},
		{"Name": "", "Domain": "e.example.com", "Key": "ke"},
		{"Name": "A", "Domain": "dup.example.com", "Key": "kdup"},
		{"Name": "D", "Domain": "d.example.com", "Key": "kd"},
	}
	m, err := NewEnvironments(src, NewMemoryStore())
	if err != nil {
		t.Fatalf("NewEnvironments: %v", err)
	}
	envs := m.Environments()
	if len(envs) != 2 || envs[0].Name != "A" || envs[1].Name != "D" {
		t.Fatalf("unexpected environments: %+v", envs)
	}
	if a, _ := m.Lookup("A"); a.Domain != "a.example.com" {
		t.Fatalf("duplicate replaced first: %+v", a)
	}
}

func TestNew_NilStore(t *testing.T) {
	if _, err := NewEnvironments(testRecords(), nil); err == nil {
		t.Fatalf("expected error for nil store")
	}
}

type failingSource struct{}

func (failingSource) Records() ([]Record, error) { return nil, errors.New("boom") }

func TestNew_SourceError(t *testing.T) {
	_, err := NewEnvironments(failingSource{}, NewMemoryStore())
	if err == nil || errors.Is(err, ErrNoEnvironments) {
		t.Fatalf("want wrapped source error, got %v", err)
	}
}

func TestEnvironments_ReturnsCopy(t *testing.T) {
	m := newTestManager(t, NewMemoryStore())
	envs := m.Environments()
	envs[0].Name = "mutated"
	if m.Environments()[0].Name != "Development" {
		t.Fatalf("internal list mutated")
	}
}

type brokenStore struct{ err error }

func (s brokenStore) Get(context.Context, string) (string, bool, error) { return "", false, s.err }
func (s brokenStore) Set(context.Context, string, string) error { return s.err }

func TestCurrent_StoreError(t *testing.T) {
	m := newTestManager(t, brokenStore{err: errors.New("disk gone")})
	if _, err := m.Current(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := m.Use(context.Background(), "Stage"); err == nil || IsUnknownEnvironment(err) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestSetCurrent_PostsChange(t *testing.T) {
	reg := notify.NewRegistry()
	ch := notify.New[Change](notify.WithRegistry(reg))
	store := NewMemoryStore()
	other := NewMemoryStore()
	m := newTestManager(t, store, WithChangeChannel(ch))

	var got, filtered []Change
	sub := ch.Observe(func(c Change) { got = append(got, c) })
	defer sub.Dispose()
	fsub := ch.ObserveFrom(other, func(c Change) { filtered = append(filtered, c) })
	defer fsub.Dispose()

	ctx := context.Background()
	if _, err := m.Use(ctx, "Stage"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if _, err := m.Use(ctx, "Production"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 changes, got %d", len(got))
	}
	if got[0] != (Change{Previous: "", Current: "Stage"}) || got[1] != (Change{Previous: "Stage", Current: "Production"}) {
		t.Fatalf("unexpected changes: %+v", got)
	}
	if len(filtered) != 0 {
		t.Fatalf("observer of another store notified: %+v", filtered)
	}
}

func TestSetCurrent_SourceIsStore(t *testing.T) {
	reg := notify.NewRegistry()
	ch := notify.New[Change](notify.WithRegistry(reg))
	store := NewMemoryStore()
	m := newTestManager(t, store, WithChangeChannel(ch))
	n := 0
	sub := ch.ObserveFrom(store, func(Change) { n++ })
	defer sub.Dispose()
	if _, err := m.Use(context.Background(), "Production"); err != nil {
		t.Fatalf("Use: %v", err)
	}
	if n != 1 {
		t.Fatalf("store-filtered observer got %d posts", n)
	}
}

// customProfile shows a caller-defined profile type flowing through Manager.
type customProfile struct {
	ID     string
	Region string
}

func (p customProfile) ProfileName() string { return p.ID }

func TestNew_CustomProfile(t *testing.T) {
	src := StaticSource{
		{"ID": "eu", "Region": "eu-west-1"},
		{"ID": "us"},
		{"ID": "ap", "Region": "ap-south-1"},
	}
	parse := func(r Record) (customProfile, bool) {
		id, _ := r["ID"].(string)
		region, _ := r["Region"].(string)
		if id == "" || region == "" {
			return customProfile{}, false
		}
		return customProfile{ID: id, Region: region}, true
	}
	m, err := New(src, NewMemoryStore(), Parser[customProfile](parse), WithChangeChannel(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if len(m.Environments()) != 2 {
		t.Fatalf("want 2 profiles, got %d", len(m.Environments()))
	}
	p, err := m.Use(context.Background(), "ap")
	if err != nil || p.Region != "ap-south-1" {
		t.Fatalf("Use: %+v %v", p, err)
	}
	cur, _ := m.Current(context.Background())
	if cur.ID != "ap" {
		t.Fatalf("current %q", cur.ID)
	}
}

func TestCurrent_EmptyStoreIgnoresEmptyNamedProfile(t *testing.T) {
	src := StaticSource{{"ID": "Dev"}, {"ID": ""}}
	parse := func(r Record) (customProfile, bool) {
		id, _ := r["ID"].(string)
		return customProfile{ID: id}, true
	}
	m, err := New(src, NewMemoryStore(), Parser[customProfile](parse), WithChangeChannel(nil))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cur, err := m.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if cur.ID != "Dev" {
		t.Fatalf("Current = %q, want first profile Dev", cur.ID)
	}
}

func TestUnknownEnvironment_CarriesNotFoundStatus(t *testing.T) {
	var coded interface{ StatusCode() int }
	err := fmt.Errorf("use: %w", ErrUnknownEnvironment("Nope"))
	if !errors.As(err, &coded) || coded.StatusCode() != http.StatusNotFound {
		t.Fatalf("unknown environment error should report 404, got %v", err)
	}
}
