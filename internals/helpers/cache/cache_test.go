package cache

import (
	"context"
	"testing"
	"time"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	m := NewMemory()
	m.Now = func() time.Time { return now }

	_ = m.Set(ctx, "calendar:v1:a", []byte("A"), time.Minute)
	_ = m.Set(ctx, "calendar:v1:b", []byte("B"), 0)
	_ = m.Set(ctx, "other", []byte("C"), 0)

	if v, ok, _ := m.Get(ctx, "calendar:v1:a"); !ok || string(v) != "A" {
		t.Fatalf("Get = %q, %v", v, ok)
	}

	now = now.Add(2 * time.Minute)
	if _, ok, _ := m.Get(ctx, "calendar:v1:a"); ok {
		t.Fatal("expired entry returned")
	}

	_ = m.DeletePrefix(ctx, "calendar:v1:")
	if _, ok, _ := m.Get(ctx, "calendar:v1:b"); ok {
		t.Fatal("prefix not deleted")
	}
	if _, ok, _ := m.Get(ctx, "other"); !ok {
		t.Fatal("unrelated key deleted")
	}
}

func TestNoopAlwaysMisses(t *testing.T) {
	t.Parallel()
	var s Store = Noop{}
	ctx := context.Background()
	_ = s.Set(ctx, "k", []byte("v"), time.Minute)
	if _, ok, err := s.Get(ctx, "k"); ok || err != nil {
		t.Fatalf("Noop.Get = %v, %v", ok, err)
	}
}
