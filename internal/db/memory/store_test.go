package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prospect-labs/prospector/internal/db"
)

func TestStore_SetGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get = %q, want v", got)
	}
}

func TestStore_MissingKey(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	now := time.Now()
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), 10*time.Minute); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}

	now = now.Add(9 * time.Minute)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}

	now = now.Add(time.Minute)
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound after expiry", err)
	}
}

func TestStore_SetHasNoExpiry(t *testing.T) {
	now := time.Now()
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	now = now.Add(24 * time.Hour)
	if _, err := s.Get(ctx, "k"); err != nil {
		t.Fatalf("Get: %v", err)
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("abc"))
	got, _ := s.Get(ctx, "k")
	got[0] = 'z'

	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Error("Get must return a copy")
	}
}

func TestStore_LenSweepsExpired(t *testing.T) {
	now := time.Now()
	s := NewStoreWithClock(func() time.Time { return now })
	ctx := context.Background()

	_ = s.Set(ctx, "keep", []byte("v"))
	_ = s.SetWithTTL(ctx, "drop", []byte("v"), time.Minute)

	if got := s.Len(); got != 2 {
		t.Fatalf("Len = %d, want 2", got)
	}
	now = now.Add(2 * time.Minute)
	if got := s.Len(); got != 1 {
		t.Errorf("Len = %d, want 1 after sweep", got)
	}
}

func TestStore_CloseDropsEntries(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	_ = s.Set(ctx, "k", []byte("v"))
	s.Close()
	if _, err := s.Get(ctx, "k"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound after Close", err)
	}
}
