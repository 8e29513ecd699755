package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ayush/ticket-simulator/backend/internal/models"
)

func TestMemoryStoreUsers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	alice, err := s.CreateUser(ctx, "alice", "hash-a")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	bob, err := s.CreateUser(ctx, "bob", "hash-b")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if alice.ID != 1 || bob.ID != 2 {
		t.Fatalf("ids = %d, %d; want 1, 2", alice.ID, bob.ID)
	}

	if _, err := s.CreateUser(ctx, "alice", "other"); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate CreateUser err = %v, want ErrUserExists", err)
	}

	got, err := s.GetUserByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetUserByUsername: %v", err)
	}
	if got.ID != bob.ID || got.Password != "hash-b" {
		t.Fatalf("got %+v", got)
	}

	if _, err := s.GetUserByUsername(ctx, "carol"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreHistoryOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	for i, uid := range []int64{1, 2, 1, 1, 2} {
		st := &models.Strategy{UserID: uid, Platform: fmt.Sprintf("p%d", i)}
		if err := s.InsertStrategy(ctx, st); err != nil {
			t.Fatalf("InsertStrategy: %v", err)
		}
		if st.ID != int64(i+1) {
			t.Fatalf("assigned id %d, want %d", st.ID, i+1)
		}
	}

	got, err := s.ListStrategiesByUser(ctx, 1)
	if err != nil {
		t.Fatalf("ListStrategiesByUser: %v", err)
	}
	want := []string{"p3", "p2", "p0"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, st := range got {
		if st.UserID != 1 || st.Platform != want[i] {
			t.Errorf("record %d = %+v, want platform %s", i, st, want[i])
		}
	}

	empty, err := s.ListStrategiesByUser(ctx, 99)
	if err != nil {
		t.Fatalf("ListStrategiesByUser: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("want empty non-nil slice, got %#v", empty)
	}
}

func TestMemoryStoreSameInstantFallsBackToID(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	for i := 0; i < 3; i++ {
		if err := s.InsertStrategy(ctx, &models.Strategy{UserID: 5}); err != nil {
			t.Fatal(err)
		}
	}
	got, _ := s.ListStrategiesByUser(ctx, 5)
	for i, st := range got {
		if st.ID != int64(3-i) {
			t.Fatalf("position %d has id %d", i, st.ID)
		}
	}
}

func TestMemoryStoreConcurrentRegistration(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateUser(ctx, "same", "h"); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if created != 1 {
		t.Fatalf("created %d users with one name, want 1", created)
	}
}

func TestOpenMemoryDriver(t *testing.T) {
	s, err := Open(context.Background(), testConfig("memory"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if s.Name() != "memory" {
		t.Fatalf("Name() = %q", s.Name())
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), testConfig("cassandra")); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
