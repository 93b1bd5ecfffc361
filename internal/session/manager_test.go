package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/satriahrh/voxtag/adapters/pcm"
	"github.com/satriahrh/voxtag/adapters/storage"
)

func newTestManager(t *testing.T, idle time.Duration) (*Manager, *storage.MemoryStorage) {
	t.Helper()
	store := storage.NewMemoryStorage()
	return NewManager(store, idle, nil, zaptest.NewLogger(t)), store
}

func TestManagerIsolatesSessions(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	a := m.Create()
	b := m.Create()

	regA, err := m.Get(a.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	regB, _ := m.Get(b.ID)

	data, _ := pcm.Encode([]int16{1}, pcm.DefaultFormat)
	regA.Create(context.Background(), data, "")

	if regA.Len() != 1 || regB.Len() != 0 {
		t.Errorf("Expected registries to be independent, got %d and %d", regA.Len(), regB.Len())
	}

	again, _ := m.Get(a.ID)
	if again != regA {
		t.Error("Expected the same registry for repeated lookups")
	}
}

func TestManagerUnknownSession(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	if _, err := m.Get("nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
	if err := m.Delete(context.Background(), "nope"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound, got %v", err)
	}
}

func TestManagerDeleteClearsRecordings(t *testing.T) {
	m, store := newTestManager(t, time.Hour)
	var closed []string
	m.OnClose(func(id string) { closed = append(closed, id) })

	s := m.Create()
	reg, _ := m.Get(s.ID)
	data, _ := pcm.Encode([]int16{1, 2}, pcm.DefaultFormat)
	reg.Create(context.Background(), data, "")

	if err := m.Delete(context.Background(), s.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Expected stored audio to be removed, %d blobs remain", store.Len())
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected ErrSessionNotFound after delete, got %v", err)
	}
	if len(closed) != 1 || closed[0] != s.ID {
		t.Errorf("Expected close callback for %s, got %v", s.ID, closed)
	}
}

func TestManagerExpireIdle(t *testing.T) {
	m, _ := newTestManager(t, 20*time.Millisecond)
	stale := m.Create()
	time.Sleep(40 * time.Millisecond)
	fresh := m.Create()

	if n := m.ExpireIdle(context.Background()); n != 1 {
		t.Fatalf("Expected 1 expired session, got %d", n)
	}
	if _, err := m.Get(stale.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("Expected stale session to be gone, got %v", err)
	}
	if _, err := m.Get(fresh.ID); err != nil {
		t.Errorf("Expected fresh session to survive: %v", err)
	}
}

func TestManagerGetExtendsDeadline(t *testing.T) {
	m, _ := newTestManager(t, time.Hour)
	s := m.Create()
	before, _ := m.Session(s.ID)

	time.Sleep(5 * time.Millisecond)
	m.Get(s.ID)

	after, _ := m.Session(s.ID)
	if !after.ExpiresAt.After(before.ExpiresAt) {
		t.Errorf("Expected deadline to move forward, %s -> %s", before.ExpiresAt, after.ExpiresAt)
	}
}

func TestManagerCleanupLoop(t *testing.T) {
	m, _ := newTestManager(t, 10*time.Millisecond)
	var mu sync.Mutex
	closed := 0
	m.OnClose(func(string) {
		mu.Lock()
		closed++
		mu.Unlock()
	})
	m.Create()

	m.Start(5 * time.Millisecond)
	defer m.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := closed
		mu.Unlock()
		if n == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("Expected cleanup loop to expire the session")
		}
		time.Sleep(5 * time.Millisecond)
	}

	if m.Len() != 0 {
		t.Errorf("Expected no sessions left, got %d", m.Len())
	}
}
