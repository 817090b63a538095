package services

import (
	"sync"
	"testing"

	"github.com/terraincognita07/khare/internal/models"
)

func TestSessionStoreReplacesStateWholesale(t *testing.T) {
	store := NewSessionStore()
	if !store.State().Loading {
		t.Fatal("expected new store to be loading")
	}

	session := testSession("a@x.com", models.RoleClient)
	store.Set(models.AuthState{Session: &session})
	if store.State().Loading || store.State().Session == nil {
		t.Fatalf("unexpected state %+v", store.State())
	}

	store.Set(models.AuthState{})
	if store.State().Session != nil {
		t.Fatal("expected session to be cleared by a full replacement")
	}
}

func TestSessionStoreUnsubscribeAndDispose(t *testing.T) {
	store := NewSessionStore()
	calls := 0
	unsubscribe := store.Subscribe(func(models.AuthState) { calls++ })

	store.Set(models.AuthState{})
	unsubscribe()
	unsubscribe()
	store.Set(models.AuthState{})
	if calls != 1 {
		t.Fatalf("expected 1 notification, got %d", calls)
	}

	store.Dispose()
	if store.Set(models.AuthState{Loading: true}) {
		t.Fatal("expected writes after dispose to be dropped")
	}
	if store.State().Loading {
		t.Fatal("expected disposed store to keep its last state")
	}
	if !store.Disposed() {
		t.Fatal("expected store to report disposed")
	}
}

func TestSessionStoreConcurrentWrites(t *testing.T) {
	store := NewSessionStore()
	var mu sync.Mutex
	notified := 0
	store.Subscribe(func(models.AuthState) {
		mu.Lock()
		notified++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for index := 0; index < 50; index++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Set(models.AuthState{})
			_ = store.State()
		}()
	}
	wg.Wait()

	if notified != 50 {
		t.Fatalf("expected 50 notifications, got %d", notified)
	}
}
