package session

import (
	"sync"
	"testing"

	"github.com/chargedocs/chargedocs/internal/core/domain"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()
	if store.Authenticated() {
		t.Fatal("new store must be unauthenticated")
	}

	store.Set(domain.Session{Token: "tok", UserID: "u1"})
	if !store.Authenticated() {
		t.Fatal("store must be authenticated after Set")
	}
	if store.Token() != "tok" || store.UserID() != "u1" {
		t.Fatalf("session = (%q, %q)", store.Token(), store.UserID())
	}

	store.Clear()
	if store.Authenticated() || store.Token() != "" || store.UserID() != "" {
		t.Fatal("Clear must drop the whole identity")
	}
}

func TestStoreConcurrentAccess(t *testing.T) {
	store := NewStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Set(domain.Session{Token: "tok", UserID: "u1"})
		}()
		go func() {
			defer wg.Done()
			_ = store.Token()
			store.Clear()
		}()
	}
	wg.Wait()
}
