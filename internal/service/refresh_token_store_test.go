package service

import (
	"testing"
	"time"
)

func TestMemoryRefreshTokenStore_StoreExistsRevoke(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-1", "user-1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-1")
	if err != nil || !ok {
		t.Fatalf("expected jti-1 to exist, ok=%v err=%v", ok, err)
	}

	if err := store.Revoke("jti-1"); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	ok, err = store.Exists("jti-1")
	if err != nil || ok {
		t.Fatalf("expected jti-1 to be revoked, ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStore_ExpiredTokenIsGone(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("jti-old", "user-1", -time.Second); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("jti-old")
	if err != nil || ok {
		t.Fatalf("expired jti must not exist, ok=%v err=%v", ok, err)
	}
}

func TestMemoryRefreshTokenStore_StoreSweepsExpired(t *testing.T) {
	store := NewMemoryRefreshTokenStore().(*memoryRefreshTokenStore)

	if err := store.Store("jti-old", "user-1", -time.Second); err != nil {
		t.Fatalf("store: %v", err)
	}
	if err := store.Store("jti-new", "user-1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}

	store.mu.Lock()
	_, stale := store.expires["jti-old"]
	size := len(store.expires)
	store.mu.Unlock()
	if stale || size != 1 {
		t.Fatalf("expected sweep to purge expired entries, stale=%v size=%d", stale, size)
	}
}

func TestMemoryRefreshTokenStore_IgnoresBlankJTI(t *testing.T) {
	store := NewMemoryRefreshTokenStore()

	if err := store.Store("   ", "user-1", time.Minute); err != nil {
		t.Fatalf("store: %v", err)
	}
	ok, err := store.Exists("   ")
	if err != nil || ok {
		t.Fatalf("blank jti must never exist, ok=%v err=%v", ok, err)
	}
}
