package service

import (
	"context"
	"testing"

	"twin-llm/internal/domain"
)

func TestMemoryDraftStore_SaveGetDelete(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "s1"); err != nil || ok {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	draft := domain.DraftProfile{
		State:      domain.StateProfile,
		AvatarType: domain.AvatarTypeLovedOne,
		FirstName:  "Rosa",
	}
	if err := store.Save(ctx, "s1", draft); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := store.Get(ctx, "s1")
	if err != nil || !ok {
		t.Fatalf("get after save: ok=%v err=%v", ok, err)
	}
	if got.FirstName != "Rosa" || got.State != domain.StateProfile {
		t.Fatalf("draft mismatch: %+v", got)
	}

	// Un Save posterior pisa el borrador completo.
	draft.FirstName = "Rosa Maria"
	if err := store.Save(ctx, "s1", draft); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, _, _ = store.Get(ctx, "s1")
	if got.FirstName != "Rosa Maria" {
		t.Fatalf("save did not overwrite: %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "s1"); ok {
		t.Fatalf("draft should be gone after delete")
	}
}

func TestMemoryDraftStore_SessionsAreIsolated(t *testing.T) {
	store := NewMemoryDraftStore()
	ctx := context.Background()

	_ = store.Save(ctx, "s1", domain.DraftProfile{State: domain.StateProfile, AvatarType: domain.AvatarTypeSelf})
	_ = store.Save(ctx, "s2", domain.DraftProfile{State: domain.StateTypeSelect})

	d1, _, _ := store.Get(ctx, "s1")
	d2, _, _ := store.Get(ctx, "s2")
	if d1.State == d2.State {
		t.Fatalf("sessions must not share drafts")
	}

	_ = store.Delete(ctx, "s1")
	if _, ok, _ := store.Get(ctx, "s2"); !ok {
		t.Fatalf("deleting one session must not affect another")
	}
}
