package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"twin-llm/internal/domain"
	"twin-llm/internal/llm"
)

func TestPortrait_EmptyPhotosFailsBeforeUpstream(t *testing.T) {
	generator := &llm.MockImageGenerator{URL: "https://img.example/p.png"}
	svc := NewPortraitService(generator, newMockAvatarRepo())

	_, err := svc.Generate(context.Background(), "user-1", nil, "")
	var fieldErr *FieldError
	if !errors.As(err, &fieldErr) || fieldErr.Field != "photos" {
		t.Fatalf("expected field error naming photos, got %v", err)
	}
	if generator.Calls != 0 {
		t.Fatalf("generator must not be called without photos")
	}
}

func TestPortrait_GeneratesHeadshotPrompt(t *testing.T) {
	generator := &llm.MockImageGenerator{URL: "https://img.example/p.png"}
	svc := NewPortraitService(generator, newMockAvatarRepo())

	url, err := svc.Generate(context.Background(), "user-1", []string{"photo-1.jpg"}, "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if url != "https://img.example/p.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if !strings.Contains(generator.LastPrompt, "LinkedIn profile picture") {
		t.Fatalf("composition prompt missing, got %q", generator.LastPrompt)
	}
}

func TestPortrait_SavesCompositeOnOwnedAvatar(t *testing.T) {
	avatars := newMockAvatarRepo(domain.Avatar{ID: "avatar-1", UserID: "user-1"})
	generator := &llm.MockImageGenerator{URL: "https://img.example/p.png"}
	svc := NewPortraitService(generator, avatars)

	if _, err := svc.Generate(context.Background(), "user-1", []string{"photo"}, "avatar-1"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if avatars.lastCompositeID != "avatar-1" || avatars.lastCompositeURL != "https://img.example/p.png" {
		t.Fatalf("composite image not saved: %s %s", avatars.lastCompositeID, avatars.lastCompositeURL)
	}
}

func TestPortrait_ForeignAvatarForbidden(t *testing.T) {
	avatars := newMockAvatarRepo(domain.Avatar{ID: "avatar-1", UserID: "someone-else"})
	generator := &llm.MockImageGenerator{URL: "x"}
	svc := NewPortraitService(generator, avatars)

	_, err := svc.Generate(context.Background(), "user-1", []string{"photo"}, "avatar-1")
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// La autorizacion corre antes del upstream: un pedido ajeno no
	// genera imagen ni escribe el compuesto.
	if generator.Calls != 0 {
		t.Fatalf("generator must not be called for foreign avatars")
	}
	if avatars.lastCompositeID != "" {
		t.Fatalf("composite must not be written for foreign avatars")
	}
}

func TestPortrait_UpstreamFailure(t *testing.T) {
	generator := &llm.MockImageGenerator{Err: errors.New("dall-e down")}
	svc := NewPortraitService(generator, newMockAvatarRepo())

	_, err := svc.Generate(context.Background(), "user-1", []string{"photo"}, "")
	if !errors.Is(err, ErrUpstreamFailure) {
		t.Fatalf("expected ErrUpstreamFailure, got %v", err)
	}
}
