package service

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"twin-llm/internal/domain"
)

type mockUserRepo struct {
	byEmail map[string]domain.User
	byID    map[string]domain.User
}

func newMockUserRepo(users ...domain.User) *mockUserRepo {
	m := &mockUserRepo{
		byEmail: make(map[string]domain.User),
		byID:    make(map[string]domain.User),
	}
	for _, u := range users {
		m.byEmail[u.Email] = u
		m.byID[u.ID] = u
	}
	return m
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) error {
	m.byEmail[user.Email] = user
	m.byID[user.ID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func TestUserService_CreateAndAuthenticate(t *testing.T) {
	users := newMockUserRepo()
	svc := NewUserService(zap.NewNop(), users)

	created, err := svc.CreateUser(context.Background(), CreateUserInput{
		Email:    "  Rosa@Example.COM ",
		Password: "secreto123",
	})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.Email != "rosa@example.com" {
		t.Fatalf("email not normalized: %q", created.Email)
	}
	if created.PasswordHash == "" || created.PasswordHash == "secreto123" {
		t.Fatalf("password must be hashed")
	}

	authed, err := svc.Authenticate(context.Background(), "rosa@example.com", "secreto123")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if authed.ID != created.ID {
		t.Fatalf("authenticated wrong user")
	}

	if _, err := svc.Authenticate(context.Background(), "rosa@example.com", "otra"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestUserService_DuplicateEmail(t *testing.T) {
	users := newMockUserRepo(domain.User{ID: "u1", Email: "rosa@example.com"})
	svc := NewUserService(zap.NewNop(), users)

	_, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "rosa@example.com", Password: "x1234567"})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestUserService_InvalidInput(t *testing.T) {
	svc := NewUserService(zap.NewNop(), newMockUserRepo())

	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Password: "x"}); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
	if _, err := svc.CreateUser(context.Background(), CreateUserInput{Email: "a@b.com"}); !errors.Is(err, ErrMissingField) {
		t.Fatalf("expected ErrMissingField, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "nadie@example.com", "clave"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}
