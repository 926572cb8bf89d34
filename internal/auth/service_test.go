package auth

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/roicid/proyectomodulo2/internal/users"
)

// failingStore は全操作で同じエラーを返すストアです。
type failingStore struct {
	err error
}

func (s *failingStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return nil, s.err
}

func (s *failingStore) FindProfile(ctx context.Context, email string) (*users.Profile, error) {
	return nil, s.err
}

func (s *failingStore) Insert(ctx context.Context, user *users.User) error {
	return s.err
}

func (s *failingStore) Close() error {
	return nil
}

func newTestService(t *testing.T, store users.Store) *Service {
	t.Helper()
	return NewService(store, NewBcryptHasher(bcrypt.MinCost), newTestTokens(t))
}

func assertAuthError(t *testing.T, err error, kind error, message string) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Message != message {
		t.Fatalf("expected message %q, got %v", message, err)
	}
}

func TestServiceSignupStoresHash(t *testing.T) {
	store := users.NewMemoryStore()
	service := newTestService(t, store)
	ctx := context.Background()

	profile, err := service.Signup(ctx, "Ana@Example.com", "pa55word")
	if err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	if profile.Email != "ana@example.com" || profile.ID == "" {
		t.Fatalf("unexpected profile: %#v", profile)
	}

	user, err := store.FindByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("FindByEmail returned error: %v", err)
	}
	if user.Password == "pa55word" {
		t.Fatal("plaintext password was stored")
	}
	if ok, err := NewBcryptHasher(bcrypt.MinCost).Compare("pa55word", user.Password); err != nil || !ok {
		t.Fatalf("stored hash does not verify: %v %v", ok, err)
	}
}

func TestServiceSignupValidation(t *testing.T) {
	store := users.NewMemoryStore()
	service := newTestService(t, store)

	for _, tc := range []struct{ email, password string }{
		{"", "x"},
		{"   ", "x"},
		{"a@example.com", ""},
	} {
		_, err := service.Signup(context.Background(), tc.email, tc.password)
		assertAuthError(t, err, ErrValidation, MsgSignupMissingFields)
	}

	_, err := service.Signup(context.Background(), "a@example.com", strings.Repeat("p", 73))
	assertAuthError(t, err, ErrValidation, MsgPasswordTooLong)

	if store.Len() != 0 {
		t.Fatalf("validation failures must not write, got %d users", store.Len())
	}
}

func TestServiceSignupConflict(t *testing.T) {
	store := users.NewMemoryStore()
	service := newTestService(t, store)
	ctx := context.Background()

	if _, err := service.Signup(ctx, "ana@example.com", "first"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}
	_, err := service.Signup(ctx, "ANA@example.com", "second")
	assertAuthError(t, err, ErrConflict, MsgEmailTaken)

	if store.Len() != 1 {
		t.Fatalf("expected exactly one user, got %d", store.Len())
	}
}

func TestServiceLogin(t *testing.T) {
	store := users.NewMemoryStore()
	service := newTestService(t, store)
	ctx := context.Background()

	if _, err := service.Signup(ctx, "ana@example.com", "pa55word"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	session, err := service.Login(ctx, "ana@example.com", "pa55word")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if session.Token == "" || session.User.Email != "ana@example.com" {
		t.Fatalf("unexpected session: %#v", session)
	}

	claims, err := service.tokens.Verify(session.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserWithoutPass.ID != session.User.ID {
		t.Fatalf("token user %q, want %q", claims.UserWithoutPass.ID, session.User.ID)
	}
}

func TestServiceLoginFailures(t *testing.T) {
	store := users.NewMemoryStore()
	service := newTestService(t, store)
	ctx := context.Background()
	if _, err := service.Signup(ctx, "ana@example.com", "pa55word"); err != nil {
		t.Fatalf("Signup returned error: %v", err)
	}

	_, err := service.Login(ctx, "", "pa55word")
	assertAuthError(t, err, ErrValidation, MsgLoginMissingFields)

	_, err = service.Login(ctx, "ana@example.com", "")
	assertAuthError(t, err, ErrValidation, MsgLoginMissingFields)

	_, err = service.Login(ctx, "nobody@example.com", "pa55word")
	assertAuthError(t, err, ErrAuthentication, MsgEmailNotFound)

	_, err = service.Login(ctx, "ana@example.com", "wrong")
	assertAuthError(t, err, ErrAuthentication, MsgIncorrectPassword)
}

func TestServiceInfrastructureErrors(t *testing.T) {
	storeErr := errors.New("connection refused")
	service := newTestService(t, &failingStore{err: storeErr})
	ctx := context.Background()

	_, err := service.Signup(ctx, "ana@example.com", "pa55word")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
	var authErr *Error
	if errors.As(err, &authErr) {
		t.Fatalf("infrastructure error must not be a user-facing error: %v", err)
	}

	_, err = service.Login(ctx, "ana@example.com", "pa55word")
	if !errors.Is(err, storeErr) {
		t.Fatalf("expected store error, got %v", err)
	}
}
