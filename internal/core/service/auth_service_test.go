package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/sweetshop/sweetshop-api/internal/core/domain"
	"github.com/sweetshop/sweetshop-api/internal/core/ports"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/db/memory"
	"github.com/sweetshop/sweetshop-api/internal/infrastructure/security"
)

type stubRevoker struct {
	mu        sync.Mutex
	revoked   map[string]time.Time
	revokeErr error
	checkErr  error
}

func newStubRevoker() *stubRevoker {
	return &stubRevoker{revoked: make(map[string]time.Time)}
}

func (r *stubRevoker) Revoke(_ context.Context, tokenID string, expiresAt time.Time) error {
	if r.revokeErr != nil {
		return r.revokeErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[tokenID] = expiresAt
	return nil
}

func (r *stubRevoker) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	if r.checkErr != nil {
		return false, r.checkErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.revoked[tokenID]
	return ok, nil
}

type authFixture struct {
	users   *memory.UserRepository
	tokens  *security.JWTService
	revoker *stubRevoker
	svc     *AuthService
}

func newAuthFixture() *authFixture {
	f := &authFixture{
		users:   memory.NewUserRepository(),
		tokens:  security.NewJWTService("secret", time.Hour),
		revoker: newStubRevoker(),
	}
	f.svc = NewAuthService(f.users, security.NewBcryptHasher(4), f.tokens, f.revoker, domain.DefaultAdminMarker, zerolog.Nop())
	return f
}

func TestAuthService_Register_Success(t *testing.T) {
	f := newAuthFixture()

	user, err := f.svc.Register(context.Background(), ports.RegisterInput{Username: "alice", Password: "pass123", FullName: " Alice A "})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected generated id")
	}
	if user.PasswordHash == "pass123" || user.PasswordHash == "" {
		t.Fatalf("expected password to be hashed")
	}
	if user.IsAdmin {
		t.Fatalf("alice must not be admin")
	}
	if user.FullName != "Alice A" {
		t.Fatalf("expected trimmed full name, got %q", user.FullName)
	}
}

func TestAuthService_Register_AdminMarker(t *testing.T) {
	f := newAuthFixture()

	for _, name := range []string{"admin", "shopADMIN", "Administrator"} {
		user, err := f.svc.Register(context.Background(), ports.RegisterInput{Username: name, Password: "pass123"})
		if err != nil {
			t.Fatalf("Register(%s): %v", name, err)
		}
		if !user.IsAdmin {
			t.Fatalf("%s should be admin", name)
		}
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	f := newAuthFixture()

	cases := []ports.RegisterInput{
		{Username: "", Password: "pass123"},
		{Username: "   ", Password: "pass123"},
		{Username: "al", Password: "pass123"},
		{Username: "alice", Password: "12345"},
	}
	for _, in := range cases {
		if _, err := f.svc.Register(context.Background(), in); !errors.Is(err, domain.ErrValidation) {
			t.Fatalf("%+v: expected validation error, got %v", in, err)
		}
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()

	if _, err := f.svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "pass123"}); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Username: "bob", Password: "other123"}); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Username: "Bob", Password: "pass123"}); err != nil {
		t.Fatalf("usernames are case-sensitive, got %v", err)
	}
}

func TestAuthService_Register_ConcurrentDuplicates(t *testing.T) {
	f := newAuthFixture()

	const n = 8
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Register(context.Background(), ports.RegisterInput{Username: "race", Password: "pass123"})
		}(i)
	}
	wg.Wait()

	var ok int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case !errors.Is(err, domain.ErrUserExists):
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 {
		t.Fatalf("expected exactly one registration, got %d", ok)
	}
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	user, err := f.svc.Register(ctx, ports.RegisterInput{Username: "carol", Password: "pass123"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	tok, err := f.svc.Login(ctx, "carol", "pass123")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if tok.TokenType != "bearer" {
		t.Fatalf("expected bearer token type, got %s", tok.TokenType)
	}

	claims, err := f.tokens.Verify(tok.Token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Subject != user.ID {
		t.Fatalf("expected subject %s, got %s", user.ID, claims.Subject)
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Username: "dave", Password: "pass123"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, wrongPass := f.svc.Login(ctx, "dave", "nope123")
	_, unknown := f.svc.Login(ctx, "ghost", "pass123")
	_, empty := f.svc.Login(ctx, "", "")

	for _, err := range []error{wrongPass, unknown, empty} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	}
	if wrongPass.Error() != unknown.Error() {
		t.Fatalf("unknown user and wrong password must be indistinguishable")
	}
}

func TestAuthService_Logout(t *testing.T) {
	f := newAuthFixture()
	ctx := context.Background()
	if _, err := f.svc.Register(ctx, ports.RegisterInput{Username: "erin", Password: "pass123"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	tok, err := f.svc.Login(ctx, "erin", "pass123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if err := f.svc.Logout(ctx, tok.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	claims, _ := f.tokens.Verify(tok.Token)
	if revoked, _ := f.revoker.IsRevoked(ctx, claims.TokenID); !revoked {
		t.Fatalf("expected token to be revoked")
	}

	if err := f.svc.Logout(ctx, "garbage"); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for bad token, got %v", err)
	}
}

func TestAuthService_Logout_WithoutRevocationBackend(t *testing.T) {
	users := memory.NewUserRepository()
	tokens := security.NewJWTService("secret", time.Hour)
	svc := NewAuthService(users, security.NewBcryptHasher(4), tokens, nil, domain.DefaultAdminMarker, zerolog.Nop())

	raw, _, err := tokens.Issue("someone")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Logout(context.Background(), raw); err != nil {
		t.Fatalf("logout with no revocation backend must succeed, got %v", err)
	}
}
