package auth

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"contratia/internal/core/apperror"
	"contratia/internal/core/id"
	"contratia/internal/domain/workflow"
)

func hasCode(err error, code string) bool {
	appErr, ok := apperror.AsAppError(err)
	return ok && appErr.Code == code
}

// Mock objects

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[id.ID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[id.ID]*User),
	}
}

func (m *mockUserRepo) add(u *User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *mockUserRepo) Create(ctx context.Context, u *User) error {
	m.add(u)
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	u, ok := m.byID[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID.String())
	}
	return u, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, apperror.NewNotFound("user", email)
	}
	return u, nil
}

func (m *mockUserRepo) Update(ctx context.Context, u *User) error {
	m.add(u)
	return nil
}

func (m *mockUserRepo) Delete(ctx context.Context, userID id.ID) error {
	u, ok := m.byID[userID]
	if !ok {
		return apperror.NewNotFound("user", userID.String())
	}
	delete(m.byEmail, u.Email)
	delete(m.byID, userID)
	return nil
}

func (m *mockUserRepo) List(ctx context.Context, filter UserFilter) ([]User, int, error) {
	users := make([]User, 0, len(m.byID))
	for _, u := range m.byID {
		users = append(users, *u)
	}
	return users, len(users), nil
}

func (m *mockUserRepo) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := m.byEmail[email]
	return ok, nil
}

type mockTokenRepo struct {
	tokens  map[string]*RefreshToken // by hash
	revoked []string                 // revoke reasons, in order
}

func newMockTokenRepo() *mockTokenRepo {
	return &mockTokenRepo{tokens: make(map[string]*RefreshToken)}
}

func (m *mockTokenRepo) SaveRefreshToken(ctx context.Context, t *RefreshToken) error {
	m.tokens[t.TokenHash] = t
	return nil
}

func (m *mockTokenRepo) GetRefreshToken(ctx context.Context, hash string) (*RefreshToken, error) {
	t, ok := m.tokens[hash]
	if !ok {
		return nil, apperror.NewNotFound("refresh_token", hash)
	}
	return t, nil
}

func (m *mockTokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	for _, t := range m.tokens {
		if t.ID == tokenID {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	m.revoked = append(m.revoked, reason)
	return nil
}

func (m *mockTokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	for _, t := range m.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now()
			t.RevokedAt = &now
			t.RevokedReason = reason
		}
	}
	m.revoked = append(m.revoked, reason)
	return nil
}

func (m *mockTokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	count := 0
	for hash, t := range m.tokens {
		if time.Now().After(t.ExpiresAt) {
			delete(m.tokens, hash)
			count++
		}
	}
	return count, nil
}

type mockTxManager struct{}

func (m *mockTxManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService() (*Service, *mockUserRepo, *mockTokenRepo) {
	userRepo := newMockUserRepo()
	tokenRepo := newMockTokenRepo()
	svc := NewService(
		userRepo,
		tokenRepo,
		&mockTxManager{},
		NewJWTService(DefaultJWTConfig("test-secret")),
		DefaultServiceConfig(),
	)
	return svc, userRepo, tokenRepo
}

func seedUser(t *testing.T, repo *mockUserRepo, email, password string, role workflow.Role) *User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	user := NewUser(email, string(hash), role)
	repo.add(user)
	return user
}

// Tests

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "nuevo@example.com",
		Password: "Password123",
		Role:     "employee",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Role != workflow.RoleEmployee {
		t.Errorf("Role = %q, want %q", user.Role, workflow.RoleEmployee)
	}
	if !user.IsActive {
		t.Error("new user should be active")
	}

	// Duplicate email is rejected.
	_, err = svc.Register(ctx, RegisterRequest{
		Email:    "nuevo@example.com",
		Password: "Password123",
		Role:     "employee",
	})
	if !hasCode(err, apperror.CodeConflict) {
		t.Errorf("expected conflict for duplicate email, got %v", err)
	}
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		req  RegisterRequest
	}{
		{"MissingEmail", RegisterRequest{Password: "Password123", Role: "employee"}},
		{"ShortPassword", RegisterRequest{Email: "a@b.c", Password: "short", Role: "employee"}},
		{"UnknownRole", RegisterRequest{Email: "a@b.c", Password: "Password123", Role: "manager"}},
		{"RoleWrongCase", RegisterRequest{Email: "a@b.c", Password: "Password123", Role: "Admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tt.req); !hasCode(err, apperror.CodeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestLogin(t *testing.T) {
	svc, userRepo, tokenRepo := newTestService()
	ctx := context.Background()

	seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleSupervisor)

	tokens, user, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected both tokens to be issued")
	}
	if user.LastLoginAt == nil {
		t.Error("expected LastLoginAt to be set")
	}
	if len(tokenRepo.tokens) != 1 {
		t.Errorf("expected 1 stored refresh token, got %d", len(tokenRepo.tokens))
	}

	// Stored token is hashed, never the raw value.
	if _, ok := tokenRepo.tokens[tokens.RefreshToken]; ok {
		t.Error("refresh token stored unhashed")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	user := seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleEmployee)

	_, _, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "wrong"})
	if !hasCode(err, apperror.CodeUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if user.FailedLoginAttempts != 1 {
		t.Errorf("FailedLoginAttempts = %d, want 1", user.FailedLoginAttempts)
	}
}

func TestLogin_LockoutAfterMaxAttempts(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleEmployee)

	for i := 0; i < DefaultServiceConfig().MaxLoginAttempts; i++ {
		_, _, _ = svc.Login(ctx, Credentials{Email: "user@example.com", Password: "wrong"})
	}

	// Even the correct password is rejected while locked.
	_, _, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "Password123"})
	if !hasCode(err, apperror.CodeForbidden) {
		t.Fatalf("expected forbidden for locked account, got %v", err)
	}
}

func TestRefreshToken_Rotation(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleTreasury)

	tokens, _, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	refreshed, err := svc.RefreshToken(ctx, tokens.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken failed: %v", err)
	}
	if refreshed.RefreshToken == tokens.RefreshToken {
		t.Error("expected a new refresh token on rotation")
	}

	// The old token cannot be replayed.
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); !hasCode(err, apperror.CodeUnauthorized) {
		t.Errorf("expected unauthorized for reused token, got %v", err)
	}
}

func TestChangeRole_RevokesSessions(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	user := seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleEmployee)

	tokens, _, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "Password123"})
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if err := svc.ChangeRole(ctx, user.ID, "supervisor"); err != nil {
		t.Fatalf("ChangeRole failed: %v", err)
	}
	if user.Role != workflow.RoleSupervisor {
		t.Errorf("Role = %q, want %q", user.Role, workflow.RoleSupervisor)
	}

	// The old session cannot mint tokens carrying the old role.
	if _, err := svc.RefreshToken(ctx, tokens.RefreshToken); err == nil {
		t.Error("expected refresh to fail after role change")
	}
}

func TestDeactivate(t *testing.T) {
	svc, userRepo, _ := newTestService()
	ctx := context.Background()

	user := seedUser(t, userRepo, "user@example.com", "Password123", workflow.RoleEmployee)

	if err := svc.Deactivate(ctx, user.ID); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}

	_, _, err := svc.Login(ctx, Credentials{Email: "user@example.com", Password: "Password123"})
	if !hasCode(err, apperror.CodeForbidden) {
		t.Errorf("expected forbidden for deactivated account, got %v", err)
	}
}
