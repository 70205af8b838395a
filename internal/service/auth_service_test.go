package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/service"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Моки для всех зависимостей AuthService

// MockUserRepo
type MockUserRepo struct {
	CreateFunc           func(ctx context.Context, u *models.User) error
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	ExistsByEmailFunc    func(ctx context.Context, email string) (bool, error)
	ExistsByUsernameFunc func(ctx context.Context, username string) (bool, error)
	ListFunc             func(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	UpdateRoleFunc       func(ctx context.Context, id uuid.UUID, role models.Role) (bool, error)
}

func (m *MockUserRepo) Create(ctx context.Context, u *models.User) error {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, u)
	}
	return nil
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.GetByEmailFunc != nil {
		return m.GetByEmailFunc(ctx, email)
	}
	return nil, nil
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	if m.GetByUsernameFunc != nil {
		return m.GetByUsernameFunc(ctx, username)
	}
	return nil, nil
}

func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.ExistsByEmailFunc != nil {
		return m.ExistsByEmailFunc(ctx, email)
	}
	return false, nil
}

func (m *MockUserRepo) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if m.ExistsByUsernameFunc != nil {
		return m.ExistsByUsernameFunc(ctx, username)
	}
	return false, nil
}

func (m *MockUserRepo) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, limit, offset)
	}
	return nil, 0, nil
}

func (m *MockUserRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) (bool, error) {
	if m.UpdateRoleFunc != nil {
		return m.UpdateRoleFunc(ctx, id, role)
	}
	return false, nil
}

// MockPasswordHasher
type MockPasswordHasher struct {
	HashFunc    func(password string) (string, error)
	CompareFunc func(hash, password string) bool
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	if m.HashFunc != nil {
		return m.HashFunc(password)
	}
	return "hashed_" + password, nil
}

func (m *MockPasswordHasher) Compare(hash, password string) bool {
	if m.CompareFunc != nil {
		return m.CompareFunc(hash, password)
	}
	return hash == "hashed_"+password
}

// MockTokenProvider
type MockTokenProvider struct {
	SignAccessFunc func(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (string, time.Time, error)
	ParseFunc      func(ctx context.Context, token string) (*service.Claims, error)
}

func (m *MockTokenProvider) SignAccess(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (string, time.Time, error) {
	if m.SignAccessFunc != nil {
		return m.SignAccessFunc(ctx, sub, role, ttl)
	}
	return "access-token", time.Now().Add(ttl), nil
}

func (m *MockTokenProvider) ParseAndValidateAccess(ctx context.Context, token string) (*service.Claims, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(ctx, token)
	}
	return nil, errors.New("not implemented")
}

// MockCacheClient
type MockCacheClient struct {
	AllowLoginAttemptFunc  func(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
	BlacklistTokenFunc     func(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklistedFunc func(ctx context.Context, jti string) (bool, error)
}

func (m *MockCacheClient) AllowLoginAttempt(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
	if m.AllowLoginAttemptFunc != nil {
		return m.AllowLoginAttemptFunc(ctx, key, limit, window)
	}
	return true, nil
}

func (m *MockCacheClient) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if m.BlacklistTokenFunc != nil {
		return m.BlacklistTokenFunc(ctx, jti, ttl)
	}
	return nil
}

func (m *MockCacheClient) IsTokenBlacklisted(ctx context.Context, jti string) (bool, error) {
	if m.IsTokenBlacklistedFunc != nil {
		return m.IsTokenBlacklistedFunc(ctx, jti)
	}
	return false, nil
}

func newAuthService(users *MockUserRepo, cache service.CacheClient) service.AuthService {
	return service.NewAuthService(users, &MockPasswordHasher{}, &MockTokenProvider{}, cache, 15*time.Minute, zap.NewNop())
}

func TestAuth_Register(t *testing.T) {
	var created *models.User
	users := &MockUserRepo{
		CreateFunc: func(ctx context.Context, u *models.User) error {
			u.ID = uuid.New()
			created = u
			return nil
		},
	}
	svc := newAuthService(users, nil)

	u, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "  newbie  ",
		Email:    " newbie@example.com ",
		Password: "secret",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "newbie" || u.Email != "newbie@example.com" {
		t.Fatalf("expected trimmed fields, got %+v", u)
	}
	if u.Role != models.RoleUser {
		t.Fatalf("new user must get role=user, got %s", u.Role)
	}
	if created.Password != "hashed_secret" {
		t.Fatalf("password must be hashed, got %q", created.Password)
	}
}

func TestAuth_Register_Conflicts(t *testing.T) {
	users := &MockUserRepo{
		ExistsByEmailFunc: func(ctx context.Context, email string) (bool, error) {
			return email == "taken@example.com", nil
		},
		ExistsByUsernameFunc: func(ctx context.Context, username string) (bool, error) {
			return username == "taken", nil
		},
	}
	svc := newAuthService(users, nil)

	_, err := svc.Register(context.Background(), service.RegisterInput{
		Username: "fresh", Email: "taken@example.com", Password: "x",
	})
	if !errors.Is(err, service.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	_, err = svc.Register(context.Background(), service.RegisterInput{
		Username: "taken", Email: "fresh@example.com", Password: "x",
	})
	if !errors.Is(err, service.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAuth_Login(t *testing.T) {
	userID := uuid.New()
	users := &MockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			if email == "known@example.com" {
				return &models.User{ID: userID, Email: email, Password: "hashed_pass", Role: models.RoleUser}, nil
			}
			return nil, nil
		},
	}
	svc := newAuthService(users, nil)

	token, _, u, err := svc.Login(context.Background(), "known@example.com", "pass", "1.2.3.4")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if token != "access-token" || u.ID != userID {
		t.Fatalf("unexpected login result: token=%q user=%+v", token, u)
	}

	// неверный пароль и неизвестный email дают одну и ту же ошибку
	_, _, _, err = svc.Login(context.Background(), "known@example.com", "wrong", "1.2.3.4")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	_, _, _, err = svc.Login(context.Background(), "ghost@example.com", "pass", "1.2.3.4")
	if !errors.Is(err, service.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuth_Login_RateLimit(t *testing.T) {
	users := &MockUserRepo{
		GetByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{ID: uuid.New(), Email: email, Password: "hashed_pass"}, nil
		},
	}

	// лимит исчерпан
	cache := &MockCacheClient{
		AllowLoginAttemptFunc: func(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
			return false, nil
		},
	}
	svc := newAuthService(users, cache)
	_, _, _, err := svc.Login(context.Background(), "x@example.com", "pass", "1.2.3.4")
	if !errors.Is(err, service.ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Redis лёг — вход всё равно работает
	cacheDown := &MockCacheClient{
		AllowLoginAttemptFunc: func(ctx context.Context, key string, limit int64, window time.Duration) (bool, error) {
			return false, errors.New("connection refused")
		},
	}
	svc = newAuthService(users, cacheDown)
	if _, _, _, err := svc.Login(context.Background(), "x@example.com", "pass", "1.2.3.4"); err != nil {
		t.Fatalf("login must succeed when rate limiter is down, got %v", err)
	}
}

func TestAuth_Logout(t *testing.T) {
	var blacklisted string
	cache := &MockCacheClient{
		BlacklistTokenFunc: func(ctx context.Context, jti string, ttl time.Duration) error {
			blacklisted = jti
			if ttl <= 0 {
				t.Errorf("expected positive ttl, got %v", ttl)
			}
			return nil
		},
	}
	svc := newAuthService(&MockUserRepo{}, cache)

	userID := uuid.New()
	ctx := service.WithUserID(context.Background(), userID)

	claims := &service.Claims{
		UserID: userID,
		JTI:    "jti-123",
		Exp:    time.Now().Add(10 * time.Minute),
	}
	if err := svc.Logout(ctx, claims); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if blacklisted != "jti-123" {
		t.Fatalf("expected jti-123 blacklisted, got %q", blacklisted)
	}

	// без принципала в контексте — unauthorized
	if err := svc.Logout(context.Background(), claims); !errors.Is(err, service.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// истёкший токен блэклистить незачем
	blacklisted = ""
	expired := &service.Claims{UserID: userID, JTI: "jti-old", Exp: time.Now().Add(-time.Minute)}
	if err := svc.Logout(ctx, expired); err != nil {
		t.Fatalf("Logout expired: %v", err)
	}
	if blacklisted != "" {
		t.Fatal("expired token must not be blacklisted")
	}
}

func TestAuth_AdminOperations(t *testing.T) {
	target := uuid.New()
	users := &MockUserRepo{
		GetByIDFunc: func(ctx context.Context, id uuid.UUID) (*models.User, error) {
			if id == target {
				return &models.User{ID: id, Username: "target", Role: models.RoleAdmin}, nil
			}
			return nil, nil
		},
		UpdateRoleFunc: func(ctx context.Context, id uuid.UUID, role models.Role) (bool, error) {
			return id == target, nil
		},
	}
	svc := newAuthService(users, nil)

	adminCtx := service.WithRole(service.WithUserID(context.Background(), uuid.New()), models.RoleAdmin)
	userCtx := service.WithRole(service.WithUserID(context.Background(), uuid.New()), models.RoleUser)

	if _, err := svc.ChangeRole(userCtx, target, models.RoleAdmin); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	u, err := svc.ChangeRole(adminCtx, target, models.RoleAdmin)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if u.ID != target {
		t.Fatalf("unexpected user: %+v", u)
	}

	if _, err := svc.ChangeRole(adminCtx, uuid.New(), models.RoleAdmin); !errors.Is(err, service.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	if _, _, err := svc.ListUsers(userCtx, 10, 0); !errors.Is(err, service.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin list, got %v", err)
	}
}
