package service

import (
	"context"
	"time"

	"storefront-service/internal/models"

	"github.com/google/uuid"
)

type Claims struct {
	UserID uuid.UUID
	Role   models.Role
	JTI    string
	Exp    time.Time
}

type TokenProvider interface {
	SignAccess(ctx context.Context, sub uuid.UUID, role string, ttl time.Duration) (token string, exp time.Time, err error)
	ParseAndValidateAccess(ctx context.Context, token string) (*Claims, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

// CacheClient — Redis-обвязка для лимита попыток входа и блэклиста access-токенов.
// Может быть nil: тогда оба механизма выключены.
type CacheClient interface {
	AllowLoginAttempt(ctx context.Context, key string, limit int64, window time.Duration) (bool, error)
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password, ip string) (token string, exp time.Time, user *models.User, err error)
	Logout(ctx context.Context, claims *Claims) error
	Me(ctx context.Context) (*models.User, error)

	// административное управление пользователями
	ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error)
}
