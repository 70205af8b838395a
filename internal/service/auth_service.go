package service

import (
	"context"
	"strings"
	"time"

	"storefront-service/internal/models"
	"storefront-service/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = time.Minute
)

type authService struct {
	users  repository.UserRepo
	hasher PasswordHasher
	tokens TokenProvider
	cache  CacheClient // может быть nil

	accessTTL time.Duration
	now       func() time.Time
	log       *zap.Logger
}

func NewAuthService(
	users repository.UserRepo,
	hasher PasswordHasher,
	tokens TokenProvider,
	cache CacheClient,
	accessTTL time.Duration,
	log *zap.Logger,
) AuthService {
	return &authService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		cache:     cache,
		accessTTL: accessTTL,
		now:       time.Now,
		log:       log,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.TrimSpace(in.Email)
	username := strings.TrimSpace(in.Username)

	if exists, err := s.users.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailTaken
	}

	if exists, err := s.users.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameTaken
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: hash,
		Role:     models.RoleUser,
	}

	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.log.Info("Зарегистрирован новый пользователь", zap.String("user_id", u.ID.String()))
	return u, nil
}

func (s *authService) Login(ctx context.Context, email, password, ip string) (string, time.Time, *models.User, error) {
	if s.cache != nil {
		key := "login:" + strings.ToLower(strings.TrimSpace(email)) + ":" + ip
		allowed, err := s.cache.AllowLoginAttempt(ctx, key, loginAttemptLimit, loginAttemptWindow)
		if err != nil {
			// Redis лёг — вход важнее лимита, логируем и пускаем дальше
			s.log.Warn("Проверка лимита входа недоступна", zap.Error(err))
		} else if !allowed {
			return "", time.Time{}, nil, ErrRateLimited
		}
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	if user == nil || !s.hasher.Compare(user.Password, password) {
		return "", time.Time{}, nil, ErrInvalidCredentials
	}

	access, exp, err := s.tokens.SignAccess(ctx, user.ID, string(user.Role), s.accessTTL)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	return access, exp, user, nil
}

// Logout помещает jti текущего access-токена в блэклист до его истечения.
func (s *authService) Logout(ctx context.Context, claims *Claims) error {
	if _, _, err := requireAuth(ctx); err != nil {
		return err
	}
	if s.cache == nil || claims == nil || claims.JTI == "" {
		return nil
	}
	ttl := time.Until(claims.Exp)
	if ttl <= 0 {
		return nil
	}
	return s.cache.BlacklistToken(ctx, claims.JTI, ttl)
}

func (s *authService) Me(ctx context.Context) (*models.User, error) {
	userID, _, err := requireAuth(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ListUsers(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, 0, err
	}
	return s.users.List(ctx, limit, offset)
}

func (s *authService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *authService) ChangeRole(ctx context.Context, id uuid.UUID, role models.Role) (*models.User, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	ok, err := s.users.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrUserNotFound
	}
	return s.users.GetByID(ctx, id)
}
