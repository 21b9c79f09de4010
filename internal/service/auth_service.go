package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/feelmap/feelmap-backend/internal/config"
	"github.com/feelmap/feelmap-backend/internal/model"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
	ErrTokenInvalid       = errors.New("token invalid")
)

// AdminClaims are the JWT claims of an admin session token.
type AdminClaims struct {
	AdminID int    `json:"admin_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

type adminStore interface {
	List(ctx context.Context) ([]model.Admin, error)
	GetByEmail(ctx context.Context, email string) (*model.Admin, error)
	GetByID(ctx context.Context, id int) (*model.Admin, error)
}

// AuthService issues and validates admin JWTs. Each admin has at most one
// live session: the token's JTI is stored in Redis and a later login
// overwrites it, invalidating older tokens.
type AuthService struct {
	store     adminStore
	rdb       *redis.Client
	jwtSecret []byte
	jwtExpiry time.Duration
	log       zerolog.Logger
}

func NewAuthService(store adminStore, rdb *redis.Client, cfg *config.Config, log zerolog.Logger) *AuthService {
	return &AuthService{
		store:     store,
		rdb:       rdb,
		jwtSecret: []byte(cfg.JWTSecret),
		jwtExpiry: cfg.JWTExpiry,
		log:       log.With().Str("component", "auth_service").Logger(),
	}
}

// ListAdmins returns every admin account. Password hashes never serialize.
func (s *AuthService) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	return s.store.List(ctx)
}

// Login verifies credentials and returns a signed token with the admin it
// belongs to. Unknown email, wrong password and a disabled account are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *model.Admin, error) {
	admin, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if admin == nil || !admin.IsActive {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	jti := uuid.NewString()
	now := time.Now()
	claims := AdminClaims{
		AdminID: admin.ID,
		Email:   admin.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtExpiry)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", nil, err
	}

	sessionKey := config.CacheKey.AdminSessionKey(admin.ID)
	if err := s.rdb.Set(ctx, sessionKey, jti, s.jwtExpiry).Err(); err != nil {
		return "", nil, err
	}

	s.log.Info().Int("admin_id", admin.ID).Msg("admin logged in")
	return token, admin, nil
}

// Logout drops the admin's session, invalidating every outstanding token.
func (s *AuthService) Logout(ctx context.Context, adminID int) error {
	return s.rdb.Del(ctx, config.CacheKey.AdminSessionKey(adminID)).Err()
}

// Validate parses a token, checks its signature and expiry, and verifies the
// JTI still matches the stored session.
func (s *AuthService) Validate(ctx context.Context, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	storedJTI, err := s.rdb.Get(ctx, config.CacheKey.AdminSessionKey(claims.AdminID)).Result()
	if err != nil || storedJTI != claims.ID {
		return nil, ErrSessionInvalidated
	}
	return claims, nil
}
