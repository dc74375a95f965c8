// Package service implements authentication: credential checks and access
// token issuance.
package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"counsel_portal_backend/internal/auth/repository"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/config"
	"counsel_portal_backend/platform/logger"
)

const accessTokenType = "access"

// Valid account roles.
const (
	RoleAdmin     = "admin"
	RoleCounselor = "counselor"
)

// Store is the persistence surface the auth service needs.
type Store interface {
	Create(ctx context.Context, name, email, passwordHash, role string) (repository.User, error)
	GetByEmail(ctx context.Context, email string) (repository.User, error)
	GetByID(ctx context.Context, id int64) (repository.User, error)
	ListCounselors(ctx context.Context) ([]repository.User, error)
}

type Service struct {
	store Store
	cfg   config.AuthServiceConfig
	log   *logger.Logger
}

func New(store Store, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{store: store, cfg: cfg, log: log}
}

// Login checks credentials and returns a signed access token with the user.
func (s *Service) Login(ctx context.Context, email, password string) (string, repository.User, error) {
	user, err := s.store.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, repository.ErrNotFound) {
		s.log.AuthEvent("login", email, false, "unknown email")
		return "", repository.User{}, apperr.Unauthorized("invalid credentials")
	}
	if err != nil {
		return "", repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.AuthEvent("login", email, false, "bad password")
		return "", repository.User{}, apperr.Unauthorized("invalid credentials")
	}

	token, err := s.signAccessToken(user)
	if err != nil {
		return "", repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	s.log.AuthEvent("login", email, true, "")
	return token, user, nil
}

// Register creates a new account. Only admins reach this through the router.
func (s *Service) Register(ctx context.Context, name, email, password, role string) (repository.User, error) {
	if role != RoleAdmin && role != RoleCounselor {
		return repository.User{}, apperr.Validation("role must be admin or counselor")
	}
	if len(password) < 8 {
		return repository.User{}, apperr.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	user, err := s.store.Create(ctx, strings.TrimSpace(name), strings.TrimSpace(email), string(hash), role)
	if errors.Is(err, repository.ErrEmailTaken) {
		return repository.User{}, apperr.Conflict("email already registered")
	}
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to create user", err)
	}
	return user, nil
}

func (s *Service) GetUser(ctx context.Context, id int64) (repository.User, error) {
	user, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.User{}, apperr.NotFound("user not found")
	}
	if err != nil {
		return repository.User{}, apperr.Wrap(apperr.KindInternal, "failed to load user", err)
	}
	return user, nil
}

func (s *Service) ListCounselors(ctx context.Context) ([]repository.User, error) {
	users, err := s.store.ListCounselors(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list counselors", err)
	}
	return users, nil
}

func (s *Service) signAccessToken(user repository.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  strconv.FormatInt(user.ID, 10),
		"name": user.Name,
		"role": user.Role,
		"type": accessTokenType,
		"iat":  now.Unix(),
		"exp":  now.Add(s.cfg.GetAccessTokenTTL()).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
}
