package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/bloghive/bloghive-api/internal/domain/entity"
	"github.com/bloghive/bloghive-api/internal/domain/repository"
	"github.com/bloghive/bloghive-api/pkg/helpers"
	"github.com/bloghive/bloghive-api/pkg/mailer"
	tpl "github.com/bloghive/bloghive-api/pkg/mailer/templates"
)

// Publisher enqueues email jobs; satisfied by helpers.RabbitPublisher.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// AuthService handles registration, login and the password-reset flow.
type AuthService struct {
	Users         repository.UserRepository
	Tokens        repository.TokenStore
	JWT           *helpers.JWTManager
	Redis         *redis.Client
	Logger        *logrus.Logger
	Pub           Publisher
	ResetTokenTTL time.Duration
	ResetURL      string
	MailEnabled   bool
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

func sessionKey(userID string) string { return "user:session:" + userID }

// Session is the record kept in Redis while a login is active. The Auth
// middleware requires it, so deleting it invalidates outstanding tokens.
type Session struct {
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Role      entity.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

// Register creates an account. The role is always forced to "user"; admin
// accounts only come from the seed tool or a role change by another admin.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     entity.RoleUser,
	}
	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.enqueueEmail(ctx, u.Email, tpl.Welcome, map[string]any{"Username": u.Username})
	return u, nil
}

// Login verifies credentials. A blocked account is rejected even with the
// correct password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, TokenPair{}, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return nil, TokenPair{}, ErrAccountBlocked
	}
	pair, err := s.IssueTokens(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// IssueTokens generates an access/refresh pair and records a session in Redis.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID, u.Role)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		sess := Session{
			UserID:    u.ID,
			Username:  u.Username,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: time.Now().UTC(),
		}
		if rErr := helpers.RedisSetJSON(ctx, s.Redis, key, sess, 24*time.Hour); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("failed to store session")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the token pair. The role claim is re-read from the
// database so a role change propagates on refresh at the latest.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, ErrInvalidCredentials
	}
	if u.IsBlocked {
		return TokenPair{}, ErrAccountBlocked
	}
	return s.IssueTokens(ctx, u)
}

// ForgotPassword issues an opaque reset token and enqueues the reset email.
// It reports nothing about whether the email exists.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil
		}
		return err
	}

	tok, err := helpers.GenToken(32)
	if err != nil {
		return err
	}
	ttl := s.ResetTokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	if err := s.Tokens.SaveResetToken(ctx, tok, u.ID, ttl); err != nil {
		return err
	}

	s.enqueueEmail(ctx, u.Email, tpl.ResetPassword, map[string]any{
		"Username":  u.Username,
		"ResetURL":  s.ResetURL + "/" + tok,
		"ExpiresIn": ttl.String(),
	})
	return nil
}

// ResetPassword consumes a reset token and installs the new password hash.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	uid, err := s.Tokens.ConsumeResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return err
	}
	return s.Users.UpdatePassword(ctx, uid, hash)
}

// Logout drops the Redis session.
func (s *AuthService) Logout(ctx context.Context, userID string) {
	if s.Redis != nil {
		_ = helpers.RedisDel(ctx, s.Redis, sessionKey(userID))
	}
}

func (s *AuthService) enqueueEmail(ctx context.Context, to, template string, data map[string]any) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	job := mailer.EmailJob{To: to, Template: template, Data: data}
	if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("template", template).Warn("failed to enqueue email job")
	}
}
