package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/hash"
	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/repo"
	"github.com/Skotchmaster/retail_shop/internal/session"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Events     events.Publisher
	Secret     []byte
	SessionTTL time.Duration
}

type Credentials struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required,maxbytes=72"`
	Role     string `json:"role"     validate:"omitempty,oneof=customer admin"`
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      *models.User
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// compareDummy spends the same bcrypt work as a real check so unknown
// usernames are not distinguishable by timing.
func compareDummy(password string) {
	dummyOnce.Do(func() {
		dummyHash, _ = hash.HashPassword("dummy-password")
	})
	hash.CheckPassword(dummyHash, password)
}

// Register creates a user. An empty role means customer.
func (s *AuthService) Register(ctx context.Context, cr Credentials) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if fe := validateStruct(cr); len(fe) > 0 {
		return nil, Invalid(fe...)
	}
	if cr.Role == "" {
		cr.Role = models.RoleCustomer
	}

	taken, err := s.Repo.UsernameTaken(ctx, cr.Username, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		l.Warn("register_failed", "status", 409, "reason", "username taken")
		return nil, ErrConflict
	}

	pwHash, err := hash.HashPassword(cr.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := models.User{Username: cr.Username, PasswordHash: pwHash, Role: cr.Role}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, translate(err)
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:     events.UserRegistered,
		UserID:   user.ID.String(),
		Username: user.Username,
		Role:     user.Role,
	})
	l.Info("register_success", "user_id", user.ID.String(), "role", user.Role)
	return &user, nil
}

// Login opens a session. Unknown usernames and wrong passwords both return
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Repo.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(translate(err), ErrNotFound) {
			compareDummy(password)
			l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "status", 401, "reason", "invalid credentials")
		return nil, ErrInvalidCredentials
	}

	exp := time.Now().Add(s.ttl())
	sess := models.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: exp.Unix(),
	}
	if err := s.Repo.CreateSession(ctx, &sess); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	token, err := session.Sign(s.Secret, sess.ID.String(), user.ID.String(), user.Username, user.Role, exp)
	if err != nil {
		return nil, fmt.Errorf("sign session: %w", err)
	}

	publish(ctx, s.Events, events.TopicUsers, user.ID.String(), events.UserEvent{
		Type:     events.UserLoggedIn,
		UserID:   user.ID.String(),
		Username: user.Username,
	})
	l.Info("login_success", "user_id", user.ID.String())
	return &LoginResult{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) Logout(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	return s.Repo.RevokeSession(ctx, sessionID)
}

// Resolve turns a session cookie value into the principal of a live session.
func (s *AuthService) Resolve(ctx context.Context, token string) (*session.Principal, error) {
	claims, err := session.Parse(s.Secret, token)
	if err != nil {
		return nil, err
	}
	sid, err := uuid.Parse(claims.ID)
	if err != nil {
		return nil, fmt.Errorf("session id: %w", err)
	}
	sess, err := s.Repo.ActiveSession(ctx, sid, time.Now())
	if err != nil {
		return nil, translate(err)
	}
	return &session.Principal{
		UserID:    sess.UserID,
		Username:  sess.Username,
		Role:      sess.Role,
		SessionID: sess.ID,
	}, nil
}

// EnsureAdmin creates the bootstrap admin account when it does not exist yet.
func (s *AuthService) EnsureAdmin(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.Register(ctx, Credentials{Username: username, Password: password, Role: models.RoleAdmin})
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}

func (s *AuthService) ttl() time.Duration {
	if s.SessionTTL <= 0 {
		return 24 * time.Hour
	}
	return s.SessionTTL
}
