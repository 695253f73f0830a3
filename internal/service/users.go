package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/hash"
	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
)

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return u, nil
}

type UserUpdate struct {
	Username string `json:"username" validate:"required,max=50"`
	Role     string `json:"role"     validate:"required,oneof=customer admin"`
	// Password is re-hashed only when non-empty.
	Password string `json:"password" validate:"maxbytes=72"`
}

// UpdateUser changes username and role, and the password when one is given.
// Changing any of them ends the user's open sessions.
func (s *AuthService) UpdateUser(ctx context.Context, id uuid.UUID, upd UserUpdate) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.update_user")

	if fe := validateStruct(upd); len(fe) > 0 {
		return nil, Invalid(fe...)
	}

	user, err := s.Repo.GetUser(ctx, id)
	if err != nil {
		return nil, translate(err)
	}

	taken, err := s.Repo.UsernameTaken(ctx, upd.Username, id)
	if err != nil {
		return nil, err
	}
	if taken {
		l.Warn("update_user_failed", "status", 409, "reason", "username taken")
		return nil, ErrConflict
	}

	// sessions carry the username and role they were opened with
	revoke := user.Username != upd.Username || user.Role != upd.Role || upd.Password != ""
	user.Username = upd.Username
	user.Role = upd.Role
	if upd.Password != "" {
		pwHash, err := hash.HashPassword(upd.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.UpdateUser(ctx, user); err != nil {
		return nil, translate(err)
	}
	if revoke {
		if err := s.Repo.RevokeUserSessions(ctx, id); err != nil {
			l.Error("revoke_sessions_failed", "user_id", id.String(), "error", err)
		}
	}

	publish(ctx, s.Events, events.TopicUsers, id.String(), events.UserEvent{
		Type:     events.UserUpdated,
		UserID:   id.String(),
		Username: user.Username,
		Role:     user.Role,
	})
	return user, nil
}

// DeleteUser removes the account and its sessions. Cart lines stay behind.
func (s *AuthService) DeleteUser(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return translate(err)
	}
	if err := s.Repo.RevokeUserSessions(ctx, id); err != nil {
		logging.FromContext(ctx).Error("revoke_sessions_failed", "user_id", id.String(), "error", err)
	}

	publish(ctx, s.Events, events.TopicUsers, id.String(), events.UserEvent{
		Type:   events.UserDeleted,
		UserID: id.String(),
	})
	return nil
}
