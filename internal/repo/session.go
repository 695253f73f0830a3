package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// ActiveSession returns the session only while it is neither revoked nor expired.
func (r *GormRepo) ActiveSession(ctx context.Context, id uuid.UUID, now time.Time) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).
		Where("id = ? AND revoked = ? AND expires_at > ?", id, false, now.Unix()).
		First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *GormRepo) RevokeSession(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *GormRepo) RevokeUserSessions(ctx context.Context, userID uuid.UUID) error {
	return r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true).Error
}
