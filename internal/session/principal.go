package session

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

// Principal is the authenticated user of a single request.
type Principal struct {
	UserID    uuid.UUID
	Username  string
	Role      string
	SessionID uuid.UUID
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == models.RoleAdmin
}

type ctxKey struct{}

func IntoContext(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns nil for anonymous requests.
func FromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(ctxKey{}).(*Principal); ok {
		return p
	}
	return nil
}
