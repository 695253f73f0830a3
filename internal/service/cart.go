package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/cart"
	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
}

const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// View resolves the user's cart lines against current products. Lines whose
// product was deleted are left out of the lines and the total.
func (s *CartService) View(ctx context.Context, userID uuid.UUID) (cart.Summary, error) {
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return cart.Summary{}, err
	}
	ids := make([]uuid.UUID, len(items))
	for i, it := range items {
		ids[i] = it.ProductID
	}
	products, err := s.Repo.GetProductsByIDs(ctx, ids)
	if err != nil {
		return cart.Summary{}, err
	}
	return cart.Summarize(cart.Resolve(items, products)), nil
}

// Add puts one unit of the product into the cart and returns the new item count.
func (s *CartService) Add(ctx context.Context, userID, productID uuid.UUID) (int64, error) {
	l := logging.FromContext(ctx).With("svc", "cart.add")

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		err = translate(err)
		if err == ErrNotFound {
			l.Warn("add_to_cart_failed", "status", 404, "reason", "product not found", "product", productID.String())
		}
		return 0, err
	}
	if err := s.Repo.AddToCart(ctx, userID, productID); err != nil {
		return 0, err
	}

	publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
		Type:      events.CartItemAdded,
		UserID:    userID.String(),
		ProductID: productID.String(),
	})
	return s.Repo.CartCount(ctx, userID)
}

// Update applies increase or decrease; anything else, or a product not in
// the cart, is a no-op.
func (s *CartService) Update(ctx context.Context, userID, productID uuid.UUID, action string) error {
	var (
		changed bool
		err     error
	)
	switch action {
	case ActionIncrease:
		changed, err = s.Repo.IncreaseQuantity(ctx, userID, productID)
	case ActionDecrease:
		var removed bool
		changed, removed, err = s.Repo.DecreaseQuantity(ctx, userID, productID)
		if removed {
			action = "remove"
		}
	default:
		return nil
	}
	if err != nil {
		return err
	}
	if changed {
		publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
			Type:      events.CartItemUpdated,
			UserID:    userID.String(),
			ProductID: productID.String(),
			Action:    action,
		})
	}
	return nil
}

func (s *CartService) Remove(ctx context.Context, userID, productID uuid.UUID) error {
	removed, err := s.Repo.RemoveFromCart(ctx, userID, productID)
	if err != nil {
		return err
	}
	if removed {
		publish(ctx, s.Events, events.TopicCart, userID.String(), events.CartEvent{
			Type:      events.CartItemRemoved,
			UserID:    userID.String(),
			ProductID: productID.String(),
		})
	}
	return nil
}
