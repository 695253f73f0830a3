package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToCart inserts a line with quantity 1 or bumps the existing line in one statement.
func (r *GormRepo) AddToCart(ctx context.Context, userID, productID uuid.UUID) error {
	item := models.CartItem{UserID: userID, ProductID: productID, Quantity: 1}
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"quantity": gorm.Expr("cart_items.quantity + ?", 1),
		}),
	}).Create(&item).Error
}

// IncreaseQuantity reports false when the product is not in the cart.
func (r *GormRepo) IncreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Update("quantity", gorm.Expr("quantity + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// DecreaseQuantity subtracts one and drops the line once it would reach zero.
// changed is false when the product was not in the cart.
func (r *GormRepo) DecreaseQuantity(ctx context.Context, userID, productID uuid.UUID) (changed, removed bool, err error) {
	err = r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ? AND quantity > 1", userID, productID).
			Update("quantity", gorm.Expr("quantity - ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			changed = true
			return nil
		}

		del := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.CartItem{})
		if del.Error != nil {
			return del.Error
		}
		removed = del.RowsAffected > 0
		changed = removed
		return nil
	})
	return changed, removed, err
}

func (r *GormRepo) RemoveFromCart(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&models.CartItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// CartCount sums quantities over every line, dangling ones included.
func (r *GormRepo) CartCount(ctx context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
