package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	products := []models.Product{product}
	if err := loadTags(r.DB.WithContext(ctx), products); err != nil {
		return nil, err
	}
	return &products[0], nil
}

func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	items := make([]models.Product, 0, len(ids))
	if len(ids) == 0 {
		return items, nil
	}
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	if err := loadTags(r.DB.WithContext(ctx), items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListProducts returns products matching f in sort order. A limit of 0 means no limit.
func (r *GormRepo) ListProducts(ctx context.Context, f ProductFilter, sort SortKey, offset, limit int) ([]models.Product, error) {
	q := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Order(sort.order())
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.Product
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	if err := loadTags(r.DB.WithContext(ctx), items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) CountProducts(ctx context.Context, f ProductFilter) (int64, error) {
	var total int64
	if err := f.apply(r.DB.WithContext(ctx).Model(&models.Product{})).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ProductIDExists reports whether another product already uses productID.
func (r *GormRepo) ProductIDExists(ctx context.Context, productID string, except uuid.UUID) (bool, error) {
	var count int64
	q := r.DB.WithContext(ctx).Model(&models.Product{}).Where("product_id = ?", productID)
	if except != uuid.Nil {
		q = q.Where("id <> ?", except)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(prod).Error; err != nil {
			return err
		}
		return replaceTags(tx, prod.ID, prod.Tags)
	})
}

func (r *GormRepo) UpdateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Product{}).
			Where("id = ?", prod.ID).
			Select("*").
			Omit("id", "created_at").
			Updates(prod)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return replaceTags(tx, prod.ID, prod.Tags)
	})
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Product{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Where("product_id = ?", id).Delete(&models.ProductTag{}).Error
	})
}

func (r *GormRepo) DistinctCategories(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Distinct("category").
		Order("category").
		Pluck("category", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *GormRepo) DistinctTags(ctx context.Context) ([]string, error) {
	var out []string
	if err := r.DB.WithContext(ctx).Model(&models.ProductTag{}).
		Distinct("tag").
		Order("tag").
		Pluck("tag", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// AveragePrice is 0 when there are no products.
func (r *GormRepo) AveragePrice(ctx context.Context) (float64, error) {
	var avg float64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).
		Select("COALESCE(AVG(price), 0)").
		Scan(&avg).Error; err != nil {
		return 0, err
	}
	return avg, nil
}

func replaceTags(tx *gorm.DB, productID uuid.UUID, tags []string) error {
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductTag{}).Error; err != nil {
		return err
	}
	if len(tags) == 0 {
		return nil
	}
	rows := make([]models.ProductTag, len(tags))
	for i, tag := range tags {
		rows[i] = models.ProductTag{ProductID: productID, Position: i, Tag: tag}
	}
	return tx.Create(&rows).Error
}

func loadTags(db *gorm.DB, products []models.Product) error {
	if len(products) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(products))
	byID := make(map[uuid.UUID]int, len(products))
	for i := range products {
		ids[i] = products[i].ID
		byID[products[i].ID] = i
		products[i].Tags = []string{}
	}

	var rows []models.ProductTag
	if err := db.Where("product_id IN ?", ids).Order("product_id, position").Find(&rows).Error; err != nil {
		return err
	}
	for _, row := range rows {
		if i, ok := byID[row.ProductID]; ok {
			products[i].Tags = append(products[i].Tags, row.Tag)
		}
	}
	return nil
}
