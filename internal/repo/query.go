package repo

import (
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/retail_shop/internal/models"
)

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortPriceAsc  SortKey = "priceAsc"
	SortPriceDesc SortKey = "priceDesc"
	SortNameAsc   SortKey = "nameAsc"
	SortNameDesc  SortKey = "nameDesc"
)

// ParseSort maps a query value onto the closed sort set; unknown values sort newest first.
func ParseSort(s string) SortKey {
	switch k := SortKey(s); k {
	case SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return k
	default:
		return SortNewest
	}
}

func (k SortKey) order() string {
	switch k {
	case SortPriceAsc:
		return "price ASC, created_at DESC"
	case SortPriceDesc:
		return "price DESC, created_at DESC"
	case SortNameAsc:
		return "product_name ASC, created_at DESC"
	case SortNameDesc:
		return "product_name DESC, created_at DESC"
	default:
		return "created_at DESC, id DESC"
	}
}

type ProductFilter struct {
	// Search is a case-insensitive literal substring of the product name.
	Search   string
	Category string
	InStock  *bool
	// Tags must all be present on a product.
	Tags []string
}

func (f ProductFilter) apply(db *gorm.DB) *gorm.DB {
	if s := strings.TrimSpace(f.Search); s != "" {
		db = db.Where("LOWER(product_name) LIKE ? ESCAPE '\\'", "%"+escapeLike(strings.ToLower(s))+"%")
	}
	if f.Category != "" {
		db = db.Where("category = ?", f.Category)
	}
	if f.InStock != nil {
		db = db.Where("is_in_stock = ?", *f.InStock)
	}
	if tags := uniq(f.Tags); len(tags) > 0 {
		sub := db.Session(&gorm.Session{NewDB: true}).
			Model(&models.ProductTag{}).
			Select("product_id").
			Where("tag IN ?", tags).
			Group("product_id").
			Having("COUNT(DISTINCT tag) = ?", len(tags))
		db = db.Where("id IN (?)", sub)
	}
	return db
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func uniq(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
