package service

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/Skotchmaster/retail_shop/internal/events"
	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/repo"
	"github.com/Skotchmaster/retail_shop/internal/util"
)

type SearchIndex interface {
	Index(ctx context.Context, p models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Events events.Publisher
	// Search is optional; without it search falls back to the database.
	Search SearchIndex
}

const (
	FeaturedCount  = 8
	DashboardCount = 10
)

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *CatalogService) Featured(ctx context.Context) ([]models.Product, error) {
	return s.Repo.ListProducts(ctx, repo.ProductFilter{}, repo.SortNewest, 0, FeaturedCount)
}

type InventoryQuery struct {
	Category   string
	OutOfStock bool
	Sort       repo.SortKey
}

type InventoryResult struct {
	Products   []models.Product
	Categories []string
}

func (s *CatalogService) Inventory(ctx context.Context, q InventoryQuery) (*InventoryResult, error) {
	f := repo.ProductFilter{}
	if q.Category != "" && q.Category != "all" {
		f.Category = q.Category
	}
	if q.OutOfStock {
		inStock := false
		f.InStock = &inStock
	}

	products, err := s.Repo.ListProducts(ctx, f, q.Sort, 0, 0)
	if err != nil {
		return nil, err
	}
	cats, err := s.Repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	return &InventoryResult{Products: products, Categories: cats}, nil
}

type ShopQuery struct {
	Search      string
	Category    string
	InStockOnly bool
	Tags        []string
	Sort        repo.SortKey
}

// ShopSort maps the storefront's sortBy/sortOrder pair onto the shared sort keys.
func ShopSort(sortBy, sortOrder string) repo.SortKey {
	desc := sortOrder == "desc"
	switch sortBy {
	case "price":
		if desc {
			return repo.SortPriceDesc
		}
		return repo.SortPriceAsc
	case "product-name":
		if desc {
			return repo.SortNameDesc
		}
		return repo.SortNameAsc
	default:
		return repo.SortNewest
	}
}

type ShopResult struct {
	Products   []models.Product
	Total      int
	Categories []string
	Tags       []string
}

func (s *CatalogService) Shop(ctx context.Context, q ShopQuery) (*ShopResult, error) {
	f := repo.ProductFilter{Search: q.Search, Category: q.Category, Tags: q.Tags}
	if q.InStockOnly {
		inStock := true
		f.InStock = &inStock
	}

	products, err := s.Repo.ListProducts(ctx, f, q.Sort, 0, 0)
	if err != nil {
		return nil, err
	}
	cats, err := s.Repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	tags, err := s.Repo.DistinctTags(ctx)
	if err != nil {
		return nil, err
	}
	return &ShopResult{Products: products, Total: len(products), Categories: cats, Tags: tags}, nil
}

type PageQuery struct {
	Page     int    `json:"page"    validate:"min=1,max=1000000"`
	PerPage  int    `json:"perPage" validate:"min=1,max=100"`
	Category string `json:"category"`
}

// ParsePageQuery validates raw query values; empty values take the defaults.
func ParsePageQuery(page, perPage, category string) (PageQuery, error) {
	q := PageQuery{Page: util.DefaultPage, PerPage: util.DefaultPageSize, Category: category}
	var errs []FieldError

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			errs = append(errs, FieldError{Field: "page", Message: "must be an integer"})
		}
		q.Page = n
	}
	if perPage != "" {
		n, err := strconv.Atoi(perPage)
		if err != nil {
			errs = append(errs, FieldError{Field: "perPage", Message: "must be an integer"})
		}
		q.PerPage = n
	}
	if len(errs) > 0 {
		return q, Invalid(errs...)
	}
	if fe := validateStruct(q); len(fe) > 0 {
		return q, Invalid(fe...)
	}
	return q, nil
}

type Page struct {
	Page       int              `json:"page"`
	PerPage    int              `json:"perPage"`
	Total      int64            `json:"total"`
	TotalPages int64            `json:"totalPages"`
	Data       []models.Product `json:"data"`
}

func (s *CatalogService) ListPage(ctx context.Context, q PageQuery) (*Page, error) {
	if fe := validateStruct(q); len(fe) > 0 {
		return nil, Invalid(fe...)
	}
	f := repo.ProductFilter{Category: q.Category}
	offset, limit := util.Calculate(q.Page, q.PerPage)

	total, err := s.Repo.CountProducts(ctx, f)
	if err != nil {
		return nil, err
	}
	items, err := s.Repo.ListProducts(ctx, f, repo.SortNewest, offset, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Product{}
	}
	return &Page{
		Page:       q.Page,
		PerPage:    limit,
		Total:      total,
		TotalPages: util.TotalPages(total, limit),
		Data:       items,
	}, nil
}

func (s *CatalogService) SearchProducts(ctx context.Context, query string, q PageQuery) (*Page, error) {
	if fe := validateStruct(q); len(fe) > 0 {
		return nil, Invalid(fe...)
	}
	if query == "" {
		return nil, Invalid(FieldError{Field: "q", Message: "is required"})
	}
	offset, limit := util.Calculate(q.Page, q.PerPage)

	var (
		total int64
		items []models.Product
		err   error
	)
	if s.Search != nil {
		total, items, err = s.Search.Search(ctx, query, offset, limit)
		if err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "reason", "falling back to database", "error", err)
		}
	}
	if s.Search == nil || err != nil {
		f := repo.ProductFilter{Search: query}
		if total, err = s.Repo.CountProducts(ctx, f); err != nil {
			return nil, err
		}
		if items, err = s.Repo.ListProducts(ctx, f, repo.SortNewest, offset, limit); err != nil {
			return nil, err
		}
	}
	if items == nil {
		items = []models.Product{}
	}
	return &Page{
		Page:       q.Page,
		PerPage:    limit,
		Total:      total,
		TotalPages: util.TotalPages(total, limit),
		Data:       items,
	}, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.create_product")

	if fe := in.Validate(false); len(fe) > 0 {
		return nil, Invalid(fe...)
	}
	p := in.NewProduct()

	taken, err := s.Repo.ProductIDExists(ctx, p.ProductID, uuid.Nil)
	if err != nil {
		return nil, err
	}
	if taken {
		l.Warn("create_product_failed", "status", 409, "reason", "product_id already exists", "product_id", p.ProductID)
		return nil, ErrConflict
	}

	if err := s.Repo.CreateProduct(ctx, &p); err != nil {
		return nil, translate(err)
	}

	s.afterWrite(ctx, events.ProductCreated, p)
	return &p, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	l := logging.FromContext(ctx).With("svc", "catalog.update_product")

	if fe := in.Validate(true); len(fe) > 0 {
		return nil, Invalid(fe...)
	}

	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, translate(err)
	}
	in.Apply(p)

	taken, err := s.Repo.ProductIDExists(ctx, p.ProductID, p.ID)
	if err != nil {
		return nil, err
	}
	if taken {
		l.Warn("update_product_failed", "status", 409, "reason", "product_id already exists", "product_id", p.ProductID)
		return nil, ErrConflict
	}

	if err := s.Repo.UpdateProduct(ctx, p); err != nil {
		return nil, translate(err)
	}

	s.afterWrite(ctx, events.ProductUpdated, *p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return translate(err)
	}

	publish(ctx, s.Events, events.TopicProducts, id.String(), events.ProductEvent{
		Type: events.ProductDeleted,
		ID:   id.String(),
	})
	if s.Search != nil {
		if err := s.Search.Delete(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_delete_failed", "product", id.String(), "error", err)
		}
	}
	return nil
}

func (s *CatalogService) afterWrite(ctx context.Context, eventType string, p models.Product) {
	publish(ctx, s.Events, events.TopicProducts, p.ID.String(), events.ProductEvent{
		Type:      eventType,
		ID:        p.ID.String(),
		ProductID: p.ProductID,
		Name:      p.ProductName,
		Category:  p.Category,
		Price:     p.Price,
	})
	if s.Search != nil {
		if err := s.Search.Index(ctx, p); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "product", p.ID.String(), "error", err)
		}
	}
}

type Dashboard struct {
	Recent           []models.Product
	TotalProducts    int64
	UniqueCategories int
	OutOfStock       int64
	AvgPrice         float64
}

func (s *CatalogService) Dashboard(ctx context.Context) (*Dashboard, error) {
	recent, err := s.Repo.ListProducts(ctx, repo.ProductFilter{}, repo.SortNewest, 0, DashboardCount)
	if err != nil {
		return nil, err
	}
	total, err := s.Repo.CountProducts(ctx, repo.ProductFilter{})
	if err != nil {
		return nil, err
	}
	cats, err := s.Repo.DistinctCategories(ctx)
	if err != nil {
		return nil, err
	}
	inStock := false
	out, err := s.Repo.CountProducts(ctx, repo.ProductFilter{InStock: &inStock})
	if err != nil {
		return nil, err
	}
	avg, err := s.Repo.AveragePrice(ctx)
	if err != nil {
		return nil, err
	}
	return &Dashboard{
		Recent:           recent,
		TotalProducts:    total,
		UniqueCategories: len(cats),
		OutOfStock:       out,
		AvgPrice:         avg,
	}, nil
}
