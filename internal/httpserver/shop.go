package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/service"
)

type shopPage struct {
	Products      []models.Product
	TotalProducts int
	Categories    []string
	Tags          []string

	Search       string
	Category     string
	InStock      bool
	SelectedTags []string
	SortBy       string
	SortOrder    string
}

func (h *CatalogHTTP) Shop(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shop.list")

	tags, _ := service.ParseTags(c.QueryParams()["tags"])
	inStock, _ := service.ParseStock(c.QueryParam("is_in_stock"))
	q := service.ShopQuery{
		Search:      c.QueryParam("search"),
		Category:    c.QueryParam("category"),
		InStockOnly: inStock,
		Tags:        tags,
		Sort:        service.ShopSort(c.QueryParam("sortBy"), c.QueryParam("sortOrder")),
	}

	res, err := h.Svc.Shop(ctx, q)
	if err != nil {
		l.Error("shop_list_failed", "status", 500, "error", err)
		return err
	}

	return render(c, http.StatusOK, "shop", "Shop", shopPage{
		Products:      res.Products,
		TotalProducts: res.Total,
		Categories:    res.Categories,
		Tags:          res.Tags,
		Search:        q.Search,
		Category:      q.Category,
		InStock:       inStock,
		SelectedTags:  tags,
		SortBy:        c.QueryParam("sortBy"),
		SortOrder:     c.QueryParam("sortOrder"),
	})
}

func (h *CatalogHTTP) ShopProduct(c echo.Context) error {
	p, err := h.loadProduct(c, "shop.product")
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "product", p.ProductName, p)
}

// loadProduct resolves the :id param; malformed and unknown ids are both 404 here.
func (h *CatalogHTTP) loadProduct(c echo.Context, handler string) (*models.Product, error) {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", handler)

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("get_product_failed", "status", 404, "reason", "id is not a uuid", "error", err)
		return nil, echo.NewHTTPError(http.StatusNotFound, "Product not found.")
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("get_product_failed", "status", 404, "reason", "product not found")
			return nil, echo.NewHTTPError(http.StatusNotFound, "Product not found.")
		}
		l.Error("get_product_failed", "status", 500, "error", err)
		return nil, err
	}
	return p, nil
}
