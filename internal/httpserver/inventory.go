package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/repo"
	"github.com/Skotchmaster/retail_shop/internal/service"
)

type inventoryPage struct {
	Products   []models.Product
	Categories []string
	Category   string
	OutOfStock bool
	Sort       string
}

func (h *CatalogHTTP) Inventory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.list")

	q := service.InventoryQuery{
		Category:   c.QueryParam("category"),
		OutOfStock: c.QueryParam("outOfStock") == "on",
		Sort:       repo.ParseSort(c.QueryParam("sort")),
	}
	res, err := h.Svc.Inventory(ctx, q)
	if err != nil {
		l.Error("inventory_list_failed", "status", 500, "error", err)
		return err
	}

	return render(c, http.StatusOK, "inventory", "Inventory", inventoryPage{
		Products:   res.Products,
		Categories: res.Categories,
		Category:   q.Category,
		OutOfStock: q.OutOfStock,
		Sort:       string(q.Sort),
	})
}

func (h *CatalogHTTP) InventoryProduct(c echo.Context) error {
	p, err := h.loadProduct(c, "inventory.product")
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "inventory_product", p.ProductName, p)
}

type productForm struct {
	Action  string
	Method  string
	Product models.Product
}

func (h *CatalogHTTP) CreateForm(c echo.Context) error {
	return render(c, http.StatusOK, "product_form", "New product", productForm{
		Action:  "/products",
		Method:  http.MethodPost,
		Product: models.Product{IsInStock: true},
	})
}

func (h *CatalogHTTP) EditForm(c echo.Context) error {
	p, err := h.loadProduct(c, "inventory.edit_form")
	if err != nil {
		return err
	}
	return render(c, http.StatusOK, "product_form", "Edit product", productForm{
		Action:  "/products/" + p.ID.String(),
		Method:  http.MethodPut,
		Product: *p,
	})
}

func (h *CatalogHTTP) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.create")

	form, err := c.FormParams()
	if err != nil {
		l.Warn("create_product_failed", "status", 303, "reason", "invalid form", "error", err)
		return c.Redirect(http.StatusSeeOther, "/products/create")
	}
	in, fe := service.ProductInputFromForm(form)
	if len(fe) > 0 {
		l.Warn("create_product_failed", "status", 303, "reason", "invalid form", "fields", fe)
		return c.Redirect(http.StatusSeeOther, "/products/create")
	}

	p, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		if errors.Is(err, service.ErrValidation) || errors.Is(err, service.ErrConflict) {
			l.Warn("create_product_failed", "status", 303, "reason", "rejected input", "error", err)
			return c.Redirect(http.StatusSeeOther, "/products/create")
		}
		l.Error("create_product_failed", "status", 500, "error", err)
		return err
	}

	l.Info("create_product_success", "product", p.ID.String())
	return c.Redirect(http.StatusSeeOther, "/products")
}

func (h *CatalogHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.update")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_product_failed", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
	}
	back := "/products/" + id.String() + "/edit"

	form, err := c.FormParams()
	if err != nil {
		l.Warn("update_product_failed", "status", 303, "reason", "invalid form", "error", err)
		return c.Redirect(http.StatusSeeOther, back)
	}
	in, fe := service.ProductInputFromForm(form)
	if len(fe) > 0 {
		l.Warn("update_product_failed", "status", 303, "reason", "invalid form", "fields", fe)
		return c.Redirect(http.StatusSeeOther, back)
	}

	if _, err := h.Svc.UpdateProduct(ctx, id, in); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			l.Warn("update_product_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
		case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrConflict):
			l.Warn("update_product_failed", "status", 303, "reason", "rejected input", "error", err)
			return c.Redirect(http.StatusSeeOther, back)
		}
		l.Error("update_product_failed", "status", 500, "error", err)
		return err
	}

	l.Info("update_product_success", "product", id.String())
	return c.Redirect(http.StatusSeeOther, "/products/"+id.String())
}

func (h *CatalogHTTP) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "inventory.delete")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_product_failed", "status", 404, "reason", "id is not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			l.Warn("delete_product_failed", "status", 404, "reason", "product not found")
			return echo.NewHTTPError(http.StatusNotFound, "Product not found.")
		}
		l.Error("delete_product_failed", "status", 500, "error", err)
		return err
	}

	l.Info("delete_product_success", "product", id.String())
	return c.Redirect(http.StatusSeeOther, "/products")
}
