package httpserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/service"
	"github.com/Skotchmaster/retail_shop/internal/transport"
)

type ProductAPI struct {
	Svc *service.CatalogService
}

func (h *ProductAPI) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.list_products")

	q, err := service.ParsePageQuery(c.QueryParam("page"), c.QueryParam("perPage"), c.QueryParam("category"))
	if err != nil {
		l.Warn("list_products_failed", "status", 400, "reason", "invalid query", "fields", service.FieldErrors(err))
		return validationJSON(c, err)
	}

	page, err := h.Svc.ListPage(ctx, q)
	if err != nil {
		l.Error("list_products_failed", "status", 500, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductAPI) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.search_products")

	q, err := service.ParsePageQuery(c.QueryParam("page"), c.QueryParam("perPage"), "")
	if err != nil {
		l.Warn("search_products_failed", "status", 400, "reason", "invalid query", "fields", service.FieldErrors(err))
		return validationJSON(c, err)
	}

	page, err := h.Svc.SearchProducts(ctx, strings.TrimSpace(c.QueryParam("q")), q)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			return validationJSON(c, err)
		}
		l.Error("search_products_failed", "status", 500, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, page)
}

func (h *ProductAPI) Get(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID(c)
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Product not found")
		}
		logging.FromContext(ctx).Error("get_product_failed", "handler", "api.get_product", "status", 500, "error", err)
		return err
	}
	return c.JSON(http.StatusOK, transport.DataResponse{Data: p})
}

func (h *ProductAPI) Create(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.create_product")

	in, err := decodeProduct(c)
	if err != nil {
		l.Warn("create_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return validationJSON(c, err)
	}

	p, err := h.Svc.CreateProduct(ctx, in)
	if err != nil {
		return productWriteError(c, l, "create_product_failed", err)
	}
	l.Info("create_product_success", "product", p.ID.String())
	return c.JSON(http.StatusCreated, transport.MessageResponse{Message: "Product created", Data: p})
}

func (h *ProductAPI) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.update_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID(c)
	}
	in, err := decodeProduct(c)
	if err != nil {
		l.Warn("update_product_failed", "status", 400, "reason", "invalid body", "error", err)
		return validationJSON(c, err)
	}

	p, err := h.Svc.UpdateProduct(ctx, id, in)
	if err != nil {
		return productWriteError(c, l, "update_product_failed", err)
	}
	l.Info("update_product_success", "product", p.ID.String())
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product updated", Data: p})
}

func (h *ProductAPI) Delete(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "api.delete_product")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return invalidID(c)
	}
	if err := h.Svc.DeleteProduct(ctx, id); err != nil {
		return productWriteError(c, l, "delete_product_failed", err)
	}
	l.Info("delete_product_success", "product", id.String())
	return c.JSON(http.StatusOK, transport.MessageResponse{Message: "Product deleted"})
}

func productWriteError(c echo.Context, l *slog.Logger, event string, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		l.Warn(event, "status", 400, "reason", "invalid input", "fields", service.FieldErrors(err))
		return validationJSON(c, err)
	case errors.Is(err, service.ErrNotFound):
		l.Warn(event, "status", 404, "reason", "product not found")
		return echo.NewHTTPError(http.StatusNotFound, "Product not found")
	case errors.Is(err, service.ErrConflict):
		l.Warn(event, "status", 409, "reason", "product_id already exists")
		return echo.NewHTTPError(http.StatusConflict, "product_id already exists")
	}
	l.Error(event, "status", 500, "error", err)
	return err
}

// decodeProduct reads a JSON object or form body into a ProductInput.
func decodeProduct(c echo.Context) (service.ProductInput, error) {
	req := c.Request()
	raw := map[string]any{}

	if strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		dec := json.NewDecoder(req.Body)
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return service.ProductInput{}, service.Invalid(service.FieldError{Field: "body", Message: "must be a JSON object"})
		}
	} else {
		form, err := c.FormParams()
		if err != nil {
			return service.ProductInput{}, service.Invalid(service.FieldError{Field: "body", Message: "could not be parsed"})
		}
		for key, values := range form {
			if len(values) == 0 {
				continue
			}
			if key == "tags" && len(values) > 1 {
				raw[key] = values
				continue
			}
			raw[key] = values[0]
		}
	}

	in, fe := service.ProductInputFromMap(raw)
	if len(fe) > 0 {
		return in, service.Invalid(fe...)
	}
	return in, nil
}
