package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/service"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

type homePage struct {
	Products []models.Product
}

func (h *CatalogHTTP) Home(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "pages.home")

	products, err := h.Svc.Featured(ctx)
	if err != nil {
		l.Error("home_products_failed", "reason", "rendering empty list", "error", err)
		products = nil
	}
	return render(c, http.StatusOK, "index", "Home", homePage{Products: products})
}

func (h *CatalogHTTP) About(c echo.Context) error {
	return render(c, http.StatusOK, "about", "About", nil)
}

func (h *CatalogHTTP) Dashboard(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.dashboard")

	d, err := h.Svc.Dashboard(ctx)
	if err != nil {
		l.Error("dashboard_failed", "status", 303, "reason", "redirecting home", "error", err)
		return c.Redirect(http.StatusSeeOther, "/")
	}
	return render(c, http.StatusOK, "dashboard", "Dashboard", d)
}
