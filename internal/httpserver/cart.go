package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/service"
	"github.com/Skotchmaster/retail_shop/internal/session"
	"github.com/Skotchmaster/retail_shop/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) View(c echo.Context) error {
	ctx := c.Request().Context()
	p := session.FromContext(ctx)

	sum, err := h.Svc.View(ctx, p.UserID)
	if err != nil {
		logging.FromContext(ctx).Error("view_cart_failed", "handler", "cart.view", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "cart", "Cart", sum)
}

// Add answers in JSON because the storefront calls it from script.
func (h *CartHTTP) Add(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	p := session.FromContext(ctx)
	if p == nil {
		return c.JSON(http.StatusUnauthorized, transport.CartAddResponse{Status: "guest", Message: "Log in to add items to your cart."})
	}
	if p.IsAdmin() {
		return c.JSON(http.StatusForbidden, transport.CartAddResponse{Status: "forbidden", Message: "Admins cannot shop."})
	}

	var req transport.CartAddRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "invalid body", "error", err)
		return c.JSON(http.StatusBadRequest, transport.CartAddResponse{Status: "error", Message: "Invalid request."})
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("add_to_cart_failed", "status", 400, "reason", "product id is not a uuid")
		return c.JSON(http.StatusBadRequest, transport.CartAddResponse{Status: "error", Message: "Invalid product id."})
	}

	count, err := h.Svc.Add(ctx, p.UserID, productID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, transport.CartAddResponse{Status: "error", Message: "Product not found."})
		}
		l.Error("add_to_cart_failed", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, transport.CartAddResponse{Status: "error", Message: "Server error"})
	}
	return c.JSON(http.StatusOK, transport.CartAddResponse{Status: "success", Message: "Added to cart.", CartCount: count})
}

func (h *CartHTTP) Update(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update")
	p := session.FromContext(ctx)

	var req transport.CartUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_cart_failed", "status", 303, "reason", "invalid form", "error", err)
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		l.Warn("update_cart_failed", "status", 303, "reason", "product id is not a uuid")
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	if err := h.Svc.Update(ctx, p.UserID, productID, req.Action); err != nil {
		l.Error("update_cart_failed", "status", 500, "error", err)
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}

func (h *CartHTTP) Remove(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")
	p := session.FromContext(ctx)

	productID, err := uuid.Parse(c.FormValue("productId"))
	if err != nil {
		l.Warn("remove_from_cart_failed", "status", 303, "reason", "product id is not a uuid")
		return c.Redirect(http.StatusSeeOther, "/cart")
	}
	if err := h.Svc.Remove(ctx, p.UserID, productID); err != nil {
		l.Error("remove_from_cart_failed", "status", 500, "error", err)
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/cart")
}
