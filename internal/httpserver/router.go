package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"github.com/Skotchmaster/retail_shop/internal/db"
	"github.com/Skotchmaster/retail_shop/internal/middleware/csrf"
	loggingmw "github.com/Skotchmaster/retail_shop/internal/middleware/logging"
	"github.com/Skotchmaster/retail_shop/internal/service"
	"github.com/Skotchmaster/retail_shop/internal/session"
)

type Deps struct {
	DB            *gorm.DB
	Logger        *slog.Logger
	Auth          *service.AuthService
	Catalog       *service.CatalogService
	Cart          *service.CartService
	SecureCookies bool
}

// NewServer builds the echo instance with the full middleware chain and routes.
func NewServer(d Deps) (*echo.Echo, error) {
	renderer, err := NewRenderer()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = errorHandler

	e.Pre(middleware.RemoveTrailingSlash())
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(loggingmw.RequestLogger(d.Logger))
	e.Use(csrf.Middleware(csrf.Config{
		Secure:       d.SecureCookies,
		SkipPrefixes: []string{"/api/", "/health/"},
	}))
	e.Use(session.Load(d.Auth, d.SecureCookies))

	Register(e, d)
	return e, nil
}

func Register(e *echo.Echo, d Deps) {
	catalog := &CatalogHTTP{Svc: d.Catalog}
	auth := &AuthHTTP{Svc: d.Auth, SecureCookies: d.SecureCookies}
	cart := &CartHTTP{Svc: d.Cart}
	api := &ProductAPI{Svc: d.Catalog}

	e.GET("/health/live", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/health/ready", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx, d.DB); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	e.GET("/", catalog.Home)
	e.GET("/about", catalog.About)
	e.GET("/shop", catalog.Shop)
	e.GET("/shop/:id", catalog.ShopProduct)

	e.GET("/signup", auth.SignupForm)
	e.POST("/signup", auth.Signup)
	e.GET("/login", auth.LoginForm)
	e.POST("/login", auth.Login)
	e.POST("/logout", auth.Logout)

	e.GET("/dashboard", catalog.Dashboard, session.RequireAdmin)

	admin := e.Group("/admin", session.RequireAdmin)
	admin.GET("/signup", auth.AdminSignupForm)
	admin.POST("/signup", auth.AdminSignup)
	admin.GET("/users", auth.Users)
	admin.GET("/users/:id/edit", auth.EditUserForm)
	admin.PUT("/users/:id", auth.UpdateUser)
	admin.DELETE("/users/:id", auth.DeleteUser)

	inv := e.Group("/products", session.RequireAdmin)
	inv.GET("", catalog.Inventory)
	inv.GET("/create", catalog.CreateForm)
	inv.POST("", catalog.Create)
	inv.GET("/:id", catalog.InventoryProduct)
	inv.GET("/:id/edit", catalog.EditForm)
	inv.PUT("/:id", catalog.Update)
	inv.DELETE("/:id", catalog.Delete)

	e.POST("/cart/add", cart.Add)
	shopper := e.Group("/cart", session.RequireCustomer)
	shopper.GET("", cart.View)
	shopper.POST("/update", cart.Update)
	shopper.POST("/remove", cart.Remove)

	g := e.Group("/api/products")
	g.GET("", api.List)
	g.POST("", api.Create)
	g.GET("/search", api.Search)
	g.GET("/:id", api.Get)
	g.PUT("/:id", api.Update)
	g.DELETE("/:id", api.Delete)
}
