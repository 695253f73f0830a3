package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/models"
	"github.com/Skotchmaster/retail_shop/internal/service"
	"github.com/Skotchmaster/retail_shop/internal/session"
	"github.com/Skotchmaster/retail_shop/internal/transport"
)

type AuthHTTP struct {
	Svc           *service.AuthService
	SecureCookies bool
}

type authPage struct {
	Error    string
	Username string
}

func (h *AuthHTTP) LoginForm(c echo.Context) error {
	return render(c, http.StatusOK, "login", "Log in", authPage{})
}

func (h *AuthHTTP) SignupForm(c echo.Context) error {
	return render(c, http.StatusOK, "signup", "Sign up", authPage{})
}

func (h *AuthHTTP) AdminSignupForm(c echo.Context) error {
	return render(c, http.StatusOK, "admin_signup", "New user", authPage{})
}

func (h *AuthHTTP) Signup(c echo.Context) error {
	return h.register(c, "signup", "/signup", "/login", false)
}

func (h *AuthHTTP) AdminSignup(c echo.Context) error {
	return h.register(c, "admin_signup", "/admin/signup", "/admin/users", true)
}

func (h *AuthHTTP) register(c echo.Context, view, back, next string, withRole bool) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth."+view)

	var req transport.CredentialsRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_failed", "status", 303, "reason", "invalid form", "error", err)
		return c.Redirect(http.StatusSeeOther, back)
	}
	cr := service.Credentials{Username: req.Username, Password: req.Password}
	if withRole {
		if req.Role == "" {
			l.Warn("register_failed", "status", 303, "reason", "role is required")
			return c.Redirect(http.StatusSeeOther, back)
		}
		cr.Role = req.Role
	}

	_, err := h.Svc.Register(ctx, cr)
	switch {
	case err == nil:
		return c.Redirect(http.StatusSeeOther, next)
	case errors.Is(err, service.ErrConflict):
		return render(c, http.StatusConflict, view, "Sign up", authPage{Error: "Username taken.", Username: req.Username})
	case errors.Is(err, service.ErrValidation):
		l.Warn("register_failed", "status", 303, "reason", "invalid input", "fields", service.FieldErrors(err))
		return c.Redirect(http.StatusSeeOther, back)
	}
	l.Error("register_failed", "status", 500, "error", err)
	return err
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.login")

	res, err := h.Svc.Login(ctx, c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Redirect(http.StatusSeeOther, "/login")
		}
		l.Error("login_failed", "status", 500, "error", err)
		return err
	}

	c.SetCookie(session.CreateCookie(res.Token, res.ExpiresAt, h.SecureCookies))
	return c.Redirect(http.StatusSeeOther, "/")
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	if p := session.FromContext(ctx); p != nil {
		if err := h.Svc.Logout(ctx, p.SessionID); err != nil {
			logging.FromContext(ctx).Error("logout_failed", "handler", "auth.logout", "error", err)
		}
	}
	c.SetCookie(session.DeleteCookie(h.SecureCookies))
	return c.Redirect(http.StatusSeeOther, "/login")
}

func (h *AuthHTTP) Users(c echo.Context) error {
	ctx := c.Request().Context()
	users, err := h.Svc.ListUsers(ctx)
	if err != nil {
		logging.FromContext(ctx).Error("list_users_failed", "handler", "admin.users", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "users", "Users", users)
}

type userEditPage struct {
	User  models.User
	Error string
}

func (h *AuthHTTP) EditUserForm(c echo.Context) error {
	ctx := c.Request().Context()
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}
	u, err := h.Svc.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.Redirect(http.StatusSeeOther, "/admin/users")
		}
		logging.FromContext(ctx).Error("get_user_failed", "handler", "admin.edit_user", "status", 500, "error", err)
		return err
	}
	return render(c, http.StatusOK, "user_edit", "Edit user", userEditPage{User: *u})
}

func (h *AuthHTTP) UpdateUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.update_user")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}
	back := "/admin/users/" + id.String() + "/edit"

	var req transport.UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("update_user_failed", "status", 303, "reason", "invalid form", "error", err)
		return c.Redirect(http.StatusSeeOther, back)
	}

	_, err = h.Svc.UpdateUser(ctx, id, service.UserUpdate{
		Username: req.Username,
		Role:     req.Role,
		Password: req.Password,
	})
	switch {
	case err == nil:
		l.Info("update_user_success", "target", id.String())
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	case errors.Is(err, service.ErrNotFound):
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	case errors.Is(err, service.ErrConflict):
		u := models.User{ID: id, Username: req.Username, Role: req.Role}
		return render(c, http.StatusConflict, "user_edit", "Edit user", userEditPage{User: u, Error: "Username taken."})
	case errors.Is(err, service.ErrValidation):
		l.Warn("update_user_failed", "status", 303, "reason", "invalid input", "fields", service.FieldErrors(err))
		return c.Redirect(http.StatusSeeOther, back)
	}
	l.Error("update_user_failed", "status", 500, "error", err)
	return err
}

func (h *AuthHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.delete_user")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.Redirect(http.StatusSeeOther, "/admin/users")
	}
	if err := h.Svc.DeleteUser(ctx, id); err != nil && !errors.Is(err, service.ErrNotFound) {
		l.Error("delete_user_failed", "status", 500, "error", err)
		return err
	}
	l.Info("delete_user_success", "target", id.String())
	return c.Redirect(http.StatusSeeOther, "/admin/users")
}
