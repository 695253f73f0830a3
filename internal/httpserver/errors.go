package httpserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/retail_shop/internal/logging"
	"github.com/Skotchmaster/retail_shop/internal/service"
	"github.com/Skotchmaster/retail_shop/internal/transport"
)

func isAPI(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// errorHandler renders the error page for browser routes and a JSON body for the API.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := "Something went wrong."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if code < http.StatusInternalServerError {
			msg = fmt.Sprint(he.Message)
		}
	}
	if code >= http.StatusInternalServerError {
		logging.FromContext(c.Request().Context()).Error("unhandled_error", "status", code, "error", err)
	}

	var rerr error
	switch {
	case c.Request().Method == http.MethodHead:
		rerr = c.NoContent(code)
	case isAPI(c):
		if code >= http.StatusInternalServerError {
			msg = "Server error"
		}
		rerr = c.JSON(code, transport.ErrorResponse{Error: msg})
	default:
		rerr = render(c, code, "error", http.StatusText(code), errorPage{Status: code, Message: msg})
	}
	if rerr != nil {
		logging.FromContext(c.Request().Context()).Error("error_handler_failed", "error", rerr)
	}
}

type errorPage struct {
	Status  int
	Message string
}

func validationJSON(c echo.Context, err error) error {
	return c.JSON(http.StatusBadRequest, transport.ErrorResponse{
		Error:  "validation failed",
		Errors: service.FieldErrors(err),
	})
}

func invalidID(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, transport.ErrorResponse{
		Error:  "validation failed",
		Errors: []service.FieldError{{Field: "id", Message: "must be a valid id"}},
	})
}
