package api

import (
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"grocery-store/internal/entity"
	"grocery-store/internal/service"
)

// authClaims pulls the caller's identity out of the JWT parsed by the
// echo-jwt middleware. The services trust this identity as-is.
func authClaims(c echo.Context) (*service.JwtCustomClaims, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	claims, ok := token.Claims.(*service.JwtCustomClaims)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid token")
	}
	return claims, nil
}

func errorResponse(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), map[string]string{"error": err.Error()})
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, entity.ErrOrderNotFound),
		errors.Is(err, entity.ErrProductNotFound),
		errors.Is(err, entity.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, entity.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, entity.ErrInvalidTransition),
		errors.Is(err, entity.ErrVersionConflict),
		errors.Is(err, entity.ErrDuplicateRequest):
		return http.StatusConflict
	case errors.Is(err, entity.ErrInsufficientStock),
		errors.Is(err, entity.ErrProductUnavailable),
		errors.Is(err, entity.ErrEmptyOrder):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
