package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"grocery-store/internal/service"
)

type CartHandler struct {
	cartService *service.CartService
}

func NewCartHandler(cartService *service.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	claims, err := authClaims(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.GetCart(c.Request().Context(), claims.UserID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	claims, err := authClaims(c)
	if err != nil {
		return err
	}

	var body struct {
		ProductID int `json:"product_id"`
		Quantity  int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	cart, err := h.cartService.AddItem(c.Request().Context(), claims.UserID, body.ProductID, body.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	claims, err := authClaims(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	cart, err := h.cartService.UpdateItem(c.Request().Context(), claims.UserID, productID, body.Quantity)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	claims, err := authClaims(c)
	if err != nil {
		return err
	}

	productID, err := strconv.Atoi(c.Param("productId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid product ID"})
	}

	cart, err := h.cartService.RemoveItem(c.Request().Context(), claims.UserID, productID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, cart)
}
