package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"grocery-store/internal/entity"
	"grocery-store/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
}

func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) ListProducts(c echo.Context) error {
	products, err := h.productService.ListProducts(c.Request().Context())
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProduct(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product, err := h.productService.GetProduct(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, product)
}

func (h *ProductHandler) GetProductStock(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	stock, err := h.productService.GetStock(c.Request().Context(), id)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int{"stock": stock})
}

func (h *ProductHandler) CreateProduct(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	created, err := h.productService.CreateProduct(c.Request().Context(), &product)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *ProductHandler) UpdateProduct(c echo.Context) error {
	if err := requireAdmin(c); err != nil {
		return err
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid ID"})
	}

	product := entity.Product{}
	if err := c.Bind(&product); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}
	product.ID = id

	updated, err := h.productService.UpdateProduct(c.Request().Context(), &product)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func requireAdmin(c echo.Context) error {
	claims, err := authClaims(c)
	if err != nil {
		return err
	}
	if claims.Role != entity.RoleAdmin {
		return echo.NewHTTPError(http.StatusForbidden, "admin role required")
	}
	return nil
}
