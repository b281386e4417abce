package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 入荷API。ショップのみ
type InventoryHandler struct {
	uc *usecase.InventoryUsecase
}

// DI
func NewInventoryHandler(uc *usecase.InventoryUsecase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

type addStockRequest struct {
	ProductID int64  `json:"product_id"`
	Stock     int64  `json:"stock"`
	Location  string `json:"location"`
}

func (h *InventoryHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/shop/inventory")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.ShopRoleGuard())

	g.POST("", h.addStock)
}

func (h *InventoryHandler) addStock(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req addStockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	inv, err := h.uc.AddStock(c.Request().Context(), shopID, usecase.AddStockInput{
		ProductID: req.ProductID,
		Stock:     req.Stock,
		Location:  req.Location,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, inv)
}
