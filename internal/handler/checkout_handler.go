package handler

import (
	"net/http"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

// /checkout のHTTP。reviewは読み取り、orderが購入確定
type CheckoutHandler struct {
	uc *usecase.CheckoutUsecase
}

// DI
func NewCheckoutHandler(uc *usecase.CheckoutUsecase) *CheckoutHandler {
	return &CheckoutHandler{uc: uc}
}

type checkoutReviewRequest struct {
	CartID int64                         `json:"cart_id"`
	Groups []usecase.ShopOrderGroupInput `json:"shop_order_groups"`
}

type checkoutOrderRequest struct {
	CartID   int64                         `json:"cart_id"`
	Groups   []usecase.ShopOrderGroupInput `json:"shop_order_groups"`
	Shipping map[string]interface{}        `json:"shipping"`
	Payment  map[string]interface{}        `json:"payment"`
}

func (h *CheckoutHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	g := e.Group("/checkout")
	g.Use(middleware.AuthJWT(cfg))

	g.POST("/review", h.review)
	g.POST("/order", h.order)
}

func (h *CheckoutHandler) review(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req checkoutReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Review(c.Request().Context(), userID, req.CartID, req.Groups)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}

func (h *CheckoutHandler) order(c echo.Context) error {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req checkoutOrderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.Checkout(c.Request().Context(), userID, req.CartID, usecase.CheckoutInput{
		Groups:   req.Groups,
		Shipping: req.Shipping,
		Payment:  req.Payment,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, out)
}
