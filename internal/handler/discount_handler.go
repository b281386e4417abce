package handler

import (
	"net/http"
	"strconv"
	"time"

	"app/internal/config"
	"app/internal/middleware"
	"app/internal/usecase"

	"github.com/labstack/echo/v4"
)

type DiscountHandler struct {
	uc *usecase.DiscountUsecase
}

// DI
func NewDiscountHandler(uc *usecase.DiscountUsecase) *DiscountHandler {
	return &DiscountHandler{uc: uc}
}

type createDiscountRequest struct {
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Code            string    `json:"code"`
	Type            string    `json:"type"`
	Value           int64     `json:"value"`
	MaxValue        int64     `json:"max_value"`
	MaxUsage        int64     `json:"max_usage"`
	MaxUsagePerUser int64     `json:"max_usage_per_user"`
	MinOrderValue   int64     `json:"min_order_value"`
	AppliesTo       string    `json:"applies_to"`
	ProductIDs      []int64   `json:"product_ids"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
}

type setActiveRequest struct {
	IsActive bool `json:"is_active"`
}

type discountAmountRequest struct {
	ShopID int64                       `json:"shop_id"`
	Code   string                      `json:"code"`
	Items  []usecase.CheckoutItemInput `json:"products"`
}

func (h *DiscountHandler) RegisterRoutes(e *echo.Echo, cfg config.Config) {
	// 割引額の見積りと対象商品の参照はログインユーザーなら誰でも
	u := e.Group("/discounts")
	u.Use(middleware.AuthJWT(cfg))
	u.POST("/amount", h.amount)
	u.GET("/:code/products", h.productsForCode)

	// 作成・一覧・有効化はショップのみ
	g := e.Group("/shop/discounts")
	g.Use(middleware.AuthJWT(cfg))
	g.Use(middleware.ShopRoleGuard())

	g.POST("", h.create)
	g.GET("", h.list)
	g.PATCH("/:id/active", h.setActive)
}

func (h *DiscountHandler) create(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req createDiscountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	d, err := h.uc.Create(c.Request().Context(), shopID, usecase.CreateDiscountInput{
		Name:            req.Name,
		Description:     req.Description,
		Code:            req.Code,
		Type:            req.Type,
		Value:           req.Value,
		MaxValue:        req.MaxValue,
		MaxUsage:        req.MaxUsage,
		MaxUsagePerUser: req.MaxUsagePerUser,
		MinOrderValue:   req.MinOrderValue,
		AppliesTo:       req.AppliesTo,
		ProductIDs:      req.ProductIDs,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	})
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, d)
}

func (h *DiscountHandler) list(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	page, limit, err := pageLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	items, total, err := h.uc.ListByShop(c.Request().Context(), shopID, page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func (h *DiscountHandler) setActive(c echo.Context) error {
	shopID, ok := getShopIDFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	id, err := paramInt64(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req setActiveRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.uc.SetActive(c.Request().Context(), shopID, id, req.IsActive); err != nil {
		return writeError(c, err)
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *DiscountHandler) productsForCode(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	shopID, err := strconv.ParseInt(c.QueryParam("shop_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid shop_id"})
	}

	page, limit, err := pageLimit(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
	}

	items, total, err := h.uc.ProductsForCode(c.Request().Context(), shopID, c.Param("code"), page, limit)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"items": items,
		"total": total,
	})
}

func (h *DiscountHandler) amount(c echo.Context) error {
	if _, ok := getUserIDFromContext(c); !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req discountAmountRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if req.ShopID <= 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid shop_id"})
	}

	items := make([]usecase.PricedItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, usecase.PricedItem{
			ProductID: it.ProductID,
			ShopID:    req.ShopID,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	out, err := h.uc.Amount(c.Request().Context(), req.ShopID, req.Code, items)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, out)
}
