package server

import (
	"app/internal/config"
	"app/internal/handler"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

// Handlers はルート登録に必要なハンドラ一式
type Handlers struct {
	Auth      *handler.AuthHandler
	Product   *handler.ProductHandler
	Cart      *handler.CartHandler
	Checkout  *handler.CheckoutHandler
	Discount  *handler.DiscountHandler
	Inventory *handler.InventoryHandler
	Order     *handler.OrderHandler
}

func Start(cfg config.Config, h Handlers) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	h.Auth.RegisterRoutes(e)
	h.Product.RegisterRoutes(e, cfg)
	h.Cart.RegisterRoutes(e, cfg)
	h.Checkout.RegisterRoutes(e, cfg)
	h.Discount.RegisterRoutes(e, cfg)
	h.Inventory.RegisterRoutes(e, cfg)
	h.Order.RegisterRoutes(e, cfg)

	addr := cfg.Port
	if addr != "" && addr[0] != ':' {
		addr = ":" + addr
	}

	return e.Start(addr)
}
