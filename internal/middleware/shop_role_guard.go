package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

//contextに入っているroleがSHOPかどうかを確認します。

func ShopRoleGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//USERは拒否、SHOPだけ許可
			if role != "SHOP" {
				return c.JSON(http.StatusForbidden, errorJSON("shop only"))
			}

			return next(c)
		}
	}
}
