package repository

import (
	"context"

	"app/internal/domain/model"
)

type InventoryRepository interface {
	// 在庫が足りるときだけ減算し、予約レコードを残す。
	// 足りなければErrInsufficientStock（状態は変わらない）
	Reserve(ctx context.Context, productID int64, cartID int64, qty int64) (model.InventoryReservation, error)

	// 予約をvoid化して数量を在庫に戻す。同じ予約の二重rollbackはno-op
	Rollback(ctx context.Context, reservation model.InventoryReservation) error

	// 入荷（無ければ作成して加算）
	AddStock(ctx context.Context, productID int64, shopID int64, qty int64, location string) (model.Inventory, error)

	FindByProduct(ctx context.Context, productID int64) (model.Inventory, error)
}
