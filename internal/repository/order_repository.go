package repository

import (
	"context"

	"app/internal/domain/model"
)

type OrderRepository interface {
	// 注文と明細をまとめて作成
	Create(ctx context.Context, order model.Order, items []model.OrderItem) (model.Order, error)
	FindByID(ctx context.Context, orderID int64) (model.Order, error)
	ListByUserID(ctx context.Context, userID int64, page int, limit int) ([]model.Order, int64, error)
	ListItemsByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error
}
