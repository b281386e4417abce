package repository

import (
	"context"

	"app/internal/domain/model"
)

type DiscountRepository interface {
	Create(ctx context.Context, d model.Discount) (model.Discount, error)
	FindByCode(ctx context.Context, shopID int64, code string) (model.Discount, error)
	ListByShop(ctx context.Context, shopID int64, page int, limit int) ([]model.Discount, int64, error)

	// 利用回数をカウントアップ（max_usage超過ならErrNotFound相当で増えない）
	IncrementUsage(ctx context.Context, discountID int64) error
	SetActive(ctx context.Context, shopID int64, discountID int64, isActive bool) error
}
