package repository

import (
	"context"

	"app/internal/domain/model"
)

type ProductListQuery struct {
	Page  int
	Limit int
	Q     string
	Sort  string

	// 0なら全ショップ
	ShopID int64
}

// 商品存在チェックの結果（checkout/discountで使う）
type ProductsExistResult struct {
	IsValid     bool
	NotFoundIDs []int64
}

type ProductRepository interface {
	Create(ctx context.Context, p model.Product) (model.Product, error)
	Update(ctx context.Context, p model.Product) error

	// 公開済みのみ返す
	FindPublishedByID(ctx context.Context, productID int64) (model.Product, error)
	// 所有ショップ用（下書き含む）
	FindByIDForShop(ctx context.Context, productID int64, shopID int64) (model.Product, error)

	Publish(ctx context.Context, shopID int64, productID int64) error
	Unpublish(ctx context.Context, shopID int64, productID int64) error

	ListPublished(ctx context.Context, q ProductListQuery) ([]model.Product, int64, error)
	ListByShop(ctx context.Context, shopID int64, draftOnly bool, page int, limit int) ([]model.Product, int64, error)
	Search(ctx context.Context, keyword string) ([]model.Product, error)

	// 全IDが公開済みで存在するか
	CheckProductsExist(ctx context.Context, productIDs []int64) (ProductsExistResult, error)
}
