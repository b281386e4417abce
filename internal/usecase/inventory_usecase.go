package usecase

import (
	"context"
	"errors"
	"net/http"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type InventoryUsecase struct {
	inventoryRepo repo.InventoryRepository
	productRepo   repo.ProductRepository
}

func NewInventoryUsecase(inventoryRepo repo.InventoryRepository, productRepo repo.ProductRepository) *InventoryUsecase {
	return &InventoryUsecase{
		inventoryRepo: inventoryRepo,
		productRepo:   productRepo,
	}
}

type AddStockInput struct {
	ProductID int64
	Stock     int64
	Location  string
}

// AddStock は入荷。自ショップの商品のみ
func (u *InventoryUsecase) AddStock(ctx context.Context, shopID int64, in AddStockInput) (model.Inventory, error) {
	if shopID <= 0 {
		return model.Inventory{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if in.ProductID <= 0 {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "invalid product_id")
	}
	if in.Stock < 1 {
		return model.Inventory{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	if _, err := u.productRepo.FindByIDForShop(ctx, in.ProductID, shopID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Inventory{}, NewHTTPError(http.StatusNotFound, "product not found")
		}
		return model.Inventory{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	inv, err := u.inventoryRepo.AddStock(ctx, in.ProductID, shopID, in.Stock, in.Location)
	if err != nil {
		return model.Inventory{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return inv, nil
}
