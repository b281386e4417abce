package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InventoryGormRepository struct {
	db *gorm.DB
}

// DI
func NewInventoryGormRepository(db *gorm.DB) *InventoryGormRepository {
	return &InventoryGormRepository{db: db}
}

// 在庫が足りるときだけ減らして予約レコードを残す。
// stock >= qty 条件付きUPDATEが唯一の直列化ポイント
func (r *InventoryGormRepository) Reserve(ctx context.Context, productID int64, cartID int64, qty int64) (model.InventoryReservation, error) {
	if qty <= 0 {
		return model.InventoryReservation{}, errors.New("invalid quantity")
	}

	reservation := model.InventoryReservation{
		ID:        uuid.NewString(),
		ProductID: productID,
		CartID:    cartID,
		Quantity:  qty,
		Status:    model.ReservationStatusActive,
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Inventory{}).
			Where("product_id = ? AND stock >= ?", productID, qty).
			Update("stock", gorm.Expr("stock - ?", qty))

		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return repo.ErrInsufficientStock
		}

		return tx.Create(&reservation).Error
	})

	if err != nil {
		return model.InventoryReservation{}, err
	}
	return reservation, nil
}

// 予約をvoid化してから在庫を戻す。void化が0行なら既に戻し済みなので何もしない
func (r *InventoryGormRepository) Rollback(ctx context.Context, reservation model.InventoryReservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.InventoryReservation{}).
			Where("id = ? AND status = ?", reservation.ID, model.ReservationStatusActive).
			Update("status", model.ReservationStatusVoid)

		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 二重rollback。在庫を二重に増やさない
			return nil
		}

		inc := tx.Model(&model.Inventory{}).
			Where("product_id = ?", reservation.ProductID).
			Update("stock", gorm.Expr("stock + ?", reservation.Quantity))

		if inc.Error != nil {
			return inc.Error
		}
		if inc.RowsAffected == 0 {
			return repo.ErrNotFound
		}
		return nil
	})
}

// 入荷（行が無ければ作る）
func (r *InventoryGormRepository) AddStock(ctx context.Context, productID int64, shopID int64, qty int64, location string) (model.Inventory, error) {
	if qty <= 0 {
		return model.Inventory{}, errors.New("invalid quantity")
	}

	var inv model.Inventory

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		findErr := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product_id = ? AND shop_id = ?", productID, shopID).
			First(&inv).Error

		if findErr == nil {
			updates := map[string]interface{}{
				"stock": gorm.Expr("stock + ?", qty),
			}
			if location != "" {
				updates["location"] = location
			}
			if err := tx.Model(&model.Inventory{}).Where("id = ?", inv.ID).Updates(updates).Error; err != nil {
				return err
			}
			return tx.Where("id = ?", inv.ID).First(&inv).Error
		}

		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		if location == "" {
			location = "unknown"
		}
		inv = model.Inventory{
			ProductID: productID,
			ShopID:    shopID,
			Stock:     qty,
			Location:  location,
		}
		return tx.Create(&inv).Error
	})

	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}

func (r *InventoryGormRepository) FindByProduct(ctx context.Context, productID int64) (model.Inventory, error) {
	var inv model.Inventory

	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		First(&inv).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Inventory{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Inventory{}, err
	}
	return inv, nil
}
