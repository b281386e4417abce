package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type DiscountGormRepository struct {
	db *gorm.DB
}

// DI
func NewDiscountGormRepository(db *gorm.DB) *DiscountGormRepository {
	return &DiscountGormRepository{db: db}
}

func (r *DiscountGormRepository) Create(ctx context.Context, d model.Discount) (model.Discount, error) {
	if err := r.db.WithContext(ctx).Create(&d).Error; err != nil {
		return model.Discount{}, err
	}
	return d, nil
}

func (r *DiscountGormRepository) FindByCode(ctx context.Context, shopID int64, code string) (model.Discount, error) {
	var d model.Discount

	err := r.db.WithContext(ctx).
		Where("shop_id = ? AND code = ?", shopID, code).
		First(&d).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Discount{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Discount{}, err
	}
	return d, nil
}

func (r *DiscountGormRepository) ListByShop(ctx context.Context, shopID int64, page int, limit int) ([]model.Discount, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Discount{}).
		Where("shop_id = ?", shopID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Discount
	offset := (page - 1) * limit
	if err := query.Order("id desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// 上限内のときだけカウントアップ
func (r *DiscountGormRepository) IncrementUsage(ctx context.Context, discountID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Discount{}).
		Where("id = ? AND usage_count < max_usage", discountID).
		Update("usage_count", gorm.Expr("usage_count + 1"))

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *DiscountGormRepository) SetActive(ctx context.Context, shopID int64, discountID int64, isActive bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Discount{}).
		Where("id = ? AND shop_id = ?", discountID, shopID).
		Update("is_active", isActive)

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}
