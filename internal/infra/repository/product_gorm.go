package repository

import (
	"context"
	"errors"

	"app/internal/domain/model"
	repo "app/internal/repository"

	"gorm.io/gorm"
)

type ProductGormRepository struct {
	db *gorm.DB
}

// DI
func NewProductGormRepository(db *gorm.DB) *ProductGormRepository {
	return &ProductGormRepository{db: db}
}

func (r *ProductGormRepository) Create(ctx context.Context, p model.Product) (model.Product, error) {
	if err := r.db.WithContext(ctx).Create(&p).Error; err != nil {
		return model.Product{}, err
	}
	return p, nil
}

func (r *ProductGormRepository) Update(ctx context.Context, p model.Product) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND shop_id = ?", p.ID, p.ShopID).
		Updates(map[string]interface{}{
			"name":        p.Name,
			"description": p.Description,
			"attributes":  p.Attributes,
			"price":       p.Price,
			"thumb":       p.Thumb,
		})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 公開済みのみ
func (r *ProductGormRepository) FindPublishedByID(ctx context.Context, productID int64) (model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ? AND is_published = ?", productID, true).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 所有ショップは下書きも見える
func (r *ProductGormRepository) FindByIDForShop(ctx context.Context, productID int64, shopID int64) (model.Product, error) {
	var p model.Product

	err := r.db.WithContext(ctx).
		Where("id = ? AND shop_id = ?", productID, shopID).
		First(&p).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, repo.ErrNotFound
	}
	if err != nil {
		return model.Product{}, err
	}
	return p, nil
}

// 下書き→公開
func (r *ProductGormRepository) Publish(ctx context.Context, shopID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND shop_id = ? AND is_draft = ?", productID, shopID, true).
		Updates(map[string]interface{}{"is_draft": false, "is_published": true})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

// 公開→下書き
func (r *ProductGormRepository) Unpublish(ctx context.Context, shopID int64, productID int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id = ? AND shop_id = ? AND is_published = ?", productID, shopID, true).
		Updates(map[string]interface{}{"is_draft": true, "is_published": false})

	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *ProductGormRepository) ListPublished(ctx context.Context, q repo.ProductListQuery) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("is_published = ?", true)

	if q.Q != "" {
		query = query.Where("name ILIKE ?", "%"+q.Q+"%")
	}
	if q.ShopID > 0 {
		query = query.Where("shop_id = ?", q.ShopID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	switch q.Sort {
	case "price_asc":
		query = query.Order("price asc")
	case "price_desc":
		query = query.Order("price desc")
	default:
		query = query.Order("id desc")
	}

	var items []model.Product
	offset := (q.Page - 1) * q.Limit
	if err := query.Offset(offset).Limit(q.Limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *ProductGormRepository) ListByShop(ctx context.Context, shopID int64, draftOnly bool, page int, limit int) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("shop_id = ?", shopID)

	if draftOnly {
		query = query.Where("is_draft = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []model.Product
	offset := (page - 1) * limit
	if err := query.Order("updated_at desc").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

// 公開商品の名前検索
func (r *ProductGormRepository) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	var items []model.Product

	err := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Where("name ILIKE ?", "%"+keyword+"%").
		Order("updated_at desc").
		Limit(50).
		Find(&items).Error

	if err != nil {
		return nil, err
	}
	return items, nil
}

// 全IDが公開済みで存在するか。無いIDも返す
func (r *ProductGormRepository) CheckProductsExist(ctx context.Context, productIDs []int64) (repo.ProductsExistResult, error) {
	if len(productIDs) == 0 {
		return repo.ProductsExistResult{IsValid: true}, nil
	}

	var foundIDs []int64
	err := r.db.WithContext(ctx).
		Model(&model.Product{}).
		Where("id IN ? AND is_published = ?", productIDs, true).
		Pluck("id", &foundIDs).Error

	if err != nil {
		return repo.ProductsExistResult{}, err
	}

	found := make(map[int64]bool, len(foundIDs))
	for _, id := range foundIDs {
		found[id] = true
	}

	var notFound []int64
	for _, id := range productIDs {
		if !found[id] {
			notFound = append(notFound, id)
		}
	}

	return repo.ProductsExistResult{
		IsValid:     len(notFound) == 0,
		NotFoundIDs: notFound,
	}, nil
}
