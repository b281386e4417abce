package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"

	"github.com/rs/zerolog"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	log           zerolog.Logger
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	log zerolog.Logger,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		log:           log,
	}
}

type CreateProductInput struct {
	Name        string
	Description string
	Type        string
	Attributes  string
	Price       int64
	Thumb       string
	Stock       int64
	Location    string
}

// Create は下書きで作成する。初期在庫があれば在庫行も作る
func (u *ProductUsecase) Create(ctx context.Context, shopID int64, in CreateProductInput) (model.Product, error) {
	if shopID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	name := strings.TrimSpace(in.Name)
	if name == "" || len(name) > 255 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid name")
	}
	if in.Price <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	if in.Stock < 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid stock")
	}

	// 種別ごとの属性スキーマを検証
	violations := validator.ValidateProductAttributes(model.ProductType(in.Type), in.Attributes)
	if len(violations) > 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, strings.Join(violations, ", "))
	}

	attrs := in.Attributes
	if attrs == "" {
		attrs = "{}"
	}

	p := model.Product{
		ShopID:      shopID,
		Name:        name,
		Description: in.Description,
		Type:        model.ProductType(in.Type),
		Attributes:  attrs,
		Price:       in.Price,
		Thumb:       in.Thumb,
		IsDraft:     true,
		IsPublished: false,
	}

	created, err := u.productRepo.Create(ctx, p)
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Stock > 0 {
		if _, err := u.inventoryRepo.AddStock(ctx, created.ID, shopID, in.Stock, in.Location); err != nil {
			// 商品は作成済み。在庫の作成失敗はログして入荷APIでやり直せる
			u.log.Error().Err(err).Int64("product_id", created.ID).Msg("initial stock create failed")
		}
	}

	return created, nil
}

type UpdateProductInput struct {
	Name        string
	Description string
	Attributes  string
	Price       int64
	Thumb       string
}

func (u *ProductUsecase) Update(ctx context.Context, shopID int64, productID int64, in UpdateProductInput) (model.Product, error) {
	if shopID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	current, err := u.productRepo.FindByIDForShop(ctx, productID, shopID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if in.Name != "" {
		current.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		current.Description = in.Description
	}
	if in.Attributes != "" {
		violations := validator.ValidateProductAttributes(current.Type, in.Attributes)
		if len(violations) > 0 {
			return model.Product{}, NewHTTPError(http.StatusBadRequest, strings.Join(violations, ", "))
		}
		current.Attributes = in.Attributes
	}
	if in.Price > 0 {
		current.Price = in.Price
	}
	if in.Thumb != "" {
		current.Thumb = in.Thumb
	}

	if err := u.productRepo.Update(ctx, current); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return current, nil
}

func (u *ProductUsecase) Publish(ctx context.Context, shopID int64, productID int64) error {
	if shopID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.productRepo.Publish(ctx, shopID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) Unpublish(ctx context.Context, shopID int64, productID int64) error {
	if shopID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.productRepo.Unpublish(ctx, shopID, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type ListProductsInput struct {
	Page  int
	Limit int
	Q     string
	Sort  string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublished(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublished(ctx, repo.ProductListQuery{
		Page:  in.Page,
		Limit: in.Limit,
		Q:     strings.TrimSpace(in.Q),
		Sort:  in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *ProductUsecase) ListByShop(ctx context.Context, shopID int64, draftOnly bool, page int, limit int) (ProductListOutput, error) {
	if shopID <= 0 {
		return ProductListOutput{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.productRepo.ListByShop(ctx, shopID, draftOnly, page, limit)
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{Items: items, Total: total, Page: page, Limit: limit}, nil
}

func (u *ProductUsecase) Search(ctx context.Context, keyword string) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" || len(keyword) > 100 {
		return nil, NewHTTPError(http.StatusBadRequest, "invalid keyword")
	}

	items, err := u.productRepo.Search(ctx, keyword)
	if err != nil {
		return nil, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, nil
}

func (u *ProductUsecase) Detail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindPublishedByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p, nil
}
