package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/validator"
)

type DiscountUsecase struct {
	discountRepo repo.DiscountRepository
	productRepo  repo.ProductRepository
}

func NewDiscountUsecase(discountRepo repo.DiscountRepository, productRepo repo.ProductRepository) *DiscountUsecase {
	return &DiscountUsecase{
		discountRepo: discountRepo,
		productRepo:  productRepo,
	}
}

type CreateDiscountInput struct {
	Name            string
	Description     string
	Code            string
	Type            string
	Value           int64
	MaxValue        int64
	MaxUsage        int64
	MaxUsagePerUser int64
	MinOrderValue   int64
	AppliesTo       string
	ProductIDs      []int64
	StartDate       time.Time
	EndDate         time.Time
}

func (u *DiscountUsecase) Create(ctx context.Context, shopID int64, in CreateDiscountInput) (model.Discount, error) {
	if shopID <= 0 {
		return model.Discount{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	// フィールド検証はパイプラインでまとめて集める
	violations := validator.ValidateDiscount(validator.DiscountConfig{
		Name:            in.Name,
		Code:            in.Code,
		Type:            in.Type,
		Value:           in.Value,
		MaxValue:        in.MaxValue,
		MaxUsage:        in.MaxUsage,
		MaxUsagePerUser: in.MaxUsagePerUser,
		MinOrderValue:   in.MinOrderValue,
		AppliesTo:       in.AppliesTo,
		ProductIDs:      in.ProductIDs,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
	})
	if len(violations) > 0 {
		return model.Discount{}, NewHTTPError(http.StatusBadRequest, strings.Join(violations, ", "))
	}

	code := strings.ToUpper(strings.TrimSpace(in.Code))

	_, err := u.discountRepo.FindByCode(ctx, shopID, code)
	if err == nil {
		return model.Discount{}, NewHTTPError(http.StatusBadRequest, "discount code already exists")
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return model.Discount{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	// specific指定なら対象商品が全て存在すること
	if model.DiscountAppliesTo(in.AppliesTo) == model.DiscountAppliesSpecific && len(in.ProductIDs) > 0 {
		result, err := u.productRepo.CheckProductsExist(ctx, in.ProductIDs)
		if err != nil {
			return model.Discount{}, NewHTTPError(http.StatusInternalServerError, "db error")
		}
		if !result.IsValid {
			return model.Discount{}, NewHTTPError(http.StatusBadRequest,
				fmt.Sprintf("products not found: %v", result.NotFoundIDs))
		}
	}

	idsJSON, err := json.Marshal(in.ProductIDs)
	if err != nil {
		return model.Discount{}, NewHTTPError(http.StatusBadRequest, "invalid product_ids")
	}

	d := model.Discount{
		ShopID:          shopID,
		Name:            in.Name,
		Description:     in.Description,
		Code:            code,
		Type:            model.DiscountType(in.Type),
		Value:           in.Value,
		MaxValue:        in.MaxValue,
		MaxUsage:        in.MaxUsage,
		MaxUsagePerUser: in.MaxUsagePerUser,
		MinOrderValue:   in.MinOrderValue,
		AppliesTo:       model.DiscountAppliesTo(in.AppliesTo),
		ProductIDs:      string(idsJSON),
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		IsActive:        true,
	}

	created, err := u.discountRepo.Create(ctx, d)
	if err != nil {
		return model.Discount{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

type DiscountAmountOutput struct {
	DiscountID int64 `json:"-"`
	TotalOrder int64 `json:"total_order"`
	Discount   int64 `json:"discount"`
	TotalPrice int64 `json:"total_price"`
}

// Amount は1ショップ分の明細に対する割引額を計算する。読み取りのみ
func (u *DiscountUsecase) Amount(ctx context.Context, shopID int64, code string, items []PricedItem) (DiscountAmountOutput, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusBadRequest, "discount code is required")
	}

	d, err := u.discountRepo.FindByCode(ctx, shopID, code)
	if errors.Is(err, repo.ErrNotFound) {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusNotFound, "discount not exists")
	}
	if err != nil {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	now := time.Now()
	if !d.IsActive || now.Before(d.StartDate) || now.After(d.EndDate) {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusBadRequest, "discount expired")
	}
	if d.UsageCount >= d.MaxUsage {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusBadRequest, "discount are out")
	}

	// specificなら対象商品分だけが割引対象
	applicable := items
	if d.AppliesTo == model.DiscountAppliesSpecific {
		var ids []int64
		if err := json.Unmarshal([]byte(d.ProductIDs), &ids); err != nil {
			return DiscountAmountOutput{}, NewHTTPError(http.StatusInternalServerError, "broken discount")
		}
		target := make(map[int64]bool, len(ids))
		for _, id := range ids {
			target[id] = true
		}

		applicable = nil
		for _, it := range items {
			if target[it.ProductID] {
				applicable = append(applicable, it)
			}
		}
	}

	var totalOrder int64
	for _, it := range applicable {
		totalOrder += it.Price * it.Quantity
	}

	if d.MinOrderValue > 0 && totalOrder < d.MinOrderValue {
		return DiscountAmountOutput{}, NewHTTPError(http.StatusBadRequest,
			fmt.Sprintf("discount requires a minimum order value of %d", d.MinOrderValue))
	}

	var amount int64
	if d.Type == model.DiscountTypeFixedAmount {
		amount = d.Value
	} else {
		amount = totalOrder * d.Value / 100
		if d.MaxValue > 0 && amount > d.MaxValue {
			amount = d.MaxValue
		}
	}
	if amount > totalOrder {
		amount = totalOrder
	}

	return DiscountAmountOutput{
		DiscountID: d.ID,
		TotalOrder: totalOrder,
		Discount:   amount,
		TotalPrice: totalOrder - amount,
	}, nil
}

// Consume は注文確定後の利用回数カウント
func (u *DiscountUsecase) Consume(ctx context.Context, discountID int64) error {
	if discountID <= 0 {
		return nil
	}
	return u.discountRepo.IncrementUsage(ctx, discountID)
}

// ProductsForCode はコードの適用対象商品を返す。
// allならショップの公開商品全部、specificなら指定IDのうち公開中のもの
func (u *DiscountUsecase) ProductsForCode(ctx context.Context, shopID int64, code string, page int, limit int) ([]model.Product, int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if shopID <= 0 || code == "" {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid shop_id or code")
	}
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	d, err := u.discountRepo.FindByCode(ctx, shopID, code)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, 0, NewHTTPError(http.StatusNotFound, "discount not exists")
	}
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if d.AppliesTo == model.DiscountAppliesSpecific {
		var ids []int64
		if err := json.Unmarshal([]byte(d.ProductIDs), &ids); err != nil {
			return nil, 0, NewHTTPError(http.StatusInternalServerError, "broken discount")
		}

		items := make([]model.Product, 0, len(ids))
		for _, id := range ids {
			p, err := u.productRepo.FindPublishedByID(ctx, id)
			if errors.Is(err, repo.ErrNotFound) {
				// 非公開になった対象は出さない
				continue
			}
			if err != nil {
				return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
			}
			items = append(items, p)
		}
		return items, int64(len(items)), nil
	}

	items, total, err := u.productRepo.ListPublished(ctx, repo.ProductListQuery{
		Page:   page,
		Limit:  limit,
		ShopID: shopID,
	})
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, total, nil
}

func (u *DiscountUsecase) ListByShop(ctx context.Context, shopID int64, page int, limit int) ([]model.Discount, int64, error) {
	if shopID <= 0 {
		return nil, 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if page < 1 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if limit < 1 || limit > 100 {
		return nil, 0, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.discountRepo.ListByShop(ctx, shopID, page, limit)
	if err != nil {
		return nil, 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return items, total, nil
}

func (u *DiscountUsecase) SetActive(ctx context.Context, shopID int64, discountID int64, isActive bool) error {
	if shopID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if discountID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	err := u.discountRepo.SetActive(ctx, shopID, discountID, isActive)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
