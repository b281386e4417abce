package validator

import (
	"regexp"
	"strings"
	"time"

	"app/internal/domain/model"
)

var codeRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// 割引作成の入力。検証はこの構造体に対する個別チェックの列で、
// 違反は全部まとめて返す
type DiscountConfig struct {
	Name            string
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

func ValidateDiscount(cfg DiscountConfig) []string {
	var violations []string

	violations = append(violations, checkDiscountName(cfg)...)
	violations = append(violations, checkDiscountCode(cfg)...)
	violations = append(violations, checkDiscountValue(cfg)...)
	violations = append(violations, checkDiscountUsage(cfg)...)
	violations = append(violations, checkDiscountDates(cfg)...)
	violations = append(violations, checkDiscountProducts(cfg)...)

	return violations
}

func checkDiscountName(cfg DiscountConfig) []string {
	if strings.TrimSpace(cfg.Name) == "" {
		return []string{"discount name is required"}
	}
	return nil
}

func checkDiscountCode(cfg DiscountConfig) []string {
	var v []string

	code := strings.TrimSpace(cfg.Code)
	if code == "" {
		return []string{"discount code is required"}
	}
	if len(code) < 8 || len(code) > 20 {
		v = append(v, "discount code must be between 8 and 20 characters")
	}
	if !codeRe.MatchString(code) {
		v = append(v, "discount code can only contain letters, numbers, underscores and hyphens")
	}
	return v
}

func checkDiscountValue(cfg DiscountConfig) []string {
	var v []string

	t := model.DiscountType(cfg.Type)
	if t != model.DiscountTypeFixedAmount && t != model.DiscountTypePercentage {
		v = append(v, "invalid discount type")
	}
	if cfg.Value <= 0 {
		v = append(v, "discount value must be greater than 0")
	}
	if t == model.DiscountTypePercentage {
		if cfg.Value > 100 {
			v = append(v, "percentage discount cannot exceed 100%")
		}
		if cfg.MaxValue <= 0 {
			v = append(v, "max value is required for percentage discount")
		}
	}
	return v
}

func checkDiscountUsage(cfg DiscountConfig) []string {
	var v []string

	if cfg.MaxUsage <= 0 {
		v = append(v, "max usage must be greater than 0")
	}
	if cfg.MaxUsagePerUser <= 0 {
		v = append(v, "max usage per user must be greater than 0")
	}
	if cfg.MaxUsagePerUser > 0 && cfg.MaxUsage > 0 && cfg.MaxUsagePerUser > cfg.MaxUsage {
		v = append(v, "max usage per user cannot exceed max usage")
	}
	return v
}

func checkDiscountDates(cfg DiscountConfig) []string {
	var v []string

	if cfg.StartDate.IsZero() || cfg.EndDate.IsZero() {
		return []string{"start date and end date are required"}
	}
	if !cfg.StartDate.Before(cfg.EndDate) {
		v = append(v, "start date must be before end date")
	}
	if !cfg.EndDate.After(time.Now()) {
		v = append(v, "end date must be in the future")
	}
	return v
}

func checkDiscountProducts(cfg DiscountConfig) []string {
	var v []string

	a := model.DiscountAppliesTo(cfg.AppliesTo)
	if a != model.DiscountAppliesAll && a != model.DiscountAppliesSpecific {
		v = append(v, "invalid applies to value")
	}
	if a == model.DiscountAppliesSpecific && len(cfg.ProductIDs) == 0 {
		v = append(v, "product ids are required when applies to specific products")
	}
	if cfg.MinOrderValue < 0 {
		v = append(v, "minimum order value must be greater than or equal to 0")
	}
	return v
}
