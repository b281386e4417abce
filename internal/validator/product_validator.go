package validator

import (
	"encoding/json"
	"fmt"

	"app/internal/domain/model"
)

// 種別ごとの必須属性。クラス階層ではなくテーブルで持つ
var productAttributeSchemas = map[model.ProductType][]string{
	model.ProductTypeClothing:    {"brand", "size", "material"},
	model.ProductTypeElectronics: {"manufacturer", "model", "color"},
	model.ProductTypeFurniture:   {"brand", "size", "material"},
}

func ValidateProductAttributes(t model.ProductType, attributesJSON string) []string {
	required, ok := productAttributeSchemas[t]
	if !ok {
		return []string{fmt.Sprintf("invalid product type: %s", t)}
	}

	if attributesJSON == "" {
		attributesJSON = "{}"
	}

	var attrs map[string]interface{}
	if err := json.Unmarshal([]byte(attributesJSON), &attrs); err != nil {
		return []string{"attributes must be a JSON object"}
	}

	var violations []string
	for _, key := range required {
		v, ok := attrs[key]
		if !ok {
			violations = append(violations, fmt.Sprintf("attribute %q is required for %s", key, t))
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			violations = append(violations, fmt.Sprintf("attribute %q must not be empty", key))
		}
	}

	return violations
}
