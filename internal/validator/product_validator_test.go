package validator

import (
	"testing"

	"app/internal/domain/model"

	"github.com/stretchr/testify/assert"
)

func TestValidateProductAttributes_Clothing(t *testing.T) {
	v := ValidateProductAttributes(model.ProductTypeClothing, `{"brand":"acme","size":"M","material":"cotton"}`)
	assert.Empty(t, v)
}

func TestValidateProductAttributes_Electronics_MissingKeys(t *testing.T) {
	v := ValidateProductAttributes(model.ProductTypeElectronics, `{"manufacturer":"acme"}`)

	assert.Contains(t, v, `attribute "model" is required for electronics`)
	assert.Contains(t, v, `attribute "color" is required for electronics`)
}

func TestValidateProductAttributes_UnknownType(t *testing.T) {
	v := ValidateProductAttributes(model.ProductType("food"), `{}`)
	assert.Contains(t, v, "invalid product type: food")
}

func TestValidateProductAttributes_InvalidJSON(t *testing.T) {
	v := ValidateProductAttributes(model.ProductTypeClothing, `not json`)
	assert.Contains(t, v, "attributes must be a JSON object")
}

func TestValidateProductAttributes_EmptyValue(t *testing.T) {
	v := ValidateProductAttributes(model.ProductTypeFurniture, `{"brand":"","size":"L","material":"oak"}`)
	assert.Contains(t, v, `attribute "brand" must not be empty`)
}
