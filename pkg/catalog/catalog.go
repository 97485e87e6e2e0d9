package catalog

import (
	"strings"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
)

var ErrMaterialNotFound = apperrors.NewNotFound("material", 0)
var ErrPostTypeNotFound = apperrors.NewNotFound("post type", 0)

var ErrMaterialCodeRequired = apperrors.NewValidation("material code is required")
var ErrMaterialNameRequired = apperrors.NewValidation("material name is required")
var ErrMaterialUnitRequired = apperrors.NewValidation("material unit is required")
var ErrNegativePrice = apperrors.NewValidation("material unit price cannot be negative")

// Material is a catalog entry. UnitPrice is the current catalog price; lines already
// attached to posts keep the price they were added with.
type Material struct {
	Id        int
	Code      string
	Name      string
	Unit      string
	UnitPrice decimal.Decimal
}

// PostType is a kind of pole. Its price comes from the backing material.
type PostType struct {
	Id         int
	Name       string
	MaterialId *int
}

func (m Material) Validate() error {
	if strings.TrimSpace(m.Code) == "" {
		return ErrMaterialCodeRequired
	}
	if strings.TrimSpace(m.Name) == "" {
		return ErrMaterialNameRequired
	}
	if strings.TrimSpace(m.Unit) == "" {
		return ErrMaterialUnitRequired
	}
	if m.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

func normalize(m Material) Material {
	m.Code = strings.TrimSpace(m.Code)
	m.Name = strings.TrimSpace(m.Name)
	m.Unit = strings.ToUpper(strings.TrimSpace(m.Unit))
	return m
}
