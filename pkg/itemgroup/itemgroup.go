package itemgroup

import (
	"fmt"
	"strings"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
)

var ErrTemplateNotFound = apperrors.NewNotFound("item group template", 0)

var ErrTemplateNameRequired = apperrors.NewValidation("item group name is required")
var ErrCompanyRequired = apperrors.NewValidation("item group company is required")
var ErrEmptyTemplate = apperrors.NewValidation("item group must contain at least one material")
var ErrNonPositiveQuantity = apperrors.NewValidation("material quantity must be greater than zero")
var ErrDuplicateMaterial = apperrors.NewValidation("material is listed more than once")
var ErrUnknownMaterial = apperrors.NewValidation("material does not exist in the catalog")

// Template is a reusable kit of materials belonging to one utility company.
// It carries quantities only; prices are resolved when the kit is attached to a post.
type Template struct {
	Id          int
	Name        string
	Description string
	CompanyId   int
	Materials   []TemplateMaterial
}

type TemplateMaterial struct {
	MaterialId int
	Quantity   decimal.Decimal
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return ErrTemplateNameRequired
	}
	if t.CompanyId <= 0 {
		return ErrCompanyRequired
	}
	if len(t.Materials) == 0 {
		return ErrEmptyTemplate
	}
	seen := make(map[int]struct{}, len(t.Materials))
	for _, m := range t.Materials {
		if !m.Quantity.IsPositive() {
			return fmt.Errorf("%w (material %d)", ErrNonPositiveQuantity, m.MaterialId)
		}
		if _, dup := seen[m.MaterialId]; dup {
			return fmt.Errorf("%w (material %d)", ErrDuplicateMaterial, m.MaterialId)
		}
		seen[m.MaterialId] = struct{}{}
	}
	return nil
}

func (t Template) MaterialIds() []int {
	ids := make([]int, 0, len(t.Materials))
	for _, m := range t.Materials {
		ids = append(ids, m.MaterialId)
	}
	return ids
}
