package budget

import (
	"time"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
)

var ErrBudgetNotFound = apperrors.NewNotFound("budget", 0)
var ErrPostNotFound = apperrors.NewNotFound("post", 0)
var ErrItemGroupNotFound = apperrors.NewNotFound("item group", 0)
var ErrLooseMaterialNotFound = apperrors.NewNotFound("loose material", 0)

var ErrBudgetFinalized = apperrors.NewValidation("budget is finalized and its posts cannot be changed")
var ErrBudgetNameRequired = apperrors.NewValidation("budget name is required")
var ErrCompanyRequired = apperrors.NewValidation("budget company is required")
var ErrInvalidStatus = apperrors.NewValidation("budget status must be in_progress or finalized")
var ErrPostNameRequired = apperrors.NewValidation("post name is required")
var ErrUnknownPostType = apperrors.NewValidation("post type does not exist")
var ErrUnknownMaterial = apperrors.NewValidation("material does not exist in the catalog")
var ErrNonPositiveQuantity = apperrors.NewValidation("quantity must be greater than zero")
var ErrTemplateCompanyMismatch = apperrors.NewValidation("item group belongs to a different company than the budget")

type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusFinalized  Status = "finalized"
)

func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusFinalized
}

type Budget struct {
	Id         int
	Name       string
	CompanyId  int
	ClientName string
	City       string
	Status     Status
	// FolderId is nil for budgets at the root.
	FolderId  *int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Coordinates struct {
	X float64
	Y float64
}

type Post struct {
	Id             int
	BudgetId       int
	Name           string
	PostTypeId     int
	Coordinates    Coordinates
	ItemGroups     []ItemGroupInstance
	LooseMaterials []LooseMaterialEntry
}

// ItemGroupInstance is a copy of a template attached to a post. TemplateId records
// provenance only; later template edits do not reach the instance.
type ItemGroupInstance struct {
	Id         int
	PostId     int
	Name       string
	TemplateId *int
	Lines      []GroupMaterialLine
}

// GroupMaterialLine keeps the price the material had when the group was attached.
type GroupMaterialLine struct {
	Id              int
	MaterialId      int
	Quantity        decimal.Decimal
	PriceAtAddition decimal.Decimal
	Material        *MaterialDisplay
}

type LooseMaterialEntry struct {
	Id              int
	PostId          int
	MaterialId      int
	Quantity        decimal.Decimal
	PriceAtAddition decimal.Decimal
	Material        *MaterialDisplay
}

// MaterialDisplay is the last known catalog data of a material.
type MaterialDisplay struct {
	Code string
	Name string
	Unit string
}

// Snapshot is a budget with its whole post tree, in stored order.
type Snapshot struct {
	Budget Budget
	Posts  []Post
}

type ListFilter struct {
	FolderId *int
	RootOnly bool
}

func (b Budget) IsFinalized() bool {
	return b.Status == StatusFinalized
}
