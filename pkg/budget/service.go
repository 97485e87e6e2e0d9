package budget

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/orcaposte/orcaposte/internal/utils"
	"github.com/orcaposte/orcaposte/pkg/catalog"
	"github.com/orcaposte/orcaposte/pkg/itemgroup"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// Catalog is the part of the material catalog budgets read from.
type Catalog interface {
	GetPostType(ctx context.Context, id int) (catalog.PostType, error)
	GetMaterials(ctx context.Context, ids []int) (map[int]catalog.Material, error)
}

type TemplateReader interface {
	GetTemplate(ctx context.Context, id int) (itemgroup.Template, error)
}

type Service interface {
	GetBudget(ctx context.Context, id int) (Budget, error)
	ListBudgets(ctx context.Context, filter ListFilter) ([]Budget, error)
	CreateBudget(ctx context.Context, budget Budget) (Budget, error)
	UpdateBudget(ctx context.Context, budget Budget) (Budget, error)
	SetStatus(ctx context.Context, id int, status Status) (Budget, error)
	DeleteBudget(ctx context.Context, id int) error
	// AssignFolder moves a budget into folderId, or to the root when folderId is nil.
	// The folder is expected to have been validated by the caller.
	AssignFolder(ctx context.Context, budgetId int, folderId *int) error
	GetSnapshot(ctx context.Context, budgetId int) (Snapshot, error)

	AddPost(ctx context.Context, budgetId int, post Post) (Post, error)
	UpdatePost(ctx context.Context, budgetId int, post Post) (Post, error)
	DeletePost(ctx context.Context, budgetId int, postId int) error

	AddItemGroup(ctx context.Context, budgetId int, postId int, templateId int) (ItemGroupInstance, error)
	RemoveItemGroup(ctx context.Context, budgetId int, postId int, groupId int) error

	AddLooseMaterial(ctx context.Context, budgetId int, postId int, materialId int, quantity decimal.Decimal) (LooseMaterialEntry, error)
	UpdateLooseMaterial(ctx context.Context, budgetId int, postId int, entryId int, quantity decimal.Decimal) (LooseMaterialEntry, error)
	RemoveLooseMaterial(ctx context.Context, budgetId int, postId int, entryId int) error
}

type ServiceImpl struct {
	repo      Repository
	catalog   Catalog
	templates TemplateReader
	clock     utils.Clock
}

func NewService(repo Repository, catalog Catalog, templates TemplateReader, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{
		repo:      repo,
		catalog:   catalog,
		templates: templates,
		clock:     clock,
	}
}

func (s *ServiceImpl) GetBudget(ctx context.Context, id int) (Budget, error) {
	return s.repo.GetBudget(ctx, id)
}

func (s *ServiceImpl) ListBudgets(ctx context.Context, filter ListFilter) ([]Budget, error) {
	return s.repo.ListBudgets(ctx, filter)
}

// CreateBudget stores a new budget at the root. Folder placement goes through AssignFolder.
func (s *ServiceImpl) CreateBudget(ctx context.Context, budget Budget) (Budget, error) {
	budget = normalizeBudget(budget)
	budget.FolderId = nil
	if err := validateBudget(budget); err != nil {
		return Budget{}, err
	}
	if budget.Status == "" {
		budget.Status = StatusInProgress
	}
	if !budget.Status.Valid() {
		return Budget{}, ErrInvalidStatus
	}
	now := s.clock.Now()
	budget.CreatedAt = now
	budget.UpdatedAt = now

	id, err := s.repo.StoreBudget(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	budget.Id = id
	return budget, nil
}

// UpdateBudget changes the descriptive fields only. Status and folder have their own operations.
func (s *ServiceImpl) UpdateBudget(ctx context.Context, budget Budget) (Budget, error) {
	budget = normalizeBudget(budget)
	if err := validateBudget(budget); err != nil {
		return Budget{}, err
	}
	budget.UpdatedAt = s.clock.Now()
	updated, err := s.repo.UpdateBudget(ctx, budget)
	if err != nil {
		return Budget{}, err
	}
	if !updated {
		return Budget{}, apperrors.NewNotFound("budget", budget.Id)
	}
	return s.repo.GetBudget(ctx, budget.Id)
}

func (s *ServiceImpl) SetStatus(ctx context.Context, id int, status Status) (Budget, error) {
	if !status.Valid() {
		return Budget{}, ErrInvalidStatus
	}
	updated, err := s.repo.SetStatus(ctx, id, status, s.clock.Now())
	if err != nil {
		return Budget{}, err
	}
	if !updated {
		return Budget{}, apperrors.NewNotFound("budget", id)
	}
	log.Infof("budget %d status changed to %s", id, status)
	return s.repo.GetBudget(ctx, id)
}

func (s *ServiceImpl) DeleteBudget(ctx context.Context, id int) error {
	deleted, err := s.repo.DeleteBudget(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		log.Warnf("budget not deleted, probably because it does not exist (%d)", id)
		return apperrors.NewNotFound("budget", id)
	}
	return nil
}

func (s *ServiceImpl) AssignFolder(ctx context.Context, budgetId int, folderId *int) error {
	updated, err := s.repo.SetFolder(ctx, budgetId, folderId, s.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to move budget %d: %w", budgetId, err)
	}
	if !updated {
		return apperrors.NewNotFound("budget", budgetId)
	}
	return nil
}

func (s *ServiceImpl) GetSnapshot(ctx context.Context, budgetId int) (Snapshot, error) {
	budget, err := s.repo.GetBudget(ctx, budgetId)
	if err != nil {
		return Snapshot{}, err
	}
	posts, err := s.repo.GetPosts(ctx, budgetId)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to load posts of budget %d: %w", budgetId, err)
	}
	return Snapshot{Budget: budget, Posts: posts}, nil
}

func (s *ServiceImpl) AddPost(ctx context.Context, budgetId int, post Post) (Post, error) {
	if _, err := s.editableBudget(ctx, budgetId); err != nil {
		return Post{}, err
	}
	post.BudgetId = budgetId
	post.Name = strings.TrimSpace(post.Name)
	if err := s.validatePost(ctx, post); err != nil {
		return Post{}, err
	}
	id, err := s.repo.StorePost(ctx, post)
	if err != nil {
		return Post{}, err
	}
	post.Id = id
	post.ItemGroups = nil
	post.LooseMaterials = nil
	return post, nil
}

func (s *ServiceImpl) UpdatePost(ctx context.Context, budgetId int, post Post) (Post, error) {
	if _, err := s.editablePost(ctx, budgetId, post.Id); err != nil {
		return Post{}, err
	}
	post.BudgetId = budgetId
	post.Name = strings.TrimSpace(post.Name)
	if err := s.validatePost(ctx, post); err != nil {
		return Post{}, err
	}
	updated, err := s.repo.UpdatePost(ctx, post)
	if err != nil {
		return Post{}, err
	}
	if !updated {
		return Post{}, apperrors.NewNotFound("post", post.Id)
	}
	return s.repo.GetPost(ctx, budgetId, post.Id)
}

func (s *ServiceImpl) DeletePost(ctx context.Context, budgetId int, postId int) error {
	if _, err := s.editablePost(ctx, budgetId, postId); err != nil {
		return err
	}
	deleted, err := s.repo.DeletePost(ctx, budgetId, postId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("post", postId)
	}
	return nil
}

// AddItemGroup copies a template of the budget's company onto the post. Every line is
// priced from the catalog as it is at this moment.
func (s *ServiceImpl) AddItemGroup(ctx context.Context, budgetId int, postId int, templateId int) (ItemGroupInstance, error) {
	budget, err := s.editablePost(ctx, budgetId, postId)
	if err != nil {
		return ItemGroupInstance{}, err
	}
	template, err := s.templates.GetTemplate(ctx, templateId)
	if err != nil {
		return ItemGroupInstance{}, err
	}
	if template.CompanyId != budget.CompanyId {
		return ItemGroupInstance{}, fmt.Errorf("%w (template %d, company %d)", ErrTemplateCompanyMismatch, template.Id, template.CompanyId)
	}

	materials, err := s.catalog.GetMaterials(ctx, template.MaterialIds())
	if err != nil {
		return ItemGroupInstance{}, fmt.Errorf("failed to resolve template materials: %w", err)
	}
	group := ItemGroupInstance{
		PostId:     postId,
		Name:       template.Name,
		TemplateId: &template.Id,
		Lines:      make([]GroupMaterialLine, 0, len(template.Materials)),
	}
	for _, tm := range template.Materials {
		material, ok := materials[tm.MaterialId]
		if !ok {
			return ItemGroupInstance{}, fmt.Errorf("%w (material %d)", ErrUnknownMaterial, tm.MaterialId)
		}
		group.Lines = append(group.Lines, GroupMaterialLine{
			MaterialId:      material.Id,
			Quantity:        tm.Quantity,
			PriceAtAddition: material.UnitPrice,
			Material:        displayOf(material),
		})
	}
	return s.repo.StoreItemGroup(ctx, group)
}

func (s *ServiceImpl) RemoveItemGroup(ctx context.Context, budgetId int, postId int, groupId int) error {
	if _, err := s.editablePost(ctx, budgetId, postId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteItemGroup(ctx, postId, groupId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("item group", groupId)
	}
	return nil
}

func (s *ServiceImpl) AddLooseMaterial(ctx context.Context, budgetId int, postId int, materialId int, quantity decimal.Decimal) (LooseMaterialEntry, error) {
	if _, err := s.editablePost(ctx, budgetId, postId); err != nil {
		return LooseMaterialEntry{}, err
	}
	if !quantity.IsPositive() {
		return LooseMaterialEntry{}, ErrNonPositiveQuantity
	}
	materials, err := s.catalog.GetMaterials(ctx, []int{materialId})
	if err != nil {
		return LooseMaterialEntry{}, fmt.Errorf("failed to resolve material %d: %w", materialId, err)
	}
	material, ok := materials[materialId]
	if !ok {
		return LooseMaterialEntry{}, fmt.Errorf("%w (material %d)", ErrUnknownMaterial, materialId)
	}

	entry := LooseMaterialEntry{
		PostId:          postId,
		MaterialId:      materialId,
		Quantity:        quantity,
		PriceAtAddition: material.UnitPrice,
		Material:        displayOf(material),
	}
	id, err := s.repo.StoreLooseMaterial(ctx, entry)
	if err != nil {
		return LooseMaterialEntry{}, err
	}
	entry.Id = id
	return entry, nil
}

// UpdateLooseMaterial changes the quantity. The price captured at addition is kept.
func (s *ServiceImpl) UpdateLooseMaterial(ctx context.Context, budgetId int, postId int, entryId int, quantity decimal.Decimal) (LooseMaterialEntry, error) {
	if _, err := s.editablePost(ctx, budgetId, postId); err != nil {
		return LooseMaterialEntry{}, err
	}
	if !quantity.IsPositive() {
		return LooseMaterialEntry{}, ErrNonPositiveQuantity
	}
	updated, err := s.repo.UpdateLooseMaterialQuantity(ctx, postId, entryId, quantity)
	if err != nil {
		return LooseMaterialEntry{}, err
	}
	if !updated {
		return LooseMaterialEntry{}, apperrors.NewNotFound("loose material", entryId)
	}
	return s.repo.GetLooseMaterial(ctx, postId, entryId)
}

func (s *ServiceImpl) RemoveLooseMaterial(ctx context.Context, budgetId int, postId int, entryId int) error {
	if _, err := s.editablePost(ctx, budgetId, postId); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteLooseMaterial(ctx, postId, entryId)
	if err != nil {
		return err
	}
	if !deleted {
		return apperrors.NewNotFound("loose material", entryId)
	}
	return nil
}

func (s *ServiceImpl) editableBudget(ctx context.Context, budgetId int) (Budget, error) {
	budget, err := s.repo.GetBudget(ctx, budgetId)
	if err != nil {
		return Budget{}, err
	}
	if budget.IsFinalized() {
		return Budget{}, ErrBudgetFinalized
	}
	return budget, nil
}

func (s *ServiceImpl) editablePost(ctx context.Context, budgetId int, postId int) (Budget, error) {
	budget, err := s.editableBudget(ctx, budgetId)
	if err != nil {
		return Budget{}, err
	}
	if _, err := s.repo.GetPost(ctx, budgetId, postId); err != nil {
		return Budget{}, err
	}
	return budget, nil
}

func (s *ServiceImpl) validatePost(ctx context.Context, post Post) error {
	if post.Name == "" {
		return ErrPostNameRequired
	}
	if _, err := s.catalog.GetPostType(ctx, post.PostTypeId); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w (post type %d)", ErrUnknownPostType, post.PostTypeId)
		}
		return err
	}
	return nil
}

func normalizeBudget(budget Budget) Budget {
	budget.Name = strings.TrimSpace(budget.Name)
	budget.ClientName = strings.TrimSpace(budget.ClientName)
	budget.City = strings.TrimSpace(budget.City)
	return budget
}

func validateBudget(budget Budget) error {
	if budget.Name == "" {
		return ErrBudgetNameRequired
	}
	if budget.CompanyId <= 0 {
		return ErrCompanyRequired
	}
	return nil
}

func displayOf(material catalog.Material) *MaterialDisplay {
	return &MaterialDisplay{Code: material.Code, Name: material.Name, Unit: material.Unit}
}
