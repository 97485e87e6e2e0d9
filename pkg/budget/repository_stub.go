package budget

import (
	"context"
	"sort"
	"time"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/shopspring/decimal"
)

type RepositoryStub struct {
	nextId  int
	budgets map[int]Budget
	posts   map[int]Post
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		nextId:  0,
		budgets: map[int]Budget{},
		posts:   map[int]Post{},
	}
}

func (s *RepositoryStub) id() int {
	s.nextId++
	return s.nextId
}

func (s *RepositoryStub) GetBudget(ctx context.Context, id int) (Budget, error) {
	if budget, exists := s.budgets[id]; exists {
		return budget, nil
	}
	return Budget{}, apperrors.NewNotFound("budget", id)
}

func (s *RepositoryStub) ListBudgets(ctx context.Context, filter ListFilter) ([]Budget, error) {
	var budgets []Budget
	for _, budget := range s.budgets {
		switch {
		case filter.FolderId != nil:
			if budget.FolderId == nil || *budget.FolderId != *filter.FolderId {
				continue
			}
		case filter.RootOnly:
			if budget.FolderId != nil {
				continue
			}
		}
		budgets = append(budgets, budget)
	}
	sort.Slice(budgets, func(i, j int) bool {
		return budgets[i].Id < budgets[j].Id
	})
	return budgets, nil
}

func (s *RepositoryStub) StoreBudget(ctx context.Context, budget Budget) (int, error) {
	budget.Id = s.id()
	s.budgets[budget.Id] = budget
	return budget.Id, nil
}

func (s *RepositoryStub) UpdateBudget(ctx context.Context, budget Budget) (bool, error) {
	stored, exists := s.budgets[budget.Id]
	if !exists {
		return false, nil
	}
	stored.Name = budget.Name
	stored.CompanyId = budget.CompanyId
	stored.ClientName = budget.ClientName
	stored.City = budget.City
	stored.UpdatedAt = budget.UpdatedAt
	s.budgets[budget.Id] = stored
	return true, nil
}

func (s *RepositoryStub) SetStatus(ctx context.Context, id int, status Status, updatedAt time.Time) (bool, error) {
	stored, exists := s.budgets[id]
	if !exists {
		return false, nil
	}
	stored.Status = status
	stored.UpdatedAt = updatedAt
	s.budgets[id] = stored
	return true, nil
}

func (s *RepositoryStub) SetFolder(ctx context.Context, id int, folderId *int, updatedAt time.Time) (bool, error) {
	stored, exists := s.budgets[id]
	if !exists {
		return false, nil
	}
	stored.FolderId = folderId
	stored.UpdatedAt = updatedAt
	s.budgets[id] = stored
	return true, nil
}

func (s *RepositoryStub) DeleteBudget(ctx context.Context, id int) (bool, error) {
	if _, exists := s.budgets[id]; !exists {
		return false, nil
	}
	delete(s.budgets, id)
	for postId, post := range s.posts {
		if post.BudgetId == id {
			delete(s.posts, postId)
		}
	}
	return true, nil
}

func (s *RepositoryStub) GetPosts(ctx context.Context, budgetId int) ([]Post, error) {
	var posts []Post
	for _, post := range s.posts {
		if post.BudgetId == budgetId {
			posts = append(posts, copyPost(post))
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].Id < posts[j].Id
	})
	return posts, nil
}

func (s *RepositoryStub) GetPost(ctx context.Context, budgetId int, postId int) (Post, error) {
	post, exists := s.posts[postId]
	if !exists || post.BudgetId != budgetId {
		return Post{}, apperrors.NewNotFound("post", postId)
	}
	return copyPost(post), nil
}

func (s *RepositoryStub) StorePost(ctx context.Context, post Post) (int, error) {
	post.Id = s.id()
	post.ItemGroups = nil
	post.LooseMaterials = nil
	s.posts[post.Id] = post
	return post.Id, nil
}

func (s *RepositoryStub) UpdatePost(ctx context.Context, post Post) (bool, error) {
	stored, exists := s.posts[post.Id]
	if !exists || stored.BudgetId != post.BudgetId {
		return false, nil
	}
	stored.Name = post.Name
	stored.PostTypeId = post.PostTypeId
	stored.Coordinates = post.Coordinates
	s.posts[post.Id] = stored
	return true, nil
}

func (s *RepositoryStub) DeletePost(ctx context.Context, budgetId int, postId int) (bool, error) {
	stored, exists := s.posts[postId]
	if !exists || stored.BudgetId != budgetId {
		return false, nil
	}
	delete(s.posts, postId)
	return true, nil
}

func (s *RepositoryStub) StoreItemGroup(ctx context.Context, group ItemGroupInstance) (ItemGroupInstance, error) {
	post, exists := s.posts[group.PostId]
	if !exists {
		return ItemGroupInstance{}, apperrors.NewNotFound("post", group.PostId)
	}
	group.Id = s.id()
	group.Lines = append([]GroupMaterialLine(nil), group.Lines...)
	for i := range group.Lines {
		group.Lines[i].Id = s.id()
	}
	post.ItemGroups = append(post.ItemGroups, group)
	s.posts[post.Id] = post
	return group, nil
}

func (s *RepositoryStub) DeleteItemGroup(ctx context.Context, postId int, groupId int) (bool, error) {
	post, exists := s.posts[postId]
	if !exists {
		return false, nil
	}
	for i, group := range post.ItemGroups {
		if group.Id == groupId {
			post.ItemGroups = append(post.ItemGroups[:i:i], post.ItemGroups[i+1:]...)
			s.posts[postId] = post
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) StoreLooseMaterial(ctx context.Context, entry LooseMaterialEntry) (int, error) {
	post, exists := s.posts[entry.PostId]
	if !exists {
		return 0, apperrors.NewNotFound("post", entry.PostId)
	}
	entry.Id = s.id()
	post.LooseMaterials = append(post.LooseMaterials, entry)
	s.posts[post.Id] = post
	return entry.Id, nil
}

func (s *RepositoryStub) GetLooseMaterial(ctx context.Context, postId int, entryId int) (LooseMaterialEntry, error) {
	if post, exists := s.posts[postId]; exists {
		for _, entry := range post.LooseMaterials {
			if entry.Id == entryId {
				return entry, nil
			}
		}
	}
	return LooseMaterialEntry{}, apperrors.NewNotFound("loose material", entryId)
}

func (s *RepositoryStub) UpdateLooseMaterialQuantity(ctx context.Context, postId int, entryId int, quantity decimal.Decimal) (bool, error) {
	post, exists := s.posts[postId]
	if !exists {
		return false, nil
	}
	for i := range post.LooseMaterials {
		if post.LooseMaterials[i].Id == entryId {
			post.LooseMaterials[i].Quantity = quantity
			s.posts[postId] = post
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) DeleteLooseMaterial(ctx context.Context, postId int, entryId int) (bool, error) {
	post, exists := s.posts[postId]
	if !exists {
		return false, nil
	}
	for i, entry := range post.LooseMaterials {
		if entry.Id == entryId {
			post.LooseMaterials = append(post.LooseMaterials[:i:i], post.LooseMaterials[i+1:]...)
			s.posts[postId] = post
			return true, nil
		}
	}
	return false, nil
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.budgets = map[int]Budget{}
	s.posts = map[int]Post{}
}

func copyPost(post Post) Post {
	groups := make([]ItemGroupInstance, len(post.ItemGroups))
	for i, group := range post.ItemGroups {
		group.Lines = append([]GroupMaterialLine(nil), group.Lines...)
		groups[i] = group
	}
	post.ItemGroups = groups
	post.LooseMaterials = append([]LooseMaterialEntry(nil), post.LooseMaterials...)
	return post
}
