package folder

import (
	"context"
	"fmt"
	"sort"
	"sync"

	log "github.com/sirupsen/logrus"
)

type Service interface {
	List(ctx context.Context) ([]Folder, error)
	ListChildren(ctx context.Context, parentId *int) ([]Folder, error)
	Get(ctx context.Context, id int) (Folder, error)
	Create(ctx context.Context, name, color string, parentId *int) (Folder, error)
	Rename(ctx context.Context, id int, name, color string) (Folder, error)
	Delete(ctx context.Context, id int) (DeleteResult, error)
	// Move reports false when the folder already had the requested parent.
	Move(ctx context.Context, id int, parentId *int) (Folder, bool, error)
	IsDescendant(ctx context.Context, candidateId, ofId int) (bool, error)
	Path(ctx context.Context, folderId *int) ([]Folder, error)
	DescendantIds(ctx context.Context, id int) ([]int, error)
	MoveBudget(ctx context.Context, budgetId int, folderId *int) error
	Reload(ctx context.Context) error
}

// BudgetAssigner files a budget under a folder, or at the root when folderId is nil.
type BudgetAssigner interface {
	AssignFolder(ctx context.Context, budgetId int, folderId *int) error
}

// ServiceImpl serializes every operation on an in-memory hierarchy that is loaded
// from storage on first use. A write that fails to persist restores the previous state.
type ServiceImpl struct {
	mu        sync.Mutex
	repo      Repository
	budgets   BudgetAssigner
	hierarchy *Hierarchy
}

func NewService(repo Repository, budgets BudgetAssigner) *ServiceImpl {
	return &ServiceImpl{repo: repo, budgets: budgets}
}

func (s *ServiceImpl) loaded(ctx context.Context) (*Hierarchy, error) {
	if s.hierarchy != nil {
		return s.hierarchy, nil
	}
	folders, err := s.repo.ListFolders(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load folders: %w", err)
	}
	h := NewHierarchy(folders)
	if err := h.CheckIntegrity(); err != nil {
		log.Errorf("folder hierarchy is corrupt: %v", err)
		return nil, err
	}
	log.Debugf("Loaded %d folders", h.Len())
	s.hierarchy = h
	return h, nil
}

// Reload drops the cached hierarchy and loads it again from storage.
func (s *ServiceImpl) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hierarchy = nil
	_, err := s.loaded(ctx)
	return err
}

func (s *ServiceImpl) read(ctx context.Context, fn func(h *Hierarchy) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.loaded(ctx)
	if err != nil {
		return err
	}
	return fn(h)
}

// mutate applies a change to the hierarchy and then runs the storage call it returns.
// A nil storage call means there is nothing to persist.
func (s *ServiceImpl) mutate(ctx context.Context, op string, apply func(h *Hierarchy) (func(ctx context.Context) error, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, err := s.loaded(ctx)
	if err != nil {
		return err
	}
	snapshot := h.Snapshot()
	persist, err := apply(h)
	if err != nil {
		return err
	}
	if persist == nil {
		return nil
	}
	if err := persist(ctx); err != nil {
		h.Restore(snapshot)
		log.Warnf("folder %s was not persisted, hierarchy restored: %v", op, err)
		return err
	}
	return nil
}

func (s *ServiceImpl) List(ctx context.Context) ([]Folder, error) {
	var folders []Folder
	err := s.read(ctx, func(h *Hierarchy) error {
		folders = h.All()
		return nil
	})
	return folders, err
}

func (s *ServiceImpl) ListChildren(ctx context.Context, parentId *int) ([]Folder, error) {
	var children []Folder
	err := s.read(ctx, func(h *Hierarchy) error {
		if parentId != nil {
			if _, ok := h.Get(*parentId); !ok {
				return fmt.Errorf("%w (folder %d)", ErrFolderNotFound, *parentId)
			}
		}
		children = h.Children(parentId)
		return nil
	})
	return children, err
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Folder, error) {
	var folder Folder
	err := s.read(ctx, func(h *Hierarchy) error {
		f, ok := h.Get(id)
		if !ok {
			return fmt.Errorf("%w (folder %d)", ErrFolderNotFound, id)
		}
		folder = f
		return nil
	})
	return folder, err
}

func (s *ServiceImpl) Create(ctx context.Context, name, color string, parentId *int) (Folder, error) {
	var created Folder
	err := s.mutate(ctx, "create", func(h *Hierarchy) (func(context.Context) error, error) {
		f, err := h.Create(name, color, parentId)
		if err != nil {
			return nil, err
		}
		created = f
		return func(ctx context.Context) error {
			id, err := s.repo.CreateFolder(ctx, f)
			if err != nil {
				return err
			}
			if err := h.Rekey(f.Id, id); err != nil {
				return err
			}
			created.Id = id
			return nil
		}, nil
	})
	if err != nil {
		return Folder{}, err
	}
	log.Debugf("Created folder %d", created.Id)
	return created, nil
}

func (s *ServiceImpl) Rename(ctx context.Context, id int, name, color string) (Folder, error) {
	var renamed Folder
	err := s.mutate(ctx, "rename", func(h *Hierarchy) (func(context.Context) error, error) {
		f, err := h.Rename(id, name, color)
		if err != nil {
			return nil, err
		}
		renamed = f
		return func(ctx context.Context) error {
			ok, err := s.repo.RenameFolder(ctx, f.Id, f.Name, f.Color)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w (folder %d)", ErrFolderNotFound, id)
			}
			return nil
		}, nil
	})
	if err != nil {
		return Folder{}, err
	}
	return renamed, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) (DeleteResult, error) {
	var result DeleteResult
	err := s.mutate(ctx, "delete", func(h *Hierarchy) (func(context.Context) error, error) {
		r, err := h.Delete(id)
		if err != nil {
			return nil, err
		}
		result = r
		return func(ctx context.Context) error {
			return s.repo.DeleteFolder(ctx, id, r.Deleted.ParentId)
		}, nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	log.Debugf("Deleted folder %d, reparented %d children", id, len(result.ReparentedIds))
	return result, nil
}

func (s *ServiceImpl) Move(ctx context.Context, id int, parentId *int) (Folder, bool, error) {
	var (
		moved   Folder
		changed bool
	)
	err := s.mutate(ctx, "move", func(h *Hierarchy) (func(context.Context) error, error) {
		c, err := h.Move(id, parentId)
		if err != nil {
			return nil, err
		}
		moved, _ = h.Get(id)
		changed = c
		if !c {
			return nil, nil
		}
		return func(ctx context.Context) error {
			ok, err := s.repo.MoveFolder(ctx, id, parentId)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%w (folder %d)", ErrFolderNotFound, id)
			}
			return nil
		}, nil
	})
	if err != nil {
		return Folder{}, false, err
	}
	return moved, changed, nil
}

func (s *ServiceImpl) IsDescendant(ctx context.Context, candidateId, ofId int) (bool, error) {
	var descendant bool
	err := s.read(ctx, func(h *Hierarchy) error {
		d, err := h.IsDescendant(candidateId, ofId)
		descendant = d
		return err
	})
	return descendant, err
}

func (s *ServiceImpl) Path(ctx context.Context, folderId *int) ([]Folder, error) {
	var path []Folder
	err := s.read(ctx, func(h *Hierarchy) error {
		p, err := h.Path(folderId)
		path = p
		return err
	})
	return path, err
}

// DescendantIds returns the ids below id in ascending order.
func (s *ServiceImpl) DescendantIds(ctx context.Context, id int) ([]int, error) {
	var ids []int
	err := s.read(ctx, func(h *Hierarchy) error {
		set, err := h.DescendantIds(id)
		if err != nil {
			return err
		}
		ids = make([]int, 0, len(set))
		for descendantId := range set {
			ids = append(ids, descendantId)
		}
		sort.Ints(ids)
		return nil
	})
	return ids, err
}

// MoveBudget files a budget under folderId, or at the root when folderId is nil.
// The hierarchy stays locked so the folder cannot disappear in between.
func (s *ServiceImpl) MoveBudget(ctx context.Context, budgetId int, folderId *int) error {
	return s.read(ctx, func(h *Hierarchy) error {
		if folderId != nil {
			if _, ok := h.Get(*folderId); !ok {
				return fmt.Errorf("%w (folder %d)", ErrFolderNotFound, *folderId)
			}
		}
		return s.budgets.AssignFolder(ctx, budgetId, folderId)
	})
}
