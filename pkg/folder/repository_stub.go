package folder

import (
	"context"
	"sort"

	"github.com/orcaposte/orcaposte/internal/apperrors"
)

// RepositoryStub keeps folders and budget placements in memory. FailWith makes the
// next write return the given error without changing anything.
type RepositoryStub struct {
	nextId        int
	folders       map[int]Folder
	budgetFolders map[int]*int
	failNext      error
	writes        int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		folders:       map[int]Folder{},
		budgetFolders: map[int]*int{},
	}
}

func (s *RepositoryStub) FailWith(err error) {
	s.failNext = err
}

// Writes counts successful write calls.
func (s *RepositoryStub) Writes() int {
	return s.writes
}

func (s *RepositoryStub) fail() error {
	err := s.failNext
	s.failNext = nil
	return err
}

// Seed stores folders as if they were already persisted, bypassing validation.
func (s *RepositoryStub) Seed(folders ...Folder) {
	for _, f := range folders {
		s.folders[f.Id] = cloneFolder(f)
		if f.Id > s.nextId {
			s.nextId = f.Id
		}
	}
}

func (s *RepositoryStub) ListFolders(ctx context.Context) ([]Folder, error) {
	if err := s.fail(); err != nil {
		return nil, err
	}
	folders := make([]Folder, 0, len(s.folders))
	for _, f := range s.folders {
		folders = append(folders, cloneFolder(f))
	}
	sort.Slice(folders, func(i, j int) bool {
		return folders[i].Id < folders[j].Id
	})
	return folders, nil
}

func (s *RepositoryStub) CreateFolder(ctx context.Context, folder Folder) (int, error) {
	if err := s.fail(); err != nil {
		return 0, err
	}
	s.nextId++
	folder.Id = s.nextId
	s.folders[folder.Id] = cloneFolder(folder)
	s.writes++
	return folder.Id, nil
}

func (s *RepositoryStub) RenameFolder(ctx context.Context, id int, name, color string) (bool, error) {
	if err := s.fail(); err != nil {
		return false, err
	}
	f, ok := s.folders[id]
	if !ok {
		return false, nil
	}
	f.Name = name
	f.Color = color
	s.folders[id] = f
	s.writes++
	return true, nil
}

func (s *RepositoryStub) MoveFolder(ctx context.Context, id int, parentId *int) (bool, error) {
	if err := s.fail(); err != nil {
		return false, err
	}
	f, ok := s.folders[id]
	if !ok {
		return false, nil
	}
	f.ParentId = copyId(parentId)
	s.folders[id] = f
	s.writes++
	return true, nil
}

func (s *RepositoryStub) DeleteFolder(ctx context.Context, id int, newParentId *int) error {
	if err := s.fail(); err != nil {
		return err
	}
	if _, ok := s.folders[id]; !ok {
		return apperrors.NewNotFound("folder", id)
	}
	for childId, f := range s.folders {
		if f.ParentId != nil && *f.ParentId == id {
			f.ParentId = copyId(newParentId)
			s.folders[childId] = f
		}
	}
	for budgetId, folderId := range s.budgetFolders {
		if folderId != nil && *folderId == id {
			s.budgetFolders[budgetId] = nil
		}
	}
	delete(s.folders, id)
	s.writes++
	return nil
}

// AssignFolder lets the stub stand in for the budget service.
func (s *RepositoryStub) AssignFolder(ctx context.Context, budgetId int, folderId *int) error {
	if err := s.fail(); err != nil {
		return err
	}
	s.budgetFolders[budgetId] = copyId(folderId)
	return nil
}

func (s *RepositoryStub) BudgetFolder(budgetId int) *int {
	return s.budgetFolders[budgetId]
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.folders = map[int]Folder{}
	s.budgetFolders = map[int]*int{}
	s.failNext = nil
	s.writes = 0
}
