package folder

import (
	"fmt"
	"strings"

	"github.com/orcaposte/orcaposte/internal/apperrors"
)

// Hierarchy is a forest of folders kept in insertion order. Every operation validates
// completely before changing anything, so a returned error means nothing changed.
// It is not safe for concurrent use.
type Hierarchy struct {
	folders     []Folder
	index       map[int]int
	provisional int
}

func NewHierarchy(folders []Folder) *Hierarchy {
	h := &Hierarchy{}
	h.reset(folders)
	return h
}

func (h *Hierarchy) reset(folders []Folder) {
	h.folders = make([]Folder, 0, len(folders))
	for _, f := range folders {
		f.ParentId = copyId(f.ParentId)
		h.folders = append(h.folders, f)
	}
	h.reindex()
}

func (h *Hierarchy) reindex() {
	h.index = make(map[int]int, len(h.folders))
	for i, f := range h.folders {
		h.index[f.Id] = i
	}
}

func (h *Hierarchy) Len() int {
	return len(h.folders)
}

func (h *Hierarchy) Get(id int) (Folder, bool) {
	i, ok := h.index[id]
	if !ok {
		return Folder{}, false
	}
	return cloneFolder(h.folders[i]), true
}

func (h *Hierarchy) All() []Folder {
	all := make([]Folder, 0, len(h.folders))
	for _, f := range h.folders {
		all = append(all, cloneFolder(f))
	}
	return all
}

func (h *Hierarchy) lookup(id int) (*Folder, error) {
	i, ok := h.index[id]
	if !ok {
		return nil, apperrors.NewNotFound("folder", id)
	}
	return &h.folders[i], nil
}

// Create appends a folder under parentId with a provisional negative id. Rekey replaces
// it once storage has assigned the real one.
func (h *Hierarchy) Create(name, color string, parentId *int) (Folder, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, ErrEmptyName
	}
	if parentId != nil {
		if _, err := h.lookup(*parentId); err != nil {
			return Folder{}, err
		}
	}
	h.provisional--
	f := Folder{Id: h.provisional, Name: name, Color: color, ParentId: copyId(parentId)}
	h.folders = append(h.folders, f)
	h.index[f.Id] = len(h.folders) - 1
	return cloneFolder(f), nil
}

func (h *Hierarchy) Rekey(oldId, newId int) error {
	i, ok := h.index[oldId]
	if !ok {
		return apperrors.NewNotFound("folder", oldId)
	}
	if _, taken := h.index[newId]; taken {
		return apperrors.NewIntegrity(fmt.Sprintf("folder id %d is already in use", newId))
	}
	h.folders[i].Id = newId
	for j := range h.folders {
		if h.folders[j].ParentId != nil && *h.folders[j].ParentId == oldId {
			h.folders[j].ParentId = copyId(&newId)
		}
	}
	delete(h.index, oldId)
	h.index[newId] = i
	return nil
}

// Rename changes name and color only.
func (h *Hierarchy) Rename(id int, name, color string) (Folder, error) {
	f, err := h.lookup(id)
	if err != nil {
		return Folder{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Folder{}, ErrEmptyName
	}
	f.Name = name
	f.Color = color
	return cloneFolder(*f), nil
}

// Delete removes a folder and promotes its direct children to the deleted folder's parent.
// Budgets inside the folder are detached by the storage call, not here.
func (h *Hierarchy) Delete(id int) (DeleteResult, error) {
	target, err := h.lookup(id)
	if err != nil {
		return DeleteResult{}, err
	}
	deleted := cloneFolder(*target)

	result := DeleteResult{Deleted: deleted}
	remaining := make([]Folder, 0, len(h.folders)-1)
	for _, f := range h.folders {
		if f.Id == id {
			continue
		}
		if f.ParentId != nil && *f.ParentId == id {
			f.ParentId = copyId(deleted.ParentId)
			result.ReparentedIds = append(result.ReparentedIds, f.Id)
		}
		remaining = append(remaining, f)
	}
	h.folders = remaining
	h.reindex()
	return result, nil
}

// Move sets the parent of id to newParentId, nil meaning root. It reports false when
// the folder already had that parent.
func (h *Hierarchy) Move(id int, newParentId *int) (bool, error) {
	f, err := h.lookup(id)
	if err != nil {
		return false, err
	}
	if newParentId != nil {
		if _, err := h.lookup(*newParentId); err != nil {
			return false, err
		}
		if *newParentId == id {
			return false, ErrSelfParent
		}
		descendant, err := h.IsDescendant(*newParentId, id)
		if err != nil {
			return false, err
		}
		if descendant {
			return false, ErrCycle
		}
	}
	if sameParent(f.ParentId, newParentId) {
		return false, nil
	}
	f.ParentId = copyId(newParentId)
	return true, nil
}

// IsDescendant walks the ancestors of candidateId and reports whether ofId is one of them.
// A folder is not its own descendant.
func (h *Hierarchy) IsDescendant(candidateId, ofId int) (bool, error) {
	candidate, err := h.lookup(candidateId)
	if err != nil {
		return false, err
	}
	if _, err := h.lookup(ofId); err != nil {
		return false, err
	}

	found := false
	err = h.walkAncestors(candidate, func(ancestor *Folder) bool {
		if ancestor.Id == ofId {
			found = true
			return false
		}
		return true
	})
	return found, err
}

// Path returns the folders from the root down to folderId, inclusive. A nil folderId
// gives an empty path.
func (h *Hierarchy) Path(folderId *int) ([]Folder, error) {
	if folderId == nil {
		return []Folder{}, nil
	}
	f, err := h.lookup(*folderId)
	if err != nil {
		return nil, err
	}
	path := []Folder{cloneFolder(*f)}
	err = h.walkAncestors(f, func(ancestor *Folder) bool {
		path = append(path, cloneFolder(*ancestor))
		return true
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// walkAncestors visits the parent chain of f, nearest first, until visit returns false
// or the root is reached. The walk is capped at the folder count.
func (h *Hierarchy) walkAncestors(f *Folder, visit func(ancestor *Folder) bool) error {
	current := f
	for steps := 0; current.ParentId != nil; steps++ {
		if steps >= len(h.folders) {
			return apperrors.NewIntegrity(fmt.Sprintf("ancestor chain of folder %d does not reach a root", f.Id))
		}
		i, ok := h.index[*current.ParentId]
		if !ok {
			return apperrors.NewIntegrity(fmt.Sprintf("folder %d references missing parent %d", current.Id, *current.ParentId))
		}
		current = &h.folders[i]
		if !visit(current) {
			return nil
		}
	}
	return nil
}

// Children lists the direct children of parentId in insertion order; nil lists roots.
func (h *Hierarchy) Children(parentId *int) []Folder {
	children := []Folder{}
	for _, f := range h.folders {
		if sameParent(f.ParentId, parentId) {
			children = append(children, cloneFolder(f))
		}
	}
	return children
}

// DescendantIds collects every folder below id, excluding id itself.
func (h *Hierarchy) DescendantIds(id int) (map[int]struct{}, error) {
	if _, err := h.lookup(id); err != nil {
		return nil, err
	}
	children := make(map[int][]int, len(h.folders))
	for _, f := range h.folders {
		if f.ParentId != nil {
			children[*f.ParentId] = append(children[*f.ParentId], f.Id)
		}
	}

	descendants := map[int]struct{}{}
	visited := map[int]struct{}{id: {}}
	queue := []int{id}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range children[current] {
			if _, seen := visited[child]; seen {
				continue
			}
			visited[child] = struct{}{}
			descendants[child] = struct{}{}
			queue = append(queue, child)
		}
	}
	return descendants, nil
}

// CheckIntegrity verifies that every parent exists and every chain reaches a root.
// It is meant for folder data loaded from storage.
func (h *Hierarchy) CheckIntegrity() error {
	for i := range h.folders {
		f := &h.folders[i]
		if f.ParentId != nil && *f.ParentId == f.Id {
			return apperrors.NewIntegrity(fmt.Sprintf("folder %d is its own parent", f.Id))
		}
		if err := h.walkAncestors(f, func(*Folder) bool { return true }); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot is an independent copy of a hierarchy's state.
type Snapshot struct {
	folders     []Folder
	provisional int
}

func (h *Hierarchy) Snapshot() Snapshot {
	folders := make([]Folder, 0, len(h.folders))
	for _, f := range h.folders {
		folders = append(folders, cloneFolder(f))
	}
	return Snapshot{folders: folders, provisional: h.provisional}
}

func (h *Hierarchy) Restore(s Snapshot) {
	h.reset(s.folders)
	h.provisional = s.provisional
}

func cloneFolder(f Folder) Folder {
	f.ParentId = copyId(f.ParentId)
	return f
}
