package folder

import "github.com/orcaposte/orcaposte/internal/apperrors"

var ErrFolderNotFound = apperrors.NewNotFound("folder", 0)

var ErrEmptyName = apperrors.NewValidation("folder name cannot be empty")
var ErrSelfParent = apperrors.NewValidation("folder cannot be its own parent")
var ErrCycle = apperrors.NewValidation("folder cannot be moved into one of its descendants")

type Folder struct {
	Id    int
	Name  string
	Color string
	// ParentId is nil for root folders.
	ParentId *int
}

// DeleteResult describes what a delete changed besides removing the folder.
type DeleteResult struct {
	Deleted Folder
	// ReparentedIds are the direct children now attached to Deleted.ParentId.
	ReparentedIds []int
}

func sameParent(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func copyId(id *int) *int {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
