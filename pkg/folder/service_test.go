package folder

import (
	"context"
	"errors"
	"testing"

	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = context.Background()

var repoStub = NewRepositoryStub()

var service *ServiceImpl

func setup(t *testing.T) func() {
	service = NewService(repoStub, repoStub)
	return func() {
		t.Log("Teardown after test")
		repoStub.Cleanup()
	}
}

func seedTree() {
	repoStub.Seed(
		Folder{Id: 1, Name: "Obras"},
		Folder{Id: 2, Name: "Campinas", ParentId: intPtr(1)},
		Folder{Id: 3, Name: "Sumaré", ParentId: intPtr(1)},
		Folder{Id: 4, Name: "Centro", ParentId: intPtr(2)},
	)
}

func TestServiceImpl_Create(t *testing.T) {
	t.Run("should persist and return the stored id", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()

		// when
		created, err := service.Create(ctx, "Hortolândia", "#123456", intPtr(1))

		// then
		require.NoError(t, err)
		assert.Equal(t, 5, created.Id)
		children, err := service.ListChildren(ctx, intPtr(1))
		require.NoError(t, err)
		assert.Equal(t, []int{2, 3, 5}, ids(children))
	})

	t.Run("should restore the hierarchy when storage fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()
		_, err := service.List(ctx)
		require.NoError(t, err)
		repoStub.FailWith(errors.New("connection reset"))

		// when
		_, err = service.Create(ctx, "Hortolândia", "", nil)

		// then
		assert.ErrorContains(t, err, "connection reset")
		folders, err := service.List(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3, 4}, ids(folders))
	})

	t.Run("should not touch storage on validation failure", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Create(ctx, " ", "", nil)

		assert.ErrorIs(t, err, apperrors.ErrValidation)
		assert.Zero(t, repoStub.Writes())
	})
}

func TestServiceImpl_Delete(t *testing.T) {
	t.Run("should reparent children and detach budgets", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()
		require.NoError(t, service.MoveBudget(ctx, 7, intPtr(2)))
		require.NoError(t, service.MoveBudget(ctx, 8, intPtr(3)))

		// when
		result, err := service.Delete(ctx, 2)

		// then
		require.NoError(t, err)
		assert.Equal(t, []int{4}, result.ReparentedIds)
		centro, err := service.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, *centro.ParentId)
		assert.Nil(t, repoStub.BudgetFolder(7))
		assert.Equal(t, 3, *repoStub.BudgetFolder(8))

		require.NoError(t, service.Reload(ctx))
		reloaded, err := service.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 1, *reloaded.ParentId)
	})

	t.Run("should keep the folder when storage fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()
		_, err := service.List(ctx)
		require.NoError(t, err)
		repoStub.FailWith(errors.New("deadlock detected"))

		// when
		_, err = service.Delete(ctx, 2)

		// then
		assert.Error(t, err)
		path, err := service.Path(ctx, intPtr(4))
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 4}, ids(path))
	})

	t.Run("should return not found for an unknown folder", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		_, err := service.Delete(ctx, 99)

		assert.ErrorIs(t, err, ErrFolderNotFound)
	})
}

func TestServiceImpl_Move(t *testing.T) {
	t.Run("should move and persist", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()

		// when
		moved, changed, err := service.Move(ctx, 3, intPtr(4))

		// then
		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, 4, *moved.ParentId)
		descendant, err := service.IsDescendant(ctx, 3, 1)
		require.NoError(t, err)
		assert.True(t, descendant)
		assert.Equal(t, 1, repoStub.Writes())
	})

	t.Run("should skip storage when the parent is unchanged", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()

		// when
		_, changed, err := service.Move(ctx, 4, intPtr(2))

		// then
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Zero(t, repoStub.Writes())
	})

	t.Run("should reject a cycle", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()

		// when
		_, _, err := service.Move(ctx, 1, intPtr(4))

		// then
		assert.ErrorIs(t, err, ErrCycle)
		assert.Zero(t, repoStub.Writes())
	})

	t.Run("should restore the previous parent when storage fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		seedTree()
		_, err := service.List(ctx)
		require.NoError(t, err)
		repoStub.FailWith(errors.New("timeout"))

		// when
		_, _, err = service.Move(ctx, 4, nil)

		// then
		assert.Error(t, err)
		centro, err := service.Get(ctx, 4)
		require.NoError(t, err)
		assert.Equal(t, 2, *centro.ParentId)
	})
}

func TestServiceImpl_Rename(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	seedTree()

	renamed, err := service.Rename(ctx, 3, "Sumaré Sul", "#abcdef")

	require.NoError(t, err)
	assert.Equal(t, "Sumaré Sul", renamed.Name)
	require.NoError(t, service.Reload(ctx))
	stored, err := service.Get(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "#abcdef", stored.Color)
}

func TestServiceImpl_MoveBudget(t *testing.T) {
	t.Run("should reject an unknown folder", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		err := service.MoveBudget(ctx, 7, intPtr(42))

		assert.ErrorIs(t, err, ErrFolderNotFound)
		assert.Nil(t, repoStub.BudgetFolder(7))
	})

	t.Run("should move a budget back to the root", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()
		seedTree()
		require.NoError(t, service.MoveBudget(ctx, 7, intPtr(4)))

		err := service.MoveBudget(ctx, 7, nil)

		require.NoError(t, err)
		assert.Nil(t, repoStub.BudgetFolder(7))
	})
}

func TestServiceImpl_LoadCorruptHierarchy(t *testing.T) {
	teardown := setup(t)
	defer teardown()

	// given
	repoStub.Seed(
		Folder{Id: 1, Name: "A", ParentId: intPtr(2)},
		Folder{Id: 2, Name: "B", ParentId: intPtr(1)},
	)

	// when
	_, err := service.List(ctx)

	// then
	assert.ErrorIs(t, err, apperrors.ErrIntegrity)
	assert.Equal(t, 409, apperrors.HttpStatus(err))
}

func TestServiceImpl_DescendantIds(t *testing.T) {
	teardown := setup(t)
	defer teardown()
	seedTree()

	descendants, err := service.DescendantIds(ctx, 1)

	require.NoError(t, err)
	assert.Equal(t, []int{2, 3, 4}, descendants)
}
