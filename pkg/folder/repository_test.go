package folder

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockRepository(t *testing.T) (context.Context, pgxmock.PgxPoolIface, *RepositoryImpl) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return context.Background(), mock, NewRepository(mock)
}

func TestRepositoryImpl_ListFolders(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectQuery(`SELECT id, name, color, COALESCE\(parent_id, 0\) FROM folder ORDER BY id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "color", "parent_id"}).
			AddRow(1, "Obras", "#ff0000", 0).
			AddRow(2, "Campinas", "", 1))

	folders, err := repo.ListFolders(ctx)

	require.NoError(t, err)
	require.Len(t, folders, 2)
	assert.Nil(t, folders[0].ParentId)
	assert.Equal(t, 1, *folders[1].ParentId)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryImpl_CreateFolder(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectQuery(`INSERT INTO folder \(name, color, parent_id\)`).
		WithArgs("Campinas", "", pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.CreateFolder(ctx, Folder{Name: "Campinas", ParentId: intPtr(1)})

	require.NoError(t, err)
	assert.Equal(t, 12, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryImpl_MoveFolder(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectExec(`UPDATE folder SET parent_id = \$1 WHERE id = \$2`).
		WithArgs(pgxmock.AnyArg(), 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	moved, err := repo.MoveFolder(ctx, 4, nil)

	require.NoError(t, err)
	assert.False(t, moved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryImpl_DeleteFolder(t *testing.T) {
	t.Run("should reparent, detach budgets and delete in one transaction", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE folder SET parent_id = \$1 WHERE parent_id = \$2`).
			WithArgs(pgxmock.AnyArg(), 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectExec(`UPDATE budget SET folder_id = NULL WHERE folder_id = \$1`).
			WithArgs(2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 3))
		mock.ExpectExec(`DELETE FROM folder WHERE id = \$1`).
			WithArgs(2).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))
		mock.ExpectCommit()

		err := repo.DeleteFolder(ctx, 2, intPtr(1))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should roll back when detaching budgets fails", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE folder SET parent_id = \$1 WHERE parent_id = \$2`).
			WithArgs(pgxmock.AnyArg(), 2).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec(`UPDATE budget SET folder_id = NULL WHERE folder_id = \$1`).
			WithArgs(2).
			WillReturnError(errors.New("lock timeout"))
		mock.ExpectRollback()

		err := repo.DeleteFolder(ctx, 2, nil)

		assert.ErrorContains(t, err, "lock timeout")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should roll back when the folder is gone", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE folder SET parent_id`).
			WithArgs(pgxmock.AnyArg(), 9).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec(`UPDATE budget SET folder_id = NULL`).
			WithArgs(9).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))
		mock.ExpectExec(`DELETE FROM folder WHERE id = \$1`).
			WithArgs(9).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
		mock.ExpectRollback()

		err := repo.DeleteFolder(ctx, 9, nil)

		assert.ErrorIs(t, err, ErrFolderNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
