package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var materialRowColumns = []string{"id", "code", "name", "unit", "unit_price"}

func setupMockRepository(t *testing.T) (context.Context, pgxmock.PgxPoolIface, *RepositoryImpl) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return context.Background(), mock, NewRepository(mock)
}

func TestRepositoryImpl_GetMaterial(t *testing.T) {
	t.Run("should scan numeric price", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectQuery(`SELECT (.+) FROM material WHERE id = \$1`).
			WithArgs(3).
			WillReturnRows(pgxmock.NewRows(materialRowColumns).AddRow(3, "CB-16", "Cabo", "M", "7.3500"))

		material, err := repo.GetMaterial(ctx, 3)

		require.NoError(t, err)
		assert.Equal(t, 3, material.Id)
		assert.True(t, material.UnitPrice.Equal(decimal.RequireFromString("7.35")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should return not found when no row", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectQuery(`SELECT (.+) FROM material WHERE id = \$1`).
			WithArgs(99).
			WillReturnRows(pgxmock.NewRows(materialRowColumns))

		_, err := repo.GetMaterial(ctx, 99)

		assert.ErrorIs(t, err, ErrMaterialNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("should wrap database errors", func(t *testing.T) {
		ctx, mock, repo := setupMockRepository(t)
		mock.ExpectQuery(`SELECT (.+) FROM material WHERE id = \$1`).
			WithArgs(1).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.GetMaterial(ctx, 1)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestRepositoryImpl_StoreMaterial(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectQuery(`INSERT INTO material \(code, name, unit, unit_price\)`).
		WithArgs("CB-16", "Cabo", "M", "7.35").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(12))

	id, err := repo.StoreMaterial(ctx, Material{Code: "CB-16", Name: "Cabo", Unit: "M", UnitPrice: decimal.RequireFromString("7.35")})

	require.NoError(t, err)
	assert.Equal(t, 12, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryImpl_UpdateMaterial(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectExec(`UPDATE material SET`).
		WithArgs("CB-16", "Cabo", "M", "9", 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	updated, err := repo.UpdateMaterial(ctx, Material{Id: 4, Code: "CB-16", Name: "Cabo", Unit: "M", UnitPrice: decimal.NewFromInt(9)})

	require.NoError(t, err)
	assert.False(t, updated)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepositoryImpl_ListMaterials(t *testing.T) {
	ctx, mock, repo := setupMockRepository(t)
	mock.ExpectQuery(`SELECT (.+) FROM material ORDER BY name, id`).
		WillReturnRows(pgxmock.NewRows(materialRowColumns).
			AddRow(2, "A1", "Alça preformada", "UN", "3.2000").
			AddRow(1, "CB-16", "Cabo", "M", "7.3500"))

	materials, err := repo.ListMaterials(ctx)

	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, "Alça preformada", materials[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}
