package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/orcaposte/orcaposte/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	GetMaterial(ctx context.Context, id int) (Material, error)
	FindMaterials(ctx context.Context, ids []int) ([]Material, error)
	ListMaterials(ctx context.Context) ([]Material, error)
	StoreMaterial(ctx context.Context, material Material) (int, error)
	UpdateMaterial(ctx context.Context, material Material) (bool, error)
	DeleteMaterial(ctx context.Context, id int) (bool, error)
	ListPostTypes(ctx context.Context) ([]PostType, error)
	GetPostType(ctx context.Context, id int) (PostType, error)
}

type RepositoryImpl struct {
	db database.DB
}

func NewRepository(db database.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const materialColumns = `id, code, name, unit, unit_price::text`

func (r *RepositoryImpl) GetMaterial(ctx context.Context, id int) (Material, error) {
	query := `SELECT ` + materialColumns + ` FROM material WHERE id = $1`
	material, err := scanMaterial(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Material{}, apperrors.NewNotFound("material", id)
		}
		err := fmt.Errorf("could not get material %d: %w", id, err)
		log.Error(err)
		return Material{}, err
	}
	return material, nil
}

func (r *RepositoryImpl) FindMaterials(ctx context.Context, ids []int) ([]Material, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + materialColumns + ` FROM material WHERE id = ANY($1) ORDER BY id`
	return r.queryMaterials(ctx, query, ids)
}

func (r *RepositoryImpl) ListMaterials(ctx context.Context) ([]Material, error) {
	query := `SELECT ` + materialColumns + ` FROM material ORDER BY name, id`
	return r.queryMaterials(ctx, query)
}

func (r *RepositoryImpl) queryMaterials(ctx context.Context, query string, args ...any) ([]Material, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query materials: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var materials []Material
	for rows.Next() {
		material, err := scanMaterial(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		materials = append(materials, material)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return materials, nil
}

func (r *RepositoryImpl) StoreMaterial(ctx context.Context, material Material) (int, error) {
	query := `INSERT INTO material (code, name, unit, unit_price) VALUES ($1, $2, $3, $4) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query,
		material.Code,
		material.Name,
		material.Unit,
		material.UnitPrice.String(),
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) UpdateMaterial(ctx context.Context, material Material) (bool, error) {
	query := `UPDATE material SET
                  code = $1,
                  name = $2,
                  unit = $3,
                  unit_price = $4,
                  updated_at = now()
              WHERE id = $5`
	result, err := r.db.Exec(ctx, query,
		material.Code,
		material.Name,
		material.Unit,
		material.UnitPrice.String(),
		material.Id,
	)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteMaterial(ctx context.Context, id int) (bool, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM material WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) ListPostTypes(ctx context.Context) ([]PostType, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, material_id FROM post_type ORDER BY name, id`)
	if err != nil {
		err := fmt.Errorf("could not query post types: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var postTypes []PostType
	for rows.Next() {
		var postType PostType
		if err := rows.Scan(&postType.Id, &postType.Name, &postType.MaterialId); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		postTypes = append(postTypes, postType)
	}
	return postTypes, rows.Err()
}

func (r *RepositoryImpl) GetPostType(ctx context.Context, id int) (PostType, error) {
	var postType PostType
	err := r.db.QueryRow(ctx, `SELECT id, name, material_id FROM post_type WHERE id = $1`, id).
		Scan(&postType.Id, &postType.Name, &postType.MaterialId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostType{}, apperrors.NewNotFound("post type", id)
		}
		err := fmt.Errorf("could not get post type %d: %w", id, err)
		log.Error(err)
		return PostType{}, err
	}
	return postType, nil
}

func scanMaterial(row pgx.Row) (Material, error) {
	var (
		material  Material
		unitPrice string
	)
	if err := row.Scan(&material.Id, &material.Code, &material.Name, &material.Unit, &unitPrice); err != nil {
		return Material{}, err
	}
	price, err := database.ParseNumeric("unit_price", unitPrice)
	if err != nil {
		return Material{}, err
	}
	material.UnitPrice = price
	return material, nil
}
