package itemgroup

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
	GetTemplate(ctx context.Context, id int) (Template, error)
	// ListTemplates returns all templates, or only those of companyId when it is set.
	ListTemplates(ctx context.Context, companyId *int) ([]Template, error)
	StoreTemplate(ctx context.Context, template Template) (int, error)
	UpdateTemplate(ctx context.Context, template Template) (bool, error)
	DeleteTemplate(ctx context.Context, id int) (bool, error)
}

type RepositoryImpl struct {
	db database.DB
}

func NewRepository(db database.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetTemplate(ctx context.Context, id int) (Template, error) {
	var template Template
	query := `SELECT id, name, description, company_id FROM item_group_template WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&template.Id, &template.Name, &template.Description, &template.CompanyId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Template{}, apperrors.NewNotFound("item group template", id)
		}
		err := fmt.Errorf("could not get item group template %d: %w", id, err)
		log.Error(err)
		return Template{}, err
	}

	materials, err := r.findMaterials(ctx, []int{id})
	if err != nil {
		return Template{}, err
	}
	template.Materials = materials[id]
	return template, nil
}

func (r *RepositoryImpl) ListTemplates(ctx context.Context, companyId *int) ([]Template, error) {
	query := `SELECT id, name, description, company_id FROM item_group_template
              WHERE ($1::int IS NULL OR company_id = $1)
              ORDER BY name, id`
	rows, err := r.db.Query(ctx, query, companyId)
	if err != nil {
		err := fmt.Errorf("could not query item group templates: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var templates []Template
	var ids []int
	for rows.Next() {
		var template Template
		if err := rows.Scan(&template.Id, &template.Name, &template.Description, &template.CompanyId); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		templates = append(templates, template)
		ids = append(ids, template.Id)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	if len(ids) == 0 {
		return templates, nil
	}

	materials, err := r.findMaterials(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range templates {
		templates[i].Materials = materials[templates[i].Id]
	}
	return templates, nil
}

func (r *RepositoryImpl) findMaterials(ctx context.Context, templateIds []int) (map[int][]TemplateMaterial, error) {
	query := `SELECT template_id, material_id, quantity::text FROM item_group_template_material
              WHERE template_id = ANY($1)
              ORDER BY template_id, position`
	rows, err := r.db.Query(ctx, query, templateIds)
	if err != nil {
		err := fmt.Errorf("could not query item group materials: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	byTemplate := make(map[int][]TemplateMaterial, len(templateIds))
	for rows.Next() {
		var (
			templateId int
			material   TemplateMaterial
			quantity   string
		)
		if err := rows.Scan(&templateId, &material.MaterialId, &quantity); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		material.Quantity, err = database.ParseNumeric("quantity", quantity)
		if err != nil {
			return nil, err
		}
		byTemplate[templateId] = append(byTemplate[templateId], material)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return byTemplate, nil
}

func (r *RepositoryImpl) StoreTemplate(ctx context.Context, template Template) (int, error) {
	var id int
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `INSERT INTO item_group_template (name, description, company_id) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRow(ctx, query, template.Name, template.Description, template.CompanyId).Scan(&id); err != nil {
			err := fmt.Errorf("could not execute query: %w", err)
			log.Error(err)
			return err
		}
		return insertMaterials(ctx, tx, id, template.Materials)
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateTemplate replaces the template fields and its whole material list.
func (r *RepositoryImpl) UpdateTemplate(ctx context.Context, template Template) (bool, error) {
	updated := false
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `UPDATE item_group_template SET name = $1, description = $2, company_id = $3 WHERE id = $4`
		result, err := tx.Exec(ctx, query, template.Name, template.Description, template.CompanyId, template.Id)
		if err != nil {
			err := fmt.Errorf("could not execute query: %w", err)
			log.Error(err)
			return err
		}
		if result.RowsAffected() == 0 {
			return nil
		}
		updated = true

		if _, err := tx.Exec(ctx, `DELETE FROM item_group_template_material WHERE template_id = $1`, template.Id); err != nil {
			err := fmt.Errorf("could not execute query: %w", err)
			log.Error(err)
			return err
		}
		return insertMaterials(ctx, tx, template.Id, template.Materials)
	})
	if err != nil {
		return false, err
	}
	return updated, nil
}

func (r *RepositoryImpl) DeleteTemplate(ctx context.Context, id int) (bool, error) {
	result, err := r.db.Exec(ctx, "DELETE FROM item_group_template WHERE id = $1", id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func insertMaterials(ctx context.Context, tx pgx.Tx, templateId int, materials []TemplateMaterial) error {
	query := `INSERT INTO item_group_template_material (template_id, material_id, quantity, position) VALUES ($1, $2, $3, $4)`
	for position, material := range materials {
		if _, err := tx.Exec(ctx, query, templateId, material.MaterialId, material.Quantity.String(), position); err != nil {
			err := fmt.Errorf("could not store material %d of template %d: %w", material.MaterialId, templateId, err)
			log.Error(err)
			return err
		}
	}
	return nil
}
