package folder

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/orcaposte/orcaposte/internal/database"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	ListFolders(ctx context.Context) ([]Folder, error)
	CreateFolder(ctx context.Context, folder Folder) (int, error)
	RenameFolder(ctx context.Context, id int, name, color string) (bool, error)
	MoveFolder(ctx context.Context, id int, parentId *int) (bool, error)
	// DeleteFolder attaches the children of id to newParentId, detaches the budgets
	// filed in id and removes it, all in one transaction.
	DeleteFolder(ctx context.Context, id int, newParentId *int) error
}

type RepositoryImpl struct {
	db database.DB
}

func NewRepository(db database.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) ListFolders(ctx context.Context) ([]Folder, error) {
	query := `SELECT id, name, color, COALESCE(parent_id, 0) FROM folder ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query folders: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var folders []Folder
	for rows.Next() {
		var (
			folder   Folder
			parentId int
		)
		if err := rows.Scan(&folder.Id, &folder.Name, &folder.Color, &parentId); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		folder.ParentId = database.NullableId(parentId)
		folders = append(folders, folder)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return folders, nil
}

func (r *RepositoryImpl) CreateFolder(ctx context.Context, folder Folder) (int, error) {
	query := `INSERT INTO folder (name, color, parent_id) VALUES ($1, $2, $3) RETURNING id`
	var id int
	if err := r.db.QueryRow(ctx, query, folder.Name, folder.Color, folder.ParentId).Scan(&id); err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) RenameFolder(ctx context.Context, id int, name, color string) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE folder SET name = $1, color = $2 WHERE id = $3`, name, color, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) MoveFolder(ctx context.Context, id int, parentId *int) (bool, error) {
	result, err := r.db.Exec(ctx, `UPDATE folder SET parent_id = $1 WHERE id = $2`, parentId, id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func (r *RepositoryImpl) DeleteFolder(ctx context.Context, id int, newParentId *int) error {
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `UPDATE folder SET parent_id = $1 WHERE parent_id = $2`, newParentId, id); err != nil {
			return fmt.Errorf("could not reparent children of folder %d: %w", id, err)
		}
		if _, err := tx.Exec(ctx, `UPDATE budget SET folder_id = NULL WHERE folder_id = $1`, id); err != nil {
			return fmt.Errorf("could not detach budgets from folder %d: %w", id, err)
		}
		result, err := tx.Exec(ctx, `DELETE FROM folder WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("could not delete folder %d: %w", id, err)
		}
		if result.RowsAffected() != 1 {
			return apperrors.NewNotFound("folder", id)
		}
		return nil
	})
	if err != nil {
		log.Error(err)
		return err
	}
	return nil
}
