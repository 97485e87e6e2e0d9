package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/orcaposte/orcaposte/internal/apperrors"
	"github.com/orcaposte/orcaposte/internal/database"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	GetBudget(ctx context.Context, id int) (Budget, error)
	ListBudgets(ctx context.Context, filter ListFilter) ([]Budget, error)
	StoreBudget(ctx context.Context, budget Budget) (int, error)
	UpdateBudget(ctx context.Context, budget Budget) (bool, error)
	SetStatus(ctx context.Context, id int, status Status, updatedAt time.Time) (bool, error)
	SetFolder(ctx context.Context, id int, folderId *int, updatedAt time.Time) (bool, error)
	DeleteBudget(ctx context.Context, id int) (bool, error)

	// GetPosts loads the full post tree of a budget: posts, their item groups with lines,
	// and their loose materials, each level in stored order.
	GetPosts(ctx context.Context, budgetId int) ([]Post, error)
	GetPost(ctx context.Context, budgetId int, postId int) (Post, error)
	StorePost(ctx context.Context, post Post) (int, error)
	UpdatePost(ctx context.Context, post Post) (bool, error)
	DeletePost(ctx context.Context, budgetId int, postId int) (bool, error)

	StoreItemGroup(ctx context.Context, group ItemGroupInstance) (ItemGroupInstance, error)
	DeleteItemGroup(ctx context.Context, postId int, groupId int) (bool, error)

	StoreLooseMaterial(ctx context.Context, entry LooseMaterialEntry) (int, error)
	GetLooseMaterial(ctx context.Context, postId int, entryId int) (LooseMaterialEntry, error)
	UpdateLooseMaterialQuantity(ctx context.Context, postId int, entryId int, quantity decimal.Decimal) (bool, error)
	DeleteLooseMaterial(ctx context.Context, postId int, entryId int) (bool, error)
}

type RepositoryImpl struct {
	db database.DB
}

func NewRepository(db database.DB) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

const budgetColumns = `id, name, company_id, client_name, city, status, COALESCE(folder_id, 0), created_at, updated_at`

func scanBudget(row pgx.Row) (Budget, error) {
	var (
		budget   Budget
		status   string
		folderId int
	)
	err := row.Scan(
		&budget.Id,
		&budget.Name,
		&budget.CompanyId,
		&budget.ClientName,
		&budget.City,
		&status,
		&folderId,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return Budget{}, err
	}
	budget.Status = Status(status)
	budget.FolderId = database.NullableId(folderId)
	return budget, nil
}

func (r *RepositoryImpl) GetBudget(ctx context.Context, id int) (Budget, error) {
	budget, err := scanBudget(r.db.QueryRow(ctx, `SELECT `+budgetColumns+` FROM budget WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Budget{}, apperrors.NewNotFound("budget", id)
		}
		err := fmt.Errorf("could not get budget %d: %w", id, err)
		log.Error(err)
		return Budget{}, err
	}
	return budget, nil
}

func (r *RepositoryImpl) ListBudgets(ctx context.Context, filter ListFilter) ([]Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget`
	var args []any
	switch {
	case filter.FolderId != nil:
		query += ` WHERE folder_id = $1`
		args = append(args, *filter.FolderId)
	case filter.RootOnly:
		query += ` WHERE folder_id IS NULL`
	}
	query += ` ORDER BY updated_at DESC, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not query budgets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var budgets []Budget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return budgets, nil
}

func (r *RepositoryImpl) StoreBudget(ctx context.Context, budget Budget) (int, error) {
	query := `INSERT INTO budget (
                    name,
                    company_id,
                    client_name,
                    city,
                    status,
                    folder_id,
                    created_at,
                    updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`

	var id int
	err := r.db.QueryRow(ctx, query,
		budget.Name,
		budget.CompanyId,
		budget.ClientName,
		budget.City,
		string(budget.Status),
		budget.FolderId,
		budget.CreatedAt,
		budget.UpdatedAt,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) UpdateBudget(ctx context.Context, budget Budget) (bool, error) {
	query := `UPDATE budget SET
                  name = $1,
                  company_id = $2,
                  client_name = $3,
                  city = $4,
                  updated_at = $5
              WHERE id = $6`
	return r.execAffectsOne(ctx, query,
		budget.Name,
		budget.CompanyId,
		budget.ClientName,
		budget.City,
		budget.UpdatedAt,
		budget.Id,
	)
}

func (r *RepositoryImpl) SetStatus(ctx context.Context, id int, status Status, updatedAt time.Time) (bool, error) {
	return r.execAffectsOne(ctx, `UPDATE budget SET status = $1, updated_at = $2 WHERE id = $3`, string(status), updatedAt, id)
}

func (r *RepositoryImpl) SetFolder(ctx context.Context, id int, folderId *int, updatedAt time.Time) (bool, error) {
	return r.execAffectsOne(ctx, `UPDATE budget SET folder_id = $1, updated_at = $2 WHERE id = $3`, folderId, updatedAt, id)
}

func (r *RepositoryImpl) DeleteBudget(ctx context.Context, id int) (bool, error) {
	return r.execAffectsOne(ctx, `DELETE FROM budget WHERE id = $1`, id)
}

func (r *RepositoryImpl) GetPosts(ctx context.Context, budgetId int) ([]Post, error) {
	var posts []Post
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		var err error
		posts, err = queryPosts(ctx, tx, budgetId)
		if err != nil || len(posts) == 0 {
			return err
		}

		postIndex := make(map[int]int, len(posts))
		for i, post := range posts {
			postIndex[post.Id] = i
		}
		groupIndex, err := queryItemGroups(ctx, tx, budgetId, posts, postIndex)
		if err != nil {
			return err
		}
		if err := queryGroupLines(ctx, tx, budgetId, posts, groupIndex); err != nil {
			return err
		}
		return queryLooseMaterials(ctx, tx, budgetId, posts, postIndex)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func queryPosts(ctx context.Context, q database.Querier, budgetId int) ([]Post, error) {
	query := `SELECT id, budget_id, name, post_type_id, x, y FROM post WHERE budget_id = $1 ORDER BY id`
	rows, err := q.Query(ctx, query, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query posts: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var post Post
		if err := rows.Scan(&post.Id, &post.BudgetId, &post.Name, &post.PostTypeId, &post.Coordinates.X, &post.Coordinates.Y); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return posts, nil
}

type groupPosition struct {
	post  int
	group int
}

func queryItemGroups(ctx context.Context, q database.Querier, budgetId int, posts []Post, postIndex map[int]int) (map[int]groupPosition, error) {
	query := `SELECT g.id, g.post_id, g.name, COALESCE(g.template_id, 0)
              FROM item_group_instance g
              JOIN post p ON p.id = g.post_id
              WHERE p.budget_id = $1
              ORDER BY g.post_id, g.id`
	rows, err := q.Query(ctx, query, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query item groups: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	groupIndex := map[int]groupPosition{}
	for rows.Next() {
		var (
			group      ItemGroupInstance
			templateId int
		)
		if err := rows.Scan(&group.Id, &group.PostId, &group.Name, &templateId); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return nil, err
		}
		group.TemplateId = database.NullableId(templateId)
		pi, ok := postIndex[group.PostId]
		if !ok {
			continue
		}
		posts[pi].ItemGroups = append(posts[pi].ItemGroups, group)
		groupIndex[group.Id] = groupPosition{post: pi, group: len(posts[pi].ItemGroups) - 1}
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return nil, err
	}
	return groupIndex, nil
}

// Stored snapshot columns win over the live catalog; the catalog join only fills rows
// written before snapshots existed.
const lineDisplayColumns = `COALESCE(l.material_code, m.code, ''), COALESCE(l.material_name, m.name, ''), COALESCE(l.material_unit, m.unit, '')`

func queryGroupLines(ctx context.Context, q database.Querier, budgetId int, posts []Post, groupIndex map[int]groupPosition) error {
	query := `SELECT l.id, l.group_id, l.material_id, l.quantity::text, l.price_at_addition::text, ` + lineDisplayColumns + `
              FROM group_material_line l
              JOIN item_group_instance g ON g.id = l.group_id
              JOIN post p ON p.id = g.post_id
              LEFT JOIN material m ON m.id = l.material_id
              WHERE p.budget_id = $1
              ORDER BY l.group_id, l.id`
	rows, err := q.Query(ctx, query, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query group material lines: %w", err)
		log.Error(err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			line             GroupMaterialLine
			groupId          int
			quantity, price  string
			code, name, unit string
		)
		if err := rows.Scan(&line.Id, &groupId, &line.MaterialId, &quantity, &price, &code, &name, &unit); err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return err
		}
		if line.Quantity, err = database.ParseNumeric("quantity", quantity); err != nil {
			return err
		}
		if line.PriceAtAddition, err = database.ParseNumeric("price_at_addition", price); err != nil {
			return err
		}
		line.Material = display(code, name, unit)
		pos, ok := groupIndex[groupId]
		if !ok {
			continue
		}
		group := &posts[pos.post].ItemGroups[pos.group]
		group.Lines = append(group.Lines, line)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func queryLooseMaterials(ctx context.Context, q database.Querier, budgetId int, posts []Post, postIndex map[int]int) error {
	query := `SELECT l.id, l.post_id, l.material_id, l.quantity::text, l.price_at_addition::text, ` + lineDisplayColumns + `
              FROM loose_material l
              JOIN post p ON p.id = l.post_id
              LEFT JOIN material m ON m.id = l.material_id
              WHERE p.budget_id = $1
              ORDER BY l.post_id, l.id`
	rows, err := q.Query(ctx, query, budgetId)
	if err != nil {
		err := fmt.Errorf("could not query loose materials: %w", err)
		log.Error(err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanLooseMaterial(rows)
		if err != nil {
			err := fmt.Errorf("error scanning row: %w", err)
			log.Error(err)
			return err
		}
		pi, ok := postIndex[entry.PostId]
		if !ok {
			continue
		}
		posts[pi].LooseMaterials = append(posts[pi].LooseMaterials, entry)
	}
	if err := rows.Err(); err != nil {
		err := fmt.Errorf("error iterating over rows: %w", err)
		log.Error(err)
		return err
	}
	return nil
}

func scanLooseMaterial(row pgx.Row) (LooseMaterialEntry, error) {
	var (
		entry            LooseMaterialEntry
		quantity, price  string
		code, name, unit string
	)
	if err := row.Scan(&entry.Id, &entry.PostId, &entry.MaterialId, &quantity, &price, &code, &name, &unit); err != nil {
		return LooseMaterialEntry{}, err
	}
	var err error
	if entry.Quantity, err = database.ParseNumeric("quantity", quantity); err != nil {
		return LooseMaterialEntry{}, err
	}
	if entry.PriceAtAddition, err = database.ParseNumeric("price_at_addition", price); err != nil {
		return LooseMaterialEntry{}, err
	}
	entry.Material = display(code, name, unit)
	return entry, nil
}

func display(code, name, unit string) *MaterialDisplay {
	if code == "" && name == "" && unit == "" {
		return nil
	}
	return &MaterialDisplay{Code: code, Name: name, Unit: unit}
}

func (r *RepositoryImpl) GetPost(ctx context.Context, budgetId int, postId int) (Post, error) {
	var post Post
	query := `SELECT id, budget_id, name, post_type_id, x, y FROM post WHERE id = $1 AND budget_id = $2`
	err := r.db.QueryRow(ctx, query, postId, budgetId).
		Scan(&post.Id, &post.BudgetId, &post.Name, &post.PostTypeId, &post.Coordinates.X, &post.Coordinates.Y)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Post{}, apperrors.NewNotFound("post", postId)
		}
		err := fmt.Errorf("could not get post %d: %w", postId, err)
		log.Error(err)
		return Post{}, err
	}
	return post, nil
}

func (r *RepositoryImpl) StorePost(ctx context.Context, post Post) (int, error) {
	query := `INSERT INTO post (budget_id, name, post_type_id, x, y) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	var id int
	err := r.db.QueryRow(ctx, query, post.BudgetId, post.Name, post.PostTypeId, post.Coordinates.X, post.Coordinates.Y).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) UpdatePost(ctx context.Context, post Post) (bool, error) {
	query := `UPDATE post SET name = $1, post_type_id = $2, x = $3, y = $4 WHERE id = $5 AND budget_id = $6`
	return r.execAffectsOne(ctx, query, post.Name, post.PostTypeId, post.Coordinates.X, post.Coordinates.Y, post.Id, post.BudgetId)
}

func (r *RepositoryImpl) DeletePost(ctx context.Context, budgetId int, postId int) (bool, error) {
	return r.execAffectsOne(ctx, `DELETE FROM post WHERE id = $1 AND budget_id = $2`, postId, budgetId)
}

func (r *RepositoryImpl) StoreItemGroup(ctx context.Context, group ItemGroupInstance) (ItemGroupInstance, error) {
	err := database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		query := `INSERT INTO item_group_instance (post_id, name, template_id) VALUES ($1, $2, $3) RETURNING id`
		if err := tx.QueryRow(ctx, query, group.PostId, group.Name, group.TemplateId).Scan(&group.Id); err != nil {
			err := fmt.Errorf("could not execute query: %w", err)
			log.Error(err)
			return err
		}

		lineQuery := `INSERT INTO group_material_line (
                    group_id,
                    material_id,
                    quantity,
                    price_at_addition,
                    material_code,
                    material_name,
                    material_unit
				) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
		for i := range group.Lines {
			line := &group.Lines[i]
			code, name, unit := displayArgs(line.Material)
			err := tx.QueryRow(ctx, lineQuery,
				group.Id,
				line.MaterialId,
				line.Quantity.String(),
				line.PriceAtAddition.String(),
				code,
				name,
				unit,
			).Scan(&line.Id)
			if err != nil {
				err := fmt.Errorf("could not store line for material %d: %w", line.MaterialId, err)
				log.Error(err)
				return err
			}
		}
		return nil
	})
	if err != nil {
		return ItemGroupInstance{}, err
	}
	return group, nil
}

func (r *RepositoryImpl) DeleteItemGroup(ctx context.Context, postId int, groupId int) (bool, error) {
	return r.execAffectsOne(ctx, `DELETE FROM item_group_instance WHERE id = $1 AND post_id = $2`, groupId, postId)
}

func (r *RepositoryImpl) StoreLooseMaterial(ctx context.Context, entry LooseMaterialEntry) (int, error) {
	query := `INSERT INTO loose_material (
                    post_id,
                    material_id,
                    quantity,
                    price_at_addition,
                    material_code,
                    material_name,
                    material_unit
				) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	code, name, unit := displayArgs(entry.Material)
	var id int
	err := r.db.QueryRow(ctx, query,
		entry.PostId,
		entry.MaterialId,
		entry.Quantity.String(),
		entry.PriceAtAddition.String(),
		code,
		name,
		unit,
	).Scan(&id)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return 0, err
	}
	return id, nil
}

func (r *RepositoryImpl) GetLooseMaterial(ctx context.Context, postId int, entryId int) (LooseMaterialEntry, error) {
	query := `SELECT l.id, l.post_id, l.material_id, l.quantity::text, l.price_at_addition::text, ` + lineDisplayColumns + `
              FROM loose_material l
              LEFT JOIN material m ON m.id = l.material_id
              WHERE l.id = $1 AND l.post_id = $2`
	entry, err := scanLooseMaterial(r.db.QueryRow(ctx, query, entryId, postId))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return LooseMaterialEntry{}, apperrors.NewNotFound("loose material", entryId)
		}
		err := fmt.Errorf("could not get loose material %d: %w", entryId, err)
		log.Error(err)
		return LooseMaterialEntry{}, err
	}
	return entry, nil
}

func (r *RepositoryImpl) UpdateLooseMaterialQuantity(ctx context.Context, postId int, entryId int, quantity decimal.Decimal) (bool, error) {
	return r.execAffectsOne(ctx, `UPDATE loose_material SET quantity = $1 WHERE id = $2 AND post_id = $3`, quantity.String(), entryId, postId)
}

func (r *RepositoryImpl) DeleteLooseMaterial(ctx context.Context, postId int, entryId int) (bool, error) {
	return r.execAffectsOne(ctx, `DELETE FROM loose_material WHERE id = $1 AND post_id = $2`, entryId, postId)
}

func (r *RepositoryImpl) execAffectsOne(ctx context.Context, query string, args ...any) (bool, error) {
	result, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		err := fmt.Errorf("could not execute query: %w", err)
		log.Error(err)
		return false, err
	}
	return result.RowsAffected() == 1, nil
}

func displayArgs(material *MaterialDisplay) (code, name, unit *string) {
	if material == nil {
		return nil, nil, nil
	}
	return &material.Code, &material.Name, &material.Unit
}
