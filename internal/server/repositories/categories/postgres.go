// Package categories provides the PostgreSQL-backed category repository.
package categories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

const categoryColumns = `id, name, hash, description`

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a category and returns its id. A name that collides with an
// existing category after normalization fails with common.ErrDuplicatedItem
// before anything is written.
func (r *PostgresRepository) Create(ctx context.Context, category *models.Category) (int64, error) {
	hash := NameHash(category.Name)

	dup, err := r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE hash = $1 OR name = $2)`,
		hash, category.Name)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, fmt.Errorf("category %q: %w", category.Name, common.ErrDuplicatedItem)
	}

	query := `INSERT INTO categories (name, hash, description)
		VALUES ($1, $2, $3)
		RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, category.Name, hash, category.Description).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}

	category.ID = id
	category.Hash = hash
	return id, nil
}

// Update rewrites name and description and returns the rows affected.
// Colliding with a different category fails with common.ErrDuplicatedItem.
func (r *PostgresRepository) Update(ctx context.Context, category *models.Category) (int64, error) {
	hash := NameHash(category.Name)

	dup, err := r.exists(ctx,
		`SELECT EXISTS (SELECT 1 FROM categories WHERE (hash = $1 OR name = $2) AND id <> $3)`,
		hash, category.Name, category.ID)
	if err != nil {
		return 0, err
	}
	if dup {
		return 0, fmt.Errorf("category %q: %w", category.Name, common.ErrDuplicatedItem)
	}

	query := `UPDATE categories SET name = $1, hash = $2, description = $3
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, category.Name, hash, category.Description, category.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	category.Hash = hash
	return rowsAffected(res)
}

// Delete removes one category. A category still used by an account fails
// with common.ErrConstraint.
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete category %d: %w", id, dbx.Translate(err))
	}
	return rowsAffected(res)
}

// DeleteByIDBatch removes the given categories in one statement. If any of
// them is in use nothing is deleted and common.ErrConstraint is returned.
func (r *PostgresRepository) DeleteByIDBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM categories WHERE id = ANY($1::bigint[])`

	res, err := r.db.ExecContext(ctx, query, dbx.Int64Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete categories: %w", dbx.Translate(err))
	}
	return rowsAffected(res)
}

// GetByID returns the category or nil when it does not exist.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByName looks a category up by its normalized name. It returns nil when
// nothing matches.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE hash = $1 OR name = $2
		ORDER BY id
		LIMIT 1`
	return r.getOne(ctx, query, NameHash(name), name)
}

// GetByIDBatch returns the categories with the given ids, ordered by name.
// Unknown ids are skipped.
func (r *PostgresRepository) GetByIDBatch(ctx context.Context, ids []int64) ([]models.Category, error) {
	if len(ids) == 0 {
		return []models.Category{}, nil
	}

	query := `SELECT ` + categoryColumns + ` FROM categories
		WHERE id = ANY($1::bigint[])
		ORDER BY name`
	return r.getMany(ctx, query, dbx.Int64Array(ids))
}

// GetAll returns every category ordered by name.
func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories ORDER BY name`
	return r.getMany(ctx, query)
}

// Search matches name and description case-insensitively. TotalNumRows holds
// the number of matches regardless of the limit.
func (r *PostgresRepository) Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.Category], error) {
	var args dbx.Args
	var where string
	if s := strings.TrimSpace(search.SearchString); s != "" {
		p := args.Add(dbx.LikePattern(s))
		where = ` WHERE name ILIKE ` + p + ` OR description ILIKE ` + p
	}

	var total int
	countQuery := `SELECT COUNT(*) FROM categories` + where
	if err := r.db.QueryRowContext(ctx, countQuery, args.Values()...).Scan(&total); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}

	query := `SELECT ` + categoryColumns + ` FROM categories` + where + ` ORDER BY name`
	if search.LimitCount > 0 {
		query += ` LIMIT ` + args.Add(search.LimitCount) + ` OFFSET ` + args.Add(search.LimitStart)
	}

	data, err := r.getMany(ctx, query, args.Values()...)
	if err != nil {
		return nil, err
	}

	return &models.QueryResult[models.Category]{
		NumRows:      len(data),
		TotalNumRows: total,
		Data:         data,
	}, nil
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return found, nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, args ...any) (*models.Category, error) {
	var c models.Category
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&c.ID, &c.Name, &c.Hash, &c.Description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return &c, nil
}

func (r *PostgresRepository) getMany(ctx context.Context, query string, args ...any) ([]models.Category, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	defer rows.Close()

	result := []models.Category{}
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Hash, &c.Description); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return result, nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
