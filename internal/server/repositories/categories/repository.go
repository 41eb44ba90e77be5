package categories

import (
	"context"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// Repository persists categories. Missing rows are reported as nil or empty
// results, never as errors.
type Repository interface {
	Create(ctx context.Context, category *models.Category) (int64, error)
	Update(ctx context.Context, category *models.Category) (int64, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByIDBatch(ctx context.Context, ids []int64) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Category, error)
	GetByName(ctx context.Context, name string) (*models.Category, error)
	GetByIDBatch(ctx context.Context, ids []int64) ([]models.Category, error)
	GetAll(ctx context.Context) ([]models.Category, error)
	Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.Category], error)
}
