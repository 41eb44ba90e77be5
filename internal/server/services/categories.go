package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
)

type CategoryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewCategoryService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *CategoryService {
	return &CategoryService{
		db:          db,
		repomanager: m,
		log:         log,
	}
}

func (s *CategoryService) Create(ctx context.Context, c *models.Category) (int64, error) {
	id, err := s.repomanager.Categories(s.db).Create(ctx, c)
	if err != nil {
		if errors.Is(err, common.ErrDuplicatedItem) {
			s.log.Warn(ctx, "duplicated category", "name", c.Name)
		}
		return 0, fmt.Errorf("error creating category: %w", err)
	}

	s.log.Info(ctx, "category created", "category_id", id)
	return id, nil
}

func (s *CategoryService) Update(ctx context.Context, c *models.Category) error {
	n, err := s.repomanager.Categories(s.db).Update(ctx, c)
	if err != nil {
		if errors.Is(err, common.ErrDuplicatedItem) {
			s.log.Warn(ctx, "duplicated category", "category_id", c.ID, "name", c.Name)
		}
		return fmt.Errorf("error updating category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", c.ID, common.ErrorNotFound)
	}

	s.log.Info(ctx, "category updated", "category_id", c.ID)
	return nil
}

// Delete removes a category. A category in use fails with common.ErrConstraint.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	n, err := s.repomanager.Categories(s.db).Delete(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrConstraint) {
			s.log.Warn(ctx, "category in use", "category_id", id)
		}
		return fmt.Errorf("error deleting category: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("category %d: %w", id, common.ErrorNotFound)
	}

	s.log.Info(ctx, "category deleted", "category_id", id)
	return nil
}

// DeleteBatch removes the given categories, or none of them if any is in use.
func (s *CategoryService) DeleteBatch(ctx context.Context, ids []int64) (int64, error) {
	n, err := s.repomanager.Categories(s.db).DeleteByIDBatch(ctx, ids)
	if err != nil {
		if errors.Is(err, common.ErrConstraint) {
			s.log.Warn(ctx, "category batch in use", "category_ids", ids)
		}
		return 0, fmt.Errorf("error deleting categories: %w", err)
	}

	s.log.Info(ctx, "categories deleted", "requested", len(ids), "deleted", n)
	return n, nil
}

func (s *CategoryService) GetByName(ctx context.Context, name string) (*models.Category, error) {
	c, err := s.repomanager.Categories(s.db).GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("error loading category: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("category %q: %w", name, common.ErrorNotFound)
	}
	return c, nil
}

func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repomanager.Categories(s.db).GetAll(ctx)
}

func (s *CategoryService) Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.Category], error) {
	return s.repomanager.Categories(s.db).Search(ctx, search)
}
