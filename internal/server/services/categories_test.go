package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCategoryService(t *testing.T, repo *fakeCategoriesRepo) *CategoryService {
	t.Helper()
	db, _ := newSQLMockDB(t)
	return NewCategoryService(db, &fakeRepoManager{categories: repo}, discardLogger())
}

func TestCategoryCreate(t *testing.T) {
	svc := newCategoryService(t, &fakeCategoriesRepo{})

	c := &models.Category{Name: "Prueba"}
	id, err := svc.Create(context.Background(), c)
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
	assert.Equal(t, int64(4), c.ID)
}

func TestCategoryCreate_Duplicated(t *testing.T) {
	svc := newCategoryService(t, &fakeCategoriesRepo{err: common.ErrDuplicatedItem})

	_, err := svc.Create(context.Background(), &models.Category{Name: " web. "})
	require.ErrorIs(t, err, common.ErrDuplicatedItem)
}

func TestCategoryUpdate(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, newCategoryService(t, &fakeCategoriesRepo{affected: 1}).Update(ctx, &models.Category{ID: 1, Name: "Web"}))

	err := newCategoryService(t, &fakeCategoriesRepo{}).Update(ctx, &models.Category{ID: 10, Name: "Web"})
	require.ErrorIs(t, err, common.ErrorNotFound)

	err = newCategoryService(t, &fakeCategoriesRepo{err: common.ErrDuplicatedItem}).Update(ctx, &models.Category{ID: 1, Name: " linux."})
	require.ErrorIs(t, err, common.ErrDuplicatedItem)
}

func TestCategoryDelete(t *testing.T) {
	ctx := context.Background()

	require.NoError(t, newCategoryService(t, &fakeCategoriesRepo{affected: 1}).Delete(ctx, 3))

	err := newCategoryService(t, &fakeCategoriesRepo{}).Delete(ctx, 10)
	require.ErrorIs(t, err, common.ErrorNotFound)

	err = newCategoryService(t, &fakeCategoriesRepo{err: common.ErrConstraint}).Delete(ctx, 2)
	require.ErrorIs(t, err, common.ErrConstraint)
}

func TestCategoryDeleteBatch(t *testing.T) {
	ctx := context.Background()

	n, err := newCategoryService(t, &fakeCategoriesRepo{affected: 1}).DeleteBatch(ctx, []int64{3, 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = newCategoryService(t, &fakeCategoriesRepo{err: common.ErrConstraint}).DeleteBatch(ctx, []int64{1, 2, 3})
	require.ErrorIs(t, err, common.ErrConstraint)
}

func TestCategoryGetByName(t *testing.T) {
	ctx := context.Background()

	c, err := newCategoryService(t, &fakeCategoriesRepo{byName: &models.Category{ID: 1, Name: "Web"}}).GetByName(ctx, " web. ")
	require.NoError(t, err)
	assert.Equal(t, int64(1), c.ID)

	_, err = newCategoryService(t, &fakeCategoriesRepo{}).GetByName(ctx, "Prueba")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCategoryListAndSearch(t *testing.T) {
	all := []models.Category{{ID: 2, Name: "Linux"}, {ID: 3, Name: "SSH"}, {ID: 1, Name: "Web"}}
	svc := newCategoryService(t, &fakeCategoriesRepo{all: all})

	got, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, all, got)

	res, err := svc.Search(context.Background(), &models.ItemSearchData{SearchString: "linux"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.NumRows)
}
