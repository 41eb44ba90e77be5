package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/query"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func discardLogger() logging.Logger {
	return logging.New(io.Discard, "error", "text")
}

type fakeRepoManager struct {
	accounts   *fakeAccountsRepo
	categories *fakeCategoriesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Accounts(dbx.DBTX) accounts.Repository { return m.accounts }
func (m *fakeRepoManager) Categories(dbx.DBTX) categories.Repository { return m.categories }

var errFake = errors.New("fake failure")

// fakeAccountsRepo keeps accounts in memory. Only the behaviour the services
// depend on is modelled.
type fakeAccountsRepo struct {
	views   map[int64]models.AccountView
	secrets map[int64]models.AccountPassData
	history map[int64]models.AccountPassData

	duplicated   bool
	failUpdateOn int64

	created       *models.AccountRequest
	updated       *models.AccountRequest
	edited        *models.AccountRequest
	passUpdates   []models.AccountPasswordRequest
	viewCount     map[int64]int
	decryptCount  map[int64]int
	nextHistoryID int64
	restored      []int64
}

func newFakeAccountsRepo() *fakeAccountsRepo {
	return &fakeAccountsRepo{
		views:        map[int64]models.AccountView{},
		secrets:      map[int64]models.AccountPassData{},
		history:      map[int64]models.AccountPassData{},
		viewCount:    map[int64]int{},
		decryptCount: map[int64]int{},
	}
}

func (f *fakeAccountsRepo) Create(_ context.Context, req *models.AccountRequest) (int64, error) {
	f.created = req
	id := int64(len(f.views) + 1)
	f.views[id] = models.AccountView{ID: id, Name: req.Name, UserID: req.UserID, UserGroupID: req.UserGroupID}
	f.secrets[id] = models.AccountPassData{ID: id, Name: req.Name, Pass: req.Pass, Key: req.Key}
	return id, nil
}

func (f *fakeAccountsRepo) Update(_ context.Context, req *models.AccountRequest) (int64, error) {
	f.updated = req
	if _, ok := f.views[req.ID]; !ok {
		return 0, nil
	}
	return 1, nil
}

func (f *fakeAccountsRepo) EditPassword(_ context.Context, req *models.AccountRequest) (int64, error) {
	f.edited = req
	d, ok := f.secrets[req.ID]
	if !ok {
		return 0, nil
	}
	d.Pass, d.Key = req.Pass, req.Key
	f.secrets[req.ID] = d
	return 1, nil
}

func (f *fakeAccountsRepo) UpdatePassword(_ context.Context, req *models.AccountPasswordRequest) (bool, error) {
	if req.ID == f.failUpdateOn {
		return false, errFake
	}
	f.passUpdates = append(f.passUpdates, *req)
	d, ok := f.secrets[req.ID]
	if !ok {
		return false, nil
	}
	d.Pass, d.Key = req.Pass, req.Key
	f.secrets[req.ID] = d
	return true, nil
}

func (f *fakeAccountsRepo) EditRestore(_ context.Context, historyID, _ int64) (bool, error) {
	if _, ok := f.history[historyID]; !ok {
		return false, nil
	}
	f.restored = append(f.restored, historyID)
	return true, nil
}

func (f *fakeAccountsRepo) AddHistory(_ context.Context, accountID int64) (int64, error) {
	d, ok := f.secrets[accountID]
	if !ok {
		return 0, nil
	}
	f.nextHistoryID++
	d.ID = f.nextHistoryID
	f.history[f.nextHistoryID] = d
	return f.nextHistoryID, nil
}

func (f *fakeAccountsRepo) Delete(_ context.Context, id int64) (int64, error) {
	if _, ok := f.views[id]; !ok {
		return 0, nil
	}
	delete(f.views, id)
	delete(f.secrets, id)
	return 1, nil
}

func (f *fakeAccountsRepo) DeleteByIDBatch(ctx context.Context, ids []int64) (int64, error) {
	var n int64
	for _, id := range ids {
		d, _ := f.Delete(ctx, id)
		n += d
	}
	return n, nil
}

func (f *fakeAccountsRepo) GetByID(_ context.Context, id int64) (*models.QueryResult[models.AccountView], error) {
	v, ok := f.views[id]
	if !ok {
		return models.NewQueryResult[models.AccountView](nil), nil
	}
	return models.NewQueryResult([]models.AccountView{v}), nil
}

func (f *fakeAccountsRepo) GetDataForLink(context.Context, int64) (*models.QueryResult[models.AccountLinkData], error) {
	return models.NewQueryResult[models.AccountLinkData](nil), nil
}

func (f *fakeAccountsRepo) GetByIDBatch(context.Context, []int64) (*models.QueryResult[models.Account], error) {
	return models.NewQueryResult[models.Account](nil), nil
}

func (f *fakeAccountsRepo) GetAll(context.Context) (*models.QueryResult[models.Account], error) {
	return models.NewQueryResult[models.Account](nil), nil
}

func (f *fakeAccountsRepo) GetPasswordForID(_ context.Context, id int64) (*models.QueryResult[models.AccountPassData], error) {
	d, ok := f.secrets[id]
	if !ok {
		return models.NewQueryResult[models.AccountPassData](nil), nil
	}
	return models.NewQueryResult([]models.AccountPassData{d}), nil
}

func (f *fakeAccountsRepo) GetPasswordHistoryForID(_ context.Context, id int64) (*models.QueryResult[models.AccountPassData], error) {
	d, ok := f.history[id]
	if !ok {
		return models.NewQueryResult[models.AccountPassData](nil), nil
	}
	return models.NewQueryResult([]models.AccountPassData{d}), nil
}

func (f *fakeAccountsRepo) GetAccountsPassData(context.Context) ([]models.AccountPassData, error) {
	out := make([]models.AccountPassData, 0, len(f.secrets))
	for id := int64(1); id <= int64(len(f.secrets)); id++ {
		if d, ok := f.secrets[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeAccountsRepo) GetLinked(context.Context, *query.Condition) (*models.QueryResult[models.AccountLinked], error) {
	return models.NewQueryResult[models.AccountLinked](nil), nil
}

func (f *fakeAccountsRepo) GetForUser(context.Context, *query.Condition) (*models.QueryResult[models.AccountItem], error) {
	return models.NewQueryResult[models.AccountItem](nil), nil
}

func (f *fakeAccountsRepo) Search(context.Context, *models.ItemSearchData) (*models.QueryResult[models.AccountItem], error) {
	return models.NewQueryResult[models.AccountItem](nil), nil
}

func (f *fakeAccountsRepo) GetByFilter(context.Context, *models.AccountSearchFilter) (*models.AccountSearchResponse, error) {
	return &models.AccountSearchResponse{}, nil
}

func (f *fakeAccountsRepo) CheckDuplicatedOnAdd(context.Context, *models.AccountRequest) (bool, error) {
	return f.duplicated, nil
}

func (f *fakeAccountsRepo) CheckDuplicatedOnUpdate(context.Context, *models.AccountRequest) (bool, error) {
	return f.duplicated, nil
}

func (f *fakeAccountsRepo) IncrementViewCounter(_ context.Context, id int64) (bool, error) {
	f.viewCount[id]++
	return true, nil
}

func (f *fakeAccountsRepo) IncrementDecryptCounter(_ context.Context, id int64) (bool, error) {
	f.decryptCount[id]++
	return true, nil
}

func (f *fakeAccountsRepo) GetTotalNumAccounts(context.Context) (int64, error) {
	return int64(len(f.views) + len(f.history)), nil
}

// fakeCategoriesRepo returns canned results and errors.
type fakeCategoriesRepo struct {
	affected int64
	err      error
	byName   *models.Category
	all      []models.Category
}

func (f *fakeCategoriesRepo) Create(_ context.Context, c *models.Category) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	c.ID = 4
	return 4, nil
}

func (f *fakeCategoriesRepo) Update(context.Context, *models.Category) (int64, error) {
	return f.affected, f.err
}

func (f *fakeCategoriesRepo) Delete(context.Context, int64) (int64, error) {
	return f.affected, f.err
}

func (f *fakeCategoriesRepo) DeleteByIDBatch(context.Context, []int64) (int64, error) {
	return f.affected, f.err
}

func (f *fakeCategoriesRepo) GetByID(context.Context, int64) (*models.Category, error) {
	return f.byName, f.err
}

func (f *fakeCategoriesRepo) GetByName(context.Context, string) (*models.Category, error) {
	return f.byName, f.err
}

func (f *fakeCategoriesRepo) GetByIDBatch(context.Context, []int64) ([]models.Category, error) {
	return f.all, f.err
}

func (f *fakeCategoriesRepo) GetAll(context.Context) ([]models.Category, error) {
	return f.all, f.err
}

func (f *fakeCategoriesRepo) Search(context.Context, *models.ItemSearchData) (*models.QueryResult[models.Category], error) {
	return models.NewQueryResult(f.all), f.err
}
