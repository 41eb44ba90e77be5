//go:build integration

package repomanager_test

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/categories"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/query"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// testDB is shared by every test in the suite and reset by loadFixture.
var testDB struct {
	db        *sql.DB
	rm        *repomanager.PostgresRepositoryManager
	container testcontainers.Container
}

// TestMain uses DATABASE_URL when set and otherwise starts a throwaway
// PostgreSQL container.
func TestMain(m *testing.M) {
	ctx := context.Background()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		container, err := tcpostgres.Run(ctx,
			"postgres:16-alpine",
			tcpostgres.WithDatabase("passkeeper_test"),
			tcpostgres.WithUsername("passkeeper"),
			tcpostgres.WithPassword("passkeeper"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second)),
		)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start PostgreSQL container: %v\n", err)
			os.Exit(1)
		}
		testDB.container = container

		dsn, err = container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
			_ = container.Terminate(ctx)
			os.Exit(1)
		}
	}

	db, err := dbx.OpenPostgres(ctx, dsn, 8, time.Minute)
	if err == nil {
		testDB.rm = repomanager.NewPostgresRepositoryManager()
		err = testDB.rm.RunMigrations(ctx, db)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare database: %v\n", err)
		if testDB.container != nil {
			_ = testDB.container.Terminate(ctx)
		}
		os.Exit(1)
	}
	testDB.db = db

	code := m.Run()

	_ = db.Close()
	if testDB.container != nil {
		_ = testDB.container.Terminate(ctx)
	}
	os.Exit(code)
}

// loadFixture resets every table to the reference dataset: categories
// Web/Linux/SSH, accounts Google (1) and Apple (2, linked to Google) and
// five history snapshots.
func loadFixture(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	stmts := []struct {
		q    string
		args []any
	}{
		{q: `TRUNCATE account_history, account_to_favorite, account_to_tag, accounts, tags,
			categories, clients, users, user_groups RESTART IDENTITY CASCADE`},
		{q: `INSERT INTO user_groups (name) VALUES ('Admins'), ('Demo')`},
		{q: `INSERT INTO users (name, login, user_group_id, is_admin)
			VALUES ('sysPass Admin', 'admin', 1, TRUE), ('Demo', 'demo', 2, FALSE)`},
		{q: `INSERT INTO clients (name, hash) VALUES ('Google', 'c1'), ('Apple', 'c2'), ('Linux', 'c3')`},
		{
			q:    `INSERT INTO categories (name, hash, description) VALUES ('Web', $1, 'Web sites'), ('Linux', $2, ''), ('SSH', $3, '')`,
			args: []any{categories.NameHash("Web"), categories.NameHash("Linux"), categories.NameHash("SSH")},
		},
		{q: `INSERT INTO tags (name, hash) VALUES ('www', 't1'), ('linux', 't2'), ('cloud', 't3')`},
		{q: `INSERT INTO accounts (name, login, url, notes, pass, key, client_id, category_id, parent_id,
				user_id, user_group_id, user_edit_id)
			VALUES ('Google', 'admin', 'https://google.com', 'personal mail', decode('01', 'hex'), decode('02', 'hex'), 1, 1, NULL, 1, 1, 1),
			       ('Apple', 'admin', 'http://apple.com', '', decode('03', 'hex'), decode('04', 'hex'), 2, 1, 1, 1, 2, 1)`},
		{q: `INSERT INTO account_to_tag (account_id, tag_id) VALUES (1, 1), (1, 3), (2, 3)`},
		{q: `INSERT INTO account_to_favorite (account_id, user_id) VALUES (1, 1)`},
		{q: `INSERT INTO account_history (account_id, name, login, url, notes, pass, key, client_id, category_id,
				parent_id, user_id, user_group_id, user_edit_id, is_private, is_private_group, pass_date)
			SELECT a.id, a.name, a.login, a.url, a.notes, a.pass, a.key, a.client_id, a.category_id,
				a.parent_id, a.user_id, a.user_group_id, a.user_edit_id, a.is_private, a.is_private_group, a.pass_date
			FROM accounts a, generate_series(1, 3) s
			WHERE a.id = 1 OR s < 3`},
	}

	for _, s := range stmts {
		_, err := testDB.db.ExecContext(ctx, s.q, s.args...)
		require.NoError(t, err, s.q)
	}
}

func TestMigrations_Idempotent(t *testing.T) {
	require.NoError(t, testDB.rm.RunMigrations(context.Background(), testDB.db))
}

func TestCategories_GetByName(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Categories(testDB.db)
	ctx := context.Background()

	c, err := repo.GetByName(ctx, "Prueba")
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = repo.GetByName(ctx, " web. ")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, int64(1), c.ID)
	assert.Equal(t, "Web", c.Name)
}

func TestCategories_GetAllOrderedByName(t *testing.T) {
	loadFixture(t)

	all, err := testDB.rm.Categories(testDB.db).GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"Linux", "SSH", "Web"}, []string{all[0].Name, all[1].Name, all[2].Name})
}

func TestCategories_DuplicateNames(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Categories(testDB.db)
	ctx := context.Background()

	for _, name := range []string{"Web", " web. ", "WEB"} {
		_, err := repo.Create(ctx, &models.Category{Name: name})
		require.ErrorIs(t, err, common.ErrDuplicatedItem, "create %q", name)

		_, err = repo.Update(ctx, &models.Category{ID: 2, Name: name})
		require.ErrorIs(t, err, common.ErrDuplicatedItem, "update %q", name)
	}

	n, err := repo.Update(ctx, &models.Category{ID: 1, Name: "web", Description: "renamed"})
	require.NoError(t, err, "renaming a category onto itself is not a duplicate")
	assert.Equal(t, int64(1), n)

	id, err := repo.Create(ctx, &models.Category{Name: "Mail"})
	require.NoError(t, err)
	assert.Equal(t, int64(4), id)
}

func TestCategories_DeleteInUse(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Categories(testDB.db)
	ctx := context.Background()

	_, err := repo.Delete(ctx, 1)
	require.ErrorIs(t, err, common.ErrConstraint)
	c, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = repo.DeleteByIDBatch(ctx, []int64{1, 2, 3})
	require.ErrorIs(t, err, common.ErrConstraint)
	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	n, err := repo.Delete(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteByIDBatch(ctx, []int64{2, 3, 99})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestAccounts_Search(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	res, err := repo.Search(ctx, &models.ItemSearchData{SearchString: "Google"})
	require.NoError(t, err)
	require.Equal(t, 1, res.NumRows)
	assert.Equal(t, models.AccountItem{ID: 1, Name: "Google"}, res.Data[0])

	res, err = repo.Search(ctx, &models.ItemSearchData{SearchString: "Apple", LimitCount: 1})
	require.NoError(t, err)
	require.Equal(t, 1, res.NumRows)
	assert.Equal(t, models.AccountItem{ID: 2, Name: "Apple"}, res.Data[0])
}

func TestAccounts_GetLinkedAndForUser(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	linked, err := repo.GetLinked(ctx, query.Eq("parent_id", int64(1)))
	require.NoError(t, err)
	require.Equal(t, 1, linked.NumRows)
	assert.Equal(t, int64(2), linked.Data[0].ID)
	assert.Equal(t, "Apple", linked.Data[0].ClientName)

	private, err := repo.GetForUser(ctx, query.Eq("is_private", true))
	require.NoError(t, err)
	assert.Equal(t, 0, private.NumRows)
}

func TestAccounts_GetByFilter(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	var f models.AccountSearchFilter

	f.CategoryID = 1
	res, err := repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	f.Reset()
	f.ClientID = 2
	res, err = repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Apple", res.Data[0].Name)

	f.Reset()
	f.TagsID = []int64{1, 2}
	res, err = repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Google", res.Data[0].Name)

	f.Reset()
	f.TagsID = []int64{1, 3}
	f.LimitCount = 1
	res, err = repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count, "count ignores the limit")
	assert.Len(t, res.Data, 1)

	f.Reset()
	f.SearchFavorites = true
	f.UserID = 1
	res, err = repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, int64(1), res.Data[0].ID)

	f.Reset()
	f.TxtSearch = "apple.com"
	res, err = repo.GetByFilter(ctx, &f)
	require.NoError(t, err)
	require.Equal(t, 1, res.Count)
	assert.Equal(t, "Apple", res.Data[0].Name)
	assert.Equal(t, "Web", res.Data[0].CategoryName)
	assert.Equal(t, "admin", res.Data[0].UserLogin)
}

func TestAccounts_UpdateKeepsUnauthorizedGroup(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	req := &models.AccountRequest{
		ID: 1, Name: "Google", Login: "admin", ClientID: 1, CategoryID: 1,
		UserID: 2, UserGroupID: 2, UserEditID: 2,
	}
	n, err := repo.Update(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	res, err := repo.GetByID(ctx, 1)
	require.NoError(t, err)
	got := res.One()
	require.NotNil(t, got)
	assert.Equal(t, int64(1), got.UserGroupID)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, int64(2), got.UserEditID)
	assert.NotNil(t, got.DateEdit)
}

func TestAccounts_DeleteCounts(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	n, err := repo.Delete(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)

	n, err = repo.DeleteByIDBatch(ctx, []int64{2, 99})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	res, err := repo.GetByIDBatch(ctx, []int64{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 1, res.NumRows)
}

func TestAccounts_ConcurrentCounters(t *testing.T) {
	loadFixture(t)
	ctx := context.Background()

	before, err := testDB.rm.Accounts(testDB.db).GetByID(ctx, 1)
	require.NoError(t, err)

	const workers, perWorker = 4, 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			repo := testDB.rm.Accounts(testDB.db)
			for j := 0; j < perWorker; j++ {
				ok, err := repo.IncrementViewCounter(ctx, 1)
				assert.NoError(t, err)
				assert.True(t, ok)
				ok, err = repo.IncrementDecryptCounter(ctx, 1)
				assert.NoError(t, err)
				assert.True(t, ok)
			}
		}()
	}
	wg.Wait()

	after, err := testDB.rm.Accounts(testDB.db).GetByID(ctx, 1)
	require.NoError(t, err)

	want := *before.One()
	want.CountView += workers * perWorker
	want.CountDecrypt += workers * perWorker
	assert.Equal(t, want, *after.One())
}

func TestAccounts_TotalAndHistory(t *testing.T) {
	loadFixture(t)
	repo := testDB.rm.Accounts(testDB.db)
	ctx := context.Background()

	total, err := repo.GetTotalNumAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), total)

	histID, err := repo.AddHistory(ctx, 1)
	require.NoError(t, err)
	require.NotZero(t, histID)

	n, err := repo.EditPassword(ctx, &models.AccountRequest{ID: 1, Pass: []byte{9}, Key: []byte{8}, UserEditID: 2})
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	ok, err := repo.EditRestore(ctx, histID, 1)
	require.NoError(t, err)
	require.True(t, ok)

	pass, err := repo.GetPasswordForID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, pass.One().Pass)
	assert.Equal(t, []byte{2}, pass.One().Key)

	total, err = repo.GetTotalNumAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(8), total)
}
