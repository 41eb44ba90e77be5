package accounts

import (
	"context"

	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/query"
)

// Repository persists accounts. Pass and Key are stored as opaque blobs.
type Repository interface {
	Create(ctx context.Context, req *models.AccountRequest) (int64, error)
	Update(ctx context.Context, req *models.AccountRequest) (int64, error)
	EditPassword(ctx context.Context, req *models.AccountRequest) (int64, error)
	UpdatePassword(ctx context.Context, req *models.AccountPasswordRequest) (bool, error)
	EditRestore(ctx context.Context, historyID, userEditID int64) (bool, error)
	Delete(ctx context.Context, id int64) (int64, error)
	DeleteByIDBatch(ctx context.Context, ids []int64) (int64, error)

	GetByID(ctx context.Context, id int64) (*models.QueryResult[models.AccountView], error)
	GetDataForLink(ctx context.Context, id int64) (*models.QueryResult[models.AccountLinkData], error)
	GetByIDBatch(ctx context.Context, ids []int64) (*models.QueryResult[models.Account], error)
	GetAll(ctx context.Context) (*models.QueryResult[models.Account], error)
	GetPasswordForID(ctx context.Context, id int64) (*models.QueryResult[models.AccountPassData], error)
	GetPasswordHistoryForID(ctx context.Context, historyID int64) (*models.QueryResult[models.AccountPassData], error)
	GetAccountsPassData(ctx context.Context) ([]models.AccountPassData, error)
	GetLinked(ctx context.Context, cond *query.Condition) (*models.QueryResult[models.AccountLinked], error)
	GetForUser(ctx context.Context, cond *query.Condition) (*models.QueryResult[models.AccountItem], error)
	Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.AccountItem], error)
	GetByFilter(ctx context.Context, filter *models.AccountSearchFilter) (*models.AccountSearchResponse, error)

	CheckDuplicatedOnAdd(ctx context.Context, req *models.AccountRequest) (bool, error)
	CheckDuplicatedOnUpdate(ctx context.Context, req *models.AccountRequest) (bool, error)

	IncrementViewCounter(ctx context.Context, id int64) (bool, error)
	IncrementDecryptCounter(ctx context.Context, id int64) (bool, error)
	GetTotalNumAccounts(ctx context.Context) (int64, error)

	AddHistory(ctx context.Context, accountID int64) (int64, error)
}
