package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
	"github.com/dmitrijs2005/passkeeper/internal/server/repositories/query"
)

// GetByID returns the account_view row of id, if any.
func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.QueryResult[models.AccountView], error) {
	q := `SELECT ` + viewColumns + ` FROM account_view WHERE id = $1`
	return selectOne(ctx, r.db, scanView, q, id)
}

// GetDataForLink returns the account with its secrets and the names of its
// client and category, if any.
func (r *PostgresRepository) GetDataForLink(ctx context.Context, id int64) (*models.QueryResult[models.AccountLinkData], error) {
	q := `SELECT a.id, a.name, a.login, a.url, a.notes, a.pass, a.key, c.name, cat.name
		FROM accounts a
		JOIN clients c ON c.id = a.client_id
		JOIN categories cat ON cat.id = a.category_id
		WHERE a.id = $1`
	return selectOne(ctx, r.db, scanLinkData, q, id)
}

// GetByIDBatch returns the accounts with the given ids ordered by id.
// Unknown ids are skipped and an empty id list issues no statement.
func (r *PostgresRepository) GetByIDBatch(ctx context.Context, ids []int64) (*models.QueryResult[models.Account], error) {
	if len(ids) == 0 {
		return models.NewQueryResult([]models.Account{}), nil
	}

	q := `SELECT ` + accountColumns + ` FROM accounts
		WHERE id = ANY($1::bigint[])
		ORDER BY id`

	data, err := selectRows(ctx, r.db, scanAccount, q, dbx.Int64Array(ids))
	if err != nil {
		return nil, err
	}
	return models.NewQueryResult(data), nil
}

// GetAll returns every account ordered by id.
func (r *PostgresRepository) GetAll(ctx context.Context) (*models.QueryResult[models.Account], error) {
	q := `SELECT ` + accountColumns + ` FROM accounts ORDER BY id`

	data, err := selectRows(ctx, r.db, scanAccount, q)
	if err != nil {
		return nil, err
	}
	return models.NewQueryResult(data), nil
}

// GetPasswordForID returns the encrypted password and key of id, if any.
func (r *PostgresRepository) GetPasswordForID(ctx context.Context, id int64) (*models.QueryResult[models.AccountPassData], error) {
	q := `SELECT ` + passColumns + ` FROM accounts WHERE id = $1`
	return selectOne(ctx, r.db, scanPass, q, id)
}

// GetPasswordHistoryForID returns the encrypted password and key stored in
// the history snapshot historyID, if any.
func (r *PostgresRepository) GetPasswordHistoryForID(ctx context.Context, historyID int64) (*models.QueryResult[models.AccountPassData], error) {
	q := `SELECT ` + passColumns + ` FROM account_history WHERE id = $1`
	return selectOne(ctx, r.db, scanPass, q, historyID)
}

// GetAccountsPassData returns the password and key of every account that has
// a password, ordered by id.
func (r *PostgresRepository) GetAccountsPassData(ctx context.Context) ([]models.AccountPassData, error) {
	q := `SELECT ` + passColumns + ` FROM accounts WHERE octet_length(pass) > 0 ORDER BY id`
	return selectRows(ctx, r.db, scanPass, q)
}

// GetLinked returns the accounts matching cond with their client name,
// ordered by name. Typically cond is query.Eq("parent_id", id).
func (r *PostgresRepository) GetLinked(ctx context.Context, cond *query.Condition) (*models.QueryResult[models.AccountLinked], error) {
	var args dbx.Args
	where, err := cond.Render(&args, conditionColumns)
	if err != nil {
		return nil, fmt.Errorf("linked accounts: %w", err)
	}

	q := `SELECT a.id, a.name, c.name
		FROM accounts a
		JOIN clients c ON c.id = a.client_id
		WHERE ` + where + `
		ORDER BY a.name`

	data, err := selectRows(ctx, r.db, scanLinked, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	return models.NewQueryResult(data), nil
}

// GetForUser returns id and name of the accounts matching cond, ordered by
// name. cond usually carries the visibility rules of the current user.
func (r *PostgresRepository) GetForUser(ctx context.Context, cond *query.Condition) (*models.QueryResult[models.AccountItem], error) {
	var args dbx.Args
	where, err := cond.Render(&args, conditionColumns)
	if err != nil {
		return nil, fmt.Errorf("accounts for user: %w", err)
	}

	q := `SELECT a.id, a.name FROM accounts a WHERE ` + where + ` ORDER BY a.name`

	data, err := selectRows(ctx, r.db, scanItem, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	return models.NewQueryResult(data), nil
}

// Search matches name, url and notes case-insensitively and returns id and
// name of one page of matches. TotalNumRows holds the number of matches
// regardless of the limit.
func (r *PostgresRepository) Search(ctx context.Context, search *models.ItemSearchData) (*models.QueryResult[models.AccountItem], error) {
	var args dbx.Args
	where := "TRUE"
	if s := strings.TrimSpace(search.SearchString); s != "" {
		p := args.Add(dbx.LikePattern(s))
		where = `(a.name ILIKE ` + p + ` OR a.url ILIKE ` + p + ` OR a.notes ILIKE ` + p + `)`
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM accounts a WHERE `+where, args.Values()...)
	if err != nil {
		return nil, err
	}

	q := `SELECT a.id, a.name FROM accounts a WHERE ` + where + ` ORDER BY a.name` + limit(&args, search.LimitStart, search.LimitCount)

	data, err := selectRows(ctx, r.db, scanItem, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	return &models.QueryResult[models.AccountItem]{
		NumRows:      len(data),
		TotalNumRows: total,
		Data:         data,
	}, nil
}

// GetByFilter returns one page of account_view rows matching every predicate
// set in filter, ordered by name. Count holds the number of matches
// regardless of the limit.
func (r *PostgresRepository) GetByFilter(ctx context.Context, filter *models.AccountSearchFilter) (*models.AccountSearchResponse, error) {
	var args dbx.Args
	var where []string

	if filter.CategoryID != 0 {
		where = append(where, "a.category_id = "+args.Add(filter.CategoryID))
	}
	if filter.ClientID != 0 {
		where = append(where, "a.client_id = "+args.Add(filter.ClientID))
	}
	if s := strings.TrimSpace(filter.TxtSearch); s != "" {
		p := args.Add(dbx.LikePattern(s))
		where = append(where, `(a.name ILIKE `+p+` OR a.login ILIKE `+p+` OR a.url ILIKE `+p+` OR a.notes ILIKE `+p+`)`)
	}
	if filter.SearchFavorites {
		where = append(where, `EXISTS (SELECT 1 FROM account_to_favorite f
			WHERE f.account_id = a.id AND f.user_id = `+args.Add(filter.UserID)+`)`)
	}
	if len(filter.TagsID) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM account_to_tag t
			WHERE t.account_id = a.id AND t.tag_id = ANY(`+args.Add(dbx.Int64Array(filter.TagsID))+`::bigint[]))`)
	}
	if filter.Visibility != nil {
		v, err := filter.Visibility.Render(&args, conditionColumns)
		if err != nil {
			return nil, fmt.Errorf("account filter: %w", err)
		}
		where = append(where, v)
	}

	cond := "TRUE"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	total, err := r.count(ctx, `SELECT COUNT(*) FROM account_view a WHERE `+cond, args.Values()...)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + viewColumns + ` FROM account_view a WHERE ` + cond + ` ORDER BY a.name, a.id` +
		limit(&args, filter.LimitStart, filter.LimitCount)

	data, err := selectRows(ctx, r.db, scanView, q, args.Values()...)
	if err != nil {
		return nil, err
	}
	return &models.AccountSearchResponse{Count: total, Data: data}, nil
}

func (r *PostgresRepository) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return n, nil
}

// limit renders a LIMIT/OFFSET clause; count 0 means no limit.
func limit(args *dbx.Args, start, count int) string {
	if count <= 0 {
		return ""
	}
	return ` LIMIT ` + args.Add(count) + ` OFFSET ` + args.Add(start)
}
