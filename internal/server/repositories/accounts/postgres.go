// Package accounts provides the PostgreSQL-backed account repository.
//
// Every method is a single statement (or a count/select pair for paged
// reads) against a dbx.DBTX, so the repository can run on *sql.DB or inside
// a transaction opened by the caller. Store failures are translated by
// dbx.Translate; missing rows come back as empty results.
package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an account and returns its id.
func (r *PostgresRepository) Create(ctx context.Context, req *models.AccountRequest) (int64, error) {
	query := `INSERT INTO accounts (client_id, category_id, name, login, url, pass, key, notes,
			user_id, user_group_id, user_edit_id, is_private, is_private_group,
			pass_date_change, parent_id, other_user_edit, other_user_group_edit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		req.ClientID, req.CategoryID, req.Name, req.Login, req.URL, req.Pass, req.Key, req.Notes,
		req.UserID, req.UserGroupID, req.UserEditID, req.IsPrivate, req.IsPrivateGroup,
		req.PassDateChange, req.ParentRef(), req.OtherUserEdit, req.OtherUserGroupEdit,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return id, nil
}

// Update writes the editable fields of req.ID and returns the rows affected.
// The owning group and owner are only written when req.ChangeUserGroup and
// req.ChangeOwner are set.
func (r *PostgresRepository) Update(ctx context.Context, req *models.AccountRequest) (int64, error) {
	var args dbx.Args
	set := []string{
		"client_id = " + args.Add(req.ClientID),
		"category_id = " + args.Add(req.CategoryID),
		"name = " + args.Add(req.Name),
		"login = " + args.Add(req.Login),
		"url = " + args.Add(req.URL),
		"notes = " + args.Add(req.Notes),
		"user_edit_id = " + args.Add(req.UserEditID),
		"pass_date_change = " + args.Add(req.PassDateChange),
		"is_private = " + args.Add(req.IsPrivate),
		"is_private_group = " + args.Add(req.IsPrivateGroup),
		"parent_id = " + args.Add(req.ParentRef()),
		"other_user_edit = " + args.Add(req.OtherUserEdit),
		"other_user_group_edit = " + args.Add(req.OtherUserGroupEdit),
	}
	if req.ChangeUserGroup {
		set = append(set, "user_group_id = "+args.Add(req.UserGroupID))
	}
	if req.ChangeOwner {
		set = append(set, "user_id = "+args.Add(req.UserID))
	}
	set = append(set, "date_edit = now()")

	query := `UPDATE accounts SET ` + strings.Join(set, ", ") + ` WHERE id = ` + args.Add(req.ID)

	res, err := r.db.ExecContext(ctx, query, args.Values()...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return rowsAffected(res)
}

// EditPassword replaces pass and key of req.ID, records the editor and
// stamps the password date. It returns the rows affected.
func (r *PostgresRepository) EditPassword(ctx context.Context, req *models.AccountRequest) (int64, error) {
	query := `UPDATE accounts SET pass = $1, key = $2, user_edit_id = $3, pass_date = now(),
			pass_date_change = $4, date_edit = now()
		WHERE id = $5`

	res, err := r.db.ExecContext(ctx, query, req.Pass, req.Key, req.UserEditID, req.PassDateChange, req.ID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return rowsAffected(res)
}

// UpdatePassword replaces pass and key of req.ID, keeping the expiry date
// when req.PassDateChange is nil. It reports whether exactly one row changed.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, req *models.AccountPasswordRequest) (bool, error) {
	query := `UPDATE accounts SET pass = $1, key = $2, pass_date = now(),
			pass_date_change = COALESCE($3, pass_date_change)
		WHERE id = $4`

	res, err := r.db.ExecContext(ctx, query, req.Pass, req.Key, req.PassDateChange, req.ID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

// EditRestore copies the snapshot historyID back onto the account it was
// taken from. It reports whether the account was restored.
func (r *PostgresRepository) EditRestore(ctx context.Context, historyID, userEditID int64) (bool, error) {
	query := `UPDATE accounts a SET
			client_id = h.client_id,
			category_id = h.category_id,
			name = h.name,
			login = h.login,
			url = h.url,
			notes = h.notes,
			user_edit_id = $2,
			pass = h.pass,
			key = h.key,
			pass_date = h.pass_date,
			pass_date_change = h.pass_date_change,
			parent_id = h.parent_id,
			is_private = h.is_private,
			is_private_group = h.is_private_group,
			date_edit = now()
		FROM account_history h
		WHERE h.id = $1 AND a.id = h.account_id`

	res, err := r.db.ExecContext(ctx, query, historyID, userEditID)
	if err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

// AddHistory snapshots the current state of accountID into account_history
// and returns the snapshot id, or 0 when the account does not exist.
func (r *PostgresRepository) AddHistory(ctx context.Context, accountID int64) (int64, error) {
	query := `INSERT INTO account_history (account_id, name, login, url, notes, pass, key,
			client_id, category_id, parent_id, user_id, user_group_id, user_edit_id,
			is_private, is_private_group, pass_date, pass_date_change)
		SELECT id, name, login, url, notes, pass, key,
			client_id, category_id, parent_id, user_id, user_group_id, user_edit_id,
			is_private, is_private_group, pass_date, pass_date_change
		FROM accounts WHERE id = $1
		RETURNING id`

	var id int64
	if err := r.db.QueryRowContext(ctx, query, accountID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return id, nil
}

// Delete removes one account and returns the rows affected (0 when missing).
func (r *PostgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return 0, fmt.Errorf("delete account %d: %w", id, dbx.Translate(err))
	}
	return rowsAffected(res)
}

// DeleteByIDBatch removes the given accounts in one statement and returns how
// many existed.
func (r *PostgresRepository) DeleteByIDBatch(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	query := `DELETE FROM accounts WHERE id = ANY($1::bigint[])`

	res, err := r.db.ExecContext(ctx, query, dbx.Int64Array(ids))
	if err != nil {
		return 0, fmt.Errorf("delete accounts: %w", dbx.Translate(err))
	}
	return rowsAffected(res)
}

// IncrementViewCounter adds one to count_view of id in the store.
func (r *PostgresRepository) IncrementViewCounter(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, `UPDATE accounts SET count_view = count_view + 1 WHERE id = $1`, id)
}

// IncrementDecryptCounter adds one to count_decrypt of id in the store.
func (r *PostgresRepository) IncrementDecryptCounter(ctx context.Context, id int64) (bool, error) {
	return r.increment(ctx, `UPDATE accounts SET count_decrypt = count_decrypt + 1 WHERE id = $1`, id)
}

func (r *PostgresRepository) increment(ctx context.Context, query string, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	n, err := rowsAffected(res)
	return n == 1, err
}

// CheckDuplicatedOnAdd reports whether an account with the same name
// (case-insensitive) already exists for the client.
func (r *PostgresRepository) CheckDuplicatedOnAdd(ctx context.Context, req *models.AccountRequest) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE LOWER(name) = LOWER($1) AND client_id = $2)`
	return r.exists(ctx, query, req.Name, req.ClientID)
}

// CheckDuplicatedOnUpdate is CheckDuplicatedOnAdd ignoring req.ID itself.
func (r *PostgresRepository) CheckDuplicatedOnUpdate(ctx context.Context, req *models.AccountRequest) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts
		WHERE LOWER(name) = LOWER($1) AND client_id = $2 AND id <> $3)`
	return r.exists(ctx, query, req.Name, req.ClientID, req.ID)
}

func (r *PostgresRepository) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var found bool
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return found, nil
}

// GetTotalNumAccounts counts every account row in the store, current
// accounts and history snapshots alike, without any visibility filter.
func (r *PostgresRepository) GetTotalNumAccounts(ctx context.Context) (int64, error) {
	query := `SELECT (SELECT COUNT(*) FROM accounts) + (SELECT COUNT(*) FROM account_history)`

	var n int64
	if err := r.db.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return n, nil
}
