package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/server/models"
)

const accountColumns = `id, name, login, url, notes, pass, key, client_id, category_id, parent_id,
	user_id, user_group_id, user_edit_id, is_private, is_private_group, other_user_edit,
	other_user_group_edit, count_view, count_decrypt, pass_date, pass_date_change, date_add, date_edit`

const viewColumns = `id, name, login, url, notes, client_id, client_name, category_id, category_name,
	parent_id, user_id, user_name, user_login, user_group_id, user_group_name, user_edit_id,
	user_edit_name, is_private, is_private_group, other_user_edit, other_user_group_edit,
	count_view, count_decrypt, pass_date, pass_date_change, date_add, date_edit`

const passColumns = `id, name, login, pass, key, parent_id`

// conditionColumns are the logical column names a query.Condition may use.
// The statements alias accounts (or account_view) as a.
var conditionColumns = map[string]string{
	"id":                    "a.id",
	"name":                  "a.name",
	"client_id":             "a.client_id",
	"category_id":           "a.category_id",
	"parent_id":             "a.parent_id",
	"user_id":               "a.user_id",
	"user_group_id":         "a.user_group_id",
	"user_edit_id":          "a.user_edit_id",
	"is_private":            "a.is_private",
	"is_private_group":      "a.is_private_group",
	"other_user_edit":       "a.other_user_edit",
	"other_user_group_edit": "a.other_user_group_edit",
	"count_view":            "a.count_view",
	"count_decrypt":         "a.count_decrypt",
	"pass_date":             "a.pass_date",
	"pass_date_change":      "a.pass_date_change",
	"date_add":              "a.date_add",
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(s scanner, a *models.Account) error {
	return s.Scan(
		&a.ID, &a.Name, &a.Login, &a.URL, &a.Notes, &a.Pass, &a.Key, &a.ClientID, &a.CategoryID, &a.ParentID,
		&a.UserID, &a.UserGroupID, &a.UserEditID, &a.IsPrivate, &a.IsPrivateGroup, &a.OtherUserEdit,
		&a.OtherUserGroupEdit, &a.CountView, &a.CountDecrypt, &a.PassDate, &a.PassDateChange, &a.DateAdd, &a.DateEdit,
	)
}

func scanView(s scanner, v *models.AccountView) error {
	return s.Scan(
		&v.ID, &v.Name, &v.Login, &v.URL, &v.Notes, &v.ClientID, &v.ClientName, &v.CategoryID, &v.CategoryName,
		&v.ParentID, &v.UserID, &v.UserName, &v.UserLogin, &v.UserGroupID, &v.UserGroupName, &v.UserEditID,
		&v.UserEditName, &v.IsPrivate, &v.IsPrivateGroup, &v.OtherUserEdit, &v.OtherUserGroupEdit,
		&v.CountView, &v.CountDecrypt, &v.PassDate, &v.PassDateChange, &v.DateAdd, &v.DateEdit,
	)
}

func scanPass(s scanner, p *models.AccountPassData) error {
	return s.Scan(&p.ID, &p.Name, &p.Login, &p.Pass, &p.Key, &p.ParentID)
}

func scanItem(s scanner, i *models.AccountItem) error {
	return s.Scan(&i.ID, &i.Name)
}

func scanLinked(s scanner, l *models.AccountLinked) error {
	return s.Scan(&l.ID, &l.Name, &l.ClientName)
}

func scanLinkData(s scanner, l *models.AccountLinkData) error {
	return s.Scan(&l.ID, &l.Name, &l.Login, &l.URL, &l.Notes, &l.Pass, &l.Key, &l.ClientName, &l.CategoryName)
}

// selectRows runs query and scans every row with scan.
func selectRows[T any](ctx context.Context, db dbx.DBTX, scan func(scanner, *T) error, query string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	defer rows.Close()

	result := []T{}
	for rows.Next() {
		var item T
		if err := scan(rows, &item); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return result, nil
}

// selectOne runs a single-row query and wraps the outcome as a 0 or 1 row result.
func selectOne[T any](ctx context.Context, db dbx.DBTX, scan func(scanner, *T) error, query string, args ...any) (*models.QueryResult[T], error) {
	var item T
	if err := scan(db.QueryRowContext(ctx, query, args...), &item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.NewQueryResult[T](nil), nil
		}
		return nil, fmt.Errorf("db error: %w", dbx.Translate(err))
	}
	return models.NewQueryResult([]T{item}), nil
}

func rowsAffected(res sql.Result) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
