package dbx

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes translated by Translate.
const (
	NotNullViolation    = "23502"
	ForeignKeyViolation = "23503"
	UniqueViolation     = "23505"
	CheckViolation      = "23514"
)

// Translate maps a store error onto the repository error kinds: foreign-key,
// not-null and check violations become common.ErrConstraint, unique
// violations common.ErrDuplicatedItem and anything else common.ErrQuery.
// The original error stays in the chain. A nil error stays nil.
func Translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrConstraint) || errors.Is(err, common.ErrQuery) {
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case UniqueViolation:
			return fmt.Errorf("%w: %w", common.ErrDuplicatedItem, err)
		case ForeignKeyViolation, NotNullViolation, CheckViolation:
			return fmt.Errorf("%w: %w", common.ErrConstraint, err)
		}
	}

	return fmt.Errorf("%w: %w", common.ErrQuery, err)
}

// IsConstraint reports whether err is, or translates to, a constraint violation.
func IsConstraint(err error) bool {
	return errors.Is(Translate(err), common.ErrConstraint)
}
