// Package query provides a typed predicate builder for the caller-supplied
// filters of the account repository. Conditions refer to logical column
// names; each repository renders them against its own allow-list, binding
// every value as a statement parameter.
//
//	cond := query.And(
//	    query.Eq("parent_id", int64(1)),
//	    query.Or(query.Eq("is_private", false), query.Eq("user_id", userID)),
//	)
package query

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
)

type kind int

const (
	kindEq kind = iota
	kindNotEq
	kindIn
	kindBetween
	kindIsNull
	kindAnd
	kindOr
)

// Condition is an immutable boolean predicate. The nil *Condition matches
// every row.
type Condition struct {
	kind     kind
	column   string
	values   []any
	children []*Condition
}

// Eq matches rows where column equals v. Use IsNull for NULL checks.
func Eq(column string, v any) *Condition {
	return &Condition{kind: kindEq, column: column, values: []any{v}}
}

// NotEq matches rows where column differs from v.
func NotEq(column string, v any) *Condition {
	return &Condition{kind: kindNotEq, column: column, values: []any{v}}
}

// In matches rows where column is one of vs. An empty list matches nothing.
func In(column string, vs ...any) *Condition {
	return &Condition{kind: kindIn, column: column, values: vs}
}

// Between matches rows where lo <= column <= hi.
func Between(column string, lo, hi any) *Condition {
	return &Condition{kind: kindBetween, column: column, values: []any{lo, hi}}
}

// IsNull matches rows where column is NULL.
func IsNull(column string) *Condition {
	return &Condition{kind: kindIsNull, column: column}
}

// And joins cs with AND. Nil members are skipped; an empty And matches every row.
func And(cs ...*Condition) *Condition {
	return &Condition{kind: kindAnd, children: cs}
}

// Or joins cs with OR. Nil members are skipped; an empty Or matches nothing.
func Or(cs ...*Condition) *Condition {
	return &Condition{kind: kindOr, children: cs}
}

// Render writes c as SQL, resolving logical column names through columns
// and appending bound values to args. Unknown columns and NULL comparison
// values fail with common.ErrInvalidCondition.
func (c *Condition) Render(args *dbx.Args, columns map[string]string) (string, error) {
	if c == nil {
		return "TRUE", nil
	}

	switch c.kind {
	case kindAnd, kindOr:
		return c.renderGroup(args, columns)
	}

	col, ok := columns[c.column]
	if !ok {
		return "", fmt.Errorf("%w: unknown column %q", common.ErrInvalidCondition, c.column)
	}
	for _, v := range c.values {
		if v == nil {
			return "", fmt.Errorf("%w: NULL value for %q", common.ErrInvalidCondition, c.column)
		}
	}

	switch c.kind {
	case kindEq:
		return col + " = " + args.Add(c.values[0]), nil
	case kindNotEq:
		return col + " <> " + args.Add(c.values[0]), nil
	case kindIn:
		if len(c.values) == 0 {
			return "FALSE", nil
		}
		return col + " IN (" + args.AddList(c.values...) + ")", nil
	case kindBetween:
		lo := args.Add(c.values[0])
		hi := args.Add(c.values[1])
		return col + " BETWEEN " + lo + " AND " + hi, nil
	case kindIsNull:
		return col + " IS NULL", nil
	default:
		return "", fmt.Errorf("%w: unsupported predicate", common.ErrInvalidCondition)
	}
}

func (c *Condition) renderGroup(args *dbx.Args, columns map[string]string) (string, error) {
	sep, empty := " AND ", "TRUE"
	if c.kind == kindOr {
		sep, empty = " OR ", "FALSE"
	}

	parts := make([]string, 0, len(c.children))
	for _, child := range c.children {
		if child == nil {
			continue
		}
		s, err := child.Render(args, columns)
		if err != nil {
			return "", err
		}
		parts = append(parts, s)
	}

	switch len(parts) {
	case 0:
		return empty, nil
	case 1:
		return parts[0], nil
	default:
		return "(" + strings.Join(parts, sep) + ")", nil
	}
}
