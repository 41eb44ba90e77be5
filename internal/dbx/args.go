package dbx

import (
	"database/sql/driver"
	"strconv"
	"strings"
)

// Args collects positional parameters for a PostgreSQL statement and hands
// out the matching $n placeholders.
type Args struct {
	values []any
}

// Add appends v and returns its placeholder.
func (a *Args) Add(v any) string {
	a.values = append(a.values, v)
	return "$" + strconv.Itoa(len(a.values))
}

// AddList appends every value and returns their placeholders joined by ", ".
func (a *Args) AddList(vs ...any) string {
	ph := make([]string, len(vs))
	for i, v := range vs {
		ph[i] = a.Add(v)
	}
	return strings.Join(ph, ", ")
}

// Values returns the collected parameters in placeholder order.
func (a *Args) Values() []any {
	return a.values
}

// Len returns the number of collected parameters.
func (a *Args) Len() int {
	return len(a.values)
}

// Int64Array binds a list of ids as one bigint[] parameter, for use with
// "= ANY($n::bigint[])" so the statement size does not grow with the list.
type Int64Array []int64

// Value renders the ids as a PostgreSQL array literal.
func (a Int64Array) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	b := make([]byte, 0, 2+len(a)*8)
	b = append(b, '{')
	for i, v := range a {
		if i > 0 {
			b = append(b, ',')
		}
		b = strconv.AppendInt(b, v, 10)
	}
	b = append(b, '}')
	return string(b), nil
}

// LikePattern wraps s in % wildcards for a substring match, escaping the
// LIKE metacharacters it contains. PostgreSQL uses \ as the default escape.
func LikePattern(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return "%" + s + "%"
}
