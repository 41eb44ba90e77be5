package models

// QueryResult wraps the rows of a read. TotalNumRows is the number of
// matches before any limit was applied; it equals NumRows for unpaged reads.
type QueryResult[T any] struct {
	NumRows      int
	TotalNumRows int
	Data         []T
}

// NewQueryResult wraps data as an unpaged result.
func NewQueryResult[T any](data []T) *QueryResult[T] {
	return &QueryResult[T]{NumRows: len(data), TotalNumRows: len(data), Data: data}
}

// One returns the first row, or nil when the result is empty.
func (r *QueryResult[T]) One() *T {
	if r == nil || len(r.Data) == 0 {
		return nil
	}
	return &r.Data[0]
}
