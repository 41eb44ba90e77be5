package models

import "github.com/dmitrijs2005/passkeeper/internal/server/repositories/query"

// AccountSearchFilter is the predicate set of GetByFilter. Zero-valued
// fields impose no filter; set fields are combined with AND.
type AccountSearchFilter struct {
	CategoryID int64
	ClientID   int64
	TxtSearch  string
	// SearchFavorites restricts to the favorites of UserID.
	SearchFavorites bool
	UserID          int64
	// TagsID matches accounts carrying any of the ids.
	TagsID     []int64
	LimitStart int
	LimitCount int
	// Visibility is an extra predicate supplied by the caller, typically
	// the permission filter of the current user.
	Visibility *query.Condition
}

// Reset clears every predicate so the filter can be reused.
func (f *AccountSearchFilter) Reset() {
	*f = AccountSearchFilter{}
}

// AccountSearchResponse holds one page of GetByFilter. Count is the number
// of matches before the limit.
type AccountSearchResponse struct {
	Count int
	Data  []AccountView
}
