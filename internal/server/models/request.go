package models

import "time"

// AccountRequest carries the writable fields of an account for create,
// update and password edits.
//
// ParentID 0 means no parent. UserGroupID and UserID are only written by
// Update when ChangeUserGroup and ChangeOwner are set; the caller decides
// those flags before reaching the repository.
type AccountRequest struct {
	ID                 int64
	Name               string
	Login              string
	URL                string
	Notes              string
	Pass               []byte
	Key                []byte
	ClientID           int64
	CategoryID         int64
	ParentID           int64
	UserID             int64
	UserGroupID        int64
	UserEditID         int64
	IsPrivate          bool
	IsPrivateGroup     bool
	OtherUserEdit      bool
	OtherUserGroupEdit bool
	PassDateChange     *time.Time

	ChangeUserGroup bool
	ChangeOwner     bool
}

// ParentRef returns the parent id as a statement argument, nil when unset.
func (r *AccountRequest) ParentRef() any {
	if r.ParentID == 0 {
		return nil
	}
	return r.ParentID
}

// AccountPasswordRequest replaces the password of one account.
type AccountPasswordRequest struct {
	ID             int64
	Pass           []byte
	Key            []byte
	PassDateChange *time.Time
}

// ItemSearchData is a free-text search with paging. LimitCount 0 means no limit.
type ItemSearchData struct {
	SearchString string
	LimitStart   int
	LimitCount   int
}
