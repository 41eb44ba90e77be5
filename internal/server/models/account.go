package models

import "time"

// Account is a row of the accounts table.
type Account struct {
	ID                 int64
	Name               string
	Login              string
	URL                string
	Notes              string
	Pass               []byte
	Key                []byte
	ClientID           int64
	CategoryID         int64
	ParentID           *int64
	UserID             int64
	UserGroupID        int64
	UserEditID         int64
	IsPrivate          bool
	IsPrivateGroup     bool
	OtherUserEdit      bool
	OtherUserGroupEdit bool
	CountView          int64
	CountDecrypt       int64
	PassDate           time.Time
	PassDateChange     *time.Time
	DateAdd            time.Time
	DateEdit           *time.Time
}

// AccountView is a row of account_view: the account without its secrets,
// joined with the names of its client, category, owner and group.
type AccountView struct {
	ID                 int64
	Name               string
	Login              string
	URL                string
	Notes              string
	ClientID           int64
	ClientName         string
	CategoryID         int64
	CategoryName       string
	ParentID           *int64
	UserID             int64
	UserName           string
	UserLogin          string
	UserGroupID        int64
	UserGroupName      string
	UserEditID         int64
	UserEditName       string
	IsPrivate          bool
	IsPrivateGroup     bool
	OtherUserEdit      bool
	OtherUserGroupEdit bool
	CountView          int64
	CountDecrypt       int64
	PassDate           time.Time
	PassDateChange     *time.Time
	DateAdd            time.Time
	DateEdit           *time.Time
}

// AccountLinkData is what a public link to an account exposes.
type AccountLinkData struct {
	ID           int64
	Name         string
	Login        string
	URL          string
	Notes        string
	Pass         []byte
	Key          []byte
	ClientName   string
	CategoryName string
}

// AccountPassData is an encrypted password with the secured key it was
// sealed with. ID is the account id, or the history id for history rows.
type AccountPassData struct {
	ID       int64
	Name     string
	Login    string
	Pass     []byte
	Key      []byte
	ParentID *int64
}

// AccountItem is the lightweight row returned by searches.
type AccountItem struct {
	ID   int64
	Name string
}

// AccountLinked is a child account listed under its parent.
type AccountLinked struct {
	ID         int64
	Name       string
	ClientName string
}
