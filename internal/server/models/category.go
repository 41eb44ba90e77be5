package models

// Category classifies accounts. Hash identifies the normalized name.
type Category struct {
	ID          int64
	Name        string
	Hash        string
	Description string
}
