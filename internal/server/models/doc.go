// Package models defines the records, request values and result wrappers
// exchanged with the account and category repositories.
package models
