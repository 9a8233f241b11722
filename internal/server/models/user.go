// Package models defines server-side data models persisted in the database
// or exchanged with third-party services.
package models

import "time"

// User is a registered account with a locally stored password.
type User struct {
	ID           string
	UserName     string
	Salt         []byte
	PasswordHash []byte
	CreatedAt    time.Time
}
