package models

import "time"

// TrainingVideo is user-provided reference footage stored in object storage.
// The row carries only metadata; the bytes live under StorageKey.
type TrainingVideo struct {
	ID         string
	UserID     string
	Title      string
	StorageKey string
	CreatedAt  time.Time
}
