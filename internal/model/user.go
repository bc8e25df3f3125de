package model

import (
	"time"
)

// User is the local record for an identity-provider subject. The ID is the
// provider's stable subject identifier, not a locally generated one.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FullName  string    `db:"full_name" json:"full_name"`
	Metadata  []byte    `db:"metadata" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
