package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. The password is only ever stored hashed.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
