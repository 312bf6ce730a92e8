// internal/models/user.go
package models

import "github.com/google/uuid"

// User is a registered account. Guests never touch the database; they exist
// only as a minted session token plus an in-room display name.
type User struct {
	ID       uuid.UUID `json:"id"`
	Email    string    `json:"email"`
	Password string    `json:"-"`
	Username string    `json:"username"`
}
