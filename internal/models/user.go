package models

import "time"

// User is the slice of the account record this engine needs: existence
// checks before issuing bans, and name/email tokens for the user-info
// containment rule in password validation.
type User struct {
	ID        string
	Email     string
	Username  string
	Name      string
	Role      string // "user", "admin"
	CreatedAt time.Time
	UpdatedAt time.Time
}
