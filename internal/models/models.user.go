// FilePath: internal/models/models.user.go
package models

// User is an API account. Accounts are provisioned out-of-band; this
// service only reads them to authenticate callers.
type User struct {
	ID           int64  `json:"id" db:"id"`
	Username     string `json:"username" db:"username"`
	PasswordHash string `json:"-" db:"password_hash"`
	IsActive     bool   `json:"is_active" db:"is_active"`
}
