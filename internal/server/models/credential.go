package models

import "time"

// Credential is a stored login record. PasswordHash is an encoded one-way
// hash that embeds its own salt; PasswordSalt repeats the salt for schemes
// that keep it in a separate column. Both are regenerated on every password
// change.
type Credential struct {
	SubjectID    string
	UserName     string
	Email        string
	PasswordHash string
	PasswordSalt string
	CreatedAt    time.Time
}
