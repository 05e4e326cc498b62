package model

import "time"

// Identity is the authentication record behind a user: email plus password hash.
type Identity struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Email        string    `gorm:"uniqueIndex;size:320;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// User is the public profile of an identity. It shares the identity's id.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Email     string    `gorm:"size:320;not null" json:"email"`
	FullName  string    `gorm:"size:256" json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserUpdate lists the profile fields a user may change. Nil fields are left alone.
type UserUpdate struct {
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
}

// Columns returns the column assignments for a partial update.
func (u UserUpdate) Columns() map[string]any {
	cols := map[string]any{}
	if u.Email != nil {
		cols["email"] = *u.Email
	}
	if u.FullName != nil {
		cols["full_name"] = *u.FullName
	}
	return cols
}
