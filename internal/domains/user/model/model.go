package model

import (
	"hostel/shared/model"
	"time"
)

const (
	TableName  = "users"
	EntityName = "user"

	FieldID        = "id"
	FieldName      = "name"
	FieldUsername  = "username"
	FieldEmail     = "email"
	FieldPhone     = "phone"
	FieldPassword  = "password"
	FieldRole      = "role"
	FieldActive    = "active"
	FieldLastLogin = "last_login"
)

type User struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Username  string     `db:"username"`
	Email     *string    `db:"email"`
	Phone     *string    `db:"phone"`
	Password  string     `db:"password"`
	Role      string     `db:"role"`
	Active    bool       `db:"active"`
	LastLogin *time.Time `db:"last_login"`
	model.Metadata
}

// DisplayName falls back from the full name to the username.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}

	return u.Username
}

func (u User) PhoneNumber() string {
	if u.Phone == nil {
		return ""
	}

	return *u.Phone
}
