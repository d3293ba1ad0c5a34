package model

import (
	"encoding/json"
	"errors"
)

var ErrInvalidAdminFlag = errors.New("invalid admin flag: must be true or false")

// User is a staff account. The password hash never leaves the store layer.
type User struct {
	ID           int64      `db:"id" json:"id"`
	Username     string     `db:"username" json:"username"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         string     `db:"role" json:"role"`
	Admin        bool       `db:"admin" json:"admin"`
	LastLoggedIn *Timestamp `db:"last_logged_in" json:"lastLoggedIn"`
	LastLocation *string    `db:"last_location" json:"lastLocation"`
	CreatedAt    Timestamp  `db:"created_at" json:"createdAt"`
}

// AdminFlag accepts a JSON boolean or the strings "true"/"false".
type AdminFlag bool

func (a *AdminFlag) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return ErrInvalidAdminFlag
	}

	switch v := raw.(type) {
	case nil:
		*a = false
	case bool:
		*a = AdminFlag(v)
	case string:
		switch v {
		case "true":
			*a = true
		case "false":
			*a = false
		default:
			return ErrInvalidAdminFlag
		}
	default:
		return ErrInvalidAdminFlag
	}
	return nil
}

type CreateUserRequest struct {
	Username string    `json:"username" binding:"required,notblank"`
	Email    string    `json:"email" binding:"required,email"`
	Password string    `json:"password" binding:"required"`
	Role     string    `json:"role" binding:"required,notblank"`
	Admin    AdminFlag `json:"admin"`
}

type CreateUserResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user"`
}
