package user

import (
	"errors"
	"time"

	"github.com/geocoder89/bloghub/internal/query"
)

type Role string

const (
	RoleAdmin   Role = "ADMIN"
	RoleBlogger Role = "BLOGGER"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleBlogger
}

type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FieldValue lets the in-memory store evaluate query filters against a user.
func (u User) FieldValue(f query.Field) (any, bool) {
	switch f {
	case query.FieldID:
		return u.ID, true
	case query.FieldName:
		return u.Name, true
	case query.FieldEmail:
		return u.Email, true
	case query.FieldRole:
		return string(u.Role), true
	default:
		return nil, false
	}
}

var (
	ErrNotFound   = errors.New("user not found")
	ErrNameTaken  = errors.New("user name already used")
	ErrEmailTaken = errors.New("user email already used")
)

// NewUser is what the credential store needs to insert a user.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// Field order is the order missing fields are reported in.
type RegisterRequest struct {
	Email                string `json:"email" binding:"required"`
	Name                 string `json:"name" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"required,eqfield=Password"`
}

// CreateRequest is the admin variant: the role may be chosen and the
// confirmation is only checked when supplied.
type CreateRequest struct {
	Email                string `json:"email" binding:"required"`
	Name                 string `json:"name" binding:"required"`
	Password             string `json:"password" binding:"required"`
	PasswordConfirmation string `json:"passwordConfirmation" binding:"omitempty,eqfield=Password"`
	Role                 Role   `json:"role" binding:"omitempty,oneof=ADMIN BLOGGER"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Profile is the full public view of a user, shown to admins and to the
// user themselves.
type Profile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role,omitempty"`
}

// Summary is what admins see when listing users.
type Summary struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Contact is the reduced view non-admins get when listing users.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Name: u.Name, Email: u.Email}
}

func (u User) Contact() Contact {
	return Contact{Name: u.Name, Email: u.Email}
}
