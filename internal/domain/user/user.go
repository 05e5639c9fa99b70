// Package user holds the User entity. Users are created by the user
// service and are never mutated by the registration engine.
package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("user not found")
	ErrDuplicate = errors.New("user already exists")
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateRequest is the canonicalised (post-validation) input to create a user.
type CreateRequest struct {
	ID   string
	Name string
}

func New(req CreateRequest) User {
	now := time.Now().UTC()
	return User{
		ID:        req.ID,
		Name:      req.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
