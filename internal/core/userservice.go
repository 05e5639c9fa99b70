// Package core implements C3 (User Service) and C4 (Event Service); the
// Registration Engine (C5) lives in the subpackage internal/core/engine.
// All three sit directly on top of the Store and Validator.
package core

import (
	"context"

	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/elthrasher/eventreg/internal/store"
	"github.com/elthrasher/eventreg/internal/validate"
)

type UserService struct {
	store store.Store
}

func NewUserService(s store.Store) *UserService {
	return &UserService{store: s}
}

// CreateUser validates, canonicalises, stamps timestamps and inserts the
// user (spec §4.3). Returns user.ErrDuplicate if the userId is taken.
func (s *UserService) CreateUser(ctx context.Context, userID, name string) (user.User, error) {
	input, err := validate.CreateUser(userID, name)
	if err != nil {
		return user.User{}, err
	}

	u := user.New(user.CreateRequest{ID: input.UserID, Name: input.Name})
	if err := s.store.PutUserIfAbsent(ctx, u); err != nil {
		if store.Is(err, store.KindDuplicate) {
			return user.User{}, user.ErrDuplicate
		}
		return user.User{}, err
	}
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (user.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		if store.Is(err, store.KindNotFound) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
