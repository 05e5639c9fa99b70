package postgres

import (
	"context"
	"fmt"

	"github.com/elthrasher/eventreg/internal/domain/user"
	"github.com/elthrasher/eventreg/internal/store"
)

func (s *Store) PutUserIfAbsent(ctx context.Context, u user.User) error {
	const op = "store.put_user_if_absent"

	return s.withRetry(ctx, op, func() error {
		tag, err := s.pool.Exec(ctx, fmt.Sprintf(`
			INSERT INTO %s (user_id, name, created_at, updated_at)
			VALUES ($1,$2,$3,$4)
			ON CONFLICT (user_id) DO NOTHING
		`, s.tables.Users), u.ID, u.Name, u.CreatedAt, u.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err) {
				return store.Duplicate(op)
			}
			return err
		}
		if tag.RowsAffected() == 0 {
			return store.Duplicate(op)
		}
		return nil
	})
}

func (s *Store) GetUser(ctx context.Context, userID string) (user.User, error) {
	const op = "store.get_user"
	var u user.User

	err := s.withRetry(ctx, op, func() error {
		return s.pool.QueryRow(ctx, fmt.Sprintf(`
			SELECT user_id, name, created_at, updated_at FROM %s WHERE user_id = $1
		`, s.tables.Users), userID).Scan(&u.ID, &u.Name, &u.CreatedAt, &u.UpdatedAt)
	})
	if err != nil {
		if isNoRows(err) {
			return user.User{}, store.NotFound(op)
		}
		return user.User{}, err
	}
	return u, nil
}
