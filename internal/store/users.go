package store

import (
	"context"
	"fmt"

	"github.com/oriys/vega/internal/domain"
	"github.com/oriys/vega/internal/turso"
)

const userColumns = "id, username, email, steam_id, created_at, updated_at"

// CreateUser inserts a new user and returns its generated id.
// Uniqueness violations surface as a *turso.QueryError; callers decide
// whether that is a client or a server fault.
func (s *Store) CreateUser(ctx context.Context, username, email string, steamID *string) (int64, error) {
	steam := turso.Null()
	if steamID != nil {
		steam = turso.Text(*steamID)
	}

	res, err := s.db.Execute(ctx,
		"INSERT INTO users (username, email, steam_id) VALUES (?, ?, ?)",
		turso.Text(username), turso.Text(email), steam,
	)
	if err != nil {
		return 0, fmt.Errorf("create user: %w", err)
	}
	return res.LastInsertRowID, nil
}

// ListUsers returns all users, newest first.
func (s *Store) ListUsers(ctx context.Context) ([]domain.User, error) {
	res, err := s.db.Execute(ctx, "SELECT "+userColumns+" FROM users ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return mapUsers(res)
}

// GetUser returns the user with the given id, or nil when no row
// matches. Absence is a normal result, not an error.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	res, err := s.db.Execute(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?",
		turso.Integer(id),
	)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	users, err := mapUsers(res)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return &users[0], nil
}

// DeleteUser removes the user, reporting whether a row existed.
func (s *Store) DeleteUser(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.Execute(ctx, "DELETE FROM users WHERE id = ?", turso.Integer(id))
	if err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return res.AffectedRowCount > 0, nil
}

func mapUsers(res *turso.Result) ([]domain.User, error) {
	idx := newRowIndex(res)
	users := make([]domain.User, 0, len(res.Rows))
	for _, row := range res.Rows {
		r := rowReader{idx: idx, row: row}

		id, err := r.integer("id")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}
		username, err := r.text("username")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}
		email, err := r.text("email")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}
		steamID, err := r.nullText("steam_id")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}
		createdAt, err := r.timestamp("created_at")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}
		updatedAt, err := r.timestamp("updated_at")
		if err != nil {
			return nil, fmt.Errorf("map user row: %w", err)
		}

		users = append(users, domain.User{
			ID:        id,
			Username:  username,
			Email:     email,
			SteamID:   steamID,
			CreatedAt: createdAt,
			UpdatedAt: updatedAt,
		})
	}
	return users, nil
}
