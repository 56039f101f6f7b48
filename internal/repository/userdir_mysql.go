package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"gemstock-api/internal/model"
)

// MySQLUserDirectory implements UserDirectory against the back-office's
// central MySQL user table. Optional: deployments without it fall back to
// the users table in the print store.
type MySQLUserDirectory struct {
	db *sql.DB
}

// NewMySQLUserDirectory wraps an existing MySQL connection.
func NewMySQLUserDirectory(db *sql.DB) *MySQLUserDirectory {
	return &MySQLUserDirectory{db: db}
}

// ListUserIDs returns the IDs of all known users.
func (r *MySQLUserDirectory) ListUserIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id FROM users`)
	if err != nil {
		return nil, fmt.Errorf("failed to list user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// UserExists reports whether a user ID is known and active.
func (r *MySQLUserDirectory) UserExists(ctx context.Context, userID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE id = ? AND active = 1`, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check user: %w", err)
	}
	return count > 0, nil
}

// CreateUser registers a user in the central directory.
func (r *MySQLUserDirectory) CreateUser(ctx context.Context, user *model.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	log.Printf("[MySQLUserDirectory] Creating user %s", user.ID)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, name, active, created_at) VALUES (?, ?, ?, ?)`,
		user.ID, user.Name, user.Active, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Ensure MySQLUserDirectory implements UserDirectory
var _ UserDirectory = (*MySQLUserDirectory)(nil)
