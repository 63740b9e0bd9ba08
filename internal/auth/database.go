package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"samachar/internal/core"
)

// Common errors
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateEmail = errors.New("duplicate email")
)

// UserModel handles database operations for users
type UserModel struct {
	db     *core.Database
	logger *core.Logger
}

// NewUserModel creates a new user model
func NewUserModel(db *core.Database, logger *core.Logger) *UserModel {
	return &UserModel{
		db:     db,
		logger: logger,
	}
}

// Migrate creates the users table if it does not exist
func (m *UserModel) Migrate(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			name TEXT NOT NULL,
			email TEXT NOT NULL UNIQUE,
			password_hash BLOB NOT NULL,
			avatar TEXT NOT NULL
		)
	`

	_, err := m.db.ExecContext(ctx, query)
	return err
}

// Insert creates a new user
func (m *UserModel) Insert(user *User) error {
	query := `
		INSERT INTO users (name, email, password_hash, avatar)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at
	`

	args := []interface{}{user.Name, user.Email, user.Password.hash, user.Avatar}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.email"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	return nil
}

// GetByEmail retrieves a user by email
func (m *UserModel) GetByEmail(email string) (*User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, avatar
		FROM users
		WHERE email = ?
	`

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.hash,
		&user.Avatar,
	)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}

// GetByID retrieves a user by ID
func (m *UserModel) GetByID(id int) (*User, error) {
	query := `
		SELECT id, created_at, name, email, password_hash, avatar
		FROM users
		WHERE id = ?
	`

	var user User

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := m.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.CreatedAt,
		&user.Name,
		&user.Email,
		&user.Password.hash,
		&user.Avatar,
	)

	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return &user, nil
}

// Update persists profile changes for a user
func (m *UserModel) Update(user *User) error {
	query := `
		UPDATE users
		SET name = ?, email = ?, avatar = ?
		WHERE id = ?
	`

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	result, err := m.db.ExecContext(ctx, query, user.Name, user.Email, user.Avatar, user.ID)
	if err != nil {
		switch {
		case strings.Contains(err.Error(), "UNIQUE constraint failed: users.email"):
			return ErrDuplicateEmail
		default:
			return err
		}
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrRecordNotFound
	}

	return nil
}
