package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

var ErrNoUsersFound = errors.New("no users found")

// Repository provides access to the users table.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new user repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user and returns its ID.
func (r *Repository) CreateUser(ctx context.Context, user model.User) (uuid.UUID, error) {
	query := `
		INSERT INTO users (
		    email, number
		) VALUES ($1, $2)
		RETURNING id;
    `

	err := r.db.Master.QueryRowContext(ctx, query, user.Email, user.Number).Scan(&user.ID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user.ID, nil
}

// GetAllUsers retrieves all users ordered by creation time descending.
func (r *Repository) GetAllUsers(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT id, email, number, created_at
		FROM users
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Email, &u.Number, &u.CreatedAt); err != nil {
			return nil, err
		}

		users = append(users, u)
	}

	if len(users) == 0 {
		return nil, ErrNoUsersFound
	}

	return users, nil
}
