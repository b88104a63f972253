package user

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

func setupMockDB(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to open mock db: %v", err)
	}

	wrappedDB := &dbpg.DB{Master: db}
	repo := NewRepository(wrappedDB)

	return repo, mock
}

func TestCreateUser(t *testing.T) {
	repo, mock := setupMockDB(t)

	userID := uuid.New()
	u := model.User{
		Email:  "a@b.com",
		Number: "+111",
	}

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO users (
		    email, number
		) VALUES ($1, $2)
		RETURNING id;
    `)).
		WithArgs(u.Email, u.Number).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(userID))

	id, err := repo.CreateUser(context.Background(), u)
	assert.NoError(t, err)
	assert.Equal(t, userID, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllUsers(t *testing.T) {
	repo, mock := setupMockDB(t)

	u := model.User{ID: uuid.New(), Email: "a@b.com", Number: "", CreatedAt: time.Now().UTC()}

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, email, number, created_at
		FROM users
		ORDER BY created_at DESC;
    `)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "number", "created_at"}).
			AddRow(u.ID, u.Email, u.Number, u.CreatedAt))

	users, err := repo.GetAllUsers(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []model.User{u}, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetAllUsers_Empty(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`
		SELECT id, email, number, created_at
		FROM users
		ORDER BY created_at DESC;
    `)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "number", "created_at"}))

	_, err := repo.GetAllUsers(context.Background())
	assert.ErrorIs(t, err, ErrNoUsersFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
