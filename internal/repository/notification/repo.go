package notification

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/dbpg"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

var (
	ErrRecordNotFound = errors.New("notification record not found")
	ErrNoRecordsFound = errors.New("no notification records found")
)

// Repository provides access to the notifications table. The table is
// append-only: records are inserted once and never updated or deleted.
type Repository struct {
	db *dbpg.DB
}

// NewRepository creates a new notification record repository.
func NewRepository(db *dbpg.DB) *Repository {
	return &Repository{db: db}
}

// CreateRecord appends a notification record.
func (r *Repository) CreateRecord(ctx context.Context, record model.NotificationRecord) error {
	query := `
		INSERT INTO notifications (
		    id, user_id, type, created_at
		) VALUES ($1, $2, $3, $4);
    `

	_, err := r.db.ExecContext(ctx, query, record.ID, record.UserID, string(record.Type), record.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create notification record: %w", err)
	}

	return nil
}

// GetRecordByID retrieves a notification record by its ID.
func (r *Repository) GetRecordByID(ctx context.Context, id uuid.UUID) (model.NotificationRecord, error) {
	query := `
		SELECT id, user_id, type, created_at
		FROM notifications
		WHERE id = $1;
    `

	var record model.NotificationRecord
	err := r.db.Master.QueryRowContext(ctx, query, id).Scan(&record.ID, &record.UserID, &record.Type, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.NotificationRecord{}, ErrRecordNotFound
		}

		return model.NotificationRecord{}, fmt.Errorf("failed to get notification record: %w", err)
	}

	return record, nil
}

// GetAllRecords retrieves all notification records ordered by creation time descending.
func (r *Repository) GetAllRecords(ctx context.Context) ([]model.NotificationRecord, error) {
	query := `
		SELECT id, user_id, type, created_at
		FROM notifications
		ORDER BY created_at DESC;
    `

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all notification records: %w", err)
	}
	defer rows.Close()

	var records []model.NotificationRecord
	for rows.Next() {
		var record model.NotificationRecord
		if err := rows.Scan(&record.ID, &record.UserID, &record.Type, &record.CreatedAt); err != nil {
			return nil, err
		}

		records = append(records, record)
	}

	if len(records) == 0 {
		return nil, ErrNoRecordsFound
	}

	return records, nil
}
