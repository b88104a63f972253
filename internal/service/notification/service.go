package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

// ErrEnqueueTransport marks a queue submission failure. It is retryable
// from the caller's point of view; no state has been created.
var ErrEnqueueTransport = errors.New("enqueue transport failure")

//go:generate mockgen -source=service.go -destination=../../mocks/service/notification/mock.go -package=mocks

type notificationPublisher interface {
	Publish(req model.NotificationRequest, strategy retry.Strategy) error
}

type recordRepository interface {
	GetRecordByID(ctx context.Context, id uuid.UUID) (model.NotificationRecord, error)
	GetAllRecords(ctx context.Context) ([]model.NotificationRecord, error)
}

type cache interface {
	SetWithRetry(ctx context.Context, strategy retry.Strategy, key string, value interface{}) error
	GetWithRetry(ctx context.Context, strategy retry.Strategy, key string) (string, error)
}

// Service is the producer-side surface of the pipeline: it enqueues
// notification requests and serves record reads for reporting.
type Service struct {
	repo  recordRepository
	queue notificationPublisher
	cache cache
}

// NewService creates a notification Service.
func NewService(repo recordRepository, queue notificationPublisher, cache cache) *Service {
	return &Service{repo: repo, queue: queue, cache: cache}
}

// Enqueue submits a notification request to the queue. Deeper validation is
// deferred to the dispatcher; the queue boundary is the retry boundary.
func (s *Service) Enqueue(ctx context.Context, strategy retry.Strategy, req model.NotificationRequest) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if err := s.queue.Publish(req, strategy); err != nil {
		return fmt.Errorf("%w: %v", ErrEnqueueTransport, err)
	}

	return nil
}

// GetRecordByID returns a single notification record, reading through the
// cache. Records are immutable, so cached entries never go stale.
func (s *Service) GetRecordByID(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.NotificationRecord, error) {
	cached, err := s.cache.GetWithRetry(ctx, strategy, id.String())
	if err != nil && !errors.Is(err, redis.Nil) {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get record from cache")
	}

	if err == nil {
		var record model.NotificationRecord
		if unmarshalErr := json.Unmarshal([]byte(cached), &record); unmarshalErr == nil {
			return record, nil
		}

		zlog.Logger.Warn().Str("id", id.String()).Msg("unreadable cache entry, falling back to store")
	}

	record, err := s.repo.GetRecordByID(ctx, id)
	if err != nil {
		return model.NotificationRecord{}, fmt.Errorf("get record: %w", err)
	}

	if data, marshalErr := json.Marshal(record); marshalErr == nil {
		if cacheErr := s.cache.SetWithRetry(ctx, strategy, id.String(), string(data)); cacheErr != nil {
			zlog.Logger.Error().Err(cacheErr).Str("id", id.String()).Msg("failed to cache record")
		}
	}

	return record, nil
}

// GetAllRecords returns all notification records.
func (s *Service) GetAllRecords(ctx context.Context) ([]model.NotificationRecord, error) {
	records, err := s.repo.GetAllRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("get all records: %w", err)
	}

	return records, nil
}
