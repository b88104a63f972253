// Package dispatch contains the consumer-side core of the notification
// pipeline: it turns raw queue message bodies into durable notification
// records and channel sends, reporting a per-message outcome that the worker
// maps onto queue acknowledgements.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/model"
)

// emailSubject is the subject line for every email notification.
const emailSubject = "New Notification"

// Status is the terminal state of one processed message.
type Status int

const (
	// StatusDispatched - record written and channel send succeeded.
	StatusDispatched Status = iota
	// StatusSkippedMalformed - body did not parse; consumed without retry,
	// a structurally malformed message can never become valid.
	StatusSkippedMalformed
	// StatusSkippedInvalid - required field missing or type unrecognized;
	// consumed without retry.
	StatusSkippedInvalid
	// StatusFailedPersistence - record write failed; eligible for redelivery.
	StatusFailedPersistence
	// StatusFailedChannel - provider send failed; eligible for redelivery.
	StatusFailedChannel
)

// Ack reports whether the message should be acknowledged to the queue.
// Only transport-layer failures are redelivered; business-invalid messages
// are consumed.
func (s Status) Ack() bool {
	return s != StatusFailedPersistence && s != StatusFailedChannel
}

// Outcome is the result of processing a single queue message.
type Outcome struct {
	Status   Status
	RecordID uuid.UUID // set once a record was written
	Err      error
}

//go:generate mockgen -source=dispatcher.go -destination=../mocks/dispatch/mock.go -package=mocks

// recordStore is the durable append-only store of notification records.
type recordStore interface {
	CreateRecord(ctx context.Context, record model.NotificationRecord) error
}

// EmailSender delivers a message over email on behalf of a sender identity.
type EmailSender interface {
	SendEmail(ctx context.Context, source, destination, subject, body string) error
}

// SMSSender delivers a message to a phone number over SMS.
type SMSSender interface {
	SendSMS(ctx context.Context, destination, body string) error
}

// PushSender delivers a push message to a device address.
type PushSender interface {
	SendPush(ctx context.Context, destination, body string) error
}

// Providers bundles one sender per channel. All three must be set; a channel
// without real delivery still gets an explicit no-op implementation so the
// dispatch switch stays exhaustive.
type Providers struct {
	Email EmailSender
	SMS   SMSSender
	Push  PushSender
}

// Config carries dispatcher settings resolved at startup.
type Config struct {
	SenderIdentity string // verified outbound email address
	Strategy       retry.Strategy
	StoreTimeout   time.Duration
	ChannelTimeout time.Duration
}

const (
	defaultStoreTimeout   = 5 * time.Second
	defaultChannelTimeout = 10 * time.Second
)

// Dispatcher processes batches of queued notification requests.
type Dispatcher struct {
	store     recordStore
	providers Providers
	cfg       Config
}

// New creates a Dispatcher. Missing required configuration is a startup
// error: the caller must refuse to run rather than fail per-message.
func New(store recordStore, providers Providers, cfg Config) (*Dispatcher, error) {
	if store == nil {
		return nil, errors.New("record store is required")
	}
	if providers.Email == nil || providers.SMS == nil || providers.Push == nil {
		return nil, errors.New("all channel providers are required")
	}
	if cfg.SenderIdentity == "" {
		return nil, errors.New("sender identity is required")
	}

	if cfg.Strategy.Attempts < 1 {
		cfg.Strategy.Attempts = 1
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = defaultChannelTimeout
	}

	return &Dispatcher{store: store, providers: providers, cfg: cfg}, nil
}

// ProcessBatch processes every message body independently and returns one
// outcome per body, positionally. Failure of one message never aborts its
// siblings; concurrency within the batch is bounded by the batch size.
func (d *Dispatcher) ProcessBatch(ctx context.Context, bodies [][]byte) []Outcome {
	outcomes := make([]Outcome, len(bodies))

	var wg sync.WaitGroup
	wg.Add(len(bodies))

	for i, body := range bodies {
		go func(i int, body []byte) {
			defer wg.Done()
			outcomes[i] = d.process(ctx, body)
		}(i, body)
	}

	wg.Wait()
	return outcomes
}

func (d *Dispatcher) process(ctx context.Context, body []byte) Outcome {
	var req model.NotificationRequest
	if err := json.Unmarshal(body, &req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("dropping malformed message")
		return Outcome{Status: StatusSkippedMalformed, Err: err}
	}

	if err := req.Validate(); err != nil {
		zlog.Logger.Warn().Err(err).Str("user_id", req.UserID).Msg("dropping invalid message")
		return Outcome{Status: StatusSkippedInvalid, Err: err}
	}

	// The record is written before the send so that every channel attempt
	// has a traceable provenance entry. Redelivery after a later failure
	// writes a fresh record with a new ID; duplicates are tolerated.
	record := model.NotificationRecord{
		ID:        uuid.New(),
		UserID:    req.UserID,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}

	if err := d.appendRecord(ctx, record); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to persist notification record")
		return Outcome{Status: StatusFailedPersistence, Err: err}
	}

	if err := d.send(ctx, req); err != nil {
		zlog.Logger.Error().
			Err(err).
			Str("record_id", record.ID.String()).
			Str("channel", string(req.Type)).
			Msg("failed to deliver notification")
		return Outcome{Status: StatusFailedChannel, RecordID: record.ID, Err: err}
	}

	zlog.Logger.Info().
		Str("record_id", record.ID.String()).
		Str("channel", string(req.Type)).
		Msg("notification dispatched")

	return Outcome{Status: StatusDispatched, RecordID: record.ID}
}

func (d *Dispatcher) appendRecord(ctx context.Context, record model.NotificationRecord) error {
	storeCtx, cancel := context.WithTimeout(ctx, d.cfg.StoreTimeout)
	defer cancel()

	if err := d.store.CreateRecord(storeCtx, record); err != nil {
		return fmt.Errorf("create record: %w", err)
	}

	return nil
}

// send routes the request to its channel provider. The switch is exhaustive
// over the type enum; Validate has already rejected anything else.
func (d *Dispatcher) send(ctx context.Context, req model.NotificationRequest) error {
	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.ChannelTimeout)
	defer cancel()

	return retry.Do(func() error {
		select {
		case <-sendCtx.Done():
			return sendCtx.Err()
		default:
		}

		switch req.Type {
		case model.TypeEmail:
			return d.providers.Email.SendEmail(sendCtx, d.cfg.SenderIdentity, req.Email, emailSubject, req.Message)
		case model.TypeSMS:
			return d.providers.SMS.SendSMS(sendCtx, req.Number, req.Message)
		case model.TypePush:
			return d.providers.Push.SendPush(sendCtx, req.Number, req.Message)
		default:
			return fmt.Errorf("unrecognized type %q", req.Type)
		}
	}, d.cfg.Strategy)
}
