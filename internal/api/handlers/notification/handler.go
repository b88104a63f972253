package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/retry"
	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/api/respond"
	"github.com/aidanlowson/notify-dispatch/internal/config"
	"github.com/aidanlowson/notify-dispatch/internal/model"
	"github.com/aidanlowson/notify-dispatch/internal/repository/notification"
)

// notificationService defines the interface that the Handler depends on.
//
// It abstracts enqueueing notification requests and reading back the
// durable notification records.
//
//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks
type notificationService interface {
	Enqueue(ctx context.Context, strategy retry.Strategy, req model.NotificationRequest) error
	GetRecordByID(ctx context.Context, strategy retry.Strategy, id uuid.UUID) (model.NotificationRecord, error)
	GetAllRecords(ctx context.Context) ([]model.NotificationRecord, error)
}

// Handler handles HTTP requests for the notification pipeline: enqueueing
// new requests and reporting on dispatch records.
type Handler struct {
	service   notificationService
	validator *validator.Validate
	cfg       *config.Config
}

// NewHandler creates a new Handler instance.
func NewHandler(
	s notificationService,
	v *validator.Validate,
	cfg *config.Config,
) *Handler {
	return &Handler{service: s, validator: v, cfg: cfg}
}

// EnqueueRequest represents the JSON body expected when submitting a
// notification. The destination field required depends on the type.
type EnqueueRequest struct {
	Type    string `json:"type" validate:"required,oneof=email sms push"`
	UserID  string `json:"userId" validate:"required"`
	Message string `json:"message" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Number  string `json:"number" validate:"omitempty"`
}

// Enqueue handles HTTP POST requests to submit a notification request.
//
// It validates the request body and places a normalized message on the
// queue; delivery happens asynchronously.
func (h *Handler) Enqueue(c *ginext.Context) {
	var req EnqueueRequest

	// Decode JSON request body into EnqueueRequest struct.
	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	// Validate request fields using go-playground/validator.
	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	msg := model.NotificationRequest{
		Type:    model.Type(req.Type),
		UserID:  req.UserID,
		Message: req.Message,
		Email:   req.Email,
		Number:  req.Number,
	}

	if err := h.service.Enqueue(c.Request.Context(), h.cfg.Retry, msg); err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", req.UserID).Msg("failed to enqueue notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("failed to enqueue notification"))
		return
	}

	respond.Accepted(c.Writer, map[string]string{"status": "queued"})
}

// GetRecord handles HTTP GET requests to retrieve a single notification
// record by ID.
func (h *Handler) GetRecord(c *ginext.Context) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		zlog.Logger.Error().Err(err).Interface("idStr", idStr).Msg("failed to parse id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	record, err := h.service.GetRecordByID(c.Request.Context(), h.cfg.Retry, id)
	if err != nil {
		if errors.Is(err, notification.ErrRecordNotFound) {
			zlog.Logger.Warn().Interface("id", id).Err(err).Msg("record not found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("record not found"))
			return
		}

		zlog.Logger.Error().Err(err).Interface("id", id).Msg("failed to get record")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, record)
}

// GetAll handles HTTP GET requests to retrieve all notification records.
func (h *Handler) GetAll(c *ginext.Context) {
	records, err := h.service.GetAllRecords(c.Request.Context())
	if err != nil {
		if errors.Is(err, notification.ErrNoRecordsFound) {
			zlog.Logger.Warn().Err(err).Msg("no records found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("no records found"))
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to get records")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, records)
}
