package user

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/aidanlowson/notify-dispatch/internal/api/respond"
	"github.com/aidanlowson/notify-dispatch/internal/model"
	"github.com/aidanlowson/notify-dispatch/internal/repository/user"
	usersvc "github.com/aidanlowson/notify-dispatch/internal/service/user"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/user/mock.go -package=mocks
type userService interface {
	CreateUser(ctx context.Context, user model.User) (uuid.UUID, error)
	GetAllUsers(ctx context.Context) ([]model.User, error)
}

// Handler handles HTTP requests for the recipient registry.
type Handler struct {
	service   userService
	validator *validator.Validate
}

// NewHandler creates a new Handler instance.
func NewHandler(s userService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// CreateRequest represents the JSON body expected when registering a user.
type CreateRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	Number string `json:"number" validate:"omitempty"`
}

// Create handles HTTP POST requests to register a new user. At least one of
// email or number must be provided.
func (h *Handler) Create(c *ginext.Context) {
	var req CreateRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	u := model.User{
		Email:  req.Email,
		Number: req.Number,
	}

	id, err := h.service.CreateUser(c.Request.Context(), u)
	if err != nil {
		if errors.Is(err, usersvc.ErrMissingContact) {
			zlog.Logger.Warn().Err(err).Msg("user has no contact fields")
			respond.Fail(c.Writer, http.StatusBadRequest, err)
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to create user")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, id)
}

// GetAll handles HTTP GET requests to retrieve all registered users.
func (h *Handler) GetAll(c *ginext.Context) {
	users, err := h.service.GetAllUsers(c.Request.Context())
	if err != nil {
		if errors.Is(err, user.ErrNoUsersFound) {
			zlog.Logger.Warn().Err(err).Msg("no users found")
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("no users found"))
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to get users")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, users)
}
