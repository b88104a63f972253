package user

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	mocks "github.com/aidanlowson/notify-dispatch/internal/mocks/api/handlers/user"
	"github.com/aidanlowson/notify-dispatch/internal/model"
	usersvc "github.com/aidanlowson/notify-dispatch/internal/service/user"
)

func setupHandler(t *testing.T) (*Handler, *mocks.MockuserService) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockService := mocks.NewMockuserService(ctrl)
	handler := NewHandler(mockService, validator.New())
	return handler, mockService
}

func TestHandler_Create_Success(t *testing.T) {
	handler, mockService := setupHandler(t)

	bodyBytes, _ := json.Marshal(CreateRequest{Email: "a@b.com"})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	id := uuid.New()
	mockService.EXPECT().
		CreateUser(gomock.Any(), model.User{Email: "a@b.com"}).
		Return(id, nil)

	handler.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestHandler_Create_MissingContact(t *testing.T) {
	handler, mockService := setupHandler(t)

	bodyBytes, _ := json.Marshal(CreateRequest{})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	mockService.EXPECT().
		CreateUser(gomock.Any(), model.User{}).
		Return(uuid.Nil, usersvc.ErrMissingContact)

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_Create_InvalidEmail(t *testing.T) {
	handler, _ := setupHandler(t)

	bodyBytes, _ := json.Marshal(CreateRequest{Email: "not-an-email"})
	req := httptest.NewRequest(http.MethodPost, "/api/users", bytes.NewReader(bodyBytes))
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	handler.Create(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetAll_Success(t *testing.T) {
	handler, mockService := setupHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	w := httptest.NewRecorder()

	c, _ := gin.CreateTestContext(w)
	c.Request = req

	users := []model.User{
		{ID: uuid.New(), Email: "a@b.com", CreatedAt: time.Now().UTC()},
	}

	mockService.EXPECT().GetAllUsers(gomock.Any()).Return(users, nil)

	handler.GetAll(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
