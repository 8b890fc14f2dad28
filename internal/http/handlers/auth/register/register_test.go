package register

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/adblockpro/backend/internal/lib/logger"
	"github.com/adblockpro/backend/internal/models"
	"github.com/adblockpro/backend/internal/services/auth"
	"github.com/adblockpro/backend/internal/storage/repository"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Register(ctx context.Context, name, email, password string) (*models.User, *auth.TokenPair, error) {
	args := m.Called(ctx, name, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*auth.TokenPair), args.Error(2)
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "successful registration",
			body: `{"name":"Alice","email":"alice@example.com","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").
					Return(
						&models.User{UID: "uid-1", Email: "alice@example.com", Name: "Alice"},
						&auth.TokenPair{Token: "access", RefreshToken: "refresh"},
						nil,
					).Once()
			},
			expectedStatus: http.StatusCreated,
			expectedBody:   `"refreshToken":"refresh"`,
		},
		{
			name: "duplicate email",
			body: `{"name":"Alice","email":"alice@example.com","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").
					Return(nil, nil, repository.ErrEmailTaken).Once()
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"User already exists"`,
		},
		{
			name:           "missing password",
			body:           `{"name":"Alice","email":"alice@example.com"}`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `"success":false`,
		},
		{
			name:           "malformed json",
			body:           `{`,
			setupMock:      func(*MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"message":"invalid request body"`,
		},
		{
			name: "internal error",
			body: `{"name":"Alice","email":"alice@example.com","password":"password123"}`,
			setupMock: func(m *MockService) {
				m.On("Register", mock.Anything, "Alice", "alice@example.com", "password123").
					Return(nil, nil, errors.New("db down")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"message":"internal error"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger.Discard(), mockService)

			req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(tt.body))
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
