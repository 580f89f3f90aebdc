package toggle

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/license-server/internal/models"
)

// MockService реализует интерфейс toggle.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) ToggleFree(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockService) ToggleLockdown(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func TestToggleHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		form           url.Values
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "включение бесплатного режима",
			form: url.Values{"token": {"admin"}, "what": {"free"}},
			setupMock: func(m *MockService) {
				m.On("ToggleFree", mock.Anything, "admin").Return(true, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"enabled":true`,
		},
		{
			name: "выключение lockdown",
			form: url.Values{"token": {"admin"}, "what": {"lock"}},
			setupMock: func(m *MockService) {
				m.On("ToggleLockdown", mock.Anything, "admin").Return(false, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"enabled":false`,
		},
		{
			name: "неверный токен",
			form: url.Values{"token": {"wrong"}, "what": {"free"}},
			setupMock: func(m *MockService) {
				m.On("ToggleFree", mock.Anything, "wrong").Return(false, models.ErrForbidden)
			},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `bad admin token`,
		},
		{
			name:           "неизвестный режим",
			form:           url.Values{"token": {"admin"}, "what": {"maintenance"}},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `unknown toggle target`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/admin/toggle", strings.NewReader(tt.form.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
