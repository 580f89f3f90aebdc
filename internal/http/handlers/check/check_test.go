package check

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/license-server/internal/models"
)

// MockService реализует интерфейс check.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Check(ctx context.Context, id, hwid string) (*models.Verdict, error) {
	args := m.Called(ctx, id, hwid)
	if res := args.Get(0); res != nil {
		return res.(*models.Verdict), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCheckHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name           string
		url            string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "доступ разрешён",
			url:  "/api/check?id=u1&hwid=hw1",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, "u1", "hw1").
					Return(&models.Verdict{OK: true, Remain: 3600, Online: 2}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"ok":true`,
		},
		{
			name: "отказ по lockdown остаётся 200",
			url:  "/api/check?id=u1",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, "u1", "").
					Return(&models.Verdict{Lockdown: true}, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"lockdown":true`,
		},
		{
			name: "ошибка хранилища",
			url:  "/api/check?id=u1",
			setupMock: func(m *MockService) {
				m.On("Check", mock.Anything, "u1", "").
					Return(nil, errors.New("disk gone"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not check access`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.expectedBody),
				"response body should contain %s, got %s", tt.expectedBody, w.Body.String())

			mockService.AssertExpectations(t)
		})
	}
}
