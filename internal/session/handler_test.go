package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hourskill/internal/auth"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Ping(ctx context.Context, sessionID, userID int) (int, error) {
	args := m.Called(ctx, sessionID, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockService) GetOrCreate(ctx context.Context, userID, videoID int) (*WatchSession, error) {
	args := m.Called(ctx, userID, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*WatchSession), args.Error(1)
}

func TestHandler_Ping(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := new(MockService)
	svc.On("Ping", mock.Anything, 22, 7).Return(60, nil)
	svc.On("Ping", mock.Anything, 23, 7).Return(0, ErrSessionNotFound)

	router := gin.New()
	router.POST("/sessions/:sessionID/ping", func(c *gin.Context) {
		auth.SetUserID(c, 7)
		NewHandler(svc).Ping(c)
	})

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/sessions/22/ping", http.StatusOK, `{"watched_seconds":60}`},
		{"/sessions/23/ping", http.StatusNotFound, ""},
		{"/sessions/x/ping", http.StatusBadRequest, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, tt.path, nil))

			assert.Equal(t, tt.code, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}
