package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthMiddleware(t *testing.T) {
	validToken := "test-token-123"
	middleware := AuthMiddleware(validToken)

	tests := []struct {
		name           string
		path           string
		token          string
		handlerCalled  bool
		expectedStatus int
		expectedErrMsg string
	}{
		{
			name:           "Valid Token",
			path:           "/api/goals",
			token:          validToken,
			handlerCalled:  true,
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid Token",
			path:           "/api/goals",
			token:          "wrong-token",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "invalid token",
		},
		{
			name:           "Missing Authorization Header",
			path:           "/api/goals",
			token:          "",
			handlerCalled:  false,
			expectedStatus: http.StatusUnauthorized,
			expectedErrMsg: "missing authorization header",
		},
		{
			name:           "Health Endpoint Stays Open",
			path:           "/health",
			token:          "",
			handlerCalled:  true,
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", tt.token)
			}

			rec := httptest.NewRecorder()
			middleware(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.handlerCalled, handlerCalled)
			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedErrMsg != "" {
				assert.Contains(t, rec.Body.String(), tt.expectedErrMsg)
			}
		})
	}
}
