package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/eaglebank/ledger/shared/cqrs"
)

func TestLogin(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		loginFn        func(cqrs.LoginCommand) (string, error)
		expectedStatus int
	}{
		{
			name:           "success",
			body:           map[string]string{"email": "operator@eaglebank.local", "password": "s3cret"},
			loginFn:        func(cqrs.LoginCommand) (string, error) { return "token", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - invalid email",
			body:           map[string]string{"email": "operator", "password": "s3cret"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong credentials",
			body:           map[string]string{"email": "operator@eaglebank.local", "password": "nope"},
			loginFn:        func(cqrs.LoginCommand) (string, error) { return "", errors.New("invalid credentials") },
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.auth.loginFn = tt.loginFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodPost, "/v1/auth/login", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestRefreshToken(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		refreshFn      func(cqrs.RefreshTokenCommand) (string, error)
		expectedStatus int
	}{
		{
			name:           "success",
			body:           map[string]string{"token": "old"},
			refreshFn:      func(cqrs.RefreshTokenCommand) (string, error) { return "new", nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - missing token",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "expired token",
			body:           map[string]string{"token": "old"},
			refreshFn:      func(cqrs.RefreshTokenCommand) (string, error) { return "", errors.New("invalid token") },
			expectedStatus: http.StatusUnauthorized,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.auth.refreshFn = tt.refreshFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodPost, "/v1/auth/refresh", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
