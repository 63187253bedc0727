package query

import (
	"errors"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/utils"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
)

// AuthConfig describes the single back-office operator allowed to call the
// API. An empty PasswordHash disables login.
type AuthConfig struct {
	OperatorEmail string
	PasswordHash  string
	Secret        []byte
	TokenTTL      time.Duration
}

// AuthQueryService handles login and token refresh. There's no CommandService
// for auth because these operations don't mutate ledger state.
type AuthQueryService struct {
	cfg AuthConfig
}

func NewAuthQueryService(cfg AuthConfig) *AuthQueryService {
	return &AuthQueryService{cfg: cfg}
}

func (s *AuthQueryService) Login(cmd cqrs.LoginCommand) (string, error) {
	if s.cfg.PasswordHash == "" || cmd.Email != s.cfg.OperatorEmail {
		return "", ErrInvalidCredentials
	}
	if !utils.CheckPassword(cmd.Password, s.cfg.PasswordHash) {
		return "", ErrInvalidCredentials
	}
	return middleware.SignToken(s.cfg.Secret, cmd.Email, s.cfg.TokenTTL)
}

func (s *AuthQueryService) RefreshToken(cmd cqrs.RefreshTokenCommand) (string, error) {
	claims, err := middleware.ParseToken(s.cfg.Secret, cmd.Token)
	if err != nil {
		return "", ErrInvalidToken
	}
	return middleware.SignToken(s.cfg.Secret, claims.Email, s.cfg.TokenTTL)
}
