package handler

import (
	"net/http"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/gin-gonic/gin"
)

// AuthQuerier defines the read-side operations used by AuthHandler.
type AuthQuerier interface {
	Login(cqrs.LoginCommand) (string, error)
	RefreshToken(cqrs.RefreshTokenCommand) (string, error)
}

// AuthHandler handles operator login and token refresh.
type AuthHandler struct {
	queries AuthQuerier
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RefreshTokenRequest struct {
	Token string `json:"token" validate:"required"`
}

type AuthResponse struct {
	Token string `json:"token"`
}

func NewAuthHandler(queries AuthQuerier) *AuthHandler {
	return &AuthHandler{queries: queries}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.Login(cqrs.LoginCommand{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid credentials")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	token, err := h.queries.RefreshToken(cqrs.RefreshTokenCommand{
		Token: req.Token,
	})
	if err != nil {
		middleware.RespondWithError(c, http.StatusUnauthorized, "unauthorized", "Invalid token")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{Token: token})
}
