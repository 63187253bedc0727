package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
)

// CustomerCommander defines the write-side operations used by CustomerHandler.
type CustomerCommander interface {
	CreateCustomer(context.Context, cqrs.CreateCustomerCommand) (*models.CustomerView, error)
	UpdateCustomer(context.Context, cqrs.UpdateCustomerCommand) (*models.CustomerView, error)
	DeleteCustomer(context.Context, cqrs.DeleteCustomerCommand) error
}

// CustomerQuerier defines the read-side operations used by CustomerHandler.
type CustomerQuerier interface {
	GetCustomer(context.Context, cqrs.GetCustomerQuery) (*models.CustomerView, error)
	ListCustomers(context.Context, cqrs.ListCustomersQuery) ([]models.CustomerView, error)
}

// CustomerHandler handles customer-related HTTP requests.
type CustomerHandler struct {
	commands CustomerCommander
	queries  CustomerQuerier
}

// CustomerRequest is the body of both create and update; an update replaces
// every field.
type CustomerRequest struct {
	IdentificationType   string `json:"identificationType" validate:"required,max=10"`
	IdentificationNumber string `json:"identificationNumber" validate:"required,max=20"`
	FirstName            string `json:"firstName" validate:"required,max=100"`
	LastName             string `json:"lastName" validate:"required,max=100"`
	Email                string `json:"email" validate:"required,email"`
	BirthDate            string `json:"birthDate" validate:"required,datetime=2006-01-02"`
}

type ListCustomersResponse struct {
	Customers []models.CustomerView `json:"customers"`
}

func NewCustomerHandler(commands CustomerCommander, queries CustomerQuerier) *CustomerHandler {
	return &CustomerHandler{commands: commands, queries: queries}
}

// bind decodes and validates a CustomerRequest, answering 400 on failure.
func (h *CustomerHandler) bind(c *gin.Context) (*CustomerRequest, time.Time, bool) {
	var req CustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return nil, time.Time{}, false
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return nil, time.Time{}, false
	}
	// Already checked by the datetime tag.
	birthDate, _ := time.Parse(models.DateLayout, req.BirthDate)
	return &req, birthDate, true
}

func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	req, birthDate, ok := h.bind(c)
	if !ok {
		return
	}

	view, err := h.commands.CreateCustomer(c.Request.Context(), cqrs.CreateCustomerCommand{
		IdentificationType:   req.IdentificationType,
		IdentificationNumber: req.IdentificationNumber,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		BirthDate:            birthDate,
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to create customer")
		return
	}

	c.JSON(http.StatusCreated, view)
}

func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	views, err := h.queries.ListCustomers(c.Request.Context(), cqrs.ListCustomersQuery{})
	if err != nil {
		respondWithDomainError(c, err, "Failed to list customers")
		return
	}
	c.JSON(http.StatusOK, ListCustomersResponse{Customers: views})
}

func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c, "customerId")
	if !ok {
		return
	}

	view, err := h.queries.GetCustomer(c.Request.Context(), cqrs.GetCustomerQuery{CustomerID: id})
	if err != nil {
		respondWithDomainError(c, err, "Failed to fetch customer")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c, "customerId")
	if !ok {
		return
	}
	req, birthDate, ok := h.bind(c)
	if !ok {
		return
	}

	view, err := h.commands.UpdateCustomer(c.Request.Context(), cqrs.UpdateCustomerCommand{
		CustomerID:           id,
		IdentificationType:   req.IdentificationType,
		IdentificationNumber: req.IdentificationNumber,
		FirstName:            req.FirstName,
		LastName:             req.LastName,
		Email:                req.Email,
		BirthDate:            birthDate,
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to update customer")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c, "customerId")
	if !ok {
		return
	}

	if err := h.commands.DeleteCustomer(c.Request.Context(), cqrs.DeleteCustomerCommand{CustomerID: id}); err != nil {
		respondWithDomainError(c, err, "Failed to delete customer")
		return
	}
	c.Status(http.StatusNoContent)
}
