package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/eaglebank/ledger/internal/statement"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/middleware"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// TransactionCommander defines the write-side operations used by TransactionHandler.
type TransactionCommander interface {
	CreateTransaction(context.Context, cqrs.CreateTransactionCommand) (*models.Transaction, error)
}

// TransactionQuerier defines the read-side operations used by TransactionHandler.
type TransactionQuerier interface {
	GetTransaction(context.Context, cqrs.GetTransactionQuery) (*models.TransactionView, error)
	ListTransactions(context.Context, cqrs.ListTransactionsQuery) ([]models.TransactionView, error)
	Statement(context.Context, cqrs.StatementQuery) (*statement.File, error)
}

type TransactionHandler struct {
	commands TransactionCommander
	queries  TransactionQuerier
}

// CreateTransactionRequest carries the source for withdrawals and transfers
// and the destination for deposits and transfers.
type CreateTransactionRequest struct {
	TransactionType          string          `json:"transactionType" validate:"required,oneof=DEPOSIT WITHDRAWAL TRANSFER"`
	Amount                   decimal.Decimal `json:"amount" validate:"decimalgt0"`
	SourceAccountNumber      string          `json:"sourceAccountNumber" validate:"omitempty,accountnumber"`
	DestinationAccountNumber string          `json:"destinationAccountNumber" validate:"omitempty,accountnumber"`
}

type ListTransactionsResponse struct {
	Transactions []models.TransactionView `json:"transactions"`
}

func NewTransactionHandler(commands TransactionCommander, queries TransactionQuerier) *TransactionHandler {
	return &TransactionHandler{commands: commands, queries: queries}
}

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondInvalidBody(c)
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	transaction, err := h.commands.CreateTransaction(c.Request.Context(), cqrs.CreateTransactionCommand{
		Type:                     req.TransactionType,
		Amount:                   req.Amount,
		SourceAccountNumber:      req.SourceAccountNumber,
		DestinationAccountNumber: req.DestinationAccountNumber,
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to create transaction")
		return
	}

	c.JSON(http.StatusCreated, models.TransactionToView(transaction))
}

func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	id, ok := pathID(c, "transactionId")
	if !ok {
		return
	}

	view, err := h.queries.GetTransaction(c.Request.Context(), cqrs.GetTransactionQuery{TransactionID: id})
	if err != nil {
		respondWithDomainError(c, err, "Failed to fetch transaction")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	views, err := h.queries.ListTransactions(c.Request.Context(), cqrs.ListTransactionsQuery{
		AccountNumber: c.Param("accountNumber"),
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, ListTransactionsResponse{Transactions: views})
}

// Statement serves the account's log as a file download; format defaults to pdf.
func (h *TransactionHandler) Statement(c *gin.Context) {
	file, err := h.queries.Statement(c.Request.Context(), cqrs.StatementQuery{
		AccountNumber: c.Param("accountNumber"),
		Format:        c.DefaultQuery("format", string(statement.FormatPDF)),
	})
	if err != nil {
		respondWithDomainError(c, err, "Failed to render statement")
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
