package query

import (
	"context"

	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/internal/statement"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

type TransactionQueryService struct {
	readRepo *repository.TransactionReadRepository
}

func NewTransactionQueryService(readRepo *repository.TransactionReadRepository) *TransactionQueryService {
	return &TransactionQueryService{readRepo: readRepo}
}

func (s *TransactionQueryService) GetTransaction(ctx context.Context, q cqrs.GetTransactionQuery) (*models.TransactionView, error) {
	return s.readRepo.GetByID(ctx, q.TransactionID)
}

// ListTransactions returns every record touching the account, oldest first.
// An unknown account number yields an empty list.
func (s *TransactionQueryService) ListTransactions(ctx context.Context, q cqrs.ListTransactionsQuery) ([]models.TransactionView, error) {
	return s.readRepo.ListByAccountNumber(ctx, q.AccountNumber)
}

// Statement renders the account's full log. The header balance comes from the
// same locked read as the lines, never from the view cache. Unlike
// ListTransactions, an unknown account is a not found error.
func (s *TransactionQueryService) Statement(ctx context.Context, q cqrs.StatementQuery) (*statement.File, error) {
	format, err := statement.ParseFormat(q.Format)
	if err != nil {
		return nil, err
	}
	account, transactions, err := s.readRepo.AccountLog(ctx, q.AccountNumber)
	if err != nil {
		return nil, err
	}
	return statement.Render(&statement.Statement{
		Account:      *account,
		Transactions: transactions,
		GeneratedAt:  now(),
	}, format)
}
