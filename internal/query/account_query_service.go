package query

import (
	"context"

	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

type AccountQueryService struct {
	readRepo *repository.AccountReadRepository
}

func NewAccountQueryService(readRepo *repository.AccountReadRepository) *AccountQueryService {
	return &AccountQueryService{readRepo: readRepo}
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.AccountView, error) {
	return s.readRepo.GetByID(ctx, q.AccountID)
}

func (s *AccountQueryService) GetAccountByNumber(ctx context.Context, q cqrs.GetAccountByNumberQuery) (*models.AccountView, error) {
	return s.readRepo.GetByAccountNumber(ctx, q.AccountNumber)
}

// ListAccounts fails with a not found error for an unknown customer and
// returns an empty list for a customer without accounts.
func (s *AccountQueryService) ListAccounts(ctx context.Context, q cqrs.ListAccountsQuery) ([]models.AccountView, error) {
	return s.readRepo.ListByCustomer(ctx, q.CustomerID)
}
