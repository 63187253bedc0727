package query

import (
	"context"

	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

type CustomerQueryService struct {
	readRepo *repository.CustomerReadRepository
}

func NewCustomerQueryService(readRepo *repository.CustomerReadRepository) *CustomerQueryService {
	return &CustomerQueryService{readRepo: readRepo}
}

func (s *CustomerQueryService) GetCustomer(ctx context.Context, q cqrs.GetCustomerQuery) (*models.CustomerView, error) {
	return s.readRepo.GetByID(ctx, q.CustomerID)
}

func (s *CustomerQueryService) ListCustomers(ctx context.Context, _ cqrs.ListCustomersQuery) ([]models.CustomerView, error) {
	return s.readRepo.ListAll(ctx)
}
