package command

import (
	"context"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/eaglebank/ledger/shared/utils"
)

// AccountCommandService opens accounts and moves them between statuses.
type AccountCommandService struct {
	store         repository.Store
	views         AccountViewCache
	customerViews CustomerViewCache
	publisher     events.Emitter
	rand          io.Reader
}

func NewAccountCommandService(
	store repository.Store,
	views AccountViewCache,
	customerViews CustomerViewCache,
	publisher events.Emitter,
) *AccountCommandService {
	return &AccountCommandService{
		store:         store,
		views:         views,
		customerViews: customerViews,
		publisher:     publisher,
		rand:          rand.Reader,
	}
}

// CreateAccount opens an account with a zero balance for an existing
// customer. A collision on the generated number fails the request with a
// duplicate identity error; it is not retried.
func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.AccountView, error) {
	accountType, err := ledger.ParseAccountType(cmd.AccountType)
	if err != nil {
		return nil, err
	}
	t := now()

	var view *models.AccountView
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		owner, err := tx.Customers().FindByIDForUpdate(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		number, err := utils.GenerateAccountNumber(s.rand, accountType)
		if err != nil {
			return fmt.Errorf("failed to allocate account number: %w", err)
		}
		account := ledger.OpenAccount(owner.ID, accountType, number, cmd.GMFExempt, t)
		if err := tx.Accounts().Save(ctx, &account); err != nil {
			return err
		}
		view = models.AccountToView(&account, owner.FullName())
		return nil
	})
	if err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	s.customerViews.InvalidateCustomerView(bg, view.CustomerID)
	publish(bg, s.publisher, events.AccountEventsStream, events.AccountCreated, events.AccountCreatedEvent{
		AccountID:     view.ID,
		AccountNumber: view.AccountNumber,
		CustomerID:    view.CustomerID,
		AccountType:   string(view.AccountType),
	})
	return view, nil
}

func (s *AccountCommandService) ChangeStatus(ctx context.Context, cmd cqrs.ChangeAccountStatusCommand) (*models.AccountView, error) {
	status, err := ledger.ParseAccountStatus(cmd.Status)
	if err != nil {
		return nil, err
	}
	return s.changeStatus(ctx, cmd.AccountID, status)
}

// CancelAccount is ChangeStatus to CANCELLED; the balance must be zero.
func (s *AccountCommandService) CancelAccount(ctx context.Context, cmd cqrs.CancelAccountCommand) error {
	_, err := s.changeStatus(ctx, cmd.AccountID, models.AccountStatusCancelled)
	return err
}

func (s *AccountCommandService) changeStatus(ctx context.Context, accountID int64, status models.AccountStatus) (*models.AccountView, error) {
	t := now()

	var (
		view     *models.AccountView
		previous models.AccountStatus
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		account, err := tx.Accounts().FindByIDForUpdate(ctx, accountID)
		if err != nil {
			return err
		}
		previous = account.Status
		changed, err := ledger.WithStatus(*account, status, t)
		if err != nil {
			return err
		}
		if err := tx.Accounts().Save(ctx, &changed); err != nil {
			return err
		}
		owner, err := tx.Customers().FindByID(ctx, changed.CustomerID)
		if err != nil {
			return err
		}
		view = models.AccountToView(&changed, owner.FullName())
		return nil
	})
	if err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	s.views.InvalidateAccountView(bg, view.ID, view.AccountNumber)
	if previous != status {
		publish(bg, s.publisher, events.AccountEventsStream, events.AccountStatusChanged, events.AccountStatusChangedEvent{
			AccountID:     view.ID,
			AccountNumber: view.AccountNumber,
			CustomerID:    view.CustomerID,
			From:          string(previous),
			To:            string(status),
		})
	}
	return view, nil
}

// HandleAccountViewEvent drops the cached view of an account whose balance or
// status changed. Commands already invalidate after commit; a reader that
// loaded the row before that commit may have written it back since.
func (s *AccountCommandService) HandleAccountViewEvent(ctx context.Context, event events.Event) error {
	var (
		id     int64
		number string
	)
	switch event.Type {
	case events.BalanceUpdated:
		var data events.BalanceUpdatedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		id, number = data.AccountID, data.AccountNumber
	case events.AccountStatusChanged:
		var data events.AccountStatusChangedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		id, number = data.AccountID, data.AccountNumber
	default:
		return nil
	}
	s.views.InvalidateAccountView(ctx, id, number)
	return nil
}
