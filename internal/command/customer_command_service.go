package command

import (
	"context"
	"fmt"
	"log"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/internal/repository"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/events"
	"github.com/eaglebank/ledger/shared/models"
)

// CustomerCommandService owns the customer lifecycle: registration, full
// replacement of the mutable fields, and deletion of customers without
// accounts.
type CustomerCommandService struct {
	store        repository.Store
	views        CustomerViewCache
	accountViews AccountViewCache
	publisher    events.Emitter
}

func NewCustomerCommandService(
	store repository.Store,
	views CustomerViewCache,
	accountViews AccountViewCache,
	publisher events.Emitter,
) *CustomerCommandService {
	return &CustomerCommandService{
		store:        store,
		views:        views,
		accountViews: accountViews,
		publisher:    publisher,
	}
}

func (s *CustomerCommandService) CreateCustomer(ctx context.Context, cmd cqrs.CreateCustomerCommand) (*models.CustomerView, error) {
	t := now()
	if err := ledger.CheckAdult(cmd.BirthDate, t); err != nil {
		return nil, err
	}

	var customer *models.Customer
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := ensureIdentityFree(ctx, tx, 0, cmd.Email, cmd.IdentificationNumber); err != nil {
			return err
		}
		customer = &models.Customer{
			IdentificationType:   cmd.IdentificationType,
			IdentificationNumber: cmd.IdentificationNumber,
			FirstName:            cmd.FirstName,
			LastName:             cmd.LastName,
			Email:                cmd.Email,
			BirthDate:            cmd.BirthDate,
			CreatedAt:            t,
			UpdatedAt:            t,
		}
		return tx.Customers().Save(ctx, customer)
	})
	if err != nil {
		return nil, err
	}

	publish(context.WithoutCancel(ctx), s.publisher, events.CustomerEventsStream, events.CustomerCreated, events.CustomerCreatedEvent{
		CustomerID: customer.ID,
		Email:      customer.Email,
		Name:       customer.FullName(),
	})
	return models.CustomerToView(customer, 0), nil
}

// UpdateCustomer replaces every mutable field in one step.
func (s *CustomerCommandService) UpdateCustomer(ctx context.Context, cmd cqrs.UpdateCustomerCommand) (*models.CustomerView, error) {
	t := now()

	var (
		customer *models.Customer
		owned    []models.Account
	)
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		c, err := tx.Customers().FindByIDForUpdate(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if err := ledger.CheckAdult(cmd.BirthDate, t); err != nil {
			return err
		}
		if err := ensureIdentityFree(ctx, tx, c.ID, cmd.Email, cmd.IdentificationNumber); err != nil {
			return err
		}
		c.IdentificationType = cmd.IdentificationType
		c.IdentificationNumber = cmd.IdentificationNumber
		c.FirstName = cmd.FirstName
		c.LastName = cmd.LastName
		c.Email = cmd.Email
		c.BirthDate = cmd.BirthDate
		c.UpdatedAt = t
		if err := tx.Customers().Save(ctx, c); err != nil {
			return err
		}
		if owned, err = tx.Accounts().FindByCustomer(ctx, c.ID); err != nil {
			return err
		}
		customer = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	s.views.InvalidateCustomerView(bg, customer.ID)
	// Account views carry the owner's name.
	for _, a := range owned {
		s.accountViews.InvalidateAccountView(bg, a.ID, a.AccountNumber)
	}
	publish(bg, s.publisher, events.CustomerEventsStream, events.CustomerUpdated, events.CustomerUpdatedEvent{
		CustomerID: customer.ID,
		Email:      customer.Email,
		Name:       customer.FullName(),
	})
	return models.CustomerToView(customer, len(owned)), nil
}

// DeleteCustomer removes a customer that owns no account in any status.
func (s *CustomerCommandService) DeleteCustomer(ctx context.Context, cmd cqrs.DeleteCustomerCommand) error {
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if _, err := tx.Customers().FindByIDForUpdate(ctx, cmd.CustomerID); err != nil {
			return err
		}
		linked, err := tx.Customers().HasAnyAccount(ctx, cmd.CustomerID)
		if err != nil {
			return err
		}
		if linked {
			return fmt.Errorf("customer %d: %w", cmd.CustomerID, ledger.ErrHasLinkedAccounts)
		}
		return tx.Customers().Delete(ctx, cmd.CustomerID)
	})
	if err != nil {
		return err
	}

	bg := context.WithoutCancel(ctx)
	s.views.InvalidateCustomerView(bg, cmd.CustomerID)
	publish(bg, s.publisher, events.CustomerEventsStream, events.CustomerDeleted, events.CustomerDeletedEvent{
		CustomerID: cmd.CustomerID,
	})
	return nil
}

// HandleAccountEvent drops the owner's cached view when an account is opened
// or changes status. Command services already invalidate after commit; this
// second pass evicts views a concurrent reader may have re-cached in between.
func (s *CustomerCommandService) HandleAccountEvent(ctx context.Context, event events.Event) error {
	var customerID int64
	switch event.Type {
	case events.AccountCreated:
		var data events.AccountCreatedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		customerID = data.CustomerID
	case events.AccountStatusChanged:
		var data events.AccountStatusChangedEvent
		if err := events.DecodeData(event, &data); err != nil {
			return err
		}
		customerID = data.CustomerID
	default:
		return nil
	}
	log.Printf("Invalidating customer %d view after %s", customerID, event.Type)
	s.views.InvalidateCustomerView(ctx, customerID)
	return nil
}

// ensureIdentityFree fails when email or identification number belongs to a
// customer other than selfID. Pass 0 for a customer not yet stored.
func ensureIdentityFree(ctx context.Context, tx repository.Store, selfID int64, email, identification string) error {
	if selfID == 0 {
		taken, err := tx.Customers().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if taken {
			return ledger.ErrEmailTaken
		}
	} else {
		other, err := tx.Customers().FindByEmail(ctx, email)
		switch {
		case err == nil && other.ID != selfID:
			return ledger.ErrEmailTaken
		case err != nil && ledger.Kind(err) != ledger.ErrNotFound:
			return err
		}
	}

	other, err := tx.Customers().FindByIdentificationNumber(ctx, identification)
	switch {
	case err == nil && other.ID != selfID:
		return ledger.ErrIdentificationUsed
	case err != nil && ledger.Kind(err) != ledger.ErrNotFound:
		return err
	}
	return nil
}
