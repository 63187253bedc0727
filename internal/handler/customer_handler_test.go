package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/cqrs"
	"github.com/eaglebank/ledger/shared/models"
)

var testCustomerView = &models.CustomerView{
	ID: 1, IdentificationType: "CC", IdentificationNumber: "100",
	FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
	BirthDate: "1990-05-01", CreatedAt: time.Now(), UpdatedAt: time.Now(),
}

func validCustomerBody() map[string]interface{} {
	return map[string]interface{}{
		"identificationType":   "CC",
		"identificationNumber": "100",
		"firstName":            "Ada",
		"lastName":             "Lovelace",
		"email":                "ada@example.com",
		"birthDate":            "1990-05-01",
	}
}

func TestCreateCustomer(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		createFn       func(cqrs.CreateCustomerCommand) (*models.CustomerView, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: validCustomerBody(),
			createFn: func(cmd cqrs.CreateCustomerCommand) (*models.CustomerView, error) {
				if !cmd.BirthDate.Equal(time.Date(1990, time.May, 1, 0, 0, 0, 0, time.UTC)) {
					return nil, ledger.ErrInvalidArgument
				}
				return testCustomerView, nil
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "bad request - missing required fields",
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - malformed birth date",
			body: func() map[string]interface{} {
				b := validCustomerBody()
				b["birthDate"] = "01/05/1990"
				return b
			}(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "bad request - invalid email",
			body: func() map[string]interface{} {
				b := validCustomerBody()
				b["email"] = "not-an-email"
				return b
			}(),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "underage",
			body:           validCustomerBody(),
			createFn:       func(cqrs.CreateCustomerCommand) (*models.CustomerView, error) { return nil, ledger.ErrUnderageCustomer },
			expectedStatus: http.StatusUnprocessableEntity,
		},
		{
			name:           "duplicate email",
			body:           validCustomerBody(),
			createFn:       func(cqrs.CreateCustomerCommand) (*models.CustomerView, error) { return nil, ledger.ErrEmailTaken },
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.customerCmds.createFn = tt.createFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodPost, "/v1/customers", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestListCustomers(t *testing.T) {
	m := newMocks()
	m.customerQrys.listFn = func(cqrs.ListCustomersQuery) ([]models.CustomerView, error) {
		return []models.CustomerView{*testCustomerView}, nil
	}
	w := doRequest(newTestRouter(m, fakeAuth), http.MethodGet, "/v1/customers", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d; body: %s", w.Code, w.Body.String())
	}
}

func TestGetCustomer(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		getFn          func(cqrs.GetCustomerQuery) (*models.CustomerView, error)
		expectedStatus int
	}{
		{
			name:           "success",
			url:            "/v1/customers/1",
			getFn:          func(cqrs.GetCustomerQuery) (*models.CustomerView, error) { return testCustomerView, nil },
			expectedStatus: http.StatusOK,
		},
		{
			name:           "not found",
			url:            "/v1/customers/2",
			getFn:          func(cqrs.GetCustomerQuery) (*models.CustomerView, error) { return nil, ledger.ErrNotFound },
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "bad request - non numeric id",
			url:            "/v1/customers/abc",
			expectedStatus: http.StatusBadRequest,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.customerQrys.getFn = tt.getFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodGet, tt.url, nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateCustomer(t *testing.T) {
	tests := []struct {
		name           string
		body           interface{}
		updateFn       func(cqrs.UpdateCustomerCommand) (*models.CustomerView, error)
		expectedStatus int
	}{
		{
			name: "success",
			body: validCustomerBody(),
			updateFn: func(cmd cqrs.UpdateCustomerCommand) (*models.CustomerView, error) {
				if cmd.CustomerID != 1 {
					return nil, ledger.ErrNotFound
				}
				return testCustomerView, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "bad request - partial body",
			body:           map[string]interface{}{"firstName": "Grace"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "identification used by another customer",
			body:           validCustomerBody(),
			updateFn:       func(cqrs.UpdateCustomerCommand) (*models.CustomerView, error) { return nil, ledger.ErrIdentificationUsed },
			expectedStatus: http.StatusConflict,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.customerCmds.updateFn = tt.updateFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodPut, "/v1/customers/1", tt.body)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}

func TestDeleteCustomer(t *testing.T) {
	tests := []struct {
		name           string
		deleteFn       func(cqrs.DeleteCustomerCommand) error
		expectedStatus int
	}{
		{"success", func(cqrs.DeleteCustomerCommand) error { return nil }, http.StatusNoContent},
		{"has accounts", func(cqrs.DeleteCustomerCommand) error { return ledger.ErrHasLinkedAccounts }, http.StatusConflict},
		{"not found", func(cqrs.DeleteCustomerCommand) error { return ledger.ErrNotFound }, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMocks()
			m.customerCmds.deleteFn = tt.deleteFn
			w := doRequest(newTestRouter(m, fakeAuth), http.MethodDelete, "/v1/customers/1", nil)
			if w.Code != tt.expectedStatus {
				t.Errorf("[%s] expected %d got %d; body: %s", tt.name, tt.expectedStatus, w.Code, w.Body.String())
			}
		})
	}
}
