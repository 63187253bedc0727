package statement

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

var generated = time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)

func sample() *Statement {
	at := func(minute int) time.Time { return generated.Add(-time.Hour).Add(time.Duration(minute) * time.Minute) }
	return &Statement{
		Account: models.AccountView{
			ID:            1,
			AccountType:   models.AccountTypeSavings,
			AccountNumber: "5300000001",
			Status:        models.AccountStatusActive,
			Balance:       decimal.RequireFromString("70"),
			CustomerName:  "Ada Lovelace",
		},
		Transactions: []models.TransactionView{
			{ID: 1, Type: models.TransactionTypeDeposit, Amount: decimal.RequireFromString("100"), DestinationAccountNumber: "5300000001", CreatedAt: at(1)},
			{ID: 2, Type: models.TransactionTypeTransfer, Amount: decimal.RequireFromString("50"), SourceAccountNumber: "5300000001", DestinationAccountNumber: "3300000002", CreatedAt: at(2)},
			{ID: 3, Type: models.TransactionTypeTransfer, Amount: decimal.RequireFromString("30"), SourceAccountNumber: "3300000002", DestinationAccountNumber: "5300000001", CreatedAt: at(3)},
			{ID: 4, Type: models.TransactionTypeWithdrawal, Amount: decimal.RequireFromString("10"), SourceAccountNumber: "5300000001", CreatedAt: at(4)},
		},
		GeneratedAt: generated,
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"pdf", FormatPDF, false},
		{"XLSX", FormatXLSX, false},
		{"csv", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ledger.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("ParseFormat(%q) = %q, %v", tt.in, got, err)
			}
		})
	}
}

func TestLinesSignAndRunningBalance(t *testing.T) {
	lines := sample().Lines()
	wantAmounts := []string{"100", "-50", "30", "-10"}
	wantBalances := []string{"100", "50", "80", "70"}
	wantCounterparty := []string{"", "3300000002", "3300000002", ""}
	for i, l := range lines {
		if !l.Amount.Equal(decimal.RequireFromString(wantAmounts[i])) {
			t.Errorf("line %d amount = %s, want %s", i, l.Amount, wantAmounts[i])
		}
		if !l.Balance.Equal(decimal.RequireFromString(wantBalances[i])) {
			t.Errorf("line %d balance = %s, want %s", i, l.Balance, wantBalances[i])
		}
		if l.Counterparty != wantCounterparty[i] {
			t.Errorf("line %d counterparty = %q, want %q", i, l.Counterparty, wantCounterparty[i])
		}
	}
}

func TestRenderPDF(t *testing.T) {
	f, err := Render(sample(), FormatPDF)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(f.Data, []byte("%PDF")) {
		t.Fatal("output is not a PDF document")
	}
	if f.ContentType != "application/pdf" || f.Name != "statement-5300000001-20240305.pdf" {
		t.Fatalf("unexpected file metadata: %s %s", f.Name, f.ContentType)
	}
}

func TestRenderXLSX(t *testing.T) {
	f, err := Render(sample(), FormatXLSX)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(f.Name, ".xlsx") {
		t.Fatalf("name = %s", f.Name)
	}

	book, err := xlsx.OpenBinary(f.Data)
	if err != nil {
		t.Fatal(err)
	}
	sheet := book.Sheets[0]
	if sheet.Name != "Statement" {
		t.Fatalf("sheet = %s", sheet.Name)
	}
	// Three summary rows and the header, then one row per line.
	if len(sheet.Rows) != 4+4 {
		t.Fatalf("rows = %d", len(sheet.Rows))
	}
	last := sheet.Rows[len(sheet.Rows)-1]
	if last.Cells[4].Value != "-10.00" || last.Cells[5].Value != "70.00" {
		t.Fatalf("last line = %s %s", last.Cells[4].Value, last.Cells[5].Value)
	}
}

func TestRenderRejectsUnknownFormat(t *testing.T) {
	if _, err := Render(sample(), Format("csv")); !errors.Is(err, ledger.ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}
