// Package statement renders an account's transaction log as a downloadable
// document.
package statement

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/eaglebank/ledger/internal/ledger"
	"github.com/eaglebank/ledger/shared/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/tealeg/xlsx"
)

type Format string

const (
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

const timestampLayout = "2006-01-02 15:04:05"

var header = []string{"ID", "Date", "Type", "Counterparty", "Amount", "Balance"}

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPDF, FormatXLSX:
		return f, nil
	}
	return "", fmt.Errorf("unsupported statement format %q: %w", s, ledger.ErrInvalidArgument)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

// Statement is an account snapshot plus its full transaction log, oldest
// first.
type Statement struct {
	Account      models.AccountView
	Transactions []models.TransactionView
	GeneratedAt  time.Time
}

// Line is one statement row seen from the account's side.
type Line struct {
	ID           int64
	Date         time.Time
	Type         models.TransactionType
	Counterparty string
	Amount       decimal.Decimal
	Balance      decimal.Decimal
}

// Lines signs every amount relative to the account and carries a running
// balance starting from zero.
func (s *Statement) Lines() []Line {
	lines := make([]Line, 0, len(s.Transactions))
	running := decimal.Zero
	for _, t := range s.Transactions {
		amount := t.Amount
		counterparty := t.SourceAccountNumber
		if t.SourceAccountNumber == s.Account.AccountNumber {
			amount = amount.Neg()
			counterparty = t.DestinationAccountNumber
		}
		running = running.Add(amount)
		lines = append(lines, Line{
			ID:           t.ID,
			Date:         t.CreatedAt,
			Type:         t.Type,
			Counterparty: counterparty,
			Amount:       amount,
			Balance:      running,
		})
	}
	return lines
}

// File is a rendered statement ready to be served.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func Render(s *Statement, f Format) (*File, error) {
	var buf bytes.Buffer
	var err error
	switch f {
	case FormatPDF:
		err = WritePDF(&buf, s)
	case FormatXLSX:
		err = WriteXLSX(&buf, s)
	default:
		return nil, fmt.Errorf("unsupported statement format %q: %w", f, ledger.ErrInvalidArgument)
	}
	if err != nil {
		return nil, err
	}
	return &File{
		Name:        fmt.Sprintf("statement-%s-%s.%s", s.Account.AccountNumber, s.GeneratedAt.Format("20060102"), f),
		ContentType: f.ContentType(),
		Data:        buf.Bytes(),
	}, nil
}

func WritePDF(w io.Writer, s *Statement) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Account Statement")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, fmt.Sprintf("Account: %s (%s)", s.Account.AccountNumber, s.Account.AccountType))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Holder: "+s.Account.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 6, fmt.Sprintf("Status: %s   Balance: %s", s.Account.Status, s.Account.Balance.StringFixed(2)))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated: "+s.GeneratedAt.Format(timestampLayout))
	pdf.Ln(10)

	widths := []float64{15, 40, 28, 32, 30, 30}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range header {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "", false, 0, "")
	}
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 10)
	for _, l := range s.Lines() {
		pdf.CellFormat(widths[0], 7, strconv.FormatInt(l.ID, 10), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, l.Date.Format(timestampLayout), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, string(l.Type), "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, l.Counterparty, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[4], 7, l.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[5], 7, l.Balance.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.Ln(7)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF statement: %w", err)
	}
	return nil
}

func WriteXLSX(w io.Writer, s *Statement) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Statement")
	if err != nil {
		return fmt.Errorf("failed to create statement sheet: %w", err)
	}

	row := sheet.AddRow()
	row.AddCell().SetValue("Account")
	row.AddCell().SetValue(s.Account.AccountNumber)
	row = sheet.AddRow()
	row.AddCell().SetValue("Holder")
	row.AddCell().SetValue(s.Account.CustomerName)
	row = sheet.AddRow()
	row.AddCell().SetValue("Balance")
	row.AddCell().SetValue(s.Account.Balance.StringFixed(2))

	row = sheet.AddRow()
	for _, h := range header {
		row.AddCell().SetValue(h)
	}
	for _, l := range s.Lines() {
		row = sheet.AddRow()
		row.AddCell().SetValue(strconv.FormatInt(l.ID, 10))
		row.AddCell().SetValue(l.Date.Format(timestampLayout))
		row.AddCell().SetValue(string(l.Type))
		row.AddCell().SetValue(l.Counterparty)
		row.AddCell().SetValue(l.Amount.StringFixed(2))
		row.AddCell().SetValue(l.Balance.StringFixed(2))
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to render XLSX statement: %w", err)
	}
	return nil
}
