package orchestrators

import (
	"context"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"

	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
)

// CSVValidationError is returned when an uploaded CSV cannot be processed
// at all (missing header, unreadable stream).
type CSVValidationError struct {
	Message string
}

func (e *CSVValidationError) Error() string { return e.Message }

// ExportMembersCSV writes the roster as CSV.
// POST: One row per member, roster order, header "ID,Name,Phone,Email"
func ExportMembersCSV(ctx context.Context, w io.Writer, deps MemberDeps) error {
	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Name", "Phone", "Email"}); err != nil {
		return err
	}
	for _, m := range members {
		if err := cw.Write([]string{m.ID, m.Name, m.Phone, m.Email}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportPaymentsCSV writes the payment history as CSV.
// POST: One row per payment, header
// "ID,Member ID,Member Name,Amount,Month,Date,Notes"
func ExportPaymentsCSV(ctx context.Context, w io.Writer, deps PaymentDeps) error {
	var payments []payment.Payment
	if err := deps.Payments.Decode(&payments); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"ID", "Member ID", "Member Name", "Amount", "Month", "Date", "Notes"}); err != nil {
		return err
	}
	for _, p := range payments {
		if err := cw.Write([]string{p.ID, p.MemberID, p.MemberName, p.Amount, p.Month, p.Date, p.Notes}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportResult holds aggregate counts from a CSV import run.
type ImportResult struct {
	Total    int `json:"total"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ImportMembersCSV replaces the roster with the rows of a CSV stream.
// Rows without a name are skipped; rows without an id get a fresh one, so an
// export can round-trip and a hand-written file can omit the column.
// PRE: The stream starts with a header row
// POST: The roster holds exactly the valid rows; previous members are gone
func ImportMembersCSV(ctx context.Context, r io.Reader, deps MemberDeps) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, &CSVValidationError{Message: "CSV is empty or has no header row"}
	}
	col := columnIndex(header)
	if _, ok := col["NAME"]; !ok {
		return ImportResult{}, &CSVValidationError{Message: "CSV missing required column: Name"}
	}

	var result ImportResult
	members := []member.Member{}
	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		result.Total++

		m := member.Member{
			ID:    cell(row, col, "ID"),
			Name:  cell(row, col, "NAME"),
			Phone: cell(row, col, "PHONE"),
			Email: cell(row, col, "EMAIL"),
		}
		if m.Name == "" {
			result.Skipped++
			continue
		}
		if m.ID == "" {
			m.ID = deps.GenerateID()
		}
		members = append(members, m)
		result.Imported++
	}

	if err := deps.Members.SetData(ctx, members); err != nil {
		return ImportResult{}, err
	}
	slog.Info("members_imported", "total", result.Total, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

// ImportPaymentsCSV replaces the payment history with the rows of a CSV
// stream. Rows without a member id are skipped.
// POST: The history holds exactly the valid rows; previous payments are gone
func ImportPaymentsCSV(ctx context.Context, r io.Reader, deps PaymentDeps) (ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return ImportResult{}, &CSVValidationError{Message: "CSV is empty or has no header row"}
	}
	col := columnIndex(header)
	if _, ok := col["MEMBER ID"]; !ok {
		return ImportResult{}, &CSVValidationError{Message: "CSV missing required column: Member ID"}
	}

	var result ImportResult
	payments := []payment.Payment{}
	for {
		row, err := cr.Read()
		if err != nil {
			break
		}
		result.Total++

		p := payment.Payment{
			ID:         cell(row, col, "ID"),
			MemberID:   cell(row, col, "MEMBER ID"),
			MemberName: cell(row, col, "MEMBER NAME"),
			Amount:     cell(row, col, "AMOUNT"),
			Month:      cell(row, col, "MONTH"),
			Date:       cell(row, col, "DATE"),
			Notes:      cell(row, col, "NOTES"),
		}
		if p.MemberID == "" {
			result.Skipped++
			continue
		}
		if p.ID == "" {
			p.ID = deps.GenerateID()
		}
		if p.MemberName == "" {
			p.MemberName = payment.UnknownMemberName
		}
		payments = append(payments, p)
		result.Imported++
	}

	if err := deps.Payments.SetData(ctx, payments); err != nil {
		return ImportResult{}, err
	}
	slog.Info("payments_imported", "total", result.Total, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}

func columnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.ToUpper(strings.TrimSpace(h))] = i
	}
	return col
}

func cell(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
