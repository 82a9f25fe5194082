package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentDeps holds dependencies for the payment orchestrators.
type PaymentDeps struct {
	Payments   *syncstore.Store
	Members    *syncstore.Store
	GenerateID func() string
	Now        func() time.Time
}

// RecordPaymentInput carries the fields for a new payment record.
type RecordPaymentInput struct {
	MemberID string
	Amount   string
	Month    string // YYYY-MM
	Date     string // defaults to today when empty
	Notes    string
}

// ExecuteRecordPayment validates and appends a payment, snapshotting the
// member's name at recording time.
// PRE: Input references a member id and carries a numeric amount
// POST: Payment is persisted; MemberName is "Unknown" when the id does not
// resolve
func ExecuteRecordPayment(ctx context.Context, input RecordPaymentInput, deps PaymentDeps) (payment.Payment, error) {
	date := input.Date
	if date == "" {
		date = deps.Now().Format("2006-01-02")
	}

	p := payment.Payment{
		ID:         deps.GenerateID(),
		MemberID:   input.MemberID,
		MemberName: payment.UnknownMemberName,
		Amount:     input.Amount,
		Month:      input.Month,
		Date:       date,
		Notes:      input.Notes,
	}
	if err := p.Validate(); err != nil {
		return payment.Payment{}, err
	}

	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return payment.Payment{}, err
	}
	for _, m := range members {
		if m.ID == input.MemberID {
			p.MemberName = m.Name
			break
		}
	}

	var payments []payment.Payment
	if err := deps.Payments.Decode(&payments); err != nil {
		return payment.Payment{}, err
	}
	payments = append(payments, p)
	if err := deps.Payments.SetData(ctx, payments); err != nil {
		return payment.Payment{}, err
	}

	slog.Info("payment_recorded",
		"payment_id", p.ID, "member_id", p.MemberID, "month", p.Month, "amount", p.Amount)
	return p, nil
}

// ExecuteDeletePayment removes a payment record.
func ExecuteDeletePayment(ctx context.Context, id string, deps PaymentDeps) error {
	var payments []payment.Payment
	if err := deps.Payments.Decode(&payments); err != nil {
		return err
	}
	kept := payments[:0]
	for _, p := range payments {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(payments) {
		return ErrPaymentNotFound
	}
	if err := deps.Payments.SetData(ctx, kept); err != nil {
		return err
	}

	slog.Info("payment_deleted", "payment_id", id)
	return nil
}
