package orchestrators

import (
	"context"
	"testing"
	"time"

	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
)

func fixedNow() time.Time {
	return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
}

func paymentDeps(t *testing.T) PaymentDeps {
	t.Helper()
	members := newStore(t, "members", nil, []member.Member{})
	seedStore(t, members, []member.Member{{ID: "m1", Name: "Aisyah", Phone: "60123"}})
	return PaymentDeps{
		Payments:   newStore(t, "payments", nil, []payment.Payment{}),
		Members:    members,
		GenerateID: sequentialIDs("p"),
		Now:        fixedNow,
	}
}

func TestExecuteRecordPayment_SnapshotsMemberName(t *testing.T) {
	deps := paymentDeps(t)

	got, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "m1", Amount: "50", Month: "2026-08"}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}
	if got.MemberName != "Aisyah" {
		t.Errorf("MemberName=%q want snapshot", got.MemberName)
	}
	if got.Date != "2026-08-29" {
		t.Errorf("Date=%q want today's date as default", got.Date)
	}
}

func TestExecuteRecordPayment_UnknownMember(t *testing.T) {
	deps := paymentDeps(t)

	got, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "ghost", Amount: "50", Month: "2026-08", Date: "2026-08-02"}, deps)
	if err != nil {
		t.Fatalf("ExecuteRecordPayment: %v", err)
	}
	if got.MemberName != payment.UnknownMemberName {
		t.Errorf("MemberName=%q want %q", got.MemberName, payment.UnknownMemberName)
	}
}

func TestExecuteRecordPayment_Invalid(t *testing.T) {
	deps := paymentDeps(t)

	if _, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "m1", Amount: "fifty", Month: "2026-08"}, deps); err != payment.ErrInvalidAmount {
		t.Errorf("err=%v want ErrInvalidAmount", err)
	}
	if _, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "m1", Amount: "50", Month: "August"}, deps); err != payment.ErrInvalidMonth {
		t.Errorf("err=%v want ErrInvalidMonth", err)
	}
}

func TestExecuteDeletePayment(t *testing.T) {
	deps := paymentDeps(t)
	if _, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "m1", Amount: "50", Month: "2026-08"}, deps); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := ExecuteDeletePayment(context.Background(), "p1", deps); err != nil {
		t.Fatalf("ExecuteDeletePayment: %v", err)
	}
	var payments []payment.Payment
	deps.Payments.Decode(&payments)
	if len(payments) != 0 {
		t.Errorf("payments=%v want empty", payments)
	}
	if err := ExecuteDeletePayment(context.Background(), "p1", deps); err != ErrPaymentNotFound {
		t.Errorf("err=%v want ErrPaymentNotFound", err)
	}
}
