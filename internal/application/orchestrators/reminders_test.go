package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"clubhouse/internal/adapters/email"
	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
	"clubhouse/internal/domain/settings"
)

func reminderDeps(t *testing.T) ReminderDeps {
	t.Helper()
	members := newStore(t, "members", nil, []member.Member{})
	seedStore(t, members, []member.Member{
		{ID: "m1", Name: "Aisyah", Phone: "+60 12-345 678", Email: "a@example.com"},
		{ID: "m2", Name: "Ben", Phone: "60124"},
		{ID: "m3", Name: "Chen", Phone: "60125", Email: "c@example.com"},
	})
	payments := newStore(t, "payments", nil, []payment.Payment{})
	seedStore(t, payments, []payment.Payment{
		{ID: "p1", MemberID: "m2", MemberName: "Ben", Amount: "50", Month: "2026-08", Date: "2026-08-02"},
		{ID: "p2", MemberID: "m3", MemberName: "Chen", Amount: "10", Month: "2026-07", Date: "2026-07-30"},
	})
	cfg := newStore(t, "settings", nil, settings.Defaults())
	return ReminderDeps{Members: members, Payments: payments, Settings: cfg}
}

func TestExecuteListReminders(t *testing.T) {
	deps := reminderDeps(t)

	got, err := ExecuteListReminders(context.Background(), "2026-08", deps)
	if err != nil {
		t.Fatalf("ExecuteListReminders: %v", err)
	}
	if len(got.Entries) != 2 {
		t.Fatalf("entries=%d want 2 (m2 paid August)", len(got.Entries))
	}
	if got.Entries[0].Member.ID != "m1" || got.Entries[1].Member.ID != "m3" {
		t.Errorf("order=%s,%s want roster order", got.Entries[0].Member.ID, got.Entries[1].Member.ID)
	}

	msg := got.Entries[0].Message
	if !strings.Contains(msg, "Hi Aisyah!") {
		t.Errorf("message missing member name: %q", msg)
	}
	if !strings.Contains(msg, "August 2026") {
		t.Errorf("message missing month name: %q", msg)
	}
	if !strings.Contains(msg, "RM 50") {
		t.Errorf("message missing fee: %q", msg)
	}

	link := got.Entries[0].WhatsAppURL
	if !strings.HasPrefix(link, "https://wa.me/6012345678?text=") {
		t.Errorf("link=%q want digits-only phone", link)
	}
}

func TestExecuteListReminders_PartialPaymentCountsAsPaid(t *testing.T) {
	deps := reminderDeps(t)
	var payments []payment.Payment
	deps.Payments.Decode(&payments)
	payments = append(payments, payment.Payment{
		ID: "p3", MemberID: "m1", MemberName: "Aisyah", Amount: "5", Month: "2026-08", Date: "2026-08-10",
	})
	seedStore(t, deps.Payments, payments)

	got, err := ExecuteListReminders(context.Background(), "2026-08", deps)
	if err != nil {
		t.Fatalf("ExecuteListReminders: %v", err)
	}
	for _, e := range got.Entries {
		if e.Member.ID == "m1" {
			t.Error("a member with any payment row for the month must not be reminded")
		}
	}
}

type fakeSender struct {
	reqs []email.SendRequest
	fail bool
}

func (f *fakeSender) Send(_ context.Context, req email.SendRequest) (email.SendResult, error) {
	if f.fail {
		return email.SendResult{}, errors.New("provider down")
	}
	f.reqs = append(f.reqs, req)
	return email.SendResult{MessageID: "id"}, nil
}

func (f *fakeSender) SendBatch(_ context.Context, reqs []email.SendRequest) ([]email.SendResult, error) {
	if f.fail {
		return nil, errors.New("provider down")
	}
	f.reqs = append(f.reqs, reqs...)
	results := make([]email.SendResult, len(reqs))
	return results, nil
}

func TestExecuteSendReminders(t *testing.T) {
	sender := &fakeSender{}
	deps := SendRemindersDeps{Reminders: reminderDeps(t), Sender: sender}

	got, err := ExecuteSendReminders(context.Background(), SendRemindersInput{Month: "2026-08"}, deps)
	if err != nil {
		t.Fatalf("ExecuteSendReminders: %v", err)
	}
	// m1 and m3 are unpaid; only they have email addresses on file.
	if got.Unpaid != 2 || got.Sent != 2 || got.Skipped != 0 {
		t.Errorf("result=%+v", got)
	}
	if len(sender.reqs) != 2 {
		t.Fatalf("reqs=%d", len(sender.reqs))
	}
	if sender.reqs[0].To[0] != "a@example.com" {
		t.Errorf("to=%v", sender.reqs[0].To)
	}
	if !strings.Contains(sender.reqs[0].Subject, "August 2026") {
		t.Errorf("subject=%q", sender.reqs[0].Subject)
	}
	if !strings.Contains(sender.reqs[0].HTML, "<br>") {
		t.Error("HTML body must preserve line breaks")
	}
}

func TestExecuteSendReminders_SkipsMembersWithoutEmail(t *testing.T) {
	deps := SendRemindersDeps{Reminders: reminderDeps(t), Sender: &fakeSender{}}

	var payments []payment.Payment
	deps.Reminders.Payments.Decode(&payments)
	payments = append(payments, payment.Payment{
		ID: "p9", MemberID: "m3", MemberName: "Chen", Amount: "50", Month: "2026-08", Date: "2026-08-20",
	})
	seedStore(t, deps.Reminders.Payments, payments)

	// Nobody has paid for September; m2 has no email address on file.
	got, err := ExecuteSendReminders(context.Background(), SendRemindersInput{Month: "2026-09"}, deps)
	if err != nil {
		t.Fatalf("ExecuteSendReminders: %v", err)
	}
	if got.Unpaid != 3 || got.Sent != 2 || got.Skipped != 1 {
		t.Errorf("result=%+v", got)
	}
}

func TestExecuteSendReminders_ProviderFailure(t *testing.T) {
	deps := SendRemindersDeps{Reminders: reminderDeps(t), Sender: &fakeSender{fail: true}}
	if _, err := ExecuteSendReminders(context.Background(), SendRemindersInput{Month: "2026-08"}, deps); err == nil {
		t.Error("provider failure must surface")
	}
}
