package orchestrators

import (
	"context"
	"html"
	"log/slog"
	"strings"

	"clubhouse/internal/adapters/email"
	"clubhouse/internal/domain/reminder"
)

// SendRemindersInput selects the month to remind for.
type SendRemindersInput struct {
	Month string // YYYY-MM
}

// SendRemindersResult reports delivery counts for a reminder run.
type SendRemindersResult struct {
	Month   string `json:"month"`
	Unpaid  int    `json:"unpaid"`
	Sent    int    `json:"sent"`
	Skipped int    `json:"skipped"` // unpaid members without an email address
}

// SendRemindersDeps holds dependencies for the email reminder run.
type SendRemindersDeps struct {
	Reminders ReminderDeps
	Sender    email.Sender
}

// ExecuteSendReminders emails the month's payment reminder to every unpaid
// member with an email address. Members without one are counted as skipped;
// WhatsApp remains the channel for them.
// POST: At most one email per unpaid member; a provider failure aborts the
// remaining batch and is returned
func ExecuteSendReminders(ctx context.Context, input SendRemindersInput, deps SendRemindersDeps) (SendRemindersResult, error) {
	listed, err := ExecuteListReminders(ctx, input.Month, deps.Reminders)
	if err != nil {
		return SendRemindersResult{}, err
	}

	result := SendRemindersResult{Month: input.Month, Unpaid: len(listed.Entries)}

	monthName, err := reminder.MonthName(input.Month)
	if err != nil {
		monthName = input.Month
	}

	var reqs []email.SendRequest
	for _, entry := range listed.Entries {
		if entry.Member.Email == "" {
			result.Skipped++
			continue
		}
		reqs = append(reqs, email.SendRequest{
			To:      []string{entry.Member.Email},
			Subject: "Payment reminder for " + monthName,
			HTML:    textToHTML(entry.Message),
		})
	}

	if len(reqs) > 0 {
		sent, err := deps.Sender.SendBatch(ctx, reqs)
		result.Sent = len(sent)
		if err != nil {
			return result, err
		}
	}

	slog.Info("reminders_sent",
		"month", input.Month, "unpaid", result.Unpaid, "sent", result.Sent, "skipped", result.Skipped)
	return result, nil
}

// textToHTML escapes the reminder text and preserves its line breaks.
func textToHTML(text string) string {
	return strings.ReplaceAll(html.EscapeString(text), "\n", "<br>\n")
}
