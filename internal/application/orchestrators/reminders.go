package orchestrators

import (
	"context"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
	"clubhouse/internal/domain/reminder"
	"clubhouse/internal/domain/settings"
)

// ReminderDeps holds dependencies for the reminder orchestrators.
type ReminderDeps struct {
	Members  *syncstore.Store
	Payments *syncstore.Store
	Settings *syncstore.Store
}

// ReminderEntry is one unpaid member with a ready-to-send reminder.
type ReminderEntry struct {
	Member      member.Member `json:"member"`
	Message     string        `json:"message"`
	WhatsAppURL string        `json:"whatsappUrl"`
}

// RemindersResult lists the unpaid members for a month.
type RemindersResult struct {
	Month   string          `json:"month"`
	Entries []ReminderEntry `json:"entries"`
}

// ExecuteListReminders returns every member without a payment for the month,
// each with a rendered reminder text and a WhatsApp deep link.
// PRE: month is in YYYY-MM format
// POST: Entries preserve roster order; members with any payment row for the
// month are excluded regardless of the amount paid
func ExecuteListReminders(ctx context.Context, month string, deps ReminderDeps) (RemindersResult, error) {
	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return RemindersResult{}, err
	}
	var payments []payment.Payment
	if err := deps.Payments.Decode(&payments); err != nil {
		return RemindersResult{}, err
	}
	var cfg settings.Settings
	if err := deps.Settings.Decode(&cfg); err != nil {
		return RemindersResult{}, err
	}

	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.Month == month {
			paid[p.MemberID] = true
		}
	}

	result := RemindersResult{Month: month, Entries: []ReminderEntry{}}
	for _, m := range members {
		if paid[m.ID] {
			continue
		}
		msg := reminder.ForMember(cfg, m.Name, cfg.MonthlyFee, month)
		result.Entries = append(result.Entries, ReminderEntry{
			Member:      m,
			Message:     msg,
			WhatsAppURL: reminder.WhatsAppLink(m.Phone, msg),
		})
	}
	return result, nil
}
