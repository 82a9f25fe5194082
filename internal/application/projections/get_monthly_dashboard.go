// Package projections contains read-only queries over the synced
// collections. Projections never write.
package projections

import (
	"context"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
	"clubhouse/internal/domain/session"
	"clubhouse/internal/domain/settings"
)

// GetMonthlyDashboardQuery carries input for the dashboard projection.
type GetMonthlyDashboardQuery struct {
	Month string // YYYY-MM
}

// GetMonthlyDashboardDeps holds dependencies for the dashboard projection.
type GetMonthlyDashboardDeps struct {
	Members  *syncstore.Store
	Payments *syncstore.Store
	Schedule *syncstore.Store
	Settings *syncstore.Store
}

// MonthlyDashboardResult summarizes one month of club activity.
type MonthlyDashboardResult struct {
	Month        string `json:"month"`
	TotalMembers int    `json:"totalMembers"`

	PaidMembers   []member.Member `json:"paidMembers"`
	UnpaidMembers []member.Member `json:"unpaidMembers"`

	// Collected sums the month's recorded payments; Expected is the roster
	// size times the monthly fee.
	Collected float64 `json:"collected"`
	Expected  float64 `json:"expected"`

	Sessions     int `json:"sessions"`
	TotalPlayers int `json:"totalPlayers"`
	Waitlisted   int `json:"waitlisted"`
}

// QueryGetMonthlyDashboard aggregates payment and schedule stats for a month.
// PRE: query.Month is in YYYY-MM format
// POST: Every roster member appears in exactly one of PaidMembers or
// UnpaidMembers; a member with any payment row for the month counts as paid
func QueryGetMonthlyDashboard(ctx context.Context, query GetMonthlyDashboardQuery, deps GetMonthlyDashboardDeps) (MonthlyDashboardResult, error) {
	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return MonthlyDashboardResult{}, err
	}
	var payments []payment.Payment
	if err := deps.Payments.Decode(&payments); err != nil {
		return MonthlyDashboardResult{}, err
	}
	var sessions []session.Session
	if err := deps.Schedule.Decode(&sessions); err != nil {
		return MonthlyDashboardResult{}, err
	}
	var cfg settings.Settings
	if err := deps.Settings.Decode(&cfg); err != nil {
		return MonthlyDashboardResult{}, err
	}

	result := MonthlyDashboardResult{
		Month:         query.Month,
		TotalMembers:  len(members),
		PaidMembers:   []member.Member{},
		UnpaidMembers: []member.Member{},
	}

	paid := make(map[string]bool, len(payments))
	for _, p := range payments {
		if p.Month == query.Month {
			paid[p.MemberID] = true
			result.Collected += p.AmountValue()
		}
	}
	for _, m := range members {
		if paid[m.ID] {
			result.PaidMembers = append(result.PaidMembers, m)
		} else {
			result.UnpaidMembers = append(result.UnpaidMembers, m)
		}
	}
	result.Expected = float64(len(members)) * cfg.MonthlyFeeValue()

	for _, s := range sessions {
		if s.Month != query.Month {
			continue
		}
		result.Sessions++
		result.TotalPlayers += len(s.Players)
		result.Waitlisted += len(s.Waitlist)
	}

	return result, nil
}
