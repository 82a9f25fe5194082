package payment

import (
	"errors"
	"strconv"
	"strings"
)

// UnknownMemberName is recorded when a payment references a member id that
// cannot be resolved at creation time.
const UnknownMemberName = "Unknown"

// Domain errors
var (
	ErrEmptyMemberID = errors.New("payment must reference a member")
	ErrInvalidAmount = errors.New("payment amount must be a number")
	ErrInvalidMonth  = errors.New("payment month must be in YYYY-MM format")
	ErrEmptyDate     = errors.New("payment date cannot be empty")
)

// Payment records one fee payment. MemberName is a snapshot taken at
// creation and is never re-synced if the member is later renamed; Amount is
// kept as the decimal string the admin entered.
type Payment struct {
	ID         string `json:"id"`
	MemberID   string `json:"memberId"`
	MemberName string `json:"memberName"`
	Amount     string `json:"amount"`
	Month      string `json:"month"`
	Date       string `json:"date"`
	Notes      string `json:"notes,omitempty"`
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (p *Payment) Validate() error {
	if strings.TrimSpace(p.MemberID) == "" {
		return ErrEmptyMemberID
	}
	if _, err := strconv.ParseFloat(p.Amount, 64); err != nil {
		return ErrInvalidAmount
	}
	if !isValidMonth(p.Month) {
		return ErrInvalidMonth
	}
	if strings.TrimSpace(p.Date) == "" {
		return ErrEmptyDate
	}
	return nil
}

// AmountValue returns the amount as a float64, or 0 when unparseable.
func (p *Payment) AmountValue() float64 {
	v, err := strconv.ParseFloat(p.Amount, 64)
	if err != nil {
		return 0
	}
	return v
}

func isValidMonth(month string) bool {
	if len(month) != 7 || month[4] != '-' {
		return false
	}
	if _, err := strconv.Atoi(month[:4]); err != nil {
		return false
	}
	m, err := strconv.Atoi(month[5:])
	return err == nil && m >= 1 && m <= 12
}
