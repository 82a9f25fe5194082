package settings

import (
	"errors"
	"strconv"
	"strings"
)

// Reminder lead-time bounds, in days.
const (
	MinReminderDays = 1
	MaxReminderDays = 30
)

// DefaultPaymentMessage is the stock reminder template. The seven
// placeholder tokens are substituted by the reminder renderer.
const DefaultPaymentMessage = `Hi {memberName}! 🏸

This is a friendly reminder for your badminton club payment for {monthName}.

Amount: RM {amount}

Please make payment to:
Bank: {bankName}
Account: {accountNumber}
Name: {accountName}

{qrCode}

Thank you! 🙏`

// Domain errors
var (
	ErrEmptyClubName       = errors.New("club name cannot be empty")
	ErrInvalidMonthlyFee   = errors.New("monthly fee must be a number")
	ErrInvalidReminderDays = errors.New("reminder days must be between 1 and 30")
)

// Settings is the singleton configuration record. It is created with
// defaults on first run, mutated in place, and never deleted. MonthlyFee and
// ReminderDays keep their string wire form.
type Settings struct {
	ClubName       string `json:"clubName"`
	MonthlyFee     string `json:"monthlyFee"`
	BankName       string `json:"bankName"`
	AccountNumber  string `json:"accountNumber"`
	AccountName    string `json:"accountName"`
	QRCodeURL      string `json:"qrCodeUrl,omitempty"`
	PaymentMessage string `json:"paymentMessage"`
	ReminderDays   string `json:"reminderDays"`
}

// Defaults returns the settings a fresh deployment starts with.
func Defaults() Settings {
	return Settings{
		ClubName:       "Badminton Club",
		MonthlyFee:     "50",
		BankName:       "Maybank",
		AccountNumber:  "1234567890",
		AccountName:    "Club Account",
		PaymentMessage: DefaultPaymentMessage,
		ReminderDays:   "3",
	}
}

// Validate checks if the Settings have valid data.
// PRE: Settings struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Settings) Validate() error {
	if strings.TrimSpace(s.ClubName) == "" {
		return ErrEmptyClubName
	}
	if _, err := strconv.ParseFloat(s.MonthlyFee, 64); err != nil {
		return ErrInvalidMonthlyFee
	}
	days, err := strconv.Atoi(s.ReminderDays)
	if err != nil || days < MinReminderDays || days > MaxReminderDays {
		return ErrInvalidReminderDays
	}
	return nil
}

// MonthlyFeeValue returns the fee as a float64, or 0 when unparseable.
func (s *Settings) MonthlyFeeValue() float64 {
	v, err := strconv.ParseFloat(s.MonthlyFee, 64)
	if err != nil {
		return 0
	}
	return v
}
