package settings

import (
	"strings"
	"testing"
)

func TestDefaults(t *testing.T) {
	s := Defaults()
	if err := s.Validate(); err != nil {
		t.Fatalf("defaults must validate, got %v", err)
	}
	if s.ClubName != "Badminton Club" {
		t.Errorf("clubName=%q want %q", s.ClubName, "Badminton Club")
	}
	if s.MonthlyFee != "50" || s.ReminderDays != "3" {
		t.Errorf("fee=%q days=%q want 50/3", s.MonthlyFee, s.ReminderDays)
	}
	for _, token := range []string{"{memberName}", "{monthName}", "{amount}", "{bankName}", "{accountNumber}", "{accountName}", "{qrCode}"} {
		if !strings.Contains(s.PaymentMessage, token) {
			t.Errorf("default template missing token %s", token)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Settings)
		wantErr error
	}{
		{"valid", func(s *Settings) {}, nil},
		{"empty club name", func(s *Settings) { s.ClubName = "" }, ErrEmptyClubName},
		{"bad fee", func(s *Settings) { s.MonthlyFee = "free" }, ErrInvalidMonthlyFee},
		{"reminder days too low", func(s *Settings) { s.ReminderDays = "0" }, ErrInvalidReminderDays},
		{"reminder days too high", func(s *Settings) { s.ReminderDays = "31" }, ErrInvalidReminderDays},
		{"reminder days not numeric", func(s *Settings) { s.ReminderDays = "soon" }, ErrInvalidReminderDays},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := Defaults()
			tc.mutate(&s)
			if err := s.Validate(); err != tc.wantErr {
				t.Errorf("Validate()=%v want %v", err, tc.wantErr)
			}
		})
	}
}
