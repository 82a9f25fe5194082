package payment

import "testing"

func TestValidate(t *testing.T) {
	valid := Payment{
		ID:         "p1",
		MemberID:   "m1",
		MemberName: "Aisyah",
		Amount:     "50",
		Month:      "2026-08",
		Date:       "2026-08-05",
	}

	cases := []struct {
		name    string
		mutate  func(*Payment)
		wantErr error
	}{
		{"valid", func(p *Payment) {}, nil},
		{"decimal amount", func(p *Payment) { p.Amount = "52.50" }, nil},
		{"missing member", func(p *Payment) { p.MemberID = "" }, ErrEmptyMemberID},
		{"bad amount", func(p *Payment) { p.Amount = "fifty" }, ErrInvalidAmount},
		{"bad month", func(p *Payment) { p.Month = "08-2026" }, ErrInvalidMonth},
		{"month too short", func(p *Payment) { p.Month = "2026-8" }, ErrInvalidMonth},
		{"empty date", func(p *Payment) { p.Date = "" }, ErrEmptyDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if err := p.Validate(); err != tc.wantErr {
				t.Errorf("Validate()=%v want %v", err, tc.wantErr)
			}
		})
	}
}

func TestAmountValue(t *testing.T) {
	p := Payment{Amount: "52.50"}
	if got := p.AmountValue(); got != 52.5 {
		t.Errorf("AmountValue()=%v want 52.5", got)
	}
	p.Amount = "junk"
	if got := p.AmountValue(); got != 0 {
		t.Errorf("AmountValue()=%v want 0 for unparseable amount", got)
	}
}
