// Package reminder renders WhatsApp payment reminder texts from the
// club's message template.
package reminder

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"clubhouse/internal/domain/settings"
)

// QRCodeHint is substituted for {qrCode} when the club has a QR code image
// configured; without one the token renders as an empty string.
const QRCodeHint = "QR Code will be sent separately for easy payment 📱"

// Fields carries the values substituted into a reminder template.
type Fields struct {
	MemberName    string
	MonthName     string
	Amount        string
	BankName      string
	AccountNumber string
	AccountName   string
	HasQRCode     bool
}

// Render substitutes the seven placeholder tokens into the template.
// Each token is replaced at its first occurrence only; repeats of the same
// token are left as-is. There is no escaping, no recursive expansion and no
// unknown-token detection.
func Render(template string, f Fields) string {
	qr := ""
	if f.HasQRCode {
		qr = QRCodeHint
	}
	out := strings.Replace(template, "{memberName}", f.MemberName, 1)
	out = strings.Replace(out, "{monthName}", f.MonthName, 1)
	out = strings.Replace(out, "{amount}", f.Amount, 1)
	out = strings.Replace(out, "{bankName}", f.BankName, 1)
	out = strings.Replace(out, "{accountNumber}", f.AccountNumber, 1)
	out = strings.Replace(out, "{accountName}", f.AccountName, 1)
	out = strings.Replace(out, "{qrCode}", qr, 1)
	return out
}

// ForMember renders the club's configured template (falling back to the
// stock template when unset) for one member and month.
// PRE: month is in YYYY-MM format
func ForMember(s settings.Settings, memberName, amount, month string) string {
	template := s.PaymentMessage
	if template == "" {
		template = settings.DefaultPaymentMessage
	}
	monthName, err := MonthName(month)
	if err != nil {
		monthName = month
	}
	return Render(template, Fields{
		MemberName:    memberName,
		MonthName:     monthName,
		Amount:        amount,
		BankName:      s.BankName,
		AccountNumber: s.AccountNumber,
		AccountName:   s.AccountName,
		HasQRCode:     s.QRCodeURL != "",
	})
}

// MonthName formats a YYYY-MM month as "January 2026".
func MonthName(month string) (string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", fmt.Errorf("invalid month %q: %w", month, err)
	}
	return t.Format("January 2006"), nil
}

// WhatsAppLink builds a wa.me deep link for the given phone and message.
// The phone is stripped to digits only; the message is URL-encoded.
func WhatsAppLink(phone, message string) string {
	var digits strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	return "https://wa.me/" + digits.String() + "?text=" + url.QueryEscape(message)
}
