package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Domain errors
var (
	ErrEmptyName   = errors.New("member name cannot be empty")
	ErrNameTooLong = errors.New("member name cannot exceed 100 characters")
	ErrEmptyPhone  = errors.New("member phone cannot be empty")
)

// Member is one person on the club roster. Phone is the WhatsApp number in
// whatever format the admin typed it; it is normalized to digits only when a
// deep link is built, never in storage. Email is optional. No uniqueness is
// enforced on phone or email.
type Member struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(m.Phone) == "" {
		return ErrEmptyPhone
	}
	return nil
}
