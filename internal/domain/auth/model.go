package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// Auth mode constants
const (
	TypePassword  = "password"
	TypeMultiUser = "multi-user"
)

// Role constants
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Domain errors
var (
	ErrDuplicateUsername  = errors.New("username is already taken")
	ErrEmptyUsername      = errors.New("username cannot be empty")
	ErrEmptyPassword      = errors.New("password cannot be empty")
	ErrInvalidRole        = errors.New("role must be 'admin' or 'member'")
	ErrInvalidAuthType    = errors.New("auth type must be 'password' or 'multi-user'")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// User is an allowed login for multi-user mode.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// Settings is the singleton auth configuration. The collection is stored
// locally only and never mirrored to a remote backend.
type Settings struct {
	AuthType      string `json:"authType"`
	AdminPassword string `json:"adminPassword"`
	AllowedUsers  []User `json:"allowedUsers"`
	RequireAuth   bool   `json:"requireAuth"`
}

// Defaults returns the auth settings a fresh deployment starts with: no
// gate, simple password mode, no credential set.
func Defaults() Settings {
	return Settings{
		AuthType:     TypePassword,
		AllowedUsers: []User{},
	}
}

// Validate checks if the Settings have valid data.
// POST: Returns nil if valid, error otherwise
func (s *Settings) Validate() error {
	if s.AuthType != TypePassword && s.AuthType != TypeMultiUser {
		return ErrInvalidAuthType
	}
	if s.RequireAuth && s.AuthType == TypePassword && s.AdminPassword == "" {
		return ErrEmptyPassword
	}
	seen := make(map[string]bool, len(s.AllowedUsers))
	for _, u := range s.AllowedUsers {
		if strings.TrimSpace(u.Username) == "" {
			return ErrEmptyUsername
		}
		if u.Role != RoleAdmin && u.Role != RoleMember {
			return ErrInvalidRole
		}
		if seen[u.Username] {
			return ErrDuplicateUsername
		}
		seen[u.Username] = true
	}
	return nil
}

// AddUser appends a user after checking the username is unused.
// PRE: u has non-empty username and password
// POST: u is appended, or an error is returned and Settings are unchanged
func (s *Settings) AddUser(u User) error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if u.Password == "" {
		return ErrEmptyPassword
	}
	if u.Role != RoleAdmin && u.Role != RoleMember {
		return ErrInvalidRole
	}
	for _, existing := range s.AllowedUsers {
		if existing.Username == u.Username {
			return ErrDuplicateUsername
		}
	}
	s.AllowedUsers = append(s.AllowedUsers, u)
	return nil
}

// RemoveUser deletes the user with the given id. Unknown ids are a no-op.
func (s *Settings) RemoveUser(id string) {
	out := s.AllowedUsers[:0]
	for _, u := range s.AllowedUsers {
		if u.ID != id {
			out = append(out, u)
		}
	}
	s.AllowedUsers = out
}

// HasPermission reports whether a user with the given role satisfies the
// required role. Admins satisfy every requirement.
func HasPermission(role, required string) bool {
	if role == RoleAdmin {
		return true
	}
	return required == RoleMember && role == RoleMember
}

// Verifier compares a presented credential against a stored one. The stored
// form depends on the implementation: PlaintextVerifier keeps the historic
// byte-for-byte comparison, BcryptVerifier expects a bcrypt hash.
type Verifier interface {
	Verify(stored, presented string) bool
}

// PlaintextVerifier compares credentials byte for byte. This matches the
// historic behavior; hardening is explicitly out of scope and substituting
// BcryptVerifier requires no handler changes.
type PlaintextVerifier struct{}

// Verify reports whether presented equals stored. An empty stored
// credential never matches.
func (PlaintextVerifier) Verify(stored, presented string) bool {
	return stored != "" && stored == presented
}

// BcryptVerifier compares a presented password against a stored bcrypt hash.
type BcryptVerifier struct{}

// Verify reports whether presented matches the stored hash.
func (BcryptVerifier) Verify(stored, presented string) bool {
	if stored == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(presented)) == nil
}

// HashPassword produces a bcrypt hash suitable for BcryptVerifier storage.
// POST: returns the hash, or an error from the underlying implementation
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
