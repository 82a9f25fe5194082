package session

import (
	"errors"
	"strconv"
	"strings"
)

// Player status values as exposed to clients.
const (
	StatusPlaying      = "playing"
	StatusWaitlisted   = "waitlist"
	StatusUnregistered = "not-registered"
)

// MinPlayers is the smallest capacity a session may be created with.
const MinPlayers = 2

// Domain errors
var (
	ErrEmptyDate        = errors.New("session date cannot be empty")
	ErrEmptyTime        = errors.New("session time cannot be empty")
	ErrEmptyVenue       = errors.New("session venue cannot be empty")
	ErrInvalidMonth     = errors.New("session month must be in YYYY-MM format")
	ErrInvalidCapacity  = errors.New("max players must be a whole number of at least 2")
	ErrDuplicateRoster  = errors.New("member appears in both players and waitlist")
	ErrCapacityExceeded = errors.New("players exceed max players")
)

// Session is a single playing session on the monthly schedule.
// Players holds confirmed attendees in join order; Waitlist holds members
// waiting for a slot in FIFO promotion order. A member id appears in at
// most one of the two lists. MaxPlayers is kept in its string wire form
// and parsed only when a capacity decision is made.
type Session struct {
	ID         string   `json:"id"`
	Month      string   `json:"month"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Venue      string   `json:"venue"`
	MaxPlayers string   `json:"maxPlayers"`
	Notes      string   `json:"notes,omitempty"`
	Players    []string `json:"players"`
	Waitlist   []string `json:"waitlist"`
}

// TogglePolicy controls roster transition behavior.
type TogglePolicy struct {
	// PromoteOnLeave promotes the waitlist head when a confirmed player
	// leaves. The legacy behavior is no promotion: a freed slot is only
	// claimed when a waitlisted member is toggled again.
	PromoteOnLeave bool
}

// Validate checks if the Session has valid data.
// PRE: Session struct is populated
// POST: Returns nil if valid, error otherwise
func (s *Session) Validate() error {
	if !isValidMonth(s.Month) {
		return ErrInvalidMonth
	}
	if strings.TrimSpace(s.Date) == "" {
		return ErrEmptyDate
	}
	if strings.TrimSpace(s.Time) == "" {
		return ErrEmptyTime
	}
	if strings.TrimSpace(s.Venue) == "" {
		return ErrEmptyVenue
	}
	capacity, err := strconv.Atoi(s.MaxPlayers)
	if err != nil || capacity < MinPlayers {
		return ErrInvalidCapacity
	}
	return s.checkRoster(capacity)
}

// checkRoster verifies the roster invariants against the given capacity.
func (s *Session) checkRoster(capacity int) error {
	if len(s.Players) > capacity {
		return ErrCapacityExceeded
	}
	seen := make(map[string]bool, len(s.Players)+len(s.Waitlist))
	for _, id := range s.Players {
		if seen[id] {
			return ErrDuplicateRoster
		}
		seen[id] = true
	}
	for _, id := range s.Waitlist {
		if seen[id] {
			return ErrDuplicateRoster
		}
		seen[id] = true
	}
	return nil
}

// Capacity returns MaxPlayers as an integer. A non-numeric value parses
// as 0, which makes the session permanently full; upstream validation
// rejects such input before it reaches a roster decision.
func (s *Session) Capacity() int {
	n, err := strconv.Atoi(s.MaxPlayers)
	if err != nil {
		return 0
	}
	return n
}

// Toggle applies the legacy roster transition for the given member.
// PRE: memberID is non-empty
// POST: Roster invariants hold; see ToggleWith for the transition table
func (s *Session) Toggle(memberID string) {
	s.ToggleWith(memberID, TogglePolicy{})
}

// ToggleWith applies one roster state transition for the given member:
//
//   - playing    -> removed from players (waitlist untouched unless
//     policy.PromoteOnLeave, which promotes the waitlist head)
//   - waitlisted -> promoted to the players tail when a slot is free,
//     otherwise the waitlist request is cancelled
//   - otherwise  -> appended to players when a slot is free, otherwise
//     appended to the waitlist tail
//
// POST: len(Players) <= capacity; memberID appears in at most one list;
// relative waitlist order of untouched members is preserved
func (s *Session) ToggleWith(memberID string, policy TogglePolicy) {
	capacity := s.Capacity()

	switch {
	case contains(s.Players, memberID):
		s.Players = remove(s.Players, memberID)
		if policy.PromoteOnLeave && len(s.Waitlist) > 0 && len(s.Players) < capacity {
			head := s.Waitlist[0]
			s.Waitlist = s.Waitlist[1:]
			s.Players = append(s.Players, head)
		}
	case contains(s.Waitlist, memberID):
		if len(s.Players) < capacity {
			s.Waitlist = remove(s.Waitlist, memberID)
			s.Players = append(s.Players, memberID)
		} else {
			s.Waitlist = remove(s.Waitlist, memberID)
		}
	default:
		if len(s.Players) < capacity {
			s.Players = append(s.Players, memberID)
		} else {
			s.Waitlist = append(s.Waitlist, memberID)
		}
	}
}

// PlayerStatus reports where the member currently stands for this session.
// INVARIANT: Session is not mutated
func (s *Session) PlayerStatus(memberID string) string {
	if contains(s.Players, memberID) {
		return StatusPlaying
	}
	if contains(s.Waitlist, memberID) {
		return StatusWaitlisted
	}
	return StatusUnregistered
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func remove(ids []string, id string) []string {
	out := make([]string, 0, len(ids))
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}

func isValidMonth(month string) bool {
	if len(month) != 7 || month[4] != '-' {
		return false
	}
	year, err := strconv.Atoi(month[:4])
	if err != nil || year < 1000 {
		return false
	}
	m, err := strconv.Atoi(month[5:])
	if err != nil || m < 1 || m > 12 {
		return false
	}
	return true
}
