package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/session"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionDeps holds dependencies for the schedule orchestrators.
type SessionDeps struct {
	Schedule   *syncstore.Store
	GenerateID func() string
	// PromoteOnLeave switches the roster toggle to backfill a freed slot
	// from the waitlist head. Off by default.
	PromoteOnLeave bool
}

// AddSessionInput carries the fields for a new scheduled session.
type AddSessionInput struct {
	Month      string // YYYY-MM
	Date       string
	Time       string
	Venue      string
	MaxPlayers string
	Notes      string
}

// ExecuteAddSession validates and appends a session with empty rosters.
func ExecuteAddSession(ctx context.Context, input AddSessionInput, deps SessionDeps) (session.Session, error) {
	s := session.Session{
		ID:         deps.GenerateID(),
		Month:      input.Month,
		Date:       input.Date,
		Time:       input.Time,
		Venue:      input.Venue,
		MaxPlayers: input.MaxPlayers,
		Notes:      input.Notes,
		Players:    []string{},
		Waitlist:   []string{},
	}
	if err := s.Validate(); err != nil {
		return session.Session{}, err
	}

	var sessions []session.Session
	if err := deps.Schedule.Decode(&sessions); err != nil {
		return session.Session{}, err
	}
	sessions = append(sessions, s)
	if err := deps.Schedule.SetData(ctx, sessions); err != nil {
		return session.Session{}, err
	}

	slog.Info("session_added", "session_id", s.ID, "date", s.Date, "venue", s.Venue)
	return s, nil
}

// ExecuteDeleteSession removes a session together with its player roster and
// waitlist. The deletion is destructive; there is no archive.
func ExecuteDeleteSession(ctx context.Context, id string, deps SessionDeps) error {
	var sessions []session.Session
	if err := deps.Schedule.Decode(&sessions); err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(sessions) {
		return ErrSessionNotFound
	}
	if err := deps.Schedule.SetData(ctx, kept); err != nil {
		return err
	}

	slog.Info("session_deleted", "session_id", id)
	return nil
}

// TogglePlayerInput identifies the session and member to toggle.
type TogglePlayerInput struct {
	SessionID string
	MemberID  string
}

// TogglePlayerResult reports the member's registration state after the
// toggle and the updated session.
type TogglePlayerResult struct {
	Status  string
	Session session.Session
}

// ExecuteTogglePlayer cycles a member through the session roster: join,
// promote-or-cancel from the waitlist, or leave.
// POST: The session's roster invariants hold; the member's new status is
// returned
func ExecuteTogglePlayer(ctx context.Context, input TogglePlayerInput, deps SessionDeps) (TogglePlayerResult, error) {
	var sessions []session.Session
	if err := deps.Schedule.Decode(&sessions); err != nil {
		return TogglePlayerResult{}, err
	}

	idx := -1
	for i := range sessions {
		if sessions[i].ID == input.SessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return TogglePlayerResult{}, ErrSessionNotFound
	}

	policy := session.TogglePolicy{PromoteOnLeave: deps.PromoteOnLeave}
	sessions[idx].ToggleWith(input.MemberID, policy)
	if err := deps.Schedule.SetData(ctx, sessions); err != nil {
		return TogglePlayerResult{}, err
	}

	status := sessions[idx].PlayerStatus(input.MemberID)
	slog.Info("session_toggle",
		"session_id", input.SessionID, "member_id", input.MemberID, "status", status)
	return TogglePlayerResult{Status: status, Session: sessions[idx]}, nil
}
