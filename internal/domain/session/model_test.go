package session

import (
	"reflect"
	"testing"
)

func newSession(maxPlayers string) Session {
	return Session{
		ID:         "s1",
		Month:      "2026-08",
		Date:       "2026-08-14",
		Time:       "19:00",
		Venue:      "Sports Complex Hall A",
		MaxPlayers: maxPlayers,
	}
}

// TestToggle_FillThenWaitlist walks the full join sequence: players fill up
// to capacity, later joiners land on the waitlist in arrival order.
func TestToggle_FillThenWaitlist(t *testing.T) {
	s := newSession("2")

	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("c")
	s.Toggle("d")

	if want := []string{"a", "b"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
	if want := []string{"c", "d"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v", s.Waitlist, want)
	}
}

// TestToggle_LeaveDoesNotPromote verifies the legacy quirk: a player leaving
// frees a slot but the waitlist head is NOT promoted automatically.
func TestToggle_LeaveDoesNotPromote(t *testing.T) {
	s := newSession("2")
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("c") // waitlisted

	s.Toggle("a") // a leaves

	if want := []string{"b"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
	if want := []string{"c"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v (c must not be auto-promoted)", s.Waitlist, want)
	}

	// Re-toggling c claims the freed slot.
	s.Toggle("c")
	if want := []string{"b", "c"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
	if len(s.Waitlist) != 0 {
		t.Errorf("waitlist=%v want empty", s.Waitlist)
	}
}

// TestToggleWith_PromoteOnLeave verifies the opt-in promotion policy: when a
// player leaves, the waitlist head moves up and FIFO order is preserved.
func TestToggleWith_PromoteOnLeave(t *testing.T) {
	s := newSession("2")
	s.Toggle("a")
	s.Toggle("b")
	s.Toggle("c")
	s.Toggle("d")

	s.ToggleWith("a", TogglePolicy{PromoteOnLeave: true})

	if want := []string{"b", "c"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
	if want := []string{"d"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v", s.Waitlist, want)
	}
}

// TestToggle_WaitlistCancel verifies that toggling a waitlisted member while
// the session is still full cancels the waitlist request, leaving the order
// of the remaining waitlisted members unchanged.
func TestToggle_WaitlistCancel(t *testing.T) {
	s := newSession("2")
	for _, id := range []string{"a", "b", "c", "d", "e"} {
		s.Toggle(id)
	}

	s.Toggle("d") // full, so d's waitlist request is cancelled

	if want := []string{"c", "e"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v", s.Waitlist, want)
	}
	if want := []string{"a", "b"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
}

// TestToggle_WaitlistPromotionKeepsOrder verifies that promoting one
// waitlisted member does not reorder the others.
func TestToggle_WaitlistPromotionKeepsOrder(t *testing.T) {
	s := newSession("3")
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		s.Toggle(id)
	}
	// players=[a b c] waitlist=[d e f]
	s.Toggle("a") // free a slot
	s.Toggle("e") // e (not the head) re-toggles and claims it

	if want := []string{"b", "c", "e"}; !reflect.DeepEqual(s.Players, want) {
		t.Errorf("players=%v want %v", s.Players, want)
	}
	if want := []string{"d", "f"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v", s.Waitlist, want)
	}
}

// TestToggle_InvariantsUnderRandomSequence applies a long toggle sequence and
// checks the roster invariants after every step.
func TestToggle_InvariantsUnderRandomSequence(t *testing.T) {
	s := newSession("4")
	members := []string{"m1", "m2", "m3", "m4", "m5", "m6", "m7"}
	seq := []int{0, 1, 2, 3, 4, 5, 6, 0, 2, 4, 6, 1, 3, 5, 0, 1, 2, 3, 4, 5, 6, 6, 5, 4}

	for step, i := range seq {
		s.Toggle(members[i])

		if len(s.Players) > 4 {
			t.Fatalf("step %d: players=%v exceeds capacity", step, s.Players)
		}
		seen := make(map[string]int)
		for _, id := range s.Players {
			seen[id]++
		}
		for _, id := range s.Waitlist {
			seen[id]++
		}
		for id, n := range seen {
			if n > 1 {
				t.Fatalf("step %d: member %s appears %d times across rosters", step, id, n)
			}
		}
	}
}

func TestPlayerStatus(t *testing.T) {
	s := newSession("2")
	s.Players = []string{"a", "b"}
	s.Waitlist = []string{"c"}

	cases := []struct {
		memberID string
		want     string
	}{
		{"a", StatusPlaying},
		{"b", StatusPlaying},
		{"c", StatusWaitlisted},
		{"z", StatusUnregistered},
	}
	for _, tc := range cases {
		if got := s.PlayerStatus(tc.memberID); got != tc.want {
			t.Errorf("PlayerStatus(%q)=%q want %q", tc.memberID, got, tc.want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Session)
		wantErr error
	}{
		{"valid", func(s *Session) {}, nil},
		{"bad month", func(s *Session) { s.Month = "August" }, ErrInvalidMonth},
		{"empty venue", func(s *Session) { s.Venue = " " }, ErrEmptyVenue},
		{"non-numeric capacity", func(s *Session) { s.MaxPlayers = "lots" }, ErrInvalidCapacity},
		{"capacity below minimum", func(s *Session) { s.MaxPlayers = "1" }, ErrInvalidCapacity},
		{"duplicate across rosters", func(s *Session) {
			s.Players = []string{"a"}
			s.Waitlist = []string{"a"}
		}, ErrDuplicateRoster},
		{"over capacity", func(s *Session) {
			s.Players = []string{"a", "b", "c"}
		}, ErrCapacityExceeded},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newSession("2")
			tc.mutate(&s)
			if err := s.Validate(); err != tc.wantErr {
				t.Errorf("Validate()=%v want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCapacity_NonNumericIsFull(t *testing.T) {
	s := newSession("nope")
	s.Toggle("a")
	if len(s.Players) != 0 {
		t.Errorf("players=%v want empty for unparseable capacity", s.Players)
	}
	if want := []string{"a"}; !reflect.DeepEqual(s.Waitlist, want) {
		t.Errorf("waitlist=%v want %v", s.Waitlist, want)
	}
}
