package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/member"
)

var ErrMemberNotFound = errors.New("member not found")

// MemberDeps holds dependencies for the member orchestrators.
type MemberDeps struct {
	Members    *syncstore.Store
	GenerateID func() string
}

// AddMemberInput carries the fields for a new roster entry.
type AddMemberInput struct {
	Name  string
	Phone string
	Email string
}

// ExecuteAddMember validates and appends a member to the roster.
// PRE: Input has a non-empty name and phone
// POST: Member is persisted with a fresh id; returns the created record
func ExecuteAddMember(ctx context.Context, input AddMemberInput, deps MemberDeps) (member.Member, error) {
	m := member.Member{
		ID:    deps.GenerateID(),
		Name:  input.Name,
		Phone: input.Phone,
		Email: input.Email,
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}

	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return member.Member{}, err
	}
	members = append(members, m)
	if err := deps.Members.SetData(ctx, members); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_added", "member_id", m.ID, "name", m.Name)
	return m, nil
}

// UpdateMemberInput carries the replacement fields for an existing member.
type UpdateMemberInput struct {
	ID    string
	Name  string
	Phone string
	Email string
}

// ExecuteUpdateMember replaces a member's details in place.
// POST: The member keeps its id; payment snapshots are not re-synced
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps MemberDeps) (member.Member, error) {
	m := member.Member{ID: input.ID, Name: input.Name, Phone: input.Phone, Email: input.Email}
	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}

	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return member.Member{}, err
	}
	found := false
	for i := range members {
		if members[i].ID == input.ID {
			members[i] = m
			found = true
			break
		}
	}
	if !found {
		return member.Member{}, ErrMemberNotFound
	}
	if err := deps.Members.SetData(ctx, members); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_updated", "member_id", m.ID)
	return m, nil
}

// ExecuteDeleteMember removes a member from the roster. Payments and session
// rosters referencing the id are deliberately left untouched; readers treat
// the dangling id as an unknown member.
func ExecuteDeleteMember(ctx context.Context, id string, deps MemberDeps) error {
	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		return err
	}
	kept := members[:0]
	for _, m := range members {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	if len(kept) == len(members) {
		return ErrMemberNotFound
	}
	if err := deps.Members.SetData(ctx, kept); err != nil {
		return err
	}

	slog.Info("member_deleted", "member_id", id)
	return nil
}
