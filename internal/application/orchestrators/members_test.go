package orchestrators

import (
	"context"
	"testing"

	"clubhouse/internal/domain/member"
)

func memberDeps(t *testing.T) MemberDeps {
	t.Helper()
	return MemberDeps{
		Members:    newStore(t, "members", nil, []member.Member{}),
		GenerateID: sequentialIDs("m"),
	}
}

func TestExecuteAddMember(t *testing.T) {
	deps := memberDeps(t)

	got, err := ExecuteAddMember(context.Background(), AddMemberInput{Name: "Aisyah", Phone: "60123"}, deps)
	if err != nil {
		t.Fatalf("ExecuteAddMember: %v", err)
	}
	if got.ID != "m1" {
		t.Errorf("ID=%q want m1", got.ID)
	}

	var members []member.Member
	if err := deps.Members.Decode(&members); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(members) != 1 || members[0].Name != "Aisyah" {
		t.Errorf("members=%v", members)
	}
}

func TestExecuteAddMember_Invalid(t *testing.T) {
	deps := memberDeps(t)

	if _, err := ExecuteAddMember(context.Background(), AddMemberInput{Phone: "60123"}, deps); err != member.ErrEmptyName {
		t.Errorf("err=%v want ErrEmptyName", err)
	}
	var members []member.Member
	deps.Members.Decode(&members)
	if len(members) != 0 {
		t.Errorf("rejected add must not persist, got %v", members)
	}
}

func TestExecuteUpdateMember(t *testing.T) {
	deps := memberDeps(t)
	if _, err := ExecuteAddMember(context.Background(), AddMemberInput{Name: "Aisyah", Phone: "60123"}, deps); err != nil {
		t.Fatalf("seed: %v", err)
	}

	got, err := ExecuteUpdateMember(context.Background(),
		UpdateMemberInput{ID: "m1", Name: "Aisyah R", Phone: "60999", Email: "a@example.com"}, deps)
	if err != nil {
		t.Fatalf("ExecuteUpdateMember: %v", err)
	}
	if got.Phone != "60999" {
		t.Errorf("Phone=%q", got.Phone)
	}

	if _, err := ExecuteUpdateMember(context.Background(),
		UpdateMemberInput{ID: "missing", Name: "X", Phone: "1"}, deps); err != ErrMemberNotFound {
		t.Errorf("err=%v want ErrMemberNotFound", err)
	}
}

func TestExecuteDeleteMember_LeavesPaymentsAlone(t *testing.T) {
	deps := memberDeps(t)
	payments := PaymentDeps{
		Payments:   newStore(t, "payments", nil, []any{}),
		Members:    deps.Members,
		GenerateID: sequentialIDs("p"),
		Now:        fixedNow,
	}
	if _, err := ExecuteAddMember(context.Background(), AddMemberInput{Name: "Aisyah", Phone: "60123"}, deps); err != nil {
		t.Fatalf("seed member: %v", err)
	}
	if _, err := ExecuteRecordPayment(context.Background(),
		RecordPaymentInput{MemberID: "m1", Amount: "50", Month: "2026-08"}, payments); err != nil {
		t.Fatalf("seed payment: %v", err)
	}

	if err := ExecuteDeleteMember(context.Background(), "m1", deps); err != nil {
		t.Fatalf("ExecuteDeleteMember: %v", err)
	}

	var members []member.Member
	deps.Members.Decode(&members)
	if len(members) != 0 {
		t.Errorf("members=%v want empty", members)
	}
	var kept []map[string]any
	payments.Payments.Decode(&kept)
	if len(kept) != 1 {
		t.Errorf("payments=%v want the orphaned record kept", kept)
	}

	if err := ExecuteDeleteMember(context.Background(), "m1", deps); err != ErrMemberNotFound {
		t.Errorf("second delete=%v want ErrMemberNotFound", err)
	}
}
