package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/pkg/api"
)

func createGroup(t *testing.T, env *testEnv, name string, members ...string) *api.Group {
	t.Helper()

	resp, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(&api.CreateGroupRequest{
		Name:    name,
		Members: members,
	}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return resp.Msg.Group
}

func expectCode(t *testing.T, err error, want connect.Code) {
	t.Helper()

	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Errorf("expected code %v, got %v (%v)", want, got, err)
	}
}

func TestCreateGroup(t *testing.T) {
	env := setupTestServer(t)

	group := createGroup(t, env, "Roommates", "Alice", "Bob", "Charlie")

	if group.ID == "" {
		t.Error("expected non-empty group ID")
	}
	if group.Name != "Roommates" {
		t.Errorf("name: expected 'Roommates', got '%s'", group.Name)
	}
	if len(group.Members) != 3 {
		t.Fatalf("members: expected 3, got %d", len(group.Members))
	}
	for i, want := range []string{"Alice", "Bob", "Charlie"} {
		if group.Members[i].Name != want {
			t.Errorf("member %d: expected %s, got %s", i, want, group.Members[i].Name)
		}
	}
	if group.CreatedAt == 0 {
		t.Error("expected non-zero CreatedAt")
	}
	if group.Budget != nil {
		t.Errorf("expected no budget, got %s", group.Budget)
	}
}

func TestCreateGroup_CleansMemberNames(t *testing.T) {
	env := setupTestServer(t)

	group := createGroup(t, env, "  Trip  ", " Alice ", "", "Bob", "Alice", "   ")

	if group.Name != "Trip" {
		t.Errorf("name: expected 'Trip', got '%s'", group.Name)
	}
	if len(group.Members) != 2 {
		t.Fatalf("members: expected 2, got %+v", group.Members)
	}
	if group.Members[0].Name != "Alice" || group.Members[1].Name != "Bob" {
		t.Errorf("unexpected roster: %+v", group.Members)
	}
}

func TestCreateGroup_Validation(t *testing.T) {
	env := setupTestServer(t)
	negative := decimal.RequireFromString("-5")
	fractional := decimal.RequireFromString("10.005")

	tests := []struct {
		name string
		req  *api.CreateGroupRequest
	}{
		{"blank name", &api.CreateGroupRequest{Name: "  ", Members: []string{"Alice"}}},
		{"negative budget", &api.CreateGroupRequest{Name: "Trip", Budget: &negative}},
		{"sub-cent budget", &api.CreateGroupRequest{Name: "Trip", Budget: &fractional}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.CreateGroup(context.Background(), connect.NewRequest(tt.req))
			expectCode(t, err, connect.CodeInvalidArgument)
		})
	}
}

func TestGetGroup(t *testing.T) {
	env := setupTestServer(t)
	created := createGroup(t, env, "Work Lunch", "Diana", "Eve")

	resp, err := env.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{
		GroupID: created.ID,
	}))
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}

	group := resp.Msg.Group
	if group.ID != created.ID {
		t.Errorf("ID: expected %s, got %s", created.ID, group.ID)
	}
	if group.Name != "Work Lunch" {
		t.Errorf("name: expected 'Work Lunch', got '%s'", group.Name)
	}
	if len(group.Members) != 2 || group.Members[0] != created.Members[0] {
		t.Errorf("members: expected %+v, got %+v", created.Members, group.Members)
	}
}

func TestGetGroup_NotFound(t *testing.T) {
	env := setupTestServer(t)

	_, err := env.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{
		GroupID: "non-existent-id",
	}))
	expectCode(t, err, connect.CodeNotFound)

	_, err = env.groups.GetGroup(context.Background(), connect.NewRequest(&api.GetGroupRequest{}))
	expectCode(t, err, connect.CodeInvalidArgument)
}

func TestListGroups(t *testing.T) {
	env := setupTestServer(t)

	resp, err := env.groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 0 {
		t.Errorf("expected no groups, got %d", len(resp.Msg.Groups))
	}

	createGroup(t, env, "Group 1", "Alice")
	createGroup(t, env, "Group 2", "Bob", "Charlie")

	resp, err = env.groups.ListGroups(context.Background(), connect.NewRequest(&api.ListGroupsRequest{}))
	if err != nil {
		t.Fatalf("ListGroups failed: %v", err)
	}
	if len(resp.Msg.Groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(resp.Msg.Groups))
	}
	if resp.Msg.Groups[0].Name != "Group 2" {
		t.Errorf("expected newest group first, got %s", resp.Msg.Groups[0].Name)
	}
}

func TestAddMember(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "Trip", "Alice")
	ctx := context.Background()

	resp, err := env.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{
		GroupID: group.ID,
		Name:    " Bob ",
	}))
	if err != nil {
		t.Fatalf("AddMember failed: %v", err)
	}
	if resp.Msg.Member.Name != "Bob" {
		t.Errorf("name: expected 'Bob', got '%s'", resp.Msg.Member.Name)
	}
	if resp.Msg.Member.ID <= group.Members[0].ID {
		t.Errorf("expected member ID above %d, got %d", group.Members[0].ID, resp.Msg.Member.ID)
	}

	t.Run("duplicate name", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: group.ID, Name: "Alice"}))
		expectCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: group.ID, Name: " "}))
		expectCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := env.groups.AddMember(ctx, connect.NewRequest(&api.AddMemberRequest{GroupID: "missing", Name: "Zed"}))
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestDeleteGroup(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "To Delete", "Alice")
	ctx := context.Background()

	_, err := env.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	if err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}

	_, err = env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeNotFound)

	_, err = env.groups.DeleteGroup(ctx, connect.NewRequest(&api.DeleteGroupRequest{GroupID: group.ID}))
	expectCode(t, err, connect.CodeNotFound)
}

func TestBudget(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "Trip", "Alice", "Bob")
	alice := group.Members[0].ID
	ctx := context.Background()

	_, err := env.ledger.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:     group.ID,
		PayerID:     alice,
		Description: "Hotel",
		Amount:      decimal.RequireFromString("85"),
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}

	t.Run("no budget", func(t *testing.T) {
		resp, err := env.groups.GetBudgetStatus(ctx, connect.NewRequest(&api.GetBudgetStatusRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetBudgetStatus failed: %v", err)
		}
		status := resp.Msg.Status
		if !status.TotalSpent.Equal(decimal.RequireFromString("85")) {
			t.Errorf("total spent: expected 85, got %s", status.TotalSpent)
		}
		if status.Budget != nil || len(status.Alerts) != 0 {
			t.Errorf("expected no budget and no alerts, got %+v", status)
		}
	})

	t.Run("set budget", func(t *testing.T) {
		budget := decimal.RequireFromString("100")
		resp, err := env.groups.SetBudget(ctx, connect.NewRequest(&api.SetBudgetRequest{GroupID: group.ID, Budget: &budget}))
		if err != nil {
			t.Fatalf("SetBudget failed: %v", err)
		}
		status := resp.Msg.Status
		if !status.PercentageUsed.Equal(decimal.RequireFromString("85")) {
			t.Errorf("percentage used: expected 85, got %s", status.PercentageUsed)
		}
		if len(status.Alerts) != 1 || status.Alerts[0] != "80% of budget used - nearing limit" {
			t.Errorf("unexpected alerts: %v", status.Alerts)
		}

		got, err := env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if got.Msg.Group.Budget == nil || !got.Msg.Group.Budget.Equal(budget) {
			t.Errorf("group budget: expected %s, got %v", budget, got.Msg.Group.Budget)
		}
	})

	t.Run("over budget", func(t *testing.T) {
		budget := decimal.RequireFromString("68")
		_, err := env.groups.SetBudget(ctx, connect.NewRequest(&api.SetBudgetRequest{GroupID: group.ID, Budget: &budget}))
		if err != nil {
			t.Fatalf("SetBudget failed: %v", err)
		}

		resp, err := env.groups.GetBudgetStatus(ctx, connect.NewRequest(&api.GetBudgetStatusRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetBudgetStatus failed: %v", err)
		}
		if alerts := resp.Msg.Status.Alerts; len(alerts) != 1 || alerts[0] != "Budget exceeded by 25.0%" {
			t.Errorf("unexpected alerts: %v", alerts)
		}
	})

	t.Run("clear budget", func(t *testing.T) {
		resp, err := env.groups.SetBudget(ctx, connect.NewRequest(&api.SetBudgetRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("SetBudget failed: %v", err)
		}
		if resp.Msg.Status.Budget != nil {
			t.Errorf("expected budget cleared, got %s", resp.Msg.Status.Budget)
		}
	})

	t.Run("missing group", func(t *testing.T) {
		_, err := env.groups.SetBudget(ctx, connect.NewRequest(&api.SetBudgetRequest{GroupID: "missing"}))
		expectCode(t, err, connect.CodeNotFound)
	})
}

func TestCleanMemberNames(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"empty", nil, []string{}},
		{"trims", []string{" a ", "b"}, []string{"a", "b"}},
		{"drops blanks", []string{"", "  ", "a"}, []string{"a"}},
		{"keeps first of repeats", []string{"b", "a", "b "}, []string{"b", "a"}},
		{"case sensitive", []string{"Sam", "sam"}, []string{"Sam", "sam"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cleanMemberNames(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: expected %q, got %q", i, tt.want[i], got[i])
				}
			}
		})
	}
}

func TestRemoveMember(t *testing.T) {
	env := setupTestServer(t)
	group := createGroup(t, env, "Trip", "Alice", "Bob", "Charlie", "Dave")
	alice, bob, charlie, dave := group.Members[0].ID, group.Members[1].ID, group.Members[2].ID, group.Members[3].ID
	ctx := context.Background()

	_, err := env.ledger.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID:      group.ID,
		PayerID:      alice,
		Description:  "Fuel",
		Amount:       decimal.RequireFromString("40"),
		Participants: []int64{alice, bob},
	}))
	if err != nil {
		t.Fatalf("CreateExpense failed: %v", err)
	}
	_, err = env.ledger.RecordPayment(ctx, connect.NewRequest(&api.RecordPaymentRequest{
		GroupID:      group.ID,
		FromMemberID: bob,
		ToMemberID:   charlie,
		Amount:       decimal.RequireFromString("5"),
	}))
	if err != nil {
		t.Fatalf("RecordPayment failed: %v", err)
	}

	tests := []struct {
		name     string
		groupID  string
		memberID int64
		want     connect.Code
	}{
		{"payer", group.ID, alice, connect.CodeFailedPrecondition},
		{"shareholder", group.ID, bob, connect.CodeFailedPrecondition},
		{"payment party", group.ID, charlie, connect.CodeFailedPrecondition},
		{"unknown member", group.ID, 99999, connect.CodeNotFound},
		{"missing group", "missing", dave, connect.CodeNotFound},
		{"blank group", "", dave, connect.CodeInvalidArgument},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{
				GroupID:  tt.groupID,
				MemberID: tt.memberID,
			}))
			expectCode(t, err, tt.want)
		})
	}

	t.Run("unreferenced member", func(t *testing.T) {
		before, err := env.ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetBalances failed: %v", err)
		}

		_, err = env.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{GroupID: group.ID, MemberID: dave}))
		if err != nil {
			t.Fatalf("RemoveMember failed: %v", err)
		}

		got, err := env.groups.GetGroup(ctx, connect.NewRequest(&api.GetGroupRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Msg.Group.Members) != 3 {
			t.Fatalf("members: expected 3, got %+v", got.Msg.Group.Members)
		}

		after, err := env.ledger.GetBalances(ctx, connect.NewRequest(&api.GetBalancesRequest{GroupID: group.ID}))
		if err != nil {
			t.Fatalf("GetBalances after removal failed: %v", err)
		}
		if len(after.Msg.Balances) != 3 {
			t.Fatalf("balances: expected 3, got %d", len(after.Msg.Balances))
		}
		sum := decimal.Zero
		for i, b := range after.Msg.Balances {
			if b.MemberID != before.Msg.Balances[i].MemberID || !b.Net.Equal(before.Msg.Balances[i].Net) {
				t.Errorf("balance %d changed: before %+v, after %+v", i, before.Msg.Balances[i], b)
			}
			sum = sum.Add(b.Net)
		}
		if !sum.IsZero() {
			t.Errorf("balances sum to %s, expected 0", sum)
		}
		if len(after.Msg.Settlements) != len(before.Msg.Settlements) {
			t.Errorf("settlements changed: before %d, after %d", len(before.Msg.Settlements), len(after.Msg.Settlements))
		}
	})

	t.Run("last member", func(t *testing.T) {
		solo := createGroup(t, env, "Solo", "Erin")
		_, err := env.groups.RemoveMember(ctx, connect.NewRequest(&api.RemoveMemberRequest{
			GroupID:  solo.ID,
			MemberID: solo.Members[0].ID,
		}))
		expectCode(t, err, connect.CodeFailedPrecondition)
	})
}
