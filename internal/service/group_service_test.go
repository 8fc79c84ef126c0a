package service

import (
	"context"
	"testing"

	"teamtasks/internal/model"
)

func TestGroupCreateMakesOwnerMember(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	signIn(t, store, "user-1")
	svc := NewGroupService(store)

	group, err := svc.Create(ctx, "Platform", "infra work", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if group.OwnerID != "user-1" {
		t.Errorf("owner = %q, want the signed-in user", group.OwnerID)
	}

	members, err := store.Members.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 || members[0].UserID != "user-1" || members[0].Role != model.MemberRoleOwner {
		t.Errorf("members = %v, want the creator as OWNER", members)
	}

	groupItems, err := store.Queue.ListByEntity(ctx, TableGroups, group.ID)
	if err != nil {
		t.Fatalf("list group queue: %v", err)
	}
	if len(groupItems) != 1 || groupItems[0].Operation != model.SyncOpCreate {
		t.Errorf("group queue = %v, want one CREATE", groupItems)
	}
	memberItems, err := store.Queue.ListByEntity(ctx, TableGroupMembers, members[0].ID)
	if err != nil {
		t.Fatalf("list member queue: %v", err)
	}
	if len(memberItems) != 1 || memberItems[0].Operation != model.SyncOpCreate {
		t.Errorf("member queue = %v, want one CREATE", memberItems)
	}
}

func TestGroupCreateRequiresName(t *testing.T) {
	store := openTestStore(t)
	signIn(t, store, "user-1")
	svc := NewGroupService(store)
	if _, err := svc.Create(context.Background(), "", "", nil); err == nil {
		t.Fatal("expected an error for an empty name")
	}
}

func TestAddAndRemoveMember(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	signIn(t, store, "user-2")
	signIn(t, store, "user-1")
	svc := NewGroupService(store)

	group, err := svc.Create(ctx, "Oncall", "", nil)
	if err != nil {
		t.Fatalf("create group: %v", err)
	}

	member, err := svc.AddMember(ctx, group.ID, "user-2", "")
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if member.Role != model.MemberRoleMember {
		t.Errorf("role = %q, want MEMBER default", member.Role)
	}

	logs, err := store.Logs.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("list logs: %v", err)
	}
	var sawAdd bool
	for _, entry := range logs {
		if entry.Action == model.ActionMemberAdded {
			sawAdd = true
		}
	}
	if !sawAdd {
		t.Error("no MEMBER_ADDED audit entry")
	}

	if err := svc.RemoveMember(ctx, member.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}
	members, err := store.Members.ListByGroup(ctx, group.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 1 {
		t.Errorf("members after removal = %v, want only the owner", members)
	}

	items, err := store.Queue.ListByEntity(ctx, TableGroupMembers, member.ID)
	if err != nil {
		t.Fatalf("list queue: %v", err)
	}
	if len(items) != 2 || items[1].Operation != model.SyncOpDelete {
		t.Errorf("queue = %v, want create then delete", items)
	}

	// Removing an already-removed member is a no-op.
	if err := svc.RemoveMember(ctx, member.ID); err != nil {
		t.Errorf("remove missing member: %v", err)
	}
}

func TestAddMemberUnknownGroup(t *testing.T) {
	store := openTestStore(t)
	signIn(t, store, "user-1")
	svc := NewGroupService(store)
	if _, err := svc.AddMember(context.Background(), "no-such-group", "user-1", model.MemberRoleAdmin); err == nil {
		t.Fatal("expected an error for an unknown group")
	}
}
