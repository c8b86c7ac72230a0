package models

import "testing"

func TestPinnedRank(t *testing.T) {
	cases := []struct {
		role ContactRole
		want int
	}{
		{RoleAssistant, 0},
		{RoleNotes, 1},
		{RoleSupport, 2},
		{RoleNone, -1},
		{ContactRole("mystery"), -1},
	}
	for _, c := range cases {
		if got := PinnedRank(c.role); got != c.want {
			t.Fatalf("PinnedRank(%q) = %d, want %d", c.role, got, c.want)
		}
	}
}

func TestContactPinned(t *testing.T) {
	if !(Contact{Role: RoleAssistant}).Pinned() {
		t.Fatalf("assistant should be pinned")
	}
	if (Contact{ID: "alex"}).Pinned() {
		t.Fatalf("regular contact should not be pinned")
	}
}

func TestConversationHelpers(t *testing.T) {
	c := Conversation{
		Kind:    KindGroup,
		Members: []string{"alex", "sam"},
		Messages: []*Message{
			{ID: 1, Text: "one"},
			{ID: 2, Text: "two"},
		},
	}
	if !c.HasMember("sam") || c.HasMember("kim") {
		t.Fatalf("membership check wrong")
	}
	if m := c.FindMessage(2); m == nil || m.Text != "two" {
		t.Fatalf("FindMessage(2) = %+v", m)
	}
	if c.FindMessage(99) != nil {
		t.Fatalf("expected nil for unknown message id")
	}
}
