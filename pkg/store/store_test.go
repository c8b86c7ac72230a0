package store

import (
	"errors"
	"path/filepath"
	"testing"

	"chatsim/pkg/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(nil)
}

func TestAppendMessageMonotonicIDs(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	first, err := s.AppendMessage(c.ID, models.Me, Body{Text: "one"}, 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	second, err := s.AppendMessage(c.ID, "alex", Body{Text: "two"}, 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if first.ID == 0 || second.ID != first.ID+1 {
		t.Fatalf("ids not monotonic: %d then %d", first.ID, second.ID)
	}
	other := s.CreateDirect("Sam", "sam")
	third, err := s.AppendMessage(other.ID, models.Me, Body{Text: "three"}, 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	// The counter is store-wide, not per conversation.
	if third.ID != second.ID+1 {
		t.Fatalf("counter not store-wide: %d after %d", third.ID, second.ID)
	}
}

func TestAppendMessageSelfSeen(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	m, err := s.AppendMessage(c.ID, "alex", Body{Text: "hi"}, 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !m.Seen("alex") {
		t.Fatalf("sender should see their own message immediately")
	}
	if m.Seen(models.Me) {
		t.Fatalf("other participants must not be marked")
	}
	if m.TS == 0 {
		t.Fatalf("timestamp not set")
	}
}

func TestAppendMessageUnknownConversation(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendMessage("nope", models.Me, Body{Text: "hi"}, 0)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplySnapshotFrozen(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	target, _ := s.AppendMessage(c.ID, "alex", Body{Text: "original"}, 0)

	reply, err := s.AppendMessage(c.ID, models.Me, Body{Text: "re"}, target.ID)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}
	if reply.ReplyTo == nil || reply.ReplyTo.TargetText != "original" || reply.ReplyTo.TargetSender != "alex" {
		t.Fatalf("snapshot wrong: %+v", reply.ReplyTo)
	}

	// Editing and even deleting the target must not touch the snapshot.
	if err := s.EditMessage(c.ID, target.ID, "rewritten"); err != nil {
		t.Fatalf("edit: %v", err)
	}
	if err := s.DeleteMessage(c.ID, target.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	conv, _ := s.Conversation(c.ID)
	got := conv.FindMessage(reply.ID)
	if got == nil || got.ReplyTo.TargetText != "original" {
		t.Fatalf("snapshot changed after target delete: %+v", got.ReplyTo)
	}

	// Replying to a missing message is an error, not a dangling reference.
	if _, err := s.AppendMessage(c.ID, models.Me, Body{Text: "re2"}, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing reply target, got %v", err)
	}
}

func TestDirectReactionToggle(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	m, _ := s.AppendMessage(c.ID, "alex", Body{Text: "hi"}, 0)

	if err := s.ToggleReaction(c.ID, m.ID, models.Me, "👍", 1); err != nil {
		t.Fatalf("react: %v", err)
	}
	conv, _ := s.Conversation(c.ID)
	r := conv.FindMessage(m.ID).Reactions[models.Me]
	if r == nil || r.Counted() || r.Emoji() != "👍" {
		t.Fatalf("direct reaction should be single-form 👍, got %+v", r)
	}

	// A different emoji replaces the slot.
	if err := s.ToggleReaction(c.ID, m.ID, models.Me, "❤️", 1); err != nil {
		t.Fatalf("react: %v", err)
	}
	conv, _ = s.Conversation(c.ID)
	if got := conv.FindMessage(m.ID).Reactions[models.Me].Emoji(); got != "❤️" {
		t.Fatalf("expected replacement, got %q", got)
	}

	// The same emoji toggles off.
	if err := s.ToggleReaction(c.ID, m.ID, models.Me, "❤️", 1); err != nil {
		t.Fatalf("react: %v", err)
	}
	conv, _ = s.Conversation(c.ID)
	if _, ok := conv.FindMessage(m.ID).Reactions[models.Me]; ok {
		t.Fatalf("same-emoji toggle should clear the slot")
	}
}

func TestGroupReactionAdditive(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateGroup("team", []string{"alex", "sam"})
	m, _ := s.AppendMessage(c.ID, "alex", Body{Text: "hi all"}, 0)

	for i := 0; i < 2; i++ {
		if err := s.ToggleReaction(c.ID, m.ID, "sam", "👍", 1); err != nil {
			t.Fatalf("react: %v", err)
		}
	}
	if err := s.ToggleReaction(c.ID, m.ID, "sam", "❤️", 3); err != nil {
		t.Fatalf("react: %v", err)
	}
	conv, _ := s.Conversation(c.ID)
	r := conv.FindMessage(m.ID).Reactions["sam"]
	if !r.Counted() {
		t.Fatalf("group reaction should be counted-form")
	}
	if r.Count("👍") != 2 || r.Count("❤️") != 3 {
		t.Fatalf("additive counts wrong: 👍=%d ❤️=%d", r.Count("👍"), r.Count("❤️"))
	}
	totals := models.ReactionTotals(conv.FindMessage(m.ID).Reactions)
	if totals["👍"] != 2 || totals["❤️"] != 3 {
		t.Fatalf("totals wrong: %v", totals)
	}
}

func TestMarkSeenIdempotent(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	m, _ := s.AppendMessage(c.ID, "alex", Body{Text: "hi"}, 0)

	for i := 0; i < 3; i++ {
		if err := s.MarkSeen(c.ID, m.ID, models.Me); err != nil {
			t.Fatalf("mark seen: %v", err)
		}
	}
	conv, _ := s.Conversation(c.ID)
	seen := conv.FindMessage(m.ID).SeenBy
	if len(seen) != 2 {
		t.Fatalf("seen-by should hold sender and viewer once each: %v", seen)
	}
}

func TestMarkAllSeenOnOpenSkipsOwn(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateGroup("team", []string{"alex", "sam"})
	mine, _ := s.AppendMessage(c.ID, models.Me, Body{Text: "mine"}, 0)
	theirs, _ := s.AppendMessage(c.ID, "alex", Body{Text: "theirs"}, 0)

	if err := s.MarkAllSeenOnOpen(c.ID, models.Me); err != nil {
		t.Fatalf("mark all: %v", err)
	}
	conv, _ := s.Conversation(c.ID)
	if got := conv.FindMessage(theirs.ID); !got.Seen(models.Me) {
		t.Fatalf("incoming message not marked seen")
	}
	if got := conv.FindMessage(mine.ID); len(got.SeenBy) != 1 {
		t.Fatalf("own message seen-by should only hold the sender: %v", got.SeenBy)
	}
}

func TestDeleteConversation(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	if err := s.DeleteConversation(c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Conversation(c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteConversation(c.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestConversationCopiesAreIsolated(t *testing.T) {
	s := newTestStore(t)
	c := s.CreateDirect("Alex", "alex")
	m, _ := s.AppendMessage(c.ID, "alex", Body{Text: "hi"}, 0)

	conv, _ := s.Conversation(c.ID)
	conv.FindMessage(m.ID).Text = "tampered"
	conv.FindMessage(m.ID).MarkSeen("intruder")

	fresh, _ := s.Conversation(c.ID)
	got := fresh.FindMessage(m.ID)
	if got.Text != "hi" || got.Seen("intruder") {
		t.Fatalf("store state leaked through the read copy: %+v", got)
	}
}

func TestContactOperations(t *testing.T) {
	s := newTestStore(t)
	base := []models.Contact{
		{ID: "alex", Name: "Alex"},
		{ID: "assistant", Name: "Assistant", Role: models.RoleAssistant},
		{ID: "notes", Name: "Notes", Role: models.RoleNotes},
	}
	for _, c := range base {
		if err := s.AddContact(c); err != nil {
			t.Fatalf("add %s: %v", c.ID, err)
		}
	}
	if err := s.AddContact(models.Contact{ID: "alex"}); err == nil {
		t.Fatalf("duplicate contact id must be rejected")
	}

	// Pinned contacts come first regardless of insertion order.
	got := ids(s.Contacts())
	if !sameIDs(got, "assistant", "notes", "alex") {
		t.Fatalf("unexpected roster order: %v", got)
	}

	// New regular contacts land right after the pinned block.
	if err := s.AddContact(models.Contact{ID: "sam"}); err != nil {
		t.Fatalf("add sam: %v", err)
	}
	got = ids(s.Contacts())
	if !sameIDs(got, "assistant", "notes", "sam", "alex") {
		t.Fatalf("unexpected roster order: %v", got)
	}

	if err := s.UpdateContact("sam", "Sam!", "around", ""); err != nil {
		t.Fatalf("update: %v", err)
	}
	for _, c := range s.Contacts() {
		if c.ID == "sam" && (c.Name != "Sam!" || c.Status != "around") {
			t.Fatalf("update not applied: %+v", c)
		}
	}

	if err := s.RemoveContact("alex"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := s.RemoveContact("alex"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPebbleRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	pb, err := OpenPebble(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	s := New(pb)
	if err := s.AddContact(models.Contact{ID: "alex", Name: "Alex"}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	if err := s.AddContact(models.Contact{ID: "assistant", Role: models.RoleAssistant}); err != nil {
		t.Fatalf("add contact: %v", err)
	}
	dm := s.CreateDirect("Alex", "alex")
	grp := s.CreateGroup("team", []string{"alex", "sam"})
	m1, _ := s.AppendMessage(dm.ID, models.Me, Body{Text: "hello"}, 0)
	m2, _ := s.AppendMessage(dm.ID, "alex", Body{Text: "hey"}, m1.ID)
	_ = s.ToggleReaction(dm.ID, m1.ID, "alex", "👍", 1)
	_ = s.ToggleReaction(grp.ID, mustAppend(t, s, grp.ID, "sam", "yo").ID, "alex", "❤️", 2)
	if err := pb.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	pb2, err := OpenPebble(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer pb2.Close()
	s2 := New(pb2)
	if err := s2.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Roster comes back reconciled: pinned first even though alex was
	// added earlier.
	if got := ids(s2.Contacts()); !sameIDs(got, "assistant", "alex") {
		t.Fatalf("roster after reload: %v", got)
	}

	convs := s2.Conversations()
	if len(convs) != 2 || convs[0].ID != dm.ID || convs[1].ID != grp.ID {
		t.Fatalf("conversation order not preserved: %d convs", len(convs))
	}

	conv, err := s2.Conversation(dm.ID)
	if err != nil {
		t.Fatalf("conversation: %v", err)
	}
	if len(conv.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(conv.Messages))
	}
	reply := conv.FindMessage(m2.ID)
	if reply.ReplyTo == nil || reply.ReplyTo.TargetText != "hello" {
		t.Fatalf("reply snapshot lost on reload: %+v", reply.ReplyTo)
	}
	r := conv.FindMessage(m1.ID).Reactions["alex"]
	if r == nil || r.Counted() || r.Emoji() != "👍" {
		t.Fatalf("single reaction shape lost on reload: %+v", r)
	}

	gconv, _ := s2.Conversation(grp.ID)
	gr := gconv.Messages[0].Reactions["alex"]
	if gr == nil || !gr.Counted() || gr.Count("❤️") != 2 {
		t.Fatalf("counted reaction shape lost on reload: %+v", gr)
	}

	// The message id counter survives restarts.
	next, err := s2.AppendMessage(dm.ID, models.Me, Body{Text: "again"}, 0)
	if err != nil {
		t.Fatalf("append after reload: %v", err)
	}
	if next.ID <= m2.ID {
		t.Fatalf("message counter regressed: %d after %d", next.ID, m2.ID)
	}
}

func mustAppend(t *testing.T, s *Store, convID, sender, text string) models.Message {
	t.Helper()
	m, err := s.AppendMessage(convID, sender, Body{Text: text}, 0)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	return m
}
