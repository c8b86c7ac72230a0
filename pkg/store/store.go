package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"chatsim/pkg/logger"
	"chatsim/pkg/models"
)

// ErrNotFound is returned when an id does not resolve to a conversation,
// message or contact. Callers treat it as a no-op signal, never a crash.
var ErrNotFound = errors.New("not found")

// Body is the authored content of a message: text, an attachment, or both.
type Body struct {
	Text       string
	Attachment *models.Attachment
}

// Store owns the in-memory conversation state: roster, conversation logs
// and counters. All mutations are synchronous; every mutation is followed
// by a best-effort persistence snapshot.
type Store struct {
	mu       sync.Mutex
	contacts []models.Contact
	convs    map[string]*models.Conversation
	order    []string
	counters Counters
	persist  Persister
}

// New returns a store backed by the given persister. A nil persister keeps
// the store purely in-memory (used in tests).
func New(p Persister) *Store {
	return &Store{
		convs:    map[string]*models.Conversation{},
		counters: Counters{NextMessageID: 1},
		persist:  p,
	}
}

// Load restores state from the persister and reconciles the roster order,
// since persisted order is not trusted.
func (s *Store) Load() error {
	if s.persist == nil {
		return nil
	}
	snap, err := s.persist.LoadAll()
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contacts = Reconcile(snap.Contacts)
	s.convs = map[string]*models.Conversation{}
	s.order = s.order[:0]
	for _, c := range snap.Conversations {
		s.convs[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	s.counters = snap.Counters
	if s.counters.NextMessageID == 0 {
		s.counters.NextMessageID = 1
	}
	logger.Info("state_loaded", "contacts", len(s.contacts), "conversations", len(s.order))
	return nil
}

// persistLocked snapshots the full state to the persister. Failures are
// logged and counted; the in-memory mutation is never rolled back.
func (s *Store) persistLocked() {
	if s.persist == nil {
		return
	}
	snap := &Snapshot{
		Contacts:      s.contacts,
		Conversations: s.orderedLocked(),
		Counters:      s.counters,
	}
	if err := s.persist.SaveAll(snap); err != nil {
		metricSaveFailures.Inc()
		logger.Error("snapshot_save_failed", "error", err)
	}
}

func (s *Store) orderedLocked() []*models.Conversation {
	out := make([]*models.Conversation, 0, len(s.order))
	for _, id := range s.order {
		if c, ok := s.convs[id]; ok {
			out = append(out, c)
		}
	}
	return out
}

// CreateDirect creates a direct conversation with the given counterpart.
func (s *Store) CreateDirect(name, counterpart string) *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Conversation{
		ID:          uuid.NewString(),
		Kind:        models.KindDirect,
		Name:        name,
		Counterpart: counterpart,
	}
	s.convs[c.ID] = c
	s.order = append(s.order, c.ID)
	s.persistLocked()
	return c
}

// CreateGroup creates a group conversation with the given member set.
func (s *Store) CreateGroup(name string, members []string) *models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := &models.Conversation{
		ID:      uuid.NewString(),
		Kind:    models.KindGroup,
		Name:    name,
		Members: append([]string(nil), members...),
	}
	s.convs[c.ID] = c
	s.order = append(s.order, c.ID)
	s.persistLocked()
	return c
}

// DeleteConversation removes a conversation and its log.
func (s *Store) DeleteConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.convs[id]; !ok {
		return fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	delete(s.convs, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	s.persistLocked()
	return nil
}

// Conversation returns a copy of the conversation read model.
func (s *Store) Conversation(id string) (models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.convs[id]
	if !ok {
		return models.Conversation{}, fmt.Errorf("conversation %s: %w", id, ErrNotFound)
	}
	return copyConversation(c), nil
}

// Conversations returns copies of all conversations in display order.
func (s *Store) Conversations() []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Conversation, 0, len(s.order))
	for _, c := range s.orderedLocked() {
		out = append(out, copyConversation(c))
	}
	return out
}

// AppendMessage creates a message with a fresh monotonic id and appends it
// to the conversation log. The message is immediately marked seen by its
// own sender. replyTo, when non-zero, freezes a snapshot of the target
// message's sender and text into the new message.
func (s *Store) AppendMessage(convID, sender string, body Body, replyTo uint64) (models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[convID]
	if !ok {
		return models.Message{}, fmt.Errorf("conversation %s: %w", convID, ErrNotFound)
	}
	var snap *models.ReplySnapshot
	if replyTo != 0 {
		target := conv.FindMessage(replyTo)
		if target == nil {
			return models.Message{}, fmt.Errorf("reply target %d: %w", replyTo, ErrNotFound)
		}
		snap = &models.ReplySnapshot{
			TargetID:     target.ID,
			TargetSender: target.Sender,
			TargetText:   target.Text,
		}
	}
	m := &models.Message{
		ID:         s.counters.NextMessageID,
		Sender:     sender,
		Text:       body.Text,
		Attachment: body.Attachment,
		TS:         time.Now().UTC().UnixNano(),
		ReplyTo:    snap,
	}
	s.counters.NextMessageID++
	m.MarkSeen(sender)
	conv.Messages = append(conv.Messages, m)
	metricMessagesAppended.Inc()
	s.persistLocked()
	return copyMessage(m), nil
}

// ToggleReaction applies a reaction according to the conversation kind.
// Direct: one slot per reactor — same emoji toggles off, a different emoji
// replaces. Group: per-emoji additive counts per reactor.
func (s *Store) ToggleReaction(convID string, msgID uint64, reactor, emoji string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, m, err := s.findLocked(convID, msgID)
	if err != nil {
		return err
	}
	if m.Reactions == nil {
		m.Reactions = map[string]*models.Reaction{}
	}
	if conv.Kind == models.KindGroup {
		if r, ok := m.Reactions[reactor]; ok {
			r.Add(emoji, count)
		} else {
			m.Reactions[reactor] = models.NewCounted(emoji, count)
		}
	} else {
		if r, ok := m.Reactions[reactor]; ok && !r.Counted() && r.Emoji() == emoji {
			delete(m.Reactions, reactor)
		} else {
			m.Reactions[reactor] = models.NewSingle(emoji)
		}
	}
	metricReactionsApplied.Inc()
	s.persistLocked()
	return nil
}

// EditMessage replaces a message's text and flags it edited. No history is
// retained.
func (s *Store) EditMessage(convID string, msgID uint64, newText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, m, err := s.findLocked(convID, msgID)
	if err != nil {
		return err
	}
	m.Text = newText
	m.Edited = true
	s.persistLocked()
	return nil
}

// DeleteMessage removes a message by id. Reply snapshots in other messages
// that referenced it stay intact; they carry their own frozen copy.
func (s *Store) DeleteMessage(convID string, msgID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[convID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", convID, ErrNotFound)
	}
	for i, m := range conv.Messages {
		if m.ID == msgID {
			conv.Messages = append(conv.Messages[:i], conv.Messages[i+1:]...)
			metricMessagesDeleted.Inc()
			s.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("message %d: %w", msgID, ErrNotFound)
}

// MarkSeen records viewer in the message's seen-by set. Idempotent.
func (s *Store) MarkSeen(convID string, msgID uint64, viewer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, m, err := s.findLocked(convID, msgID)
	if err != nil {
		return err
	}
	if m.MarkSeen(viewer) {
		metricSeenMarks.Inc()
		s.persistLocked()
	}
	return nil
}

// MarkAllSeenOnOpen marks every message not authored by viewer as seen by
// viewer, as happens when a conversation is opened.
func (s *Store) MarkAllSeenOnOpen(convID, viewer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv, ok := s.convs[convID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", convID, ErrNotFound)
	}
	changed := false
	for _, m := range conv.Messages {
		if m.Sender == viewer {
			continue
		}
		if m.MarkSeen(viewer) {
			metricSeenMarks.Inc()
			changed = true
		}
	}
	if changed {
		s.persistLocked()
	}
	return nil
}

func (s *Store) findLocked(convID string, msgID uint64) (*models.Conversation, *models.Message, error) {
	conv, ok := s.convs[convID]
	if !ok {
		return nil, nil, fmt.Errorf("conversation %s: %w", convID, ErrNotFound)
	}
	m := conv.FindMessage(msgID)
	if m == nil {
		return nil, nil, fmt.Errorf("message %d: %w", msgID, ErrNotFound)
	}
	return conv, m, nil
}

// Contacts returns a copy of the roster in display order.
func (s *Store) Contacts() []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Contact(nil), s.contacts...)
}

// AddContact inserts a contact: pinned contacts trigger a full reconcile,
// regular contacts land one past the pinned block.
func (s *Store) AddContact(c models.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contacts {
		if existing.ID == c.ID {
			return fmt.Errorf("contact %s already exists", c.ID)
		}
	}
	if c.Pinned() {
		s.contacts = Reconcile(append(s.contacts, c))
	} else {
		s.contacts = InsertNonPinned(s.contacts, c)
	}
	s.persistLocked()
	return nil
}

// RemoveContact deletes a contact by id.
func (s *Store) RemoveContact(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.contacts {
		if c.ID == id {
			s.contacts = append(s.contacts[:i], s.contacts[i+1:]...)
			s.persistLocked()
			return nil
		}
	}
	return fmt.Errorf("contact %s: %w", id, ErrNotFound)
}

// UpdateContact changes the mutable contact fields (name, status, avatar).
func (s *Store) UpdateContact(id, name, status, avatar string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.contacts {
		if s.contacts[i].ID != id {
			continue
		}
		if name != "" {
			s.contacts[i].Name = name
		}
		if status != "" {
			s.contacts[i].Status = status
		}
		if avatar != "" {
			s.contacts[i].Avatar = avatar
		}
		s.persistLocked()
		return nil
	}
	return fmt.Errorf("contact %s: %w", id, ErrNotFound)
}

func copyMessage(m *models.Message) models.Message {
	out := *m
	out.SeenBy = append([]string(nil), m.SeenBy...)
	if m.Reactions != nil {
		out.Reactions = make(map[string]*models.Reaction, len(m.Reactions))
		for k, v := range m.Reactions {
			out.Reactions[k] = v.Clone()
		}
	}
	if m.ReplyTo != nil {
		snap := *m.ReplyTo
		out.ReplyTo = &snap
	}
	if m.Attachment != nil {
		att := *m.Attachment
		out.Attachment = &att
	}
	return out
}

func copyConversation(c *models.Conversation) models.Conversation {
	out := *c
	out.Members = append([]string(nil), c.Members...)
	out.Messages = make([]*models.Message, 0, len(c.Messages))
	for _, m := range c.Messages {
		cm := copyMessage(m)
		out.Messages = append(out.Messages, &cm)
	}
	return out
}
