package store

import (
	"chatsim/pkg/models"
)

// Counters holds persisted monotonic counters.
type Counters struct {
	NextMessageID uint64 `json:"next_message_id"`
}

// Snapshot is the full persisted state: roster, conversations (in display
// order) and counters.
type Snapshot struct {
	Contacts      []models.Contact
	Conversations []*models.Conversation
	Counters      Counters
}

// Persister is the persistence collaborator. The store calls SaveAll after
// every mutating operation and tolerates failure by logging only; a failed
// save never rolls back the in-memory mutation.
type Persister interface {
	LoadAll() (*Snapshot, error)
	SaveAll(*Snapshot) error
}
