package models

// ConversationKind distinguishes direct (one counterpart) from group
// (member set) conversations.
type ConversationKind string

const (
	KindDirect ConversationKind = "direct"
	KindGroup  ConversationKind = "group"
)

// Conversation owns an append-ordered message log. Messages are never
// reordered after append; deletion is the only removal.
type Conversation struct {
	ID   string           `json:"id"`
	Kind ConversationKind `json:"kind"`
	Name string           `json:"name,omitempty"`
	// Counterpart is set for direct conversations only.
	Counterpart string `json:"counterpart,omitempty"`
	// Members is set for group conversations only.
	Members  []string   `json:"members,omitempty"`
	Avatar   string     `json:"avatar,omitempty"`
	Online   bool       `json:"online,omitempty"`
	Messages []*Message `json:"messages"`
}

// HasMember reports whether id participates in the conversation.
func (c *Conversation) HasMember(id string) bool {
	if c.Kind == KindDirect {
		return id == c.Counterpart || id == Me
	}
	for _, m := range c.Members {
		if m == id {
			return true
		}
	}
	return id == Me
}

// FindMessage returns the message with the given id, or nil.
func (c *Conversation) FindMessage(id uint64) *Message {
	for _, m := range c.Messages {
		if m.ID == id {
			return m
		}
	}
	return nil
}
