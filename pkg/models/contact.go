package models

// Contact is one roster entry. The id is immutable once created; name,
// status and avatar may change.
type Contact struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Status string      `json:"status,omitempty"`
	Avatar string      `json:"avatar,omitempty"`
	Role   ContactRole `json:"role,omitempty"`
	Online bool        `json:"online,omitempty"`
}

// Pinned reports whether the contact belongs to the pinned block.
func (c Contact) Pinned() bool { return PinnedRank(c.Role) >= 0 }
