package models

// AttachmentKind classifies a binary resource carried by a message.
type AttachmentKind string

const (
	AttachImage AttachmentKind = "image"
	AttachFile  AttachmentKind = "file"
	AttachVoice AttachmentKind = "voice"
)

// Attachment is a reference to a binary resource; the engine never reads
// the bytes, only carries the reference.
type Attachment struct {
	Kind AttachmentKind `json:"kind"`
	Name string         `json:"name,omitempty"`
	Ref  string         `json:"ref"`
	// DurationSec is set for voice notes.
	DurationSec int `json:"duration_sec,omitempty"`
}

// ReplySnapshot is a frozen copy of the replied-to message's sender and
// text, taken at reply-creation time. It deliberately carries no live
// reference so deleting or editing the target is invisible here.
type ReplySnapshot struct {
	TargetID     uint64 `json:"target_id"`
	TargetSender string `json:"target_sender"`
	TargetText   string `json:"target_text"`
}

// Message is one log entry in a conversation.
type Message struct {
	ID         uint64      `json:"id"`
	Sender     string      `json:"sender"`
	Text       string      `json:"text,omitempty"`
	Attachment *Attachment `json:"attachment,omitempty"`
	// TS is the creation timestamp (ns).
	TS     int64 `json:"ts"`
	Edited bool  `json:"edited,omitempty"`
	// Reactions maps reactor id to a reaction value; values come in two
	// encodings, see Reaction.
	Reactions map[string]*Reaction `json:"reactions,omitempty"`
	ReplyTo   *ReplySnapshot       `json:"reply_to,omitempty"`
	// SeenBy is insertion-ordered and deduplicated.
	SeenBy []string `json:"seen_by,omitempty"`
}

// Seen reports whether viewer is already in the seen-by set.
func (m *Message) Seen(viewer string) bool {
	for _, v := range m.SeenBy {
		if v == viewer {
			return true
		}
	}
	return false
}

// MarkSeen appends viewer to the seen-by set if absent. Returns true when
// the set changed.
func (m *Message) MarkSeen(viewer string) bool {
	if m.Seen(viewer) {
		return false
	}
	m.SeenBy = append(m.SeenBy, viewer)
	return true
}
