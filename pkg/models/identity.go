package models

// Me is the operator's fixed identity id. All operator-authored messages
// carry it as the sender regardless of which side of the conversation the
// operator is simulating.
const Me = "me"

// AssistantID is the well-known contact id of the autoresponder persona.
// Incoming messages in a conversation bound to this id trigger automatic
// replies.
const AssistantID = "assistant"

// ContactRole orders the pinned block of the roster. Lower ranks sort
// first; RoleNone marks a regular (non-pinned) contact.
type ContactRole string

const (
	RoleNone      ContactRole = ""
	RoleAssistant ContactRole = "assistant"
	RoleNotes     ContactRole = "notes"
	RoleSupport   ContactRole = "support"
)

// PinnedRank returns the fixed relative position of a pinned role, or -1
// for roles that do not pin.
func PinnedRank(r ContactRole) int {
	switch r {
	case RoleAssistant:
		return 0
	case RoleNotes:
		return 1
	case RoleSupport:
		return 2
	default:
		return -1
	}
}
