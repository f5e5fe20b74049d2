// Package conversation holds chat turns and the rules for assembling a request from them.
package conversation

import "fmt"

// Role is the author of a turn.
type Role string

// Turn roles.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole validates a role string.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleSystem, RoleUser, RoleAssistant:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// Turn is one role-tagged message.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ContextPrefix introduces extracted document text to the model.
const ContextPrefix = "Context (OCR text from image):\n"

// Assemble builds the message sequence for one request: the history verbatim, then the
// extracted context as a synthetic user turn (when non-empty), then the utterance last.
// history is never modified.
func Assemble(history []Turn, extracted, utterance string) []Turn {
	n := len(history) + 1
	if extracted != "" {
		n++
	}
	msgs := make([]Turn, 0, n)
	msgs = append(msgs, history...)
	if extracted != "" {
		msgs = append(msgs, Turn{Role: RoleUser, Content: ContextPrefix + extracted})
	}
	return append(msgs, Turn{Role: RoleUser, Content: utterance})
}
