package conversation

// DefaultSystemPrompt opens every interactive session.
const DefaultSystemPrompt = "You are a helpful assistant. When the user provides OCR context, use it to answer " +
	"the question. If the context seems unrelated to the question, explain assumptions."

// contextNote marks recorded user turns that were sent together with extracted context.
const contextNote = "Context included. "

// Session is the in-memory state of one interactive conversation.
// It is not safe for concurrent use and is never persisted.
type Session struct {
	system  Turn
	history []Turn
	context string
	source  string
}

// NewSession starts a session with the given system prompt (DefaultSystemPrompt when empty).
func NewSession(systemPrompt string) *Session {
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}
	sys := Turn{Role: RoleSystem, Content: systemPrompt}
	return &Session{system: sys, history: []Turn{sys}}
}

// SetContext replaces the current extracted context and remembers where it came from.
func (s *Session) SetContext(text, source string) {
	s.context = text
	s.source = source
}

// Context returns the current extracted context and its source.
func (s *Session) Context() (text, source string) {
	return s.context, s.source
}

// Messages assembles the request for prompt without recording it.
func (s *Session) Messages(prompt string) []Turn {
	return Assemble(s.history, s.context, prompt)
}

// Record appends a completed exchange to the history.
func (s *Session) Record(prompt, reply string) {
	user := prompt
	if s.context != "" {
		user = contextNote + prompt
	}
	s.history = append(s.history,
		Turn{Role: RoleUser, Content: user},
		Turn{Role: RoleAssistant, Content: reply},
	)
}

// History returns a copy of the recorded turns, system turn first.
func (s *Session) History() []Turn {
	out := make([]Turn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset drops everything except the system turn and clears the context.
func (s *Session) Reset() {
	s.history = []Turn{s.system}
	s.context = ""
	s.source = ""
}
