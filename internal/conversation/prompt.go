package conversation

import (
	"strings"

	"github.com/daikw/sportsbot/internal/persona"
)

// UserLabel names the user in the transcript sent to the model
const UserLabel = "Student"

// ComposePrompt builds the full generation prompt from the persona, the conversation
// log before the new utterance, and the utterance itself.
func ComposePrompt(p persona.Persona, history []Message, utterance string) string {
	var b strings.Builder

	b.WriteString(p.SystemPrompt())
	b.WriteString("\n\nGESPREKGESCHIEDENIS:\n")
	for i, msg := range history {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Label(p, msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(UserLabel)
	b.WriteString(": ")
	b.WriteString(utterance)
	b.WriteString("\n\n")
	b.WriteString(p.Name)
	b.WriteString(":")

	return b.String()
}

// Label returns the transcript speaker name for role
func Label(p persona.Persona, role Role) string {
	if role == RoleUser {
		return UserLabel
	}
	return p.Name
}
