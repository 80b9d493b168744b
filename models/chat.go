package models

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// PartKindText is the only kind the front-end produces itself. The agent may
// return other kinds; they are carried through without interpretation.
const PartKindText = "text"

// Part is one atomic unit of a message body, tagged with a kind.
type Part struct {
	Kind string `json:"type"`
	Text string `json:"text,omitempty"`
}

func TextPart(text string) Part {
	return Part{Kind: PartKindText, Text: text}
}

// Message is a single chat turn: a role and its ordered content parts.
type Message struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"content"`
}

func NewTextMessage(role Role, text string) Message {
	return Message{
		Role:  role,
		Parts: []Part{TextPart(text)},
	}
}

// FlattenText concatenates the message's parts into a single string. Text
// parts contribute their text; any other kind contributes its kind tag
// literal, which is what the agent API expects to receive.
func (m Message) FlattenText() string {
	var s string
	for _, p := range m.Parts {
		if p.Kind == PartKindText {
			s += p.Text
			continue
		}
		s += p.Kind
	}
	return s
}

// WireMessage is the flattened {role, content} projection of a Message sent
// to the agent.
type WireMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type ChatPostRequest struct {
	Messages []WireMessage `json:"messages"`
}

// ChatPostResponse is the agent's reply: either structured content parts, or
// a bare result string. A non-nil Content (including an empty list) takes
// precedence over Result.
type ChatPostResponse struct {
	Content []Part `json:"content,omitempty"`
	Result  string `json:"result,omitempty"`
}
