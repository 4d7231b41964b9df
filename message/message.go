// Package message defines the conversation data model exchanged between
// agents, the controller and the completion service.
package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Role identifies the author of a message within a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleDeveloper Role = "developer"
)

var (
	// ErrInvalidRole is returned when a role outside the closed set is used.
	ErrInvalidRole = errors.New("invalid message role")

	// ErrEmptyPrompt is returned when a prompt request carries no messages.
	ErrEmptyPrompt = errors.New("prompt request has no messages")
)

// ParseRole converts a raw role name into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant, RoleDeveloper:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

// Message is a single role-tagged turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// New builds a Message, rejecting unknown roles.
func New(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrInvalidRole, string(role))
	}
	return Message{Role: role, Content: content}, nil
}

func System(content string) Message    { return Message{Role: RoleSystem, Content: content} }
func User(content string) Message      { return Message{Role: RoleUser, Content: content} }
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }
func Developer(content string) Message { return Message{Role: RoleDeveloper, Content: content} }

// UnmarshalJSON decodes a message and validates its role. A null content is
// decoded as the empty string.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Role    string  `json:"role"`
		Content *string `json:"content"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	role, err := ParseRole(raw.Role)
	if err != nil {
		return err
	}
	m.Role = role
	m.Content = ""
	if raw.Content != nil {
		m.Content = *raw.Content
	}
	return nil
}

// Empty reports whether the message carries no content. An empty assistant
// reply means the model produced nothing, which is not an error.
func (m Message) Empty() bool {
	return m.Content == ""
}

// PromptRequest is the ordered conversation submitted to the model.
type PromptRequest []Message

// NewPromptRequest validates and copies msgs into a PromptRequest.
func NewPromptRequest(msgs ...Message) (PromptRequest, error) {
	req := PromptRequest(slices.Clone(msgs))
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Validate checks that the request is non-empty and every role is known.
func (p PromptRequest) Validate() error {
	if len(p) == 0 {
		return ErrEmptyPrompt
	}
	for i, m := range p {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: %w: %q", i, ErrInvalidRole, string(m.Role))
		}
	}
	return nil
}

// Clone returns an independent copy of the request.
func (p PromptRequest) Clone() PromptRequest {
	return slices.Clone(p)
}

// Usage holds token counts reported by the service.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Completion is the service reply reduced to its first choice.
type Completion struct {
	ID      string  `json:"id,omitempty"`
	Model   string  `json:"model,omitempty"`
	Message Message `json:"message"`
	Usage   Usage   `json:"usage"`
}
