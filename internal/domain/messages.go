package domain

import (
	"strings"
)

// Turns returns the conversation turns without the system instruction,
// synthesizing a single user turn from Prompt when Messages is empty.
// Fails with ErrEmptyRequest when both are absent.
func (r *CompletionRequest) Turns() ([]Message, error) {
	if len(r.Messages) > 0 {
		turns := make([]Message, len(r.Messages))
		copy(turns, r.Messages)
		return turns, nil
	}

	if r.Prompt != "" {
		return []Message{{Role: RoleUser, Content: r.Prompt}}, nil
	}

	return nil, ErrEmptyRequest
}

// ChatTurns returns the conversation with System as a leading system-role
// turn, for backends with a native system channel.
func (r *CompletionRequest) ChatTurns() ([]Message, error) {
	turns, err := r.Turns()
	if err != nil {
		return nil, err
	}

	if r.System == "" {
		return turns, nil
	}

	return append([]Message{{Role: RoleSystem, Content: r.System}}, turns...), nil
}

// MergedTurns folds System into the first user turn, for backends without a
// dedicated system role. When the first turn is not a user turn, a new user
// turn carrying the instruction is prepended instead.
func (r *CompletionRequest) MergedTurns() ([]Message, error) {
	turns, err := r.Turns()
	if err != nil {
		return nil, err
	}

	if r.System == "" {
		return turns, nil
	}

	if turns[0].Role == RoleUser {
		turns[0].Content = r.System + "\n\n" + turns[0].Content
		return turns, nil
	}

	return append([]Message{{Role: RoleUser, Content: r.System}}, turns...), nil
}

// Transcript flattens the conversation into plain text for the local process
// runner, which consumes a single prompt file rather than structured turns.
func (r *CompletionRequest) Transcript() (string, error) {
	turns, err := r.Turns()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if r.System != "" {
		b.WriteString(r.System)
		b.WriteString("\n\n")
	}

	for _, turn := range turns {
		switch turn.Role {
		case RoleAssistant:
			b.WriteString("Assistant: ")
		default:
			b.WriteString("User: ")
		}
		b.WriteString(turn.Content)
		b.WriteString("\n")
	}
	b.WriteString("Assistant:")

	return b.String(), nil
}
