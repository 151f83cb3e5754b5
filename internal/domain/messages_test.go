package domain_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/hearth/internal/domain"
)

func TestTurns(t *testing.T) {
	t.Run("should synthesize a single user turn from prompt", func(t *testing.T) {
		req := &domain.CompletionRequest{Prompt: "X"}

		turns, err := req.Turns()

		require.NoError(t, err)
		require.Equal(t, []domain.Message{{Role: domain.RoleUser, Content: "X"}}, turns)
	})

	t.Run("should prefer messages over prompt", func(t *testing.T) {
		req := &domain.CompletionRequest{
			Prompt: "ignored",
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "hello"},
				{Role: domain.RoleAssistant, Content: "hi"},
			},
		}

		turns, err := req.Turns()

		require.NoError(t, err)
		require.Len(t, turns, 2)
		require.Equal(t, "hello", turns[0].Content)
	})

	t.Run("should fail when both prompt and messages are empty", func(t *testing.T) {
		req := &domain.CompletionRequest{}

		_, err := req.Turns()

		require.ErrorIs(t, err, domain.ErrEmptyRequest)
	})

	t.Run("should not mutate the original messages", func(t *testing.T) {
		req := &domain.CompletionRequest{
			System:   "be terse",
			Messages: []domain.Message{{Role: domain.RoleUser, Content: "hello"}},
		}

		_, err := req.MergedTurns()
		require.NoError(t, err)

		require.Equal(t, "hello", req.Messages[0].Content)
	})
}

func TestChatTurns(t *testing.T) {
	t.Run("should prepend system as a system-role turn", func(t *testing.T) {
		req := &domain.CompletionRequest{
			System: "be terse",
			Prompt: "hello",
		}

		turns, err := req.ChatTurns()

		require.NoError(t, err)
		require.Equal(t, []domain.Message{
			{Role: domain.RoleSystem, Content: "be terse"},
			{Role: domain.RoleUser, Content: "hello"},
		}, turns)
	})

	t.Run("should return turns unchanged without system", func(t *testing.T) {
		req := &domain.CompletionRequest{Prompt: "hello"}

		turns, err := req.ChatTurns()

		require.NoError(t, err)
		require.Len(t, turns, 1)
		require.Equal(t, domain.RoleUser, turns[0].Role)
	})
}

func TestMergedTurns(t *testing.T) {
	t.Run("should fold system into the first user turn", func(t *testing.T) {
		req := &domain.CompletionRequest{
			System: "be terse",
			Prompt: "hello",
		}

		turns, err := req.MergedTurns()

		require.NoError(t, err)
		require.Len(t, turns, 1)
		require.Equal(t, domain.RoleUser, turns[0].Role)
		require.Equal(t, "be terse\n\nhello", turns[0].Content)
	})

	t.Run("should prepend a user turn when conversation starts with assistant", func(t *testing.T) {
		req := &domain.CompletionRequest{
			System:   "be terse",
			Messages: []domain.Message{{Role: domain.RoleAssistant, Content: "hi"}},
		}

		turns, err := req.MergedTurns()

		require.NoError(t, err)
		require.Len(t, turns, 2)
		require.Equal(t, domain.RoleUser, turns[0].Role)
		require.Equal(t, "be terse", turns[0].Content)
	})
}

func TestTranscript(t *testing.T) {
	t.Run("should flatten conversation into a plain prompt", func(t *testing.T) {
		req := &domain.CompletionRequest{
			System: "be terse",
			Messages: []domain.Message{
				{Role: domain.RoleUser, Content: "hello"},
				{Role: domain.RoleAssistant, Content: "hi"},
			},
		}

		text, err := req.Transcript()

		require.NoError(t, err)
		require.Equal(t, "be terse\n\nUser: hello\nAssistant: hi\nAssistant:", text)
	})

	t.Run("should fail on an empty request", func(t *testing.T) {
		req := &domain.CompletionRequest{}

		_, err := req.Transcript()

		require.ErrorIs(t, err, domain.ErrEmptyRequest)
	})
}
