package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedCompleter struct {
	replies []string
	err     error
	seen    [][]Message
}

func (s *scriptedCompleter) CompleteJSON(_ context.Context, messages []Message) (string, error) {
	s.seen = append(s.seen, append([]Message(nil), messages...))
	if s.err != nil {
		return "", s.err
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return reply, nil
}

func TestConversationGenerate(t *testing.T) {
	first := `{"name":"Obby","className":"Model","children":[{"name":"Main","className":"Script","source":"print(1)","children":[]}]}`
	second := "```json\n" + `{"tree":{"name":"Obby","className":"Model","children":[]}}` + "\n```"
	completer := &scriptedCompleter{replies: []string{first, second}}
	conv := NewConversation(completer, "", nil)

	root, err := conv.Generate(context.Background(), "make an obby")
	require.NoError(t, err)
	assert.Equal(t, "Obby", root.Name)
	require.Len(t, root.Children, 1)
	require.NotNil(t, root.Children[0].Source)
	assert.Equal(t, "print(1)", *root.Children[0].Source)
	assert.Equal(t, 1, conv.Turns())

	root, err = conv.Generate(context.Background(), "remove the script")
	require.NoError(t, err)
	assert.Empty(t, root.Children)
	assert.Equal(t, 2, conv.Turns())

	require.Len(t, completer.seen, 2)
	msgs := completer.seen[1]
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, SystemPrompt, msgs[0].Content)
	assert.Equal(t, Message{Role: "user", Content: "make an obby"}, msgs[1])
	assert.Equal(t, Message{Role: "assistant", Content: first}, msgs[2])
	assert.Equal(t, Message{Role: "user", Content: "remove the script"}, msgs[3])
}

func TestConversationFailureKeepsHistory(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"note":"no tree here"}`}}
	conv := NewConversation(completer, "", nil)

	_, err := conv.Generate(context.Background(), "make a car")
	require.Error(t, err)
	assert.Equal(t, 0, conv.Turns())

	completer.err = errors.New("boom")
	_, err = conv.Generate(context.Background(), "make a car")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 0, conv.Turns())
}

func TestConversationRequiresPrompt(t *testing.T) {
	conv := NewConversation(&scriptedCompleter{}, "", nil)
	_, err := conv.Generate(context.Background(), "   ")
	assert.Error(t, err)
}

func TestConversationReset(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{`{"name":"A","className":"Folder","children":[]}`}}
	conv := NewConversation(completer, "$", nil)
	_, err := conv.Generate(context.Background(), "folder")
	require.NoError(t, err)
	conv.Reset()
	assert.Equal(t, 0, conv.Turns())
}
