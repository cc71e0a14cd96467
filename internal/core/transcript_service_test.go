package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portfolio.dev/portfolio-api/internal/store"
)

type fakeMailer struct {
	sent    []string
	bodies  []string
	failure error
}

func (m *fakeMailer) Send(subject, htmlBody string) error {
	if m.failure != nil {
		return m.failure
	}
	m.sent = append(m.sent, subject)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

const convID = "conv-1234abcd"

func saveConversation(t *testing.T, conversations *store.ConversationStore, messages ...store.Message) {
	t.Helper()
	_, err := conversations.Save(convID, messages)
	require.NoError(t, err)
}

func TestTranscriptSendMarksConversation(t *testing.T) {
	conversations := store.NewConversationStore(t.TempDir())
	saveConversation(t, conversations,
		store.Message{Role: store.RoleAssistant, Content: "Hi!"},
		store.Message{Role: store.RoleUser, Content: "Do you know <script>Go</script>?"},
	)
	mailer := &fakeMailer{}
	svc := NewTranscriptService(conversations, mailer)

	res, err := svc.Send(convID)
	require.NoError(t, err)
	assert.True(t, res.Success)
	require.NotNil(t, res.EmailSent)
	assert.True(t, *res.EmailSent)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, `Chat Transcript: "Do you know <script>Go</script>?"`, mailer.sent[0])
	assert.Contains(t, mailer.bodies[0], "&lt;script&gt;")
	assert.Contains(t, mailer.bodies[0], "2 messages")

	conv, err := conversations.Get(convID)
	require.NoError(t, err)
	assert.True(t, conv.TranscriptSent)

	res, err = svc.Send(convID)
	require.NoError(t, err)
	assert.True(t, res.AlreadySent)
	assert.Len(t, mailer.sent, 1)
}

func TestTranscriptSkipsWithoutUserMessages(t *testing.T) {
	conversations := store.NewConversationStore(t.TempDir())
	saveConversation(t, conversations, store.Message{Role: store.RoleAssistant, Content: "Hi!"})
	mailer := &fakeMailer{}

	res, err := NewTranscriptService(conversations, mailer).Send(convID)
	require.NoError(t, err)
	assert.Equal(t, "no user messages", res.Skipped)
	assert.Empty(t, mailer.sent)
}

func TestTranscriptWithoutMailer(t *testing.T) {
	conversations := store.NewConversationStore(t.TempDir())
	saveConversation(t, conversations, store.Message{Role: store.RoleUser, Content: "Hello"})

	res, err := NewTranscriptService(conversations, nil).Send(convID)
	require.NoError(t, err)
	require.NotNil(t, res.EmailSent)
	assert.False(t, *res.EmailSent)

	conv, err := conversations.Get(convID)
	require.NoError(t, err)
	assert.False(t, conv.TranscriptSent)
}

func TestTranscriptErrors(t *testing.T) {
	conversations := store.NewConversationStore(t.TempDir())
	svc := NewTranscriptService(conversations, &fakeMailer{})

	_, err := svc.Send("")
	assert.True(t, store.IsValidation(err))
	_, err = svc.Send("../etc/passwd")
	assert.True(t, store.IsValidation(err))
	_, err = svc.Send("missing-conversation")
	assert.ErrorIs(t, err, store.ErrNotFound)

	saveConversation(t, conversations, store.Message{Role: store.RoleUser, Content: "Hello"})
	boom := errors.New("relay down")
	_, err = NewTranscriptService(conversations, &fakeMailer{failure: boom}).Send(convID)
	assert.ErrorIs(t, err, boom)
	conv, err := conversations.Get(convID)
	require.NoError(t, err)
	assert.False(t, conv.TranscriptSent)
}

func TestTranscriptSubjectTruncates(t *testing.T) {
	conv := &store.Conversation{Messages: []store.Message{
		{Role: store.RoleUser, Content: strings.Repeat("é", 70), Timestamp: time.Now()},
	}}
	assert.Equal(t, `Chat Transcript: "`+strings.Repeat("é", 60)+`..."`, TranscriptSubject(conv))
	assert.Equal(t, `Chat Transcript: "New conversation"`, TranscriptSubject(&store.Conversation{}))
}
