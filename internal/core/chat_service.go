package core

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"portfolio.dev/portfolio-api/internal/store"
)

// ChatTurn is one message of a visitor conversation as sent by the widget.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatService struct {
	content  *store.ContentStore
	settings *store.SettingsStore
	llm      Streamer
	log      *logrus.Entry
}

func NewChatService(content *store.ContentStore, settings *store.SettingsStore, llm Streamer) *ChatService {
	return &ChatService{
		content:  content,
		settings: settings,
		llm:      llm,
		log:      logrus.WithField("component", "chat"),
	}
}

// Prepare validates the conversation and builds the system prompt. It does
// not contact the model, so every error it returns happens before any
// response bytes are written.
func (s *ChatService) Prepare(ctx context.Context, turns []ChatTurn) (string, []store.Message, error) {
	messages, err := validateTurns(turns)
	if err != nil {
		return "", nil, err
	}
	if s.llm == nil || !s.llm.Configured() {
		return "", nil, ErrNotConfigured
	}

	snap, err := s.content.Snapshot(ctx)
	if err != nil {
		// Partial content still yields a usable prompt.
		s.log.Warnf("Building system prompt from partial content: %v", err)
	}
	settings, err := s.settings.Chatbot(ctx)
	if err != nil {
		s.log.Warnf("Using default chatbot settings: %v", err)
		settings = store.DefaultChatbotSettings()
	}

	return BuildSystemPrompt(snap, settings), messages, nil
}

// Stream forwards the model answer to onChunk as it is produced.
func (s *ChatService) Stream(ctx context.Context, systemPrompt string, messages []store.Message, onChunk func(string) error) error {
	if err := s.llm.StreamChat(ctx, systemPrompt, messages, onChunk); err != nil {
		return fmt.Errorf("chat stream: %w", err)
	}
	return nil
}

func validateTurns(turns []ChatTurn) ([]store.Message, error) {
	if len(turns) == 0 {
		return nil, store.Invalidf("messages array is required")
	}
	messages := make([]store.Message, 0, len(turns))
	for i, t := range turns {
		role := store.Role(t.Role)
		if !role.Valid() {
			return nil, store.Invalidf("message %d has invalid role %q", i, t.Role)
		}
		if t.Content == "" {
			return nil, store.Invalidf("message %d has empty content", i)
		}
		messages = append(messages, store.Message{Role: role, Content: t.Content})
	}
	if messages[len(messages)-1].Role != store.RoleUser {
		return nil, store.Invalidf("last message must be from the user")
	}
	return messages, nil
}
