package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"portfolio.dev/portfolio-api/internal/store"
)

const (
	defaultChatModelName = "gemini-1.5-flash-latest"
	chatTemperature      = 0.7

	geminiRoleUser  = "user"
	geminiRoleModel = "model"
)

// Streamer produces a model answer for a conversation chunk by chunk.
type Streamer interface {
	Configured() bool
	StreamChat(ctx context.Context, systemPrompt string, turns []store.Message, onChunk func(string) error) error
}

type LLMService struct {
	client    *genai.Client
	modelName string
}

// NewLLMService creates a Gemini client. An empty API key yields an
// unconfigured service whose calls fail with ErrNotConfigured.
func NewLLMService(ctx context.Context, apiKey, modelName string) (*LLMService, error) {
	if modelName == "" {
		modelName = defaultChatModelName
	}
	if apiKey == "" {
		logrus.Warn("GEMINI_API_KEY is not set; the chat endpoint will answer 500")
		return &LLMService{modelName: modelName}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &LLMService{client: client, modelName: modelName}, nil
}

func (s *LLMService) Configured() bool {
	return s != nil && s.client != nil
}

func (s *LLMService) Close() {
	if s.client != nil {
		if err := s.client.Close(); err != nil {
			logrus.Errorf("Error closing GenAI client: %v", err)
		} else {
			logrus.Info("GenAI client closed.")
		}
	}
}

// StreamChat sends the conversation with systemPrompt as the system
// instruction and calls onChunk with each text fragment as it arrives. The
// final turn must be from the user.
func (s *LLMService) StreamChat(ctx context.Context, systemPrompt string, turns []store.Message, onChunk func(string) error) error {
	if !s.Configured() {
		return ErrNotConfigured
	}

	history := toGeminiHistory(turns)
	if len(history) == 0 {
		return fmt.Errorf("prompt history is empty for chat completion")
	}
	last := history[len(history)-1]
	if last.Role != geminiRoleUser {
		return fmt.Errorf("last message in history is not from 'user', cannot proceed with chat completion")
	}

	model := s.client.GenerativeModel(s.modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetTemperature(chatTemperature)

	chatSession := model.StartChat()
	chatSession.History = history[:len(history)-1]

	iter := chatSession.SendMessageStream(ctx, last.Parts...)
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("gemini stream failed: %w", err)
		}
		if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			txt, ok := part.(genai.Text)
			if !ok || txt == "" {
				continue
			}
			if err := onChunk(string(txt)); err != nil {
				return err
			}
		}
	}
}

// toGeminiHistory converts stored turns to Gemini contents. Gemini expects
// a conversation to open with a user turn, so leading assistant turns such as
// a canned greeting are dropped.
func toGeminiHistory(turns []store.Message) []*genai.Content {
	history := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		role := geminiRoleUser
		if t.Role == store.RoleAssistant {
			role = geminiRoleModel
		}
		if len(history) == 0 && role == geminiRoleModel {
			continue
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return history
}
