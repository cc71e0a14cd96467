package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func slicePtr(s ...string) *[]string { return &s }

func TestChatbotDefaultsWhenMissing(t *testing.T) {
	s := NewSettingsStore(NewContentStore(t.TempDir(), nil))

	got, err := s.Chatbot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, DefaultChatbotSettings(), got)
}

func TestChatbotUnsetFieldsFallBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, chatbotSettingsFile), []byte(`{"customInstructions":"Be brief."}`), 0o644))
	s := NewSettingsStore(NewContentStore(dir, nil))

	got, err := s.Chatbot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", got.CustomInstructions)
	assert.Equal(t, DefaultGreeting, got.Greeting)
	assert.Equal(t, DefaultSuggestedQuestions, got.SuggestedQuestions)
	assert.Empty(t, got.SuggestedTopics)
}

func TestUpdateChatbotShallowMerge(t *testing.T) {
	s := NewSettingsStore(NewContentStore(t.TempDir(), nil))
	ctx := context.Background()

	_, err := s.UpdateChatbot(ctx, ChatbotSettingsUpdate{
		CustomInstructions: strPtr("Mention open source work."),
		SuggestedTopics:    slicePtr("Go", "LLMs"),
	})
	require.NoError(t, err)

	got, err := s.UpdateChatbot(ctx, ChatbotSettingsUpdate{Greeting: strPtr("Hello there.")})
	require.NoError(t, err)
	assert.Equal(t, "Mention open source work.", got.CustomInstructions)
	assert.Equal(t, []string{"Go", "LLMs"}, got.SuggestedTopics)
	assert.Equal(t, "Hello there.", got.Greeting)

	reread, err := s.Chatbot(ctx)
	require.NoError(t, err)
	assert.Equal(t, got, reread)
}

func TestUpdateChatbotLimits(t *testing.T) {
	s := NewSettingsStore(NewContentStore(t.TempDir(), nil))
	ctx := context.Background()
	_, err := s.UpdateChatbot(ctx, ChatbotSettingsUpdate{Greeting: strPtr("Stored.")})
	require.NoError(t, err)

	topics := make([]string, MaxSuggestedTopics+1)
	questions := make([]string, MaxSuggestedQuestions+1)
	bad := []ChatbotSettingsUpdate{
		{CustomInstructions: strPtr(strings.Repeat("x", MaxCustomInstructions+1))},
		{SuggestedTopics: &topics},
		{SuggestedQuestions: &questions, Greeting: strPtr("Changed.")},
	}
	for _, upd := range bad {
		_, err := s.UpdateChatbot(ctx, upd)
		assert.True(t, IsValidation(err))
	}

	got, err := s.Chatbot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Stored.", got.Greeting)

	// Limits are inclusive and count characters, not bytes.
	_, err = s.UpdateChatbot(ctx, ChatbotSettingsUpdate{CustomInstructions: strPtr(strings.Repeat("é", MaxCustomInstructions))})
	assert.NoError(t, err)
}

func TestGitHubSettingsMissingFile(t *testing.T) {
	s := NewSettingsStore(NewContentStore(t.TempDir(), nil))

	gh, err := s.GitHub()
	require.NoError(t, err)
	assert.Equal(t, GitHubSettings{}, gh)
	assert.Equal(t, GitHubSettings{}, gh.Masked())
}

func TestUpdateGitHubIgnoresMaskedToken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, githubSettingsFile), []byte(`{"theme":"dark"}`), 0o644))
	s := NewSettingsStore(NewContentStore(dir, nil))

	gh, err := s.UpdateGitHub(GitHubSettingsUpdate{Username: strPtr("octocat"), Token: strPtr("ghp_secretvalue9876")})
	require.NoError(t, err)
	assert.Equal(t, "ghp_secretvalue9876", gh.Token)

	masked := gh.Masked()
	assert.True(t, strings.HasSuffix(masked.Token, "9876"))
	assert.NotContains(t, masked.Token, "secret")

	gh, err = s.UpdateGitHub(GitHubSettingsUpdate{Token: strPtr(masked.Token)})
	require.NoError(t, err)
	assert.Equal(t, "ghp_secretvalue9876", gh.Token)
	assert.Equal(t, "octocat", gh.Username)

	gh, err = s.UpdateGitHub(GitHubSettingsUpdate{Token: strPtr("")})
	require.NoError(t, err)
	assert.Equal(t, "ghp_secretvalue9876", gh.Token)

	// Unrelated keys in settings.json survive.
	raw, err := os.ReadFile(filepath.Join(dir, githubSettingsFile))
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"theme": "dark"`)
}
