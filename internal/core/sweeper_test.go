package core

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"portfolio.dev/portfolio-api/internal/store"
)

func writeConversationFile(t *testing.T, dir, id string, updated time.Time) {
	t.Helper()
	data, err := json.Marshal(store.Conversation{
		ID:        id,
		Messages:  []store.Message{{Role: store.RoleUser, Content: "hi", Timestamp: updated}},
		CreatedAt: updated,
		UpdatedAt: updated,
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644))
}

func TestSweeperRemovesStaleConversations(t *testing.T) {
	dir := t.TempDir()
	writeConversationFile(t, dir, "stale-conversation", time.Now().AddDate(0, 0, -45))
	writeConversationFile(t, dir, "fresh-conversation", time.Now().Add(-time.Hour))
	conversations := store.NewConversationStore(dir)

	sweeper := NewSweeper(conversations, 30)
	for i := 0; i < 5; i++ {
		sweeper.Trigger()
	}
	sweeper.Wait()

	_, err := conversations.Get("stale-conversation")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = conversations.Get("fresh-conversation")
	assert.NoError(t, err)
}

func TestSweeperDefaultsMaxAge(t *testing.T) {
	s := NewSweeper(store.NewConversationStore(t.TempDir()), 0)
	assert.Equal(t, store.DefaultConversationMaxAgeDays, s.maxAgeDays)

	s.Trigger()
	s.Wait()
}
