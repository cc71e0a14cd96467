package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"portfolio.dev/portfolio-api/internal/utils"
)

const DefaultConversationMaxAgeDays = 30

// ConversationStore keeps one JSON file per chat conversation.
type ConversationStore struct {
	dir string
	now func() time.Time
	log *logrus.Entry
}

func NewConversationStore(dir string) *ConversationStore {
	return &ConversationStore{
		dir: dir,
		now: time.Now,
		log: logrus.WithField("component", "conversations"),
	}
}

// Save creates or replaces a conversation's message list. The creation time
// and the transcriptSent flag of an existing conversation are preserved.
func (s *ConversationStore) Save(id string, messages []Message) (*Conversation, error) {
	if !utils.ValidConversationID(id) {
		return nil, Invalidf("Invalid conversationId format")
	}
	if len(messages) == 0 {
		return nil, Invalidf("conversationId and messages[] required")
	}
	for i, m := range messages {
		if !m.Role.Valid() {
			return nil, Invalidf("messages[%d].role must be user or assistant", i)
		}
	}

	existing, err := s.Get(id)
	if err != nil && !errors.Is(err, ErrNotFound) {
		s.log.Warnf("Replacing unreadable conversation %s: %v", id, err)
		existing = nil
	}

	now := s.now().UTC()
	stored := make([]Message, len(messages))
	for i, m := range messages {
		if m.Timestamp.IsZero() {
			m.Timestamp = now
		}
		stored[i] = m
	}

	conv := &Conversation{
		ID:        id,
		Messages:  stored,
		CreatedAt: stored[0].Timestamp,
		UpdatedAt: now,
	}
	if existing != nil {
		conv.CreatedAt = existing.CreatedAt
		conv.TranscriptSent = existing.TranscriptSent
	}

	if err := s.write(conv); err != nil {
		return nil, err
	}
	return conv, nil
}

// Get loads a conversation by id.
func (s *ConversationStore) Get(id string) (*Conversation, error) {
	path, ok := s.path(id)
	if !ok {
		return nil, ErrNotFound
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read conversation %s: %w", id, err)
	}
	var conv Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("failed to parse conversation %s: %w", id, err)
	}
	return &conv, nil
}

// Delete removes a conversation by id.
func (s *ConversationStore) Delete(id string) error {
	path, ok := s.path(id)
	if !ok {
		return ErrNotFound
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}

// MarkTranscriptSent records that a conversation's transcript was emailed.
func (s *ConversationStore) MarkTranscriptSent(id string) error {
	conv, err := s.Get(id)
	if err != nil {
		return err
	}
	if conv.TranscriptSent {
		return nil
	}
	conv.TranscriptSent = true
	return s.write(conv)
}

// List summarizes every readable conversation, newest first. Corrupt files
// are skipped.
func (s *ConversationStore) List() ([]ConversationSummary, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create conversations dir: %w", err)
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	summaries := make([]ConversationSummary, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			s.log.Debugf("Skipping unreadable conversation file %s: %v", name, err)
			continue
		}
		var conv Conversation
		if err := json.Unmarshal(data, &conv); err != nil {
			s.log.Debugf("Skipping corrupt conversation file %s: %v", name, err)
			continue
		}
		summaries = append(summaries, summarize(&conv))
	}

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// Stats reduces List into dashboard counters.
func (s *ConversationStore) Stats() (ConversationStats, error) {
	summaries, err := s.List()
	if err != nil {
		return ConversationStats{}, err
	}
	return computeStats(summaries, s.now()), nil
}

// Cleanup deletes conversations last updated more than maxAgeDays ago and
// returns how many were removed.
func (s *ConversationStore) Cleanup(maxAgeDays int) (int, error) {
	if maxAgeDays < 1 {
		return 0, Invalidf("maxAgeDays must be a positive number of days")
	}
	summaries, err := s.List()
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-time.Duration(maxAgeDays) * 24 * time.Hour)
	deleted := 0
	for _, sum := range summaries {
		if !sum.UpdatedAt.Before(cutoff) {
			continue
		}
		if err := s.Delete(sum.ID); err != nil {
			s.log.Debugf("Cleanup could not delete conversation %s: %v", sum.ID, err)
			continue
		}
		deleted++
	}
	if deleted > 0 {
		s.log.Infof("Cleanup removed %d conversations older than %d days", deleted, maxAgeDays)
	}
	return deleted, nil
}

func (s *ConversationStore) path(id string) (string, bool) {
	safe := utils.SanitizeID(id)
	if safe == "" {
		return "", false
	}
	return filepath.Join(s.dir, safe+".json"), true
}

func (s *ConversationStore) write(conv *Conversation) error {
	path, ok := s.path(conv.ID)
	if !ok {
		return Invalidf("Invalid conversationId format")
	}
	data, err := marshalPretty(conv)
	if err != nil {
		return fmt.Errorf("failed to encode conversation %s: %w", conv.ID, err)
	}
	return writeFileAtomic(path, data)
}

func summarize(conv *Conversation) ConversationSummary {
	preview := "(no messages)"
	if m, ok := conv.FirstUserMessage(); ok {
		preview = m.Content
	}
	minutes := int(math.Round(conv.UpdatedAt.Sub(conv.CreatedAt).Minutes()))
	if minutes < 0 {
		minutes = 0
	}
	return ConversationSummary{
		ID:              conv.ID,
		Preview:         preview,
		MessageCount:    len(conv.Messages),
		CreatedAt:       conv.CreatedAt,
		UpdatedAt:       conv.UpdatedAt,
		DurationMinutes: minutes,
		TranscriptSent:  conv.TranscriptSent,
	}
}

func computeStats(summaries []ConversationSummary, now time.Time) ConversationStats {
	if len(summaries) == 0 {
		return ConversationStats{}
	}
	local := now.Local()
	todayStart := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, local.Location())

	var today, messages, minutes int
	for _, sum := range summaries {
		if !sum.CreatedAt.Before(todayStart) {
			today++
		}
		messages += sum.MessageCount
		minutes += sum.DurationMinutes
	}
	n := float64(len(summaries))
	return ConversationStats{
		Total:              len(summaries),
		Today:              today,
		AvgMessages:        int(math.Round(float64(messages) / n)),
		AvgDurationMinutes: int(math.Round(float64(minutes) / n)),
	}
}
