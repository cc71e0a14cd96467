package store

import (
	"encoding/json"
	"time"
)

type Resource string

const (
	ResourcePersonal     Resource = "personal"
	ResourceExperience   Resource = "experience"
	ResourceProjects     Resource = "projects"
	ResourceSkills       Resource = "skills"
	ResourceAchievements Resource = "achievements"
)

// Resources lists every editable content resource in display order.
var Resources = []Resource{
	ResourcePersonal,
	ResourceExperience,
	ResourceProjects,
	ResourceSkills,
	ResourceAchievements,
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	ID             string    `json:"id"`
	Messages       []Message `json:"messages"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	TranscriptSent bool      `json:"transcriptSent"`
}

// FirstUserMessage returns the first visitor turn, if any.
func (c *Conversation) FirstUserMessage() (Message, bool) {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return m, true
		}
	}
	return Message{}, false
}

type ConversationSummary struct {
	ID              string    `json:"id"`
	Preview         string    `json:"preview"`
	MessageCount    int       `json:"messageCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	DurationMinutes int       `json:"durationMinutes"`
	TranscriptSent  bool      `json:"transcriptSent"`
}

type ConversationStats struct {
	Total              int `json:"total"`
	Today              int `json:"today"`
	AvgMessages        int `json:"avgMessages"`
	AvgDurationMinutes int `json:"avgDurationMinutes"`
}

type ChatbotSettings struct {
	CustomInstructions string   `json:"customInstructions"`
	SuggestedTopics    []string `json:"suggestedTopics"`
	Greeting           string   `json:"greeting"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// ChatbotSettingsUpdate is a partial settings document; nil fields keep
// their stored value.
type ChatbotSettingsUpdate struct {
	CustomInstructions *string   `json:"customInstructions,omitempty"`
	SuggestedTopics    *[]string `json:"suggestedTopics,omitempty"`
	Greeting           *string   `json:"greeting,omitempty"`
	SuggestedQuestions *[]string `json:"suggestedQuestions,omitempty"`
}

type GitHubSettings struct {
	Username string `json:"username"`
	Token    string `json:"token"`
}

// GitHubSettingsUpdate is a partial GitHub settings document.
type GitHubSettingsUpdate struct {
	Username *string `json:"username,omitempty"`
	Token    *string `json:"token,omitempty"`
}

// Snapshot is every content resource read at one point in time.
type Snapshot struct {
	Personal     json.RawMessage
	Experience   json.RawMessage
	Projects     json.RawMessage
	Skills       json.RawMessage
	Achievements json.RawMessage
}

type Project struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	FullDescription  string   `json:"fullDescription"`
	Category         string   `json:"category"`
	Year             int      `json:"year"`
	Thumbnail        string   `json:"thumbnail"`
	Images           []string `json:"images"`
	TechStack        []string `json:"techStack"`
	Features         []string `json:"features"`
	LiveURL          string   `json:"liveUrl,omitempty"`
	CodeURL          string   `json:"codeUrl,omitempty"`
}
