package core

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"portfolio.dev/portfolio-api/internal/store"
)

type personalInfo struct {
	Name      string `json:"name"`
	Tagline   string `json:"tagline"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	Status    string `json:"status"`
	Languages string `json:"languages"`
}

type skillCategory struct {
	Category string   `json:"category"`
	Skills   []string `json:"skills"`
}

type experienceEntry struct {
	Company      string   `json:"company"`
	Role         string   `json:"role"`
	StartDate    string   `json:"startDate"`
	EndDate      *string  `json:"endDate"`
	Achievements []string `json:"achievements"`
	TechStack    []string `json:"techStack"`
}

type projectEntry struct {
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	TechStack        []string `json:"techStack"`
	Features         []string `json:"features"`
}

type achievementEntry struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// BuildSystemPrompt renders the assistant persona and the portfolio content
// into the system instruction sent with every chat request. Resources that
// are missing or malformed are rendered as empty sections.
func BuildSystemPrompt(snap store.Snapshot, settings store.ChatbotSettings) string {
	var personal personalInfo
	decodeLoose("personal", snap.Personal, &personal)
	var skills []skillCategory
	decodeLoose("skills", snap.Skills, &skills)
	var experience []experienceEntry
	decodeLoose("experience", snap.Experience, &experience)
	var projects []projectEntry
	decodeLoose("projects", snap.Projects, &projects)
	var achievements []achievementEntry
	decodeLoose("achievements", snap.Achievements, &achievements)

	name := personal.Name
	if name == "" {
		name = "the portfolio owner"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are an AI assistant on %s's portfolio website. You answer questions about %s's background, skills, experience, and projects.\n\n", name, name)
	fmt.Fprintf(&b, "Be friendly, concise, and professional. If asked something outside the portfolio context, politely redirect to topics about %s.\n\n", name)

	fmt.Fprintf(&b, "## About %s\n%s\n%s\n", name, personal.Tagline, personal.Bio)
	fmt.Fprintf(&b, "Location: %s\nStatus: %s\nLanguages: %s\n\n", personal.Location, personal.Status, personal.Languages)

	b.WriteString("## Skills\n")
	lines := make([]string, 0, len(skills))
	for _, c := range skills {
		lines = append(lines, fmt.Sprintf("%s: %s", c.Category, strings.Join(c.Skills, ", ")))
	}
	b.WriteString(strings.Join(lines, "\n"))

	b.WriteString("\n\n## Experience\n")
	lines = lines[:0]
	for _, e := range experience {
		end := "Present"
		if e.EndDate != nil && *e.EndDate != "" {
			end = *e.EndDate
		}
		lines = append(lines, fmt.Sprintf("%s at %s (%s - %s)\n  Achievements: %s\n  Tech: %s",
			e.Role, e.Company, e.StartDate, end,
			strings.Join(e.Achievements, "; "), strings.Join(e.TechStack, ", ")))
	}
	b.WriteString(strings.Join(lines, "\n\n"))

	b.WriteString("\n\n## Projects\n")
	lines = lines[:0]
	for _, p := range projects {
		lines = append(lines, fmt.Sprintf("%s: %s\n  Tech: %s\n  Features: %s",
			p.Title, p.ShortDescription,
			strings.Join(p.TechStack, ", "), strings.Join(p.Features, "; ")))
	}
	b.WriteString(strings.Join(lines, "\n\n"))

	b.WriteString("\n\n## Achievements\n")
	lines = lines[:0]
	for _, a := range achievements {
		lines = append(lines, fmt.Sprintf("%s (%s): %s", a.Title, a.Date, a.Description))
	}
	b.WriteString(strings.Join(lines, "\n"))

	if instr := strings.TrimSpace(settings.CustomInstructions); instr != "" {
		b.WriteString("\n\n## Additional Instructions\n")
		b.WriteString(instr)
	}
	if len(settings.SuggestedTopics) > 0 {
		b.WriteString("\n\n## Topics to Highlight\n")
		fmt.Fprintf(&b, "When relevant, steer the conversation toward: %s", strings.Join(settings.SuggestedTopics, ", "))
	}

	return b.String()
}

func decodeLoose(resource string, raw json.RawMessage, v any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, v); err != nil {
		logrus.WithField("resource", resource).Warnf("Skipping malformed content in system prompt: %v", err)
	}
}
