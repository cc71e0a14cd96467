package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"portfolio.dev/portfolio-api/internal/store"
)

const (
	DefaultGitHubGraphQLURL = "https://api.github.com/graphql"

	githubRequestTimeout = 20 * time.Second
)

const pinnedReposQuery = `
query($username: String!) {
  user(login: $username) {
    pinnedItems(first: 6, types: [REPOSITORY]) {
      nodes {
        ... on Repository {
          name
          description
          url
          homepageUrl
          primaryLanguage { name }
          repositoryTopics(first: 10) { nodes { topic { name } } }
          languages(first: 5, orderBy: { field: SIZE, direction: DESC }) { nodes { name } }
          stargazerCount
          createdAt
          updatedAt
        }
      }
    }
  }
}`

// GitHubRepo is a pinned repository as returned by the GraphQL API.
type GitHubRepo struct {
	Name            string `json:"name"`
	Description     string `json:"description"`
	URL             string `json:"url"`
	HomepageURL     string `json:"homepageUrl"`
	PrimaryLanguage *struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
	Languages struct {
		Nodes []struct {
			Name string `json:"name"`
		} `json:"nodes"`
	} `json:"languages"`
	StargazerCount int       `json:"stargazerCount"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type graphQLResponse struct {
	Data struct {
		User *struct {
			PinnedItems struct {
				Nodes []GitHubRepo `json:"nodes"`
			} `json:"pinnedItems"`
		} `json:"user"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

var categoryByKeyword = map[string]string{
	"python":           "ai",
	"jupyter":          "ai",
	"machine-learning": "ai",
	"deep-learning":    "ai",
	"ai":               "ai",
	"llm":              "ai",
	"langchain":        "ai",
	"tensorflow":       "ai",
	"pytorch":          "ai",
	"swift":            "mobile",
	"kotlin":           "mobile",
	"react-native":     "mobile",
	"flutter":          "mobile",
	"ios":              "mobile",
	"android":          "mobile",
	"javascript":       "web",
	"typescript":       "web",
	"react":            "web",
	"nextjs":           "web",
	"vue":              "web",
}

var iconByCategory = map[string]string{
	"ai":     "Brain",
	"mobile": "Smartphone",
	"web":    "Globe",
}

var frameworkTopics = map[string]bool{
	"react": true, "nextjs": true, "vue": true, "svelte": true, "angular": true,
	"django": true, "flask": true, "fastapi": true, "express": true, "nestjs": true,
	"tailwindcss": true, "docker": true, "kubernetes": true, "graphql": true,
	"postgresql": true, "mongodb": true, "redis": true, "aws": true, "langchain": true,
}

var wordStart = regexp.MustCompile(`\b\w`)

type GitHubService struct {
	endpoint string
	log      *logrus.Entry
}

func NewGitHubService(endpoint string) *GitHubService {
	if endpoint == "" {
		endpoint = DefaultGitHubGraphQLURL
	}
	return &GitHubService{
		endpoint: endpoint,
		log:      logrus.WithField("component", "github"),
	}
}

// FetchPinnedRepos returns up to six pinned repositories of username.
func (s *GitHubService) FetchPinnedRepos(ctx context.Context, username, token string) ([]GitHubRepo, error) {
	body, err := json.Marshal(map[string]any{
		"query":     pinnedReposQuery,
		"variables": map[string]string{"username": username},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode GraphQL request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, githubRequestTimeout)
	defer cancel()

	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		s.log.Warnf("GitHub request failed: %v", err)
		return nil, &UpstreamError{Kind: UpstreamOther, Msg: "Network error: unable to reach GitHub API"}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, &UpstreamError{Kind: UpstreamAuth, Status: resp.StatusCode,
			Msg: "Invalid GitHub token. Please check your personal access token."}
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		return nil, &UpstreamError{Kind: UpstreamRateLimit, Status: resp.StatusCode,
			Msg: "Rate limit exceeded or token lacks permissions."}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &UpstreamError{Kind: UpstreamOther, Status: resp.StatusCode,
			Msg: fmt.Sprintf("GitHub API returned status %d", resp.StatusCode)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{Kind: UpstreamOther, Msg: "Failed to read GitHub response"}
	}
	var out graphQLResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &UpstreamError{Kind: UpstreamOther, Msg: "Malformed GitHub response"}
	}
	if len(out.Errors) > 0 {
		msg := out.Errors[0].Message
		if msg == "" {
			msg = "Unknown GraphQL error"
		}
		if strings.Contains(msg, "Could not resolve to a User") {
			return nil, &UpstreamError{Kind: UpstreamNotFound, Status: http.StatusNotFound,
				Msg: fmt.Sprintf("GitHub user %q not found.", username)}
		}
		return nil, &UpstreamError{Kind: UpstreamOther, Msg: msg}
	}
	if out.Data.User == nil {
		return nil, nil
	}
	return out.Data.User.PinnedItems.Nodes, nil
}

// ImportProjects fetches the pinned repositories of the configured account
// and maps them to draft projects. Nothing is persisted.
func (s *GitHubService) ImportProjects(ctx context.Context, gh store.GitHubSettings) ([]store.Project, error) {
	username := strings.TrimSpace(gh.Username)
	token := strings.TrimSpace(gh.Token)
	if username == "" {
		return nil, store.Invalidf("GitHub username not configured. Go to Admin → GitHub to set it up.")
	}
	if token == "" {
		return nil, store.Invalidf("GitHub token not configured. Go to Admin → GitHub to add your personal access token.")
	}

	repos, err := s.FetchPinnedRepos(ctx, username, token)
	if err != nil {
		return nil, err
	}
	if len(repos) == 0 {
		return nil, &UpstreamError{Kind: UpstreamNotFound, Status: http.StatusNotFound,
			Msg: fmt.Sprintf("No pinned repositories found for %q. Pin some repos on your GitHub profile first.", username)}
	}

	projects := make([]store.Project, 0, len(repos))
	for _, r := range repos {
		projects = append(projects, MapRepoToProject(r))
	}
	return projects, nil
}

// SyncProjects imports pinned repositories and appends those whose code URL
// is not yet listed to the projects resource. It returns the number added.
func (s *GitHubService) SyncProjects(ctx context.Context, content *store.ContentStore, gh store.GitHubSettings) (int, error) {
	imported, err := s.ImportProjects(ctx, gh)
	if err != nil {
		return 0, err
	}

	raw, err := content.Read(ctx, store.ResourceProjects)
	if err != nil {
		return 0, fmt.Errorf("failed to read projects: %w", err)
	}
	var existing []map[string]any
	if err := json.Unmarshal(raw, &existing); err != nil {
		return 0, fmt.Errorf("failed to decode projects: %w", err)
	}

	known := make(map[string]bool, len(existing))
	for _, p := range existing {
		if u, ok := p["codeUrl"].(string); ok && u != "" {
			known[strings.ToLower(u)] = true
		}
	}

	merged := make([]any, 0, len(existing)+len(imported))
	for _, p := range existing {
		merged = append(merged, p)
	}
	added := 0
	for _, p := range imported {
		key := strings.ToLower(p.CodeURL)
		if key == "" || known[key] {
			continue
		}
		known[key] = true
		merged = append(merged, p)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	data, err := json.Marshal(merged)
	if err != nil {
		return 0, fmt.Errorf("failed to encode projects: %w", err)
	}
	if _, err := content.Write(ctx, store.ResourceProjects, data); err != nil {
		return 0, err
	}
	return added, nil
}

// MapRepoToProject converts a repository into an editable project draft.
func MapRepoToProject(r GitHubRepo) store.Project {
	category := inferCategory(r)
	title := wordStart.ReplaceAllStringFunc(strings.NewReplacer("-", " ", "_", " ").Replace(r.Name), strings.ToUpper)

	return store.Project{
		ID:               uuid.NewString(),
		Title:            title,
		ShortDescription: r.Description,
		FullDescription:  r.Description,
		Category:         category,
		Year:             r.CreatedAt.Year(),
		Thumbnail:        iconByCategory[category],
		Images:           []string{},
		TechStack:        buildTechStack(r),
		Features:         []string{},
		LiveURL:          r.HomepageURL,
		CodeURL:          r.URL,
	}
}

func inferCategory(r GitHubRepo) string {
	for _, n := range r.RepositoryTopics.Nodes {
		if c, ok := categoryByKeyword[strings.ToLower(n.Topic.Name)]; ok {
			return c
		}
	}
	if r.PrimaryLanguage != nil {
		if c, ok := categoryByKeyword[strings.ToLower(r.PrimaryLanguage.Name)]; ok {
			return c
		}
	}
	for _, l := range r.Languages.Nodes {
		if c, ok := categoryByKeyword[strings.ToLower(l.Name)]; ok {
			return c
		}
	}
	return "web"
}

func buildTechStack(r GitHubRepo) []string {
	stack := make([]string, 0, len(r.Languages.Nodes))
	seen := map[string]bool{}
	for _, l := range r.Languages.Nodes {
		stack = append(stack, l.Name)
		seen[strings.ToLower(l.Name)] = true
	}
	for _, n := range r.RepositoryTopics.Nodes {
		name := n.Topic.Name
		topic := strings.ToLower(name)
		if !frameworkTopics[topic] || seen[topic] || name == "" {
			continue
		}
		seen[topic] = true
		stack = append(stack, strings.ToUpper(name[:1])+name[1:])
	}
	return stack
}
