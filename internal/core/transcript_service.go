package core

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
	"portfolio.dev/portfolio-api/internal/store"
	"portfolio.dev/portfolio-api/internal/utils"
)

const subjectPreviewRunes = 60

// Mailer delivers an HTML message to the transcript recipient.
type Mailer interface {
	Send(subject, htmlBody string) error
}

// SMTPMailer sends mail through an authenticated SMTP relay. Port 465 uses
// implicit TLS, other ports STARTTLS when offered.
type SMTPMailer struct {
	dialer    *gomail.Dialer
	from      string
	recipient string
}

func NewSMTPMailer(host string, port int, user, pass, recipient string) *SMTPMailer {
	return &SMTPMailer{
		dialer:    gomail.NewDialer(host, port, user, pass),
		from:      user,
		recipient: recipient,
	}
}

func (m *SMTPMailer) Send(subject, htmlBody string) error {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, "Portfolio Bot")
	msg.SetHeader("To", m.recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send failed: %w", err)
	}
	return nil
}

// TranscriptResult is the JSON answer of a transcript request.
type TranscriptResult struct {
	Success     bool   `json:"success"`
	EmailSent   *bool  `json:"emailSent,omitempty"`
	AlreadySent bool   `json:"alreadySent,omitempty"`
	Skipped     string `json:"skipped,omitempty"`
}

type TranscriptService struct {
	conversations *store.ConversationStore
	mailer        Mailer
	log           *logrus.Entry
}

// NewTranscriptService wires the transcript flow. A nil mailer means SMTP is
// not configured and transcripts are acknowledged without being sent.
func NewTranscriptService(conversations *store.ConversationStore, mailer Mailer) *TranscriptService {
	return &TranscriptService{
		conversations: conversations,
		mailer:        mailer,
		log:           logrus.WithField("component", "transcript"),
	}
}

// Send emails the transcript of a conversation once.
func (s *TranscriptService) Send(conversationID string) (TranscriptResult, error) {
	if conversationID == "" {
		return TranscriptResult{}, store.Invalidf("conversationId required")
	}
	if !utils.ValidConversationID(conversationID) {
		return TranscriptResult{}, store.Invalidf("Invalid conversationId format")
	}

	conv, err := s.conversations.Get(conversationID)
	if err != nil {
		return TranscriptResult{}, err
	}
	if conv.TranscriptSent {
		return TranscriptResult{Success: true, AlreadySent: true}, nil
	}
	if _, ok := conv.FirstUserMessage(); !ok {
		return TranscriptResult{Success: true, Skipped: "no user messages"}, nil
	}

	sent := false
	if s.mailer == nil {
		s.log.Info("SMTP not configured, skipping transcript email")
		return TranscriptResult{Success: true, EmailSent: &sent}, nil
	}

	body, err := FormatTranscriptHTML(conv)
	if err != nil {
		return TranscriptResult{}, err
	}
	if err := s.mailer.Send(TranscriptSubject(conv), body); err != nil {
		return TranscriptResult{}, fmt.Errorf("failed to send transcript for %s: %w", conv.ID, err)
	}
	if err := s.conversations.MarkTranscriptSent(conv.ID); err != nil {
		return TranscriptResult{}, err
	}
	sent = true
	s.log.WithField("conversation", conv.ID).Info("Transcript emailed")
	return TranscriptResult{Success: true, EmailSent: &sent}, nil
}

// TranscriptSubject previews the first visitor question in the subject line.
func TranscriptSubject(conv *store.Conversation) string {
	first, ok := conv.FirstUserMessage()
	if !ok {
		return `Chat Transcript: "New conversation"`
	}
	preview := first.Content
	if runes := []rune(preview); len(runes) > subjectPreviewRunes {
		preview = string(runes[:subjectPreviewRunes]) + "..."
	}
	return `Chat Transcript: "` + preview + `"`
}

var transcriptTmpl = template.Must(template.New("transcript").Parse(`
<div style="font-family:-apple-system,BlinkMacSystemFont,'Segoe UI',Roboto,sans-serif;max-width:600px;margin:0 auto;padding:24px;">
  <h2 style="color:#1F2937;margin:0 0 4px;">Portfolio Chat Transcript</h2>
  <p style="color:#6B7280;font-size:14px;margin:0 0 24px;">{{.Started}} &middot; {{.Count}} messages</p>
  {{- range .Messages}}
  <div style="margin-bottom:12px;padding:12px 16px;border-radius:8px;background:{{if .User}}#EEF2FF{{else}}#F9FAFB{{end}};">
    <div style="font-size:12px;color:{{if .User}}#6366F1{{else}}#6B7280{{end}};font-weight:600;margin-bottom:4px;">{{if .User}}Visitor{{else}}AI Assistant{{end}} &middot; {{.Time}}</div>
    <div style="font-size:14px;color:#1F2937;line-height:1.5;white-space:pre-wrap;">{{.Content}}</div>
  </div>
  {{- end}}
  <hr style="border:none;border-top:1px solid #E5E7EB;margin:24px 0 16px;" />
  <p style="color:#9CA3AF;font-size:12px;margin:0;">Auto-sent after 5 minutes of inactivity.</p>
</div>
`))

type transcriptLine struct {
	User    bool
	Time    string
	Content string
}

// FormatTranscriptHTML renders the conversation as an email body. Message
// content is HTML-escaped.
func FormatTranscriptHTML(conv *store.Conversation) (string, error) {
	lines := make([]transcriptLine, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		lines = append(lines, transcriptLine{
			User:    m.Role == store.RoleUser,
			Time:    m.Timestamp.Format("03:04 PM"),
			Content: m.Content,
		})
	}
	var buf bytes.Buffer
	err := transcriptTmpl.Execute(&buf, struct {
		Started  string
		Count    int
		Messages []transcriptLine
	}{
		Started:  conv.CreatedAt.Format("Jan 2, 2006, 3:04 PM"),
		Count:    len(conv.Messages),
		Messages: lines,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render transcript: %w", err)
	}
	return buf.String(), nil
}
