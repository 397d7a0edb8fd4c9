// Package notify emails invite magic links.
package notify

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// ErrNotConfigured is reported for every message when no sender is available.
var ErrNotConfigured = errors.New("email sending is not configured")

// Message is one invite email.
type Message struct {
	To           string
	Name         *string
	WebinarTitle string
	Link         string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Subject returns the subject line for msg with line breaks removed.
func Subject(msg Message) string {
	return "Uitnodiging webinar: " + stripNewlines(msg.WebinarTitle)
}

type inviteData struct {
	Name         string
	WebinarTitle string
	Link         template.URL
}

// RenderHTML renders the invite body. Name and title are escaped by html/template.
func RenderHTML(msg Message) (string, error) {
	data := inviteData{WebinarTitle: msg.WebinarTitle, Link: template.URL(msg.Link)}
	if msg.Name != nil {
		data.Name = strings.TrimSpace(*msg.Name)
	}
	var body bytes.Buffer
	if err := templates.ExecuteTemplate(&body, "invite.html", data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return body.String(), nil
}

func stripNewlines(s string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(s)
}
