// Package recipients turns pasted text or an uploaded delimited file into invite recipients.
package recipients

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/hezo-be/webinar-backend/internal/models"
)

// MaxFileSize caps uploaded recipient files (1MB).
const MaxFileSize = 1 << 20

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsEmail reports whether s has the local@domain.tld shape.
func IsEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Parse converts text, one candidate per line, into recipients in input order.
// Header rows, blank lines and rows without any usable field are skipped.
// Duplicates are kept.
func Parse(text string) []models.Recipient {
	var out []models.Recipient
	for _, line := range strings.Split(text, "\n") {
		if r, ok := parseLine(line); ok {
			out = append(out, r)
		}
	}
	return out
}

// ParseReader reads at most MaxFileSize bytes from r and parses them.
func ParseReader(r io.Reader) ([]models.Recipient, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read recipients: %w", err)
	}
	if len(data) > MaxFileSize {
		return nil, fmt.Errorf("recipients file exceeds %d bytes", MaxFileSize)
	}
	return Parse(string(data)), nil
}

func parseLine(line string) (models.Recipient, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return models.Recipient{}, false
	}
	lower := strings.ToLower(line)
	if strings.Contains(lower, "name") && strings.Contains(lower, "email") {
		return models.Recipient{}, false
	}

	parts := split(line)
	fields := make([]string, 0, len(parts))
	for _, p := range parts {
		fields = append(fields, unquote(strings.TrimSpace(p)))
	}

	var name, email string
	switch {
	case len(fields) >= 2:
		switch {
		case IsEmail(fields[0]):
			email, name = fields[0], fields[1]
		case IsEmail(fields[1]):
			name, email = fields[0], fields[1]
		default:
			name = fields[0]
		}
	case len(fields) == 1:
		if IsEmail(fields[0]) {
			email = fields[0]
		} else {
			name = fields[0]
		}
	}

	r := models.Recipient{Name: nonEmpty(name), Email: nonEmpty(email)}
	if r.Name == nil && r.Email == nil {
		return models.Recipient{}, false
	}
	return r, true
}

// split cuts line on any of , ; | and tab, keeping empty fields.
func split(line string) []string {
	var parts []string
	start := 0
	for i, r := range line {
		switch r {
		case ',', ';', '|', '\t':
			parts = append(parts, line[start:i])
			start = i + 1
		}
	}
	return append(parts, line[start:])
}

// unquote strips one matching pair of surrounding quotes.
func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Dedupe drops repeated emails (case-insensitive), keeping the first occurrence.
// Name-only recipients are always kept.
func Dedupe(in []models.Recipient) []models.Recipient {
	seen := make(map[string]struct{}, len(in))
	out := make([]models.Recipient, 0, len(in))
	for _, r := range in {
		if r.Email != nil {
			key := strings.ToLower(*r.Email)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
		}
		out = append(out, r)
	}
	return out
}
