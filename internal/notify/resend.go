package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ResendEndpoint is the Resend email API.
const ResendEndpoint = "https://api.resend.com/emails"

// ResendSender sends invites through the Resend HTTP API.
type ResendSender struct {
	apiKey   string
	from     string
	endpoint string
	client   *http.Client
}

// NewResendSender creates a Resend sender. from is a full address, e.g. "Hezo <info@hezo.be>".
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		apiKey:   apiKey,
		from:     from,
		endpoint: ResendEndpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type resendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	HTML    string   `json:"html"`
}

// Send delivers msg. Any non-2xx response is an error carrying the API's reply.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	html, err := RenderHTML(msg)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(resendRequest{
		From:    s.from,
		To:      []string{msg.To},
		Subject: Subject(msg),
		HTML:    html,
	})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("resend request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("resend: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
