// Package email wraps the transactional email provider's HTTP API.
// The provider exposes a single send endpoint taking sender, recipients,
// subject and both HTML and plain-text bodies.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client sends transactional email through the provider API. The base URL
// is injected so tests can point it at a local server.
type Client struct {
	http       *http.Client
	baseURL    string
	apiKey     string
	senderName string
	senderAddr string
}

// New builds a Client with a bounded request timeout.
func New(baseURL, apiKey, senderName, senderAddr string) *Client {
	return &Client{
		http:       &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		senderName: senderName,
		senderAddr: senderAddr,
	}
}

type party struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

type sendRequest struct {
	Sender      party   `json:"sender"`
	To          []party `json:"to"`
	Subject     string  `json:"subject"`
	HTMLContent string  `json:"htmlContent"`
	TextContent string  `json:"textContent"`
}

// Send delivers one email. A non-2xx provider response is an error; the
// response body is folded into the message for the server log, callers
// only relay a generic failure to clients.
func (c *Client) Send(ctx context.Context, to, subject, htmlBody, textBody string) error {
	payload := sendRequest{
		Sender:      party{Name: c.senderName, Email: c.senderAddr},
		To:          []party{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
		TextContent: textBody,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v3/smtp/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("email provider returned %d: %s", resp.StatusCode, detail)
	}
	return nil
}
