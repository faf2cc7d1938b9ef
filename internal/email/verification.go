package email

import (
	"context"
	"fmt"
)

// SendVerification mails the registration link embedding a one-time code.
// urlBase is the frontend address the link points at.
func (c *Client) SendVerification(ctx context.Context, to, urlBase, code string) error {
	link := fmt.Sprintf("%s/%s", urlBase, code)
	html := fmt.Sprintf(
		`<h2>Confirm your email</h2>
<p>Somebody used this address to sign up. Click the link below within 10 minutes to continue; if that wasn't you, ignore this email.</p>
<p><a href="%s">Verify your email address</a></p>`, link)
	text := fmt.Sprintf(
		"Confirm your email\n\nOpen this link within 10 minutes to continue signing up:\n%s\n\nIf you didn't request this, ignore this email.\n", link)
	return c.Send(ctx, to, "Verify your email address", html, text)
}
