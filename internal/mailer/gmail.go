package mailer

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// NewGmailSender builds the production RawSender on top of the Gmail API,
// authenticated as the token source's own mailbox.
func NewGmailSender(ctx context.Context, ts oauth2.TokenSource) (RawSender, error) {
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return &gmailSender{users: svc.Users}, nil
}

type gmailSender struct {
	users *gmail.UsersService
}

// SendRaw submits the encoded message as the authenticated user ("me").
func (g *gmailSender) SendRaw(ctx context.Context, raw string) (string, error) {
	sent, err := g.users.Messages.Send("me", &gmail.Message{Raw: raw}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	return sent.Id, nil
}
