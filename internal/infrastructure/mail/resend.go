package mail

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/resend/resend-go/v2"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
)

var datePlaceholder = regexp.MustCompile(`\{\{\s*date\s*\}\}`)

// emailAPI is the subset of the Resend SDK the mailer needs.
type emailAPI interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendMailer sends newsletters through the Resend API.
type ResendMailer struct {
	emails emailAPI
}

var _ ports.Mailer = (*ResendMailer)(nil)

// NewResendMailer registers the API key.
func NewResendMailer(apiKey string) *ResendMailer {
	client := resend.NewClient(apiKey)
	return &ResendMailer{emails: client.Emails}
}

// Send dispatches one email and returns Resend's delivery id.
func (m *ResendMailer) Send(ctx context.Context, letter domain.Newsletter, env domain.Envelope) (string, error) {
	if m == nil || m.emails == nil {
		return "", errors.New("resend mailer misconfigured")
	}
	if env.From == "" || len(env.To) == 0 {
		return "", errors.New("sender and recipient are required")
	}

	resp, err := m.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    env.From,
		To:      env.To,
		Subject: Subject(env.Subject, letter.Date),
		Html:    letter.HTML,
		Text:    letter.Text,
	})
	if err != nil {
		return "", fmt.Errorf("send email: %w", err)
	}
	if resp == nil {
		return "", errors.New("send email: empty response")
	}

	return resp.Id, nil
}

// Subject substitutes the {{ date }} placeholder.
func Subject(template, date string) string {
	return datePlaceholder.ReplaceAllLiteralString(template, date)
}
