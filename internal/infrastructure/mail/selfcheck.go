package mail

import (
	"context"
	"fmt"
	"time"

	"Paperboy/internal/domain"
	"Paperboy/internal/ports"
)

const testSubject = "Paperboy Test Email"

const testHTML = `<html>
  <body>
    <h1>Paperboy Test Email</h1>
    <p>This is a test email from your Paperboy newsletter service.</p>
    <p>Sent at: %s</p>
  </body>
</html>
`

const testText = "Paperboy Test Email\n\nThis is a test email from your Paperboy newsletter service.\nSent at: %s\n"

// SampleLetter is the fixed message used to verify delivery settings.
func SampleLetter(sentAt time.Time) domain.Newsletter {
	stamp := sentAt.Format("January 02, 2006 15:04:05")
	return domain.Newsletter{
		HTML: fmt.Sprintf(testHTML, stamp),
		Text: fmt.Sprintf(testText, stamp),
		Date: sentAt.Format("January 02, 2006"),
		Year: sentAt.Format("2006"),
	}
}

// SendTestEmail delivers SampleLetter from from to recipients and returns the
// delivery id.
func SendTestEmail(ctx context.Context, mailer ports.Mailer, from string, to []string, sentAt time.Time) (string, error) {
	return mailer.Send(ctx, SampleLetter(sentAt), domain.Envelope{
		From:    from,
		To:      to,
		Subject: testSubject,
	})
}
