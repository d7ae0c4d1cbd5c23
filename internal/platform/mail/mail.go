// Package mail sends the email-confirmation message dispatched after
// registration. Sending is fire-and-forget: it runs after the HTTP response
// and failures are logged, never surfaced to the caller.
package mail

import (
	"context"
	"fmt"
	"net/smtp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ayeola05/IntegratedCareServer/internal/platform/token"
)

// EmailSender is the interface for delivering a single email message.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// SMTPSender delivers mail through an SMTP relay with PLAIN auth.
type SMTPSender struct {
	Host     string
	Port     string
	From     string
	Password string
}

func (s *SMTPSender) SendEmail(_ context.Context, to, subject, htmlBody string) error {
	msg := []byte("From: Integrated Care <" + s.From + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\n" +
		"Content-Type: text/html; charset=\"UTF-8\"\r\n" +
		"\r\n" +
		htmlBody + "\r\n")

	auth := smtp.PlainAuth("", s.From, s.Password, s.Host)
	return smtp.SendMail(s.Host+":"+s.Port, auth, s.From, []string{to}, msg)
}

// Confirmer builds and dispatches confirmation emails.
type Confirmer struct {
	sender  EmailSender
	tokens  *token.Service
	logger  zerolog.Logger
	timeout time.Duration
}

func NewConfirmer(sender EmailSender, tokens *token.Service, logger zerolog.Logger) *Confirmer {
	return &Confirmer{
		sender:  sender,
		tokens:  tokens,
		logger:  logger,
		timeout: 30 * time.Second,
	}
}

// SendConfirmation issues a fresh token for the subject and sends the welcome
// email with the confirmation link baseURL/<token>.
func (c *Confirmer) SendConfirmation(ctx context.Context, subjectID uuid.UUID, email, baseURL string) error {
	emailToken, err := c.tokens.Issue(subjectID)
	if err != nil {
		return fmt.Errorf("issue confirmation token: %w", err)
	}

	url := baseURL + "/" + emailToken
	body := `<h1>Welcome to Integrated Care</h1> Please click this link to confirm your email: ` +
		`<a href="` + url + `">Confirm Email</a> <p>We can't wait to have you onboard</p>`

	if err := c.sender.SendEmail(ctx, email, "Confirm Mail", body); err != nil {
		return fmt.Errorf("send confirmation email to %s: %w", email, err)
	}
	return nil
}

// Dispatch runs SendConfirmation in a detached goroutine with its own context
// and timeout. Errors are logged and swallowed; the HTTP response has already
// been sent by the time this runs.
func (c *Confirmer) Dispatch(subjectID uuid.UUID, email, baseURL string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.SendConfirmation(ctx, subjectID, email, baseURL); err != nil {
			c.logger.Error().Err(err).Str("email", email).Msg("confirmation email failed")
		}
	}()
}
