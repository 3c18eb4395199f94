// Package mailer sends transactional email. Registration uses it for the
// welcome message.
package mailer

import (
	"context"
	"fmt"
	"html"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"selfcheck/logging"
)

type Mailer interface {
	SendWelcome(ctx context.Context, toAddress, username string) error
}

const defaultHost = "https://api.sendgrid.com"

type SendGridMailer struct {
	apiKey   string
	host     string
	fromName string
	fromAddr string
}

func NewSendGridMailer(apiKey, fromName, fromAddr string) *SendGridMailer {
	return &SendGridMailer{apiKey: apiKey, host: defaultHost, fromName: fromName, fromAddr: fromAddr}
}

// WithHost points the mailer at another API host.
func (m *SendGridMailer) WithHost(host string) *SendGridMailer {
	m.host = host
	return m
}

func (m *SendGridMailer) SendWelcome(ctx context.Context, toAddress, username string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(username, toAddress)
	subject := "Welcome to " + m.fromName

	plainTextContent := fmt.Sprintf("Hi %s, your account is ready. You can log in and take your first self-assessment.", username)
	htmlContent := fmt.Sprintf("<p>Hi <strong>%s</strong>, your account is ready.</p><p>You can log in and take your first self-assessment.</p>", html.EscapeString(username))

	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)

	request := sendgrid.GetRequest(m.apiKey, "/v3/mail/send", m.host)
	request.Method = "POST"
	request.Body = mail.GetRequestBody(message)

	response, err := sendgrid.MakeRequestWithContext(ctx, request)
	if err != nil {
		return fmt.Errorf("send welcome email: %w", err)
	}
	if response.StatusCode >= 300 {
		return fmt.Errorf("send welcome email: sendgrid returned %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

// LogMailer stands in when no SendGrid key is configured.
type LogMailer struct {
	log logging.Logger
}

func NewLogMailer(log logging.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendWelcome(ctx context.Context, toAddress, username string) error {
	m.log.Info(ctx, "welcome email skipped, no mail provider configured", "username", username)
	return nil
}
