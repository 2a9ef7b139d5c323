package notification

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/wneessen/go-mail"
)

type SMTPConfig struct {
	Host     string
	Port     int
	TLS      bool
	Username string
	Password string
	From     string
}

const verificationTemplate = `<p>Hello,</p>
<p>Please confirm your email address by opening the link below. The link is valid for {{.ExpiryDays}} days.</p>
<p><a href="{{.VerificationLink}}">{{.VerificationLink}}</a></p>
<p>If you did not request this, you can ignore this message.</p>
`

// EmailNotifier sends verification emails over SMTP
type EmailNotifier struct {
	SMTPConfig SMTPConfig
	client     *mail.Client
	tmpl       *template.Template
	expiryDays int
}

// EmailNotifierOption configures an EmailNotifier
type EmailNotifierOption func(*EmailNotifier)

// WithExpiryDays sets the validity period mentioned in the email body
func WithExpiryDays(days int) EmailNotifierOption {
	return func(n *EmailNotifier) {
		n.expiryDays = days
	}
}

// NewEmailNotifier creates a notifier with its own mail client
func NewEmailNotifier(config SMTPConfig, opts ...EmailNotifierOption) (*EmailNotifier, error) {
	mailOpts := []mail.Option{
		mail.WithPort(config.Port),
		mail.WithTimeout(30),
	}

	// Only add authentication if username and password are provided
	if config.Username != "" && config.Password != "" {
		slog.Info("Adding SMTP authentication", "user", config.Username)
		mailOpts = append(mailOpts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(config.Username),
			mail.WithPassword(config.Password),
		)
	}

	if !config.TLS {
		slog.Info("Using NoTLS policy")
		mailOpts = append(mailOpts,
			mail.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true,
			}),
			mail.WithTLSPolicy(mail.NoTLS),
		)
	} else {
		slog.Info("Using TLS Mandatory policy")
		mailOpts = append(mailOpts,
			mail.WithTLSConfig(&tls.Config{
				InsecureSkipVerify: true,
			}),
			mail.WithTLSPolicy(mail.TLSMandatory),
		)
	}

	slog.Info("Creating mail client", "Host", config.Host, "Port", config.Port)
	client, err := mail.NewClient(config.Host, mailOpts...)
	if err != nil {
		slog.Error("Failed to create mail client", "err", err)
		return nil, err
	}

	tmpl, err := template.New("verification").Parse(verificationTemplate)
	if err != nil {
		return nil, err
	}

	n := &EmailNotifier{
		SMTPConfig: config,
		client:     client,
		tmpl:       tmpl,
		expiryDays: 5,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// SendVerification renders and sends a verification email
func (e *EmailNotifier) SendVerification(ctx context.Context, to, verificationLink string) (string, string, error) {
	if to == "" {
		return "", "", fmt.Errorf("verification email requires a 'to' address")
	}

	var buf bytes.Buffer
	err := e.tmpl.Execute(&buf, map[string]any{
		"VerificationLink": verificationLink,
		"ExpiryDays":       e.expiryDays,
	})
	if err != nil {
		slog.Error("Failed to execute verification template", "err", err)
		return "", "", err
	}
	body := buf.String()

	msg := mail.NewMsg()
	if err := msg.From(e.SMTPConfig.From); err != nil {
		slog.Error("Failed to set from address", "err", err)
		return "", "", err
	}
	if err := msg.To(to); err != nil {
		slog.Error("Failed to set to address", "err", err)
		return "", "", err
	}
	msg.Subject(VerificationSubject)
	msg.SetBodyString(mail.TypeTextHTML, body)

	if err := e.client.DialAndSendWithContext(ctx, msg); err != nil {
		slog.Error("Failed to send email", "err", err)
		return "", "", err
	}

	slog.Info("Verification email sent", "to", to, "host", e.SMTPConfig.Host, "port", e.SMTPConfig.Port)
	return e.SMTPConfig.From, body, nil
}
