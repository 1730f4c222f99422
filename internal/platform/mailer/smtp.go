// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mailer delivers verification codes over SMTP.
package mailer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"github.com/taibuivan/adminauth/internal/auth"
	"github.com/taibuivan/adminauth/internal/platform/apperr"
)

// SMTPConfig holds the relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string

	// Timeout bounds one dial-and-send round trip.
	Timeout time.Duration

	// CodeTTL is quoted in the message body.
	CodeTTL time.Duration
}

// SMTPNotifier sends one plain-text message per code. A new connection is
// opened for every message; the volume is one mail per successful login.
type SMTPNotifier struct {
	config SMTPConfig
}

// NewSMTPNotifier validates config and returns a notifier.
func NewSMTPNotifier(config SMTPConfig) (*SMTPNotifier, error) {
	if strings.TrimSpace(config.Host) == "" || strings.TrimSpace(config.From) == "" {
		return nil, fmt.Errorf("%w: SMTP_HOST and MAIL_FROM must be set", apperr.ErrConfiguration)
	}
	if config.Port <= 0 {
		return nil, fmt.Errorf("%w: SMTP_PORT must be positive", apperr.ErrConfiguration)
	}
	return &SMTPNotifier{config: config}, nil
}

// Send implements [auth.Notifier].
func (notifier *SMTPNotifier) Send(ctx context.Context, recipient, code string) error {
	message, err := notifier.compose(recipient, code)
	if err != nil {
		return err
	}

	client, err := mail.NewClient(notifier.config.Host, notifier.clientOptions()...)
	if err != nil {
		return fmt.Errorf("mailer: invalid smtp client settings: %w", err)
	}

	if notifier.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, notifier.config.Timeout)
		defer cancel()
	}

	if err := client.DialAndSendWithContext(ctx, message); err != nil {
		return fmt.Errorf("mailer: send to %s failed: %w", recipient, err)
	}
	return nil
}

func (notifier *SMTPNotifier) compose(recipient, code string) (*mail.Msg, error) {
	rendered := auth.ComposeMessage(recipient, code, notifier.config.CodeTTL)

	message := mail.NewMsg()
	if err := message.From(notifier.config.From); err != nil {
		return nil, fmt.Errorf("mailer: invalid sender: %w", err)
	}
	if err := message.To(rendered.To); err != nil {
		return nil, fmt.Errorf("mailer: invalid recipient: %w", err)
	}
	message.Subject(rendered.Subject)
	message.SetBodyString(mail.TypeTextPlain, rendered.Body)

	return message, nil
}

func (notifier *SMTPNotifier) clientOptions() []mail.Option {
	options := []mail.Option{
		mail.WithPort(notifier.config.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if notifier.config.Timeout > 0 {
		options = append(options, mail.WithTimeout(notifier.config.Timeout))
	}
	if notifier.config.Username != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(notifier.config.Username),
			mail.WithPassword(notifier.config.Password),
		)
	}
	return options
}
