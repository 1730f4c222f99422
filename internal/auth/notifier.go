// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/adminauth/internal/platform/ctxutil"
)

// Message is a rendered verification email.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// ComposeMessage renders the verification email for code, telling the
// recipient how long it stays valid.
func ComposeMessage(recipient, code string, ttl time.Duration) Message {
	return Message{
		To:      recipient,
		Subject: MailSubject,
		Body:    fmt.Sprintf(mailBodyFormat, code, int(ttl.Minutes())),
	}
}

// LogNotifier writes codes to the log instead of sending them.
// Use it only in local development.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs through logger, or through the
// request logger when logger is nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the code at WARN so it stands out in development output.
func (notifier *LogNotifier) Send(ctx context.Context, recipient, code string) error {
	logger := notifier.logger
	if logger == nil {
		logger = ctxutil.GetLogger(ctx)
	}

	logger.WarnContext(ctx, "auth_code_not_mailed",
		slog.String("to", recipient),
		slog.String("code", code),
	)
	return nil
}
