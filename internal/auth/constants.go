// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

// # Principal Defaults

const (
	// DefaultDisplayName is used when ADMIN_NAME is blank.
	DefaultDisplayName = "Administrator"

	// DefaultRole is used when ADMIN_ROLE is blank.
	DefaultRole = "SUPER_ADMIN"
)

// # Client Messages

const (
	MessageCodeSent      = "Verification code sent to your email"
	MessageLoginSuccess  = "Login successful"
	MessageTokenRenewed  = "Token renewed"
	MessageSessionClosed = "Session closed"
)

// # Verification Mail

const (
	// MailSubject is the subject line of the verification message.
	MailSubject = "Life2Food - Verification code"

	// mailBodyFormat takes the code and its lifetime in minutes.
	mailBodyFormat = "Your verification code is: %s\n" +
		"This code expires in %d minutes. If you did not request it, ignore this message."
)
