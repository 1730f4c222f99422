// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/taibuivan/adminauth/internal/auth"
	"github.com/taibuivan/adminauth/internal/platform/sec"
	"github.com/taibuivan/adminauth/pkg/clock"
)

const (
	adminEmail    = "admin@example.com"
	adminPassword = "S3cret!"
	testSecret    = "0123456789abcdef0123456789abcdef"

	// knownCode is what knownBytes produce: K=10, 3=29, F=5, 9=35, Q=16, Z=25.
	knownCode = "K3F9QZ"
)

var (
	knownBytes = []byte{10, 29, 5, 35, 16, 25}
	startTime  = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

// cyclingReader replays the same bytes forever so every login gets knownCode.
type cyclingReader struct {
	mu     sync.Mutex
	data   []byte
	offset int
}

func (reader *cyclingReader) Read(buffer []byte) (int, error) {
	reader.mu.Lock()
	defer reader.mu.Unlock()

	for i := range buffer {
		buffer[i] = reader.data[reader.offset%len(reader.data)]
		reader.offset++
	}
	return len(buffer), nil
}

// recordingNotifier keeps every code it is asked to send.
type recordingNotifier struct {
	mu    sync.Mutex
	sent  []string
	err   error
	calls int
}

func (notifier *recordingNotifier) Send(_ context.Context, _, code string) error {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	notifier.calls++
	if notifier.err != nil {
		return notifier.err
	}
	notifier.sent = append(notifier.sent, code)
	return nil
}

func (notifier *recordingNotifier) last() string {
	notifier.mu.Lock()
	defer notifier.mu.Unlock()

	if len(notifier.sent) == 0 {
		return ""
	}
	return notifier.sent[len(notifier.sent)-1]
}

// gatedNotifier blocks its first Send until the test releases it with a
// result. Later sends succeed immediately.
type gatedNotifier struct {
	entered chan struct{}
	release chan error

	mu    sync.Mutex
	calls int
}

func newGatedNotifier() *gatedNotifier {
	return &gatedNotifier{entered: make(chan struct{}), release: make(chan error)}
}

func (notifier *gatedNotifier) Send(ctx context.Context, _, _ string) error {
	notifier.mu.Lock()
	notifier.calls++
	first := notifier.calls == 1
	notifier.mu.Unlock()

	if !first {
		return nil
	}

	close(notifier.entered)
	select {
	case err := <-notifier.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

type fixture struct {
	clock    *clock.Manual
	notifier *recordingNotifier
	tokens   *sec.TokenIssuer
	service  *auth.Service
}

var testPolicy = auth.Policy{
	CodeTTL:          10 * time.Minute,
	CodeMaxAttempts:  5,
	LoginMaxAttempts: 5,
	LockDuration:     15 * time.Minute,
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	notifier := &recordingNotifier{}
	f := newFixtureWith(t, notifier)
	f.notifier = notifier
	return f
}

// newFixtureWith builds a fixture around any notifier. f.notifier stays nil.
func newFixtureWith(t *testing.T, notifier auth.Notifier) *fixture {
	t.Helper()

	hasher := sec.NewBcryptHasher(bcrypt.MinCost)
	manual := clock.NewManual(startTime)

	principal, err := auth.NewPrincipal(auth.PrincipalConfig{
		Email:    adminEmail,
		Password: adminPassword,
		Name:     "Admin",
		Role:     "SUPER_ADMIN",
	}, hasher)
	require.NoError(t, err)

	tokens, err := sec.NewTokenIssuer(testSecret, "life2food", 2*time.Hour, manual)
	require.NoError(t, err)

	service, err := auth.NewService(principal, hasher, notifier, tokens, testPolicy,
		auth.WithClock(manual),
		auth.WithRandom(&cyclingReader{data: knownBytes}),
	)
	require.NoError(t, err)

	return &fixture{clock: manual, tokens: tokens, service: service}
}
