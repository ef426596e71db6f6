package auth

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	args := m.Called(ctx, toEmail, resetURL)
	return args.Error(0)
}

type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) Verify(ctx context.Context, credential string) (*GoogleIdentity, error) {
	args := m.Called(ctx, credential)
	id, _ := args.Get(0).(*GoogleIdentity)
	return id, args.Error(1)
}

// recordingMailer keeps every reset link it was asked to send.
type recordingMailer struct {
	mu   sync.Mutex
	sent map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{sent: make(map[string]string)}
}

func (m *recordingMailer) SendPasswordReset(ctx context.Context, toEmail, resetURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[toEmail] = resetURL
	return nil
}

func (m *recordingMailer) link(email string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.sent[email]
	return l, ok
}
