package mailmerge_test

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/dmitrymomot/mailmerge/pkg/email"
)

type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateBody(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockGenerator) GenerateSubject(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// recordingSender keeps every message it is asked to send.
type recordingSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (r *recordingSender) SendEmail(_ context.Context, params email.SendEmailParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, params)
	return r.err
}

func (r *recordingSender) Sent() []email.SendEmailParams {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.SendEmailParams(nil), r.sent...)
}
