package service

import (
	"context"
	"sync"
)

// recordingSender captures verification tokens so tests can verify
type recordingSender struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
}

func newRecordingSender() *recordingSender {
	return &recordingSender{tokens: make(map[string]string)}
}

func (r *recordingSender) SendVerificationEmail(ctx context.Context, email, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[email] = token
	return r.err
}

func (r *recordingSender) tokenFor(email string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tokens[email]
}

