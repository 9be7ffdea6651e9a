package email

import (
	"context"
	"sync"

	"sajilo_backend/internal/logger"
)

// LogProvider drops messages after logging their envelope. It backs disabled delivery.
type LogProvider struct{}

func (LogProvider) Send(ctx context.Context, email *Email) error {
	logger.CtxInfo(ctx, "email delivery disabled", "to", email.To, "subject", email.Subject)
	return nil
}

func (LogProvider) Validate() error { return nil }

// Recorder is a Provider that keeps messages in memory for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Email
	Err  error
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Send(_ context.Context, email *Email) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.sent = append(r.sent, *email)
	return nil
}

func (r *Recorder) Validate() error { return nil }

// Sent returns a copy of everything delivered so far.
func (r *Recorder) Sent() []Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Email, len(r.sent))
	copy(out, r.sent)
	return out
}

// Last returns the most recent message, or nil.
func (r *Recorder) Last() *Email {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.sent) == 0 {
		return nil
	}
	e := r.sent[len(r.sent)-1]
	return &e
}
