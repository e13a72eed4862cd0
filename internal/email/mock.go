package email

import (
	"context"
	"errors"
	"sync"
)

// Call records one SendEmail invocation.
type Call struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// MockSender is a test double that records every call.
type MockSender struct {
	mu          sync.Mutex
	calls       []Call
	ShouldFail  bool
	ShouldPanic bool
}

func (m *MockSender) SendEmail(_ context.Context, to, subject, text, html string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{To: to, Subject: subject, Text: text, HTML: html})
	if m.ShouldPanic {
		panic("email provider exploded")
	}
	if m.ShouldFail {
		return errors.New("smtp unavailable")
	}
	return nil
}

func (m *MockSender) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}
