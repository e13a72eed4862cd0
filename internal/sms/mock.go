package sms

import (
	"context"
	"errors"
	"sync"
)

// Call records one SendSMS invocation.
type Call struct {
	To   string
	Body string
}

// MockSender is a test double that records every call.
type MockSender struct {
	mu          sync.Mutex
	calls       []Call
	ShouldFail  bool
	ShouldPanic bool
}

func (m *MockSender) SendSMS(_ context.Context, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{To: to, Body: body})
	if m.ShouldPanic {
		panic("sms provider exploded")
	}
	if m.ShouldFail {
		return errors.New("sms gateway unavailable")
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
