package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// ErrClosed is returned by MockPublisher.Publish after Close.
var ErrClosed = errors.New("publisher closed")

// Message is one recorded publish.
type Message struct {
	Topic   string
	Payload []byte
}

// Decode unmarshals the payload as a JSON object.
func (m Message) Decode() (map[string]any, error) {
	var out map[string]any
	err := json.Unmarshal(m.Payload, &out)
	return out, err
}

// MockPublisher keeps publishes in memory in place of a broker.
type MockPublisher struct {
	mu     sync.Mutex
	sent   []Message
	closed bool
	fail   error
}

var _ Publisher = (*MockPublisher)(nil)

// NewMockPublisher creates an empty MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, topic string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.closed:
		return ErrClosed
	case m.fail != nil:
		return m.fail
	}
	m.sent = append(m.sent, Message{Topic: topic, Payload: append([]byte(nil), payload...)})
	return nil
}

func (m *MockPublisher) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Messages returns a copy of everything published so far.
func (m *MockPublisher) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Message(nil), m.sent...)
}

// ForCall returns the messages published about callID under prefix.
func (m *MockPublisher) ForCall(prefix, callID string) []Message {
	want := prefix + "/call/" + callID + "/"
	var out []Message
	for _, msg := range m.Messages() {
		if strings.HasPrefix(msg.Topic, want) {
			out = append(out, msg)
		}
	}
	return out
}

// Closed reports whether Close was called.
func (m *MockPublisher) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SetError makes Publish fail with err until cleared with nil. Failed
// publishes are not recorded.
func (m *MockPublisher) SetError(err error) {
	m.mu.Lock()
	m.fail = err
	m.mu.Unlock()
}
