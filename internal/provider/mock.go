package provider

import (
	"context"
	"fmt"
	"sync"
)

var _ Client = (*Mock)(nil)

type mockStep struct {
	call *Call
	err  error
}

// Mock is an in-memory Client. GetCall replays queued steps in order and
// repeats the last one once the queue is exhausted.
type Mock struct {
	mu          sync.Mutex
	agentReqs   []AgentRequest
	callReqs    []PlaceCallRequest
	steps       []mockStep
	getCalls    int
	agentErr    error
	placeErr    error
	nextCallID  string
	agentSerial int
}

// NewMock creates a Mock whose placed calls get callID.
func NewMock(callID string) *Mock {
	return &Mock{nextCallID: callID}
}

func (m *Mock) CreateAgent(_ context.Context, req AgentRequest) (*Agent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.agentErr != nil {
		return nil, m.agentErr
	}
	m.agentReqs = append(m.agentReqs, req)
	m.agentSerial++
	return &Agent{ID: fmt.Sprintf("agent-%d", m.agentSerial), Name: req.Name}, nil
}

func (m *Mock) PlaceCall(_ context.Context, req PlaceCallRequest) (*Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	m.callReqs = append(m.callReqs, req)
	return &Call{ID: m.nextCallID, AssistantID: req.AssistantID, Status: "queued"}, nil
}

func (m *Mock) GetCall(_ context.Context, callID string) (*Call, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if len(m.steps) == 0 {
		return &Call{ID: callID, Status: "queued"}, nil
	}
	idx := m.getCalls - 1
	if idx >= len(m.steps) {
		idx = len(m.steps) - 1
	}
	step := m.steps[idx]
	if step.err != nil {
		return nil, step.err
	}
	c := *step.call
	c.Messages = append([]Message(nil), step.call.Messages...)
	return &c, nil
}

// QueueStatus appends a snapshot with just a status.
func (m *Mock) QueueStatus(status string) {
	m.QueueCall(&Call{Status: status})
}

// QueueCall appends a full snapshot to the GetCall script.
func (m *Mock) QueueCall(c *Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	if cp.ID == "" {
		cp.ID = m.nextCallID
	}
	m.steps = append(m.steps, mockStep{call: &cp})
}

// QueueError appends a GetCall failure to the script.
func (m *Mock) QueueError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, mockStep{err: err})
}

// SetCreateAgentError makes CreateAgent fail. Pass nil to clear.
func (m *Mock) SetCreateAgentError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.agentErr = err
}

// SetPlaceCallError makes PlaceCall fail. Pass nil to clear.
func (m *Mock) SetPlaceCallError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placeErr = err
}

// AgentRequests returns a copy of all successful CreateAgent payloads.
func (m *Mock) AgentRequests() []AgentRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]AgentRequest, len(m.agentReqs))
	copy(out, m.agentReqs)
	return out
}

// CallRequests returns a copy of all successful PlaceCall payloads.
func (m *Mock) CallRequests() []PlaceCallRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PlaceCallRequest, len(m.callReqs))
	copy(out, m.callReqs)
	return out
}

// GetCallCount returns how many times GetCall was invoked.
func (m *Mock) GetCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getCalls
}
