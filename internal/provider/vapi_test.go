package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	auth   string
	body   map[string]any
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Vapi, *[]recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recorded
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorded{method: r.Method, path: r.URL.Path, auth: r.Header.Get("Authorization")}
		if data, _ := io.ReadAll(r.Body); len(data) > 0 {
			_ = json.Unmarshal(data, &rec.body)
		}
		mu.Lock()
		reqs = append(reqs, rec)
		mu.Unlock()
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	v, err := NewVapi(VapiConfig{BaseURL: srv.URL, APIKey: "sk-test", Timeout: 2 * time.Second})
	require.NoError(t, err)
	return v, &reqs
}

func writeJSON(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = io.WriteString(w, body)
}

func TestNewVapiRequiresKey(t *testing.T) {
	_, err := NewVapi(VapiConfig{})
	assert.Error(t, err)
}

func TestCreateAgent(t *testing.T) {
	v, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, `{"id":"asst_1","name":"SnapSkill English"}`)
	})

	agent, err := v.CreateAgent(context.Background(), AgentRequest{
		Name:  "SnapSkill English",
		Voice: VoiceConfig{Provider: "azure", VoiceID: "te-IN-ShrutiNeural"},
	})
	require.NoError(t, err)
	assert.Equal(t, "asst_1", agent.ID)

	require.Len(t, *reqs, 1)
	got := (*reqs)[0]
	assert.Equal(t, http.MethodPost, got.method)
	assert.Equal(t, "/assistant", got.path)
	assert.Equal(t, "Bearer sk-test", got.auth)
	voice := got.body["voice"].(map[string]any)
	assert.Equal(t, "te-IN-ShrutiNeural", voice["voiceId"])
	assert.NotContains(t, voice, "stability")
	assert.NotContains(t, voice, "useSpeakerBoost")
}

func TestCreateAgentRejected(t *testing.T) {
	v, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"message":"voice.stability is not allowed"}`)
	})

	_, err := v.CreateAgent(context.Background(), AgentRequest{Name: "x"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "voice.stability")
}

func TestPlaceCall(t *testing.T) {
	v, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"call_1","status":"queued"}`)
	})

	call, err := v.PlaceCall(context.Background(), PlaceCallRequest{
		AssistantID:   "asst_1",
		PhoneNumberID: "pn_1",
		Customer:      Customer{Number: "+919876543210"},
	})
	require.NoError(t, err)
	assert.Equal(t, "call_1", call.ID)

	got := (*reqs)[0]
	assert.Equal(t, "/call/phone", got.path)
	assert.Equal(t, "asst_1", got.body["assistantId"])
	assert.Equal(t, "pn_1", got.body["phoneNumberId"])
	assert.Equal(t, "+919876543210", got.body["customer"].(map[string]any)["number"])
}

func TestGetCall(t *testing.T) {
	v, reqs := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{
			"id":"call_1","status":"ended","duration":95.4,
			"startedAt":"2026-01-01T12:00:00.000Z","endedAt":"2026-01-01T12:01:35.000Z",
			"recordingUrl":"https://rec.example/1.wav","endedReason":"customer-ended-call",
			"messages":[{"role":"bot","message":"Hello"},{"role":"user","message":"Hi"}],
			"analysis":{"summary":"Short call."}
		}`)
	})

	call, err := v.GetCall(context.Background(), "call_1")
	require.NoError(t, err)
	assert.Equal(t, "/call/call_1", (*reqs)[0].path)
	assert.Equal(t, http.MethodGet, (*reqs)[0].method)
	assert.Equal(t, "ended", call.Status)
	assert.Equal(t, 95.4, call.Duration)
	assert.Equal(t, "customer-ended-call", call.EndedReason)
	assert.Equal(t, "Short call.", call.AnalysisSummary())
	require.Len(t, call.Messages, 2)
	assert.Equal(t, "Hello", call.Messages[0].Text())

	start, ok := call.StartTime()
	require.True(t, ok)
	end, ok := call.EndTime()
	require.True(t, ok)
	assert.Equal(t, 95*time.Second, end.Sub(start))
}

func TestGetCallTransportError(t *testing.T) {
	v, err := NewVapi(VapiConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Timeout: time.Second})
	require.NoError(t, err)

	_, err = v.GetCall(context.Background(), "call_1")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestGetCallRaw(t *testing.T) {
	v, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"id":"call_1","status":"in-progress"}`)
	})

	raw, err := v.GetCallRaw(context.Background(), "call_1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"call_1","status":"in-progress"}`, string(raw))
}

func TestCallTimestampsMissing(t *testing.T) {
	c := &Call{StartedAt: "not-a-time"}
	_, ok := c.StartTime()
	assert.False(t, ok)
	_, ok = c.EndTime()
	assert.False(t, ok)
	assert.Empty(t, c.AnalysisSummary())
}
