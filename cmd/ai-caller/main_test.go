package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/config"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/ledger"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/orchestrator"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/profile"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/publisher"
)

// fakeVapi serves the three provider endpoints. GET /call/{id} reports
// in-progress until it has been asked pendingPolls times.
type fakeVapi struct {
	mu           sync.Mutex
	pendingPolls int
	polls        int
	agentBodies  []map[string]any
}

func (f *fakeVapi) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	if r.Header.Get("Authorization") != "Bearer sk-test" {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"invalid key"}`)
		return
	}

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/assistant":
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		f.agentBodies = append(f.agentBodies, body)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"asst_123"}`)
	case r.Method == http.MethodPost && r.URL.Path == "/call/phone":
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"call_abc","status":"queued"}`)
	case r.Method == http.MethodGet && r.URL.Path == "/call/call_abc":
		f.polls++
		if f.polls <= f.pendingPolls {
			io.WriteString(w, `{"id":"call_abc","status":"in-progress"}`)
			return
		}
		io.WriteString(w, `{
			"id":"call_abc","status":"ended","duration":95,
			"endedReason":"assistant-ended-call",
			"messages":[
				{"role":"system","message":"prompt"},
				{"role":"bot","message":"Hello from SnapSkill"},
				{"role":"user","message":"Hi there"}
			]
		}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeVapi) agents() []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]any(nil), f.agentBodies...)
}

func testConfig(t *testing.T, baseURL, driver string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Provider.BaseURL = baseURL
	cfg.Provider.APIKey = "sk-test"
	cfg.Provider.PhoneNumberID = "pn_1"
	cfg.Provider.Timeout = 2 * time.Second
	cfg.Poll.Interval = 5 * time.Millisecond
	cfg.Poll.MaxWait = 2 * time.Second
	cfg.Ledger.Driver = driver
	cfg.Ledger.Path = filepath.Join(t.TempDir(), "calls."+driver)
	return cfg
}

func TestRunAgainstFakeProvider(t *testing.T) {
	for _, driver := range []string{"xlsx", "sqlite"} {
		t.Run(driver, func(t *testing.T) {
			fake := &fakeVapi{pendingPolls: 2}
			srv := httptest.NewServer(fake)
			defer srv.Close()

			cfg := testConfig(t, srv.URL, driver)
			reg, err := profile.Default()
			if err != nil {
				t.Fatalf("loading profiles: %v", err)
			}
			pub := publisher.NewMockPublisher()

			res, err := run(context.Background(), cfg, reg, pub, zap.NewNop(), "English", "+919876543210")
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			if res.Status != "ended" {
				t.Errorf("expected ended, got %s", res.Status)
			}
			if !res.Cost.Equal(decimal.RequireFromString("7.23")) {
				t.Errorf("expected cost 7.23, got %s", res.Cost)
			}
			if res.Duration != "1m 35s" {
				t.Errorf("expected 1m 35s, got %s", res.Duration)
			}
			if res.Transcript != "AI: Hello from SnapSkill\nCustomer: Hi there" {
				t.Errorf("unexpected transcript %q", res.Transcript)
			}
			if res.AgentID != "asst_123" || res.CallID != "call_abc" {
				t.Errorf("unexpected ids: agent %s call %s", res.AgentID, res.CallID)
			}
			if res.Polls != 3 {
				t.Errorf("expected 3 polls, got %d", res.Polls)
			}

			agents := fake.agents()
			if len(agents) != 1 {
				t.Fatalf("expected 1 agent created, got %d", len(agents))
			}
			voice := agents[0]["voice"].(map[string]any)
			if voice["provider"] != "11labs" || voice["stability"] != 0.7 {
				t.Errorf("unexpected voice payload %v", voice)
			}

			led, err := ledger.Open(cfg.Ledger.Driver, cfg.Ledger.Path)
			if err != nil {
				t.Fatalf("reopening ledger: %v", err)
			}
			defer led.Close()
			entries, err := led.Entries(context.Background())
			if err != nil {
				t.Fatalf("reading ledger: %v", err)
			}
			if len(entries) != 1 || entries[0].CallID != "call_abc" {
				t.Fatalf("unexpected ledger entries %+v", entries)
			}

			msgs := pub.Messages()
			if len(msgs) != 1 || msgs[0].Topic != "ai-caller/call/call_abc/ended" {
				t.Errorf("unexpected published messages %+v", msgs)
			}
		})
	}
}

func TestRunRejectedKey(t *testing.T) {
	srv := httptest.NewServer(&fakeVapi{})
	defer srv.Close()

	cfg := testConfig(t, srv.URL, "xlsx")
	cfg.Provider.APIKey = "sk-wrong"
	reg, _ := profile.Default()

	_, err := run(context.Background(), cfg, reg, nil, zap.NewNop(), "English", "+919876543210")
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("expected 401 provisioning error, got %v", err)
	}
}

func TestRunUnknownLedgerDriver(t *testing.T) {
	cfg := testConfig(t, "http://127.0.0.1:1", "xlsx")
	cfg.Ledger.Driver = "csv"
	reg, _ := profile.Default()

	if _, err := run(context.Background(), cfg, reg, nil, zap.NewNop(), "English", "+919876543210"); err == nil {
		t.Fatal("expected error for unknown ledger driver")
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	writeReport(&buf, &orchestrator.Result{
		CallID:     "call_abc",
		Phone:      "+919876543210",
		Language:   "English",
		Status:     "timeout",
		EndReason:  "timeout",
		Duration:   "2m 0s",
		Cost:       decimal.RequireFromString("9.13"),
		Currency:   "INR",
		Summary:    "No transcript available",
		Transcript: "No transcript available",
	})

	out := buf.String()
	for _, want := range []string{
		"CALL SUMMARY REPORT",
		"Call ID:     call_abc",
		"Status:      timeout",
		"Cost:        9.13 INR",
		"NOT RECORDED",
		"FULL TRANSCRIPT",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Recording:") {
		t.Error("empty recording url should not be printed")
	}
}
