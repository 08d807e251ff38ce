package main

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

type scriptedFetcher struct {
	mu        sync.Mutex
	snapshots []string
	calls     int
}

func (s *scriptedFetcher) GetCallRaw(context.Context, string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.snapshots) {
		i = len(s.snapshots) - 1
	}
	s.calls++
	return []byte(s.snapshots[i]), nil
}

func TestCaptureSingleSnapshot(t *testing.T) {
	dir := t.TempDir()
	f := &scriptedFetcher{snapshots: []string{`{"id":"call_1","status":"in-progress"}`}}

	if err := capture(context.Background(), f, "call_1", dir, false, time.Millisecond); err != nil {
		t.Fatalf("capture: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "call_1-*.json"))
	if len(files) != 1 {
		t.Fatalf("expected 1 capture, got %v", files)
	}
	data, _ := os.ReadFile(files[0])
	var snap map[string]any
	if err := json.Unmarshal(data, &snap); err != nil {
		t.Fatalf("capture is not JSON: %v", err)
	}
	if !strings.Contains(string(data), "\n  \"status\"") {
		t.Errorf("expected indented JSON, got %s", data)
	}
}

func TestCaptureWatchStopsAtTerminalStatus(t *testing.T) {
	dir := t.TempDir()
	f := &scriptedFetcher{snapshots: []string{
		`{"id":"call_1","status":"queued"}`,
		`{"id":"call_1","status":"in-progress"}`,
		`{"id":"call_1","status":"ended","duration":12}`,
		`{"id":"call_1","status":"ended","duration":12}`,
	}}

	if err := capture(context.Background(), f, "call_1", dir, true, time.Millisecond); err != nil {
		t.Fatalf("capture: %v", err)
	}

	files, _ := filepath.Glob(filepath.Join(dir, "call_1-*-*.json"))
	if len(files) != 3 {
		t.Errorf("expected 3 numbered captures, got %d: %v", len(files), files)
	}
}

func TestCaptureRejectsInvalidJSON(t *testing.T) {
	f := &scriptedFetcher{snapshots: []string{`<html>`}}
	if err := capture(context.Background(), f, "call_1", t.TempDir(), false, time.Millisecond); err == nil {
		t.Fatal("expected error for non-JSON response")
	}
}

func TestSanitizeBytes(t *testing.T) {
	in := `{
  "customer": {"number": "+919876543210"},
  "recordingUrl": "https://storage.vapi.ai/abc/rec.wav",
  "apiKey": "sk-live-123",
  "headers": "Authorization: Bearer abc.def-ghi",
  "duration": 95
}`
	out := string(sanitizeBytes([]byte(in)))

	for _, leaked := range []string{"9876543210", "storage.vapi.ai", "sk-live-123", "abc.def-ghi"} {
		if strings.Contains(out, leaked) {
			t.Errorf("sanitized output still contains %q:\n%s", leaked, out)
		}
	}
	for _, kept := range []string{`"+919999900000"`, `"duration": 95`, "Bearer REDACTED", `"apiKey": "REDACTED"`} {
		if !strings.Contains(out, kept) {
			t.Errorf("sanitized output missing %q:\n%s", kept, out)
		}
	}
}

func TestSanitizeFileKeepsBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.json")
	orig := []byte(`{"customer":{"number":"+919876543210"}}`)
	if err := os.WriteFile(path, orig, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := sanitizeFile(path); err != nil {
		t.Fatalf("sanitize: %v", err)
	}

	bak, err := os.ReadFile(path + ".bak")
	if err != nil || string(bak) != string(orig) {
		t.Errorf("backup mismatch: %s, %v", bak, err)
	}
	got, _ := os.ReadFile(path)
	if strings.Contains(string(got), "9876543210") {
		t.Errorf("number not redacted: %s", got)
	}
}
