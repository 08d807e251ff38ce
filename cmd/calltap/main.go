package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/joho/godotenv"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/poller"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

func main() {
	baseURL := flag.String("base-url", "https://api.vapi.ai", "Provider API base URL")
	callID := flag.String("call-id", "", "Call to capture")
	outDir := flag.String("outdir", "testdata/captures", "Output directory for captures")
	watch := flag.Bool("watch", false, "Capture every snapshot until the call ends")
	interval := flag.Duration("interval", 3*time.Second, "Snapshot interval with -watch")
	sanitize := flag.String("sanitize", "", "Sanitize a capture file in-place (keeps .bak)")
	flag.Parse()

	if *sanitize != "" {
		if err := sanitizeFile(*sanitize); err != nil {
			fmt.Fprintf(os.Stderr, "sanitize error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("sanitized:", *sanitize)
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "error: loading .env: %v\n", err)
		os.Exit(1)
	}
	key := os.Getenv("VAPI_API_KEY")
	if key == "" || *callID == "" {
		fmt.Fprintln(os.Stderr, "error: VAPI_API_KEY and -call-id are required")
		flag.Usage()
		os.Exit(1)
	}

	client, err := provider.NewVapi(provider.VapiConfig{BaseURL: *baseURL, APIKey: key})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := capture(context.Background(), client, *callID, *outDir, *watch, *interval); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type rawFetcher interface {
	GetCallRaw(ctx context.Context, callID string) ([]byte, error)
}

// capture writes one snapshot, or with watch one numbered snapshot per
// interval until the call reports a terminal status.
func capture(ctx context.Context, client rawFetcher, callID, outDir string, watch bool, interval time.Duration) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}

	stamp := time.Now().Format("20060102-150405")
	for seq := 1; ; seq++ {
		raw, err := client.GetCallRaw(ctx, callID)
		if err != nil {
			return fmt.Errorf("fetching call %s: %w", callID, err)
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, raw, "", "  "); err != nil {
			return fmt.Errorf("call %s returned invalid JSON: %w", callID, err)
		}

		name := fmt.Sprintf("%s-%s.json", callID, stamp)
		if watch {
			name = fmt.Sprintf("%s-%s-%03d.json", callID, stamp, seq)
		}
		filename := filepath.Join(outDir, name)
		if err := os.WriteFile(filename, pretty.Bytes(), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", filename, err)
		}

		var snap struct {
			Status string `json:"status"`
		}
		_ = json.Unmarshal(raw, &snap)
		fmt.Printf("wrote %s (status %s)\n", filename, snap.Status)

		if !watch || poller.Status(snap.Status).IsTerminal() {
			return nil
		}
		if err := (poller.RealClock{}).Sleep(ctx, interval); err != nil {
			return err
		}
	}
}

var (
	phonePattern  = regexp.MustCompile(`\+?\d{11,13}\b`)
	urlPattern    = regexp.MustCompile(`https?://[^\s"]+`)
	bearerPattern = regexp.MustCompile(`(?i)(Bearer\s+)[A-Za-z0-9._\-]+`)
	keyPattern    = regexp.MustCompile(`(?i)("(?:api_?key|secret|token)"\s*:\s*")[^"]*`)
)

func sanitizeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	// Create backup
	bakPath := path + ".bak"
	if err := os.WriteFile(bakPath, data, 0o644); err != nil {
		return fmt.Errorf("creating backup: %w", err)
	}

	return os.WriteFile(path, sanitizeBytes(data), 0o644)
}

// sanitizeBytes redacts phone numbers, URLs, bearer tokens and key fields.
func sanitizeBytes(data []byte) []byte {
	out := bearerPattern.ReplaceAll(data, []byte("${1}REDACTED"))
	out = keyPattern.ReplaceAll(out, []byte("${1}REDACTED"))
	out = urlPattern.ReplaceAll(out, []byte("https://redacted.example/recording"))
	out = phonePattern.ReplaceAllFunc(out, func(num []byte) []byte {
		if bytes.HasPrefix(num, []byte("+")) {
			return []byte("+919999900000")
		}
		return []byte("919999900000")
	})
	return out
}
