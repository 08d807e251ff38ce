// Package transcript retrieves call transcripts and summaries. It never fails:
// problems are reported as placeholder text.
package transcript

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
)

const (
	NoTranscript      = "No transcript available"
	FailedTranscript  = "Failed to retrieve transcript"
	FetchErrorSummary = "Error fetching call data"
	ErrorSummary      = "Error retrieving call data"

	defaultSummaryLength = 200
)

// speakerLabels maps provider message roles to transcript labels. Roles not
// listed are left out of synthesized transcripts.
var speakerLabels = map[string]string{
	"assistant": "AI",
	"bot":       "AI",
	"user":      "Customer",
	"customer":  "Customer",
}

// Text is a resolved transcript and summary.
type Text struct {
	Transcript string
	Summary    string
}

// Fetcher reads call details from the provider.
type Fetcher struct {
	client        provider.Client
	summaryLength int
	logger        *zap.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithSummaryLength bounds the derived summary, in characters.
func WithSummaryLength(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.summaryLength = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(f *Fetcher) { f.logger = l }
}

// NewFetcher creates a Fetcher.
func NewFetcher(client provider.Client, opts ...Option) *Fetcher {
	f := &Fetcher{client: client, summaryLength: defaultSummaryLength, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the transcript and summary for callID.
func (f *Fetcher) Fetch(ctx context.Context, callID string) Text {
	call, err := f.client.GetCall(ctx, callID)
	if err != nil {
		f.logger.Warn("transcript fetch failed", zap.String("call_id", callID), zap.Error(err))
		var apiErr *provider.APIError
		if errors.As(err, &apiErr) {
			return Text{Transcript: FailedTranscript, Summary: FetchErrorSummary}
		}
		return Text{Transcript: fmt.Sprintf("Error: %v", err), Summary: ErrorSummary}
	}
	return f.FromCall(call)
}

// FromCall resolves transcript and summary from an already fetched snapshot.
func (f *Fetcher) FromCall(call *provider.Call) Text {
	text := strings.TrimSpace(call.Transcript)
	if text == "" {
		text = FromMessages(call.Messages)
	}

	summary := strings.TrimSpace(call.Summary)
	if summary == "" {
		summary = call.AnalysisSummary()
	}
	if summary == "" && text != "" {
		summary = Truncate(text, f.summaryLength)
	}

	if text == "" {
		text = NoTranscript
	}
	if summary == "" {
		summary = NoTranscript
	}
	return Text{Transcript: text, Summary: summary}
}

// FromMessages renders speaker-labelled turns in order, one per line.
func FromMessages(msgs []provider.Message) string {
	var lines []string
	for _, m := range msgs {
		label, ok := speakerLabels[strings.ToLower(m.Role)]
		if !ok {
			continue
		}
		content := strings.TrimSpace(m.Text())
		if content == "" {
			continue
		}
		lines = append(lines, label+": "+content)
	}
	return strings.Join(lines, "\n")
}

// Truncate returns at most n characters of s. A cut inside a word backs off
// to the preceding space when one exists in the second half of the prefix.
func Truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	cut := n
	if !unicode.IsSpace(r[n]) {
		for i := n - 1; i > n/2; i-- {
			if unicode.IsSpace(r[i]) {
				cut = i
				break
			}
		}
	}
	return strings.TrimRightFunc(string(r[:cut]), unicode.IsSpace)
}
