// Package orchestrator runs one outbound call end to end: resolve the
// language, validate the number, provision an agent, place the call, wait for
// it to finish, price it, fetch the transcript and record it.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/billing"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/config"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/ledger"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/metrics"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/outbound"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/phone"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/poller"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/profile"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/publisher"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/transcript"
)

const (
	timeLayout       = "2006-01-02 15:04:05"
	endReasonTimeout = "timeout"
	endReasonUnknown = "unknown"
	publishTimeout   = 10 * time.Second
)

// Options carries everything the orchestrator needs from configuration.
type Options struct {
	PhoneNumberID   string
	Purpose         string
	Currency        string
	PollInterval    time.Duration
	MaxWait         time.Duration
	TimeoutEstimate int64
	SummaryLength   int
	TopicPrefix     string
	Assistant       config.AssistantConfig
	Calculator      billing.Calculator
	PhoneRules      phone.Rules
}

// OptionsFromConfig maps a loaded Config onto Options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		PhoneNumberID:   cfg.Provider.PhoneNumberID,
		Purpose:         cfg.Purpose,
		Currency:        cfg.Pricing.Currency,
		PollInterval:    cfg.Poll.Interval,
		MaxWait:         cfg.Poll.MaxWait,
		TimeoutEstimate: int64(cfg.Pricing.TimeoutEstimateSeconds),
		SummaryLength:   cfg.Transcript.SummaryLength,
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		Assistant:       cfg.Assistant,
		Calculator:      billing.NewCalculator(cfg.Pricing.MinimumFee, cfg.Pricing.PerMinuteRate),
		PhoneRules:      phone.India,
	}
}

// Orchestrator composes the call workflow. It is safe to call Run
// sequentially; concurrent runs share the ledger, which assumes one writer.
type Orchestrator struct {
	registry *profile.Registry
	ledger   ledger.Ledger
	pub      publisher.Publisher
	clock    poller.Clock
	logger   *zap.Logger
	opts     Options

	provisioner *outbound.Provisioner
	initiator   *outbound.Initiator
	poller      *poller.Poller
	durations   poller.DurationResolver
	fetcher     *transcript.Fetcher
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger for the orchestrator and its components.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithClock sets the time source used for polling and timestamps.
func WithClock(c poller.Clock) Option {
	return func(o *Orchestrator) { o.clock = c }
}

// WithPublisher enables outcome events.
func WithPublisher(p publisher.Publisher) Option {
	return func(o *Orchestrator) { o.pub = p }
}

// New creates an Orchestrator.
func New(registry *profile.Registry, client provider.Client, led ledger.Ledger, opts Options, options ...Option) *Orchestrator {
	o := &Orchestrator{
		registry: registry,
		ledger:   led,
		clock:    poller.RealClock{},
		logger:   zap.NewNop(),
		opts:     opts,
	}
	for _, opt := range options {
		opt(o)
	}
	if o.opts.PhoneRules.Prefix == "" {
		o.opts.PhoneRules = phone.India
	}

	o.provisioner = outbound.NewProvisioner(client, opts.Assistant,
		outbound.WithProvisionerLogger(o.logger))
	o.initiator = outbound.NewInitiator(client, opts.PhoneNumberID,
		outbound.WithInitiatorLogger(o.logger),
		outbound.WithNow(o.clock.Now))
	o.poller = poller.New(client, opts.PollInterval, opts.MaxWait,
		poller.WithClock(o.clock),
		poller.WithLogger(o.logger))
	o.durations = poller.DurationResolver{TimeoutEstimate: opts.TimeoutEstimate}
	o.fetcher = transcript.NewFetcher(client,
		transcript.WithSummaryLength(opts.SummaryLength),
		transcript.WithLogger(o.logger))
	return o
}

// Run places one call to rawPhone in languageID and returns its record.
// Errors are only returned for failures before the call is placed; after
// that, problems degrade to placeholder data and Run always returns a Result.
func (o *Orchestrator) Run(ctx context.Context, languageID, rawPhone string) (*Result, error) {
	runID := uuid.NewString()
	log := o.logger.With(zap.String("run_id", runID), zap.String("language", languageID))

	prof, err := o.registry.Resolve(languageID)
	if err != nil {
		return nil, &ValidationError{Field: "language", Reason: err.Error(), Err: err}
	}
	if ok, reason := o.opts.PhoneRules.Validate(rawPhone); !ok {
		return nil, &ValidationError{Field: "phone", Reason: reason}
	}
	number := phone.Clean(rawPhone)

	agent, err := o.provisioner.Provision(ctx, prof)
	if err != nil {
		return nil, err
	}
	callID, initiatedAt, err := o.initiator.Initiate(ctx, agent, number)
	if err != nil {
		return nil, err
	}
	log = log.With(zap.String("call_id", callID), zap.String("agent_id", agent.ID))

	polled := o.poller.Poll(ctx, callID)

	// The call exists now; finish bookkeeping even if the caller gave up.
	post := context.WithoutCancel(ctx)

	seconds := o.durations.Resolve(polled)
	cost := o.opts.Calculator.Cost(seconds)
	text := o.fetcher.Fetch(post, callID)
	finishedAt := o.clock.Now()

	res := &Result{
		RunID:           runID,
		Status:          string(polled.Status),
		Duration:        billing.FormatDuration(seconds),
		DurationSeconds: seconds,
		Cost:            cost,
		Currency:        o.opts.Currency,
		Language:        prof.ID,
		CallID:          callID,
		AgentID:         agent.ID,
		VoiceName:       prof.VoiceName,
		StartTime:       initiatedAt.Format(timeLayout),
		EndTime:         finishedAt.Format(timeLayout),
		Phone:           number,
		Purpose:         o.opts.Purpose,
		EndReason:       endReason(polled),
		Summary:         text.Summary,
		Transcript:      text.Transcript,
		Polls:           polled.Polls,
	}
	if snap := polled.Snapshot; snap != nil {
		res.RecordingURL = snap.RecordingURL
		if t, ok := snap.StartTime(); ok {
			res.StartTime = t.In(initiatedAt.Location()).Format(timeLayout)
		}
		if t, ok := snap.EndTime(); ok {
			res.EndTime = t.In(finishedAt.Location()).Format(timeLayout)
		}
	}

	res.Persisted = o.persist(post, log, res, finishedAt)
	o.publish(post, log, res, polled.Status, finishedAt)

	metrics.CallsTotal.WithLabelValues(res.Status, prof.ShortName()).Inc()
	metrics.CallCost.Observe(cost.InexactFloat64())
	log.Info("call finished",
		zap.String("status", res.Status),
		zap.Int64("duration_seconds", seconds),
		zap.String("cost", cost.StringFixed(2)),
		zap.Int("polls", polled.Polls),
		zap.Bool("persisted", res.Persisted))
	return res, nil
}

func endReason(polled poller.Result) string {
	if polled.TimedOut() {
		return endReasonTimeout
	}
	if polled.Snapshot != nil && polled.Snapshot.EndedReason != "" {
		return polled.Snapshot.EndedReason
	}
	return endReasonUnknown
}

func (o *Orchestrator) persist(ctx context.Context, log *zap.Logger, res *Result, at time.Time) bool {
	err := o.ledger.Append(ctx, ledger.Entry{
		Timestamp:  at,
		Phone:      res.Phone,
		Language:   res.Language,
		Status:     res.Status,
		Duration:   res.Duration,
		Cost:       res.Cost,
		Summary:    res.Summary,
		Transcript: res.Transcript,
		CallID:     res.CallID,
	})
	if err != nil {
		metrics.LedgerFailures.Inc()
		log.Error("call not recorded in ledger", zap.Error(err))
		return false
	}
	return true
}

func (o *Orchestrator) publish(ctx context.Context, log *zap.Logger, res *Result, status poller.Status, at time.Time) {
	if o.pub == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err := publisher.PublishOutcome(ctx, o.pub, o.opts.TopicPrefix, publisher.Outcome{
		RunID:           res.RunID,
		CallID:          res.CallID,
		AgentID:         res.AgentID,
		Language:        res.Language,
		Status:          res.Status,
		Description:     status.Description(),
		EndReason:       res.EndReason,
		DurationSeconds: res.DurationSeconds,
		Cost:            res.Cost.StringFixed(2),
		Currency:        res.Currency,
		RecordingURL:    res.RecordingURL,
		Persisted:       res.Persisted,
		Polls:           res.Polls,
		Timestamp:       at,
	})
	if err != nil {
		log.Warn("outcome not published", zap.Error(err))
	}
}
