package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/ssasrajita121/DS-ai-WScaller/internal/config"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/ledger"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/logging"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/orchestrator"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/profile"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/provider"
	"github.com/ssasrajita121/DS-ai-WScaller/internal/publisher"
)

func main() {
	configPath := flag.String("config", "ai-caller.yaml", "Path to config file")
	language := flag.String("language", "English", "Language of the call")
	phoneNumber := flag.String("phone", "", "Destination number, e.g. +919876543210")
	listLanguages := flag.Bool("list-languages", false, "Print supported languages and exit")
	asJSON := flag.Bool("json", false, "Print the result as JSON")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	registry, err := loadRegistry(cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("loading language profiles", zap.Error(err))
	}
	if *listLanguages {
		for _, id := range registry.Languages() {
			fmt.Println(id)
		}
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Warn("received signal, abandoning wait", zap.String("signal", sig.String()))
		cancel()
	}()

	if cfg.Metrics.Addr != "" {
		go serveMetrics(cfg.Metrics.Addr, logger)
	}

	var pub publisher.Publisher
	if cfg.MQTT.Enabled {
		mq, err := publisher.NewMQTTPublisher(publisher.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			QoS:      1,
		})
		if err != nil {
			logger.Warn("outcome events disabled", zap.Error(err))
		} else {
			defer mq.Close()
			logger.Info("connected to MQTT broker", zap.String("broker", cfg.MQTT.Broker))
			pub = mq
		}
	}

	res, err := run(ctx, cfg, registry, pub, logger, *language, *phoneNumber)
	if err != nil {
		var verr *orchestrator.ValidationError
		if errors.As(err, &verr) {
			fmt.Fprintf(os.Stderr, "%s\n", verr.Reason)
			os.Exit(2)
		}
		logger.Fatal("call failed", zap.Error(err))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			logger.Fatal("encoding result", zap.Error(err))
		}
		return
	}
	writeReport(os.Stdout, res)
}

func loadRegistry(path string) (*profile.Registry, error) {
	if path == "" {
		return profile.Default()
	}
	return profile.Load(path)
}

// run wires the provider, ledger and optional publisher and places one call.
func run(ctx context.Context, cfg *config.Config, registry *profile.Registry, pub publisher.Publisher, logger *zap.Logger, language, phoneNumber string) (*orchestrator.Result, error) {
	client, err := provider.NewVapi(provider.VapiConfig{
		BaseURL: cfg.Provider.BaseURL,
		APIKey:  cfg.Provider.APIKey,
		Timeout: cfg.Provider.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating provider client: %w", err)
	}

	led, err := ledger.Open(cfg.Ledger.Driver, cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer led.Close()

	opts := []orchestrator.Option{orchestrator.WithLogger(logger)}
	if pub != nil {
		opts = append(opts, orchestrator.WithPublisher(pub))
	}
	orch := orchestrator.New(registry, client, led, orchestrator.OptionsFromConfig(cfg), opts...)

	logger.Info("placing call", zap.String("language", language), zap.String("ledger", cfg.Ledger.Path))
	return orch.Run(ctx, language, phoneNumber)
}

func serveMetrics(addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	logger.Info("serving metrics", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server stopped", zap.Error(err))
	}
}

// writeReport prints the call summary report.
func writeReport(w io.Writer, res *orchestrator.Result) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "CALL SUMMARY REPORT")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Call ID:     %s\n", res.CallID)
	fmt.Fprintf(w, "Run ID:      %s\n", res.RunID)
	fmt.Fprintf(w, "Phone:       %s\n", res.Phone)
	fmt.Fprintf(w, "Language:    %s\n", res.Language)
	fmt.Fprintf(w, "Voice:       %s\n", res.VoiceName)
	fmt.Fprintf(w, "Purpose:     %s\n", res.Purpose)
	fmt.Fprintf(w, "Status:      %s\n", res.Status)
	fmt.Fprintf(w, "End reason:  %s\n", res.EndReason)
	fmt.Fprintf(w, "Start:       %s\n", res.StartTime)
	fmt.Fprintf(w, "End:         %s\n", res.EndTime)
	fmt.Fprintf(w, "Duration:    %s\n", res.Duration)
	fmt.Fprintf(w, "Cost:        %s %s\n", res.Cost.StringFixed(2), res.Currency)
	if res.RecordingURL != "" {
		fmt.Fprintf(w, "Recording:   %s\n", res.RecordingURL)
	}
	if !res.Persisted {
		fmt.Fprintln(w, "Ledger:      NOT RECORDED (see log)")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, res.Summary)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "FULL TRANSCRIPT")
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintln(w, res.Transcript)
	fmt.Fprintln(w, rule)
}
