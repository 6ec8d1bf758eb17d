// Package bootstrap wires configuration, logging and dependencies for the
// sync daemon. With no project configured it runs fully local: in-memory
// store, log publisher, no blob archive.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"

	shared "github.com/stridewell/server/pkg"
	"github.com/stridewell/server/pkg/domain/transform"
	"github.com/stridewell/server/pkg/domain/wellness"
	"github.com/stridewell/server/pkg/importer"
	infrapubsub "github.com/stridewell/server/pkg/infrastructure/pubsub"
	"github.com/stridewell/server/pkg/infrastructure/sentry"
	infrastorage "github.com/stridewell/server/pkg/infrastructure/storage"
	"github.com/stridewell/server/pkg/reader/export"
	"github.com/stridewell/server/pkg/reader/fitfile"
	"github.com/stridewell/server/pkg/scheduler"
	fsstore "github.com/stridewell/server/pkg/storage/firestore"
	"github.com/stridewell/server/pkg/storage/memory"
	"github.com/stridewell/server/pkg/syncservice"
)

// Config is read from environment variables once at startup.
type Config struct {
	ProjectID     string
	LocalMode     bool // no project configured: in-memory store, mock publisher
	EnablePublish bool
	ReportBucket  string

	SourceType      string
	TelemetryDir    string
	TelemetryFormat string // "fit" or "export"
	SourceTimezone  string
	AthleteHeightM  float64

	SentryDSN   string
	Environment string
}

// LoadConfig reads configuration from environment variables.
func LoadConfig() *Config {
	cfg := &Config{
		ProjectID:       os.Getenv("GOOGLE_CLOUD_PROJECT"),
		EnablePublish:   os.Getenv("ENABLE_PUBLISH") == "true",
		ReportBucket:    os.Getenv("REPORT_BUCKET"),
		SourceType:      os.Getenv("SOURCE_TYPE"),
		TelemetryDir:    os.Getenv("TELEMETRY_DIR"),
		TelemetryFormat: os.Getenv("TELEMETRY_FORMAT"),
		SourceTimezone:  os.Getenv("SOURCE_TIMEZONE"),
		SentryDSN:       os.Getenv("SENTRY_DSN"),
		Environment:     os.Getenv("ENVIRONMENT"),
	}
	cfg.LocalMode = cfg.ProjectID == ""
	if cfg.SourceType == "" {
		cfg.SourceType = "garmin"
	}
	if cfg.TelemetryFormat == "" {
		cfg.TelemetryFormat = "export"
	}
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if v := os.Getenv("ATHLETE_HEIGHT_M"); v != "" {
		if h, err := strconv.ParseFloat(v, 64); err == nil && h > 0 {
			cfg.AthleteHeightM = h
		}
	}
	return cfg
}

// GetSlogHandlerOptions returns handler options with Cloud Logging keys.
func GetSlogHandlerOptions(level slog.Level) *slog.HandlerOptions {
	return &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.MessageKey {
				return slog.Attr{Key: "message", Value: a.Value}
			}
			if a.Key == slog.LevelKey {
				return slog.Attr{Key: "severity", Value: a.Value}
			}
			return a
		},
	}
}

// ComponentHandler prepends [component] to the log message.
type ComponentHandler struct {
	slog.Handler
	component string
}

func (h *ComponentHandler) WithGroup(name string) slog.Handler {
	return &ComponentHandler{
		Handler:   h.Handler.WithGroup(name),
		component: h.component,
	}
}

func (h *ComponentHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newComp := h.component
	for _, a := range attrs {
		if a.Key == "component" {
			newComp = a.Value.String()
		}
	}
	return &ComponentHandler{
		Handler:   h.Handler.WithAttrs(attrs),
		component: newComp,
	}
}

func (h *ComponentHandler) Handle(ctx context.Context, r slog.Record) error {
	comp := h.component
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" {
			comp = a.Value.String()
			return false
		}
		return true
	})

	if comp != "" {
		newRecord := slog.NewRecord(r.Time, r.Level, fmt.Sprintf("[%s] %s", comp, r.Message), r.PC)
		r.Attrs(func(a slog.Attr) bool {
			newRecord.AddAttrs(a)
			return true
		})
		r = newRecord
	}
	return h.Handler.Handle(ctx, r)
}

// NewLogger creates a JSON logger tagged with the service name. Level comes
// from LOG_LEVEL.
func NewLogger(serviceName string) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, GetSlogHandlerOptions(level))
	return slog.New(&ComponentHandler{Handler: handler}).With("service", serviceName)
}

// Service holds the wired dependency graph.
type Service struct {
	Config    *Config
	Logger    *slog.Logger
	Store     shared.Store
	Reader    shared.TelemetryReader
	Publisher shared.Publisher
	Sync      *syncservice.Service
	Scheduler *scheduler.Scheduler

	closers []func() error
}

// Close releases client connections. Safe to call once at shutdown.
func (s *Service) Close() {
	for _, closeFn := range s.closers {
		if err := closeFn(); err != nil {
			s.Logger.Warn("Close failed", "error", err)
		}
	}
	sentry.Flush(2 * time.Second)
}

// NewService builds the full dependency graph from config.
func NewService(ctx context.Context, serviceName string) (*Service, error) {
	cfg := LoadConfig()
	logger := NewLogger(serviceName)
	slog.SetDefault(logger)

	if err := sentry.Init(sentry.Config{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
		ServerName:  serviceName,
	}, logger); err != nil {
		return nil, err
	}

	svc := &Service{Config: cfg, Logger: logger}

	if cfg.LocalMode {
		logger.Info("Store: in-memory (no GOOGLE_CLOUD_PROJECT set)")
		svc.Store = memory.NewStore()
	} else {
		client, err := fsstore.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, err
		}
		svc.closers = append(svc.closers, client.Close)
		svc.Store = fsstore.NewStore(client, logger)
		logger.Info("Store: Firestore", "project_id", cfg.ProjectID)
	}

	if cfg.EnablePublish && !cfg.LocalMode {
		psClient, err := pubsub.NewClient(ctx, cfg.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("pubsub init: %w", err)
		}
		svc.closers = append(svc.closers, psClient.Close)
		svc.Publisher = &infrapubsub.Publisher{Client: psClient}
		logger.Info("Pub/Sub: REAL (ENABLE_PUBLISH=true)")
	} else {
		svc.Publisher = &infrapubsub.LogPublisher{Logger: logger}
		logger.Info("Pub/Sub: MOCK (LogPublisher)")
	}

	var blobs shared.BlobStore
	if cfg.ReportBucket != "" && !cfg.LocalMode {
		gcsClient, err := storage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("storage init: %w", err)
		}
		svc.closers = append(svc.closers, gcsClient.Close)
		blobs = &infrastorage.GCSAdapter{Client: gcsClient}
		logger.Info("Report archive: GCS", "bucket", cfg.ReportBucket)
	}

	svc.Reader = newReader(cfg, logger)

	loc := time.Local
	if cfg.SourceTimezone != "" {
		parsed, err := time.LoadLocation(cfg.SourceTimezone)
		if err != nil {
			return nil, fmt.Errorf("invalid SOURCE_TIMEZONE %q: %w", cfg.SourceTimezone, err)
		}
		loc = parsed
	}

	imp := importer.NewImporter(svc.Store, svc.Reader, transform.NewActivityTransformer(loc), logger)

	var wellnessOpts []wellness.Option
	if cfg.AthleteHeightM > 0 {
		wellnessOpts = append(wellnessOpts, wellness.WithAthleteHeight(cfg.AthleteHeightM))
	}
	wt := wellness.NewTransformer(cfg.SourceType, wellnessOpts...)

	syncOpts := []syncservice.Option{syncservice.WithPublisher(svc.Publisher)}
	if blobs != nil {
		syncOpts = append(syncOpts, syncservice.WithReportArchive(blobs, cfg.ReportBucket))
	}
	svc.Sync = syncservice.NewService(svc.Store, svc.Reader, imp, wt, cfg.SourceType, logger, syncOpts...)

	svc.Scheduler = scheduler.New(svc.Store, svc.Sync, logger,
		scheduler.WithInterval(schedulerInterval()),
		scheduler.WithMaxConcurrent(shared.DefaultMaxConcurrentSyncs))

	return svc, nil
}

func newReader(cfg *Config, logger *slog.Logger) shared.TelemetryReader {
	if cfg.TelemetryFormat == "fit" {
		logger.Info("Reader: FIT directory", "dir", cfg.TelemetryDir)
		return fitfile.NewDirectoryReader(cfg.TelemetryDir, logger)
	}
	logger.Info("Reader: JSON export", "dir", cfg.TelemetryDir)
	return export.NewReader(cfg.TelemetryDir)
}

func schedulerInterval() time.Duration {
	if v := os.Getenv("SCHEDULER_INTERVAL_SEC"); v != "" {
		if sec, err := strconv.Atoi(v); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
	}
	return shared.DefaultSchedulerInterval
}
