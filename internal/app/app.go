package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/atvirokodosprendimai/keygate/internal/adapters/events"
	"github.com/atvirokodosprendimai/keygate/internal/adapters/httpapi"
	"github.com/atvirokodosprendimai/keygate/internal/adapters/jsonfile"
	sqliteadapter "github.com/atvirokodosprendimai/keygate/internal/adapters/sqlite"
	"github.com/atvirokodosprendimai/keygate/internal/adapters/sqlite/gormsqlite"
	"github.com/atvirokodosprendimai/keygate/internal/core/ports"
	"github.com/atvirokodosprendimai/keygate/internal/core/usecase"
	"github.com/atvirokodosprendimai/keygate/migrations"
)

type Config struct {
	Addr            string
	StoreBackend    string
	KeyFilePath     string
	DBPath          string
	AdminSecret     string
	TelemetryID     string
	HeartbeatWindow time.Duration
	SweepInterval   time.Duration
	WebhookURL      string
	WebhookSecret   string
}

type resourceCloser struct {
	closers []io.Closer
}

func (r resourceCloser) Close() error {
	var firstErr error
	for _, c := range r.closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func NewServer(ctx context.Context, cfg Config) (*http.Server, io.Closer, error) {
	db, err := gormsqlite.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}

	writeSQLDB, err := db.WriteSQLDB()
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("resolve writer sql db: %w", err)
	}

	migrateCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := migrations.Up(migrateCtx, writeSQLDB); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	var backing ports.KeyStore
	switch cfg.StoreBackend {
	case "", "file":
		backing = jsonfile.NewStore(cfg.KeyFilePath)
	case "sqlite":
		backing = sqliteadapter.NewKeyStore(db)
	default:
		_ = db.Close()
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	store := usecase.NewFailOpenStore(backing)

	auditRepo := sqliteadapter.NewAuditRepository(db)
	outboxRepo := sqliteadapter.NewOutboxRepository(db)

	var publisher ports.NotificationPublisher = events.NewLogPublisher()
	if cfg.WebhookURL != "" {
		publisher = events.NewWebhookPublisher(cfg.WebhookURL, cfg.WebhookSecret, 0)
	}
	dispatcher := usecase.NewNotificationDispatcher(outboxRepo, publisher, 2*time.Second, 100)
	dispatcher.Start(context.Background())

	// One mutex serializes every store mutation (lifecycle, admin, sweep)
	// so concurrent full-store writes cannot drop each other's updates.
	var storeMu sync.Mutex

	lifecycle := usecase.NewLifecycleService(store, &storeMu, cfg.HeartbeatWindow, auditRepo, outboxRepo)
	admin, err := usecase.NewAdminService(store, cfg.AdminSecret, &storeMu, auditRepo, outboxRepo)
	if err != nil {
		_ = dispatcher.Close()
		_ = db.Close()
		return nil, nil, fmt.Errorf("create admin service: %w", err)
	}
	report := usecase.NewReportService(store)
	telemetry := usecase.NewTelemetryService(cfg.TelemetryID, outboxRepo)

	sweeper := usecase.NewExpirySweeper(store, &storeMu, cfg.SweepInterval, auditRepo)
	sweeper.Start(context.Background())

	handler := httpapi.NewHandler(lifecycle, admin, report, telemetry)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return server, resourceCloser{closers: []io.Closer{sweeper, dispatcher, db}}, nil
}
