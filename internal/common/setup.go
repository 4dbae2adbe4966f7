package common

import (
	"context"
	"log"

	"message-ledger-go/internal/database"
	"message-ledger-go/internal/events"
	"message-ledger-go/internal/ledger"
	"message-ledger-go/internal/models"
	"message-ledger-go/internal/store"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// init loads environment variables from .env file if it exists
func init() {
	// Environment variables can also be set via shell export, docker, etc.
	if err := godotenv.Load(); err == nil {
		log.Println("✓ Loaded environment variables from .env file")
	}
}

// Services bundles the wired-up ledger and its audit backend.
type Services struct {
	Ledger *ledger.Service
	Store  store.AuditStore
}

func InitializeLogger() (*zap.Logger, func()) {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	zap.ReplaceGlobals(logger)

	cleanup := func() {
		if err := logger.Sync(); err != nil {
			if !isIgnorableSyncError(err) {
				log.Printf("Failed to sync logger: %v\n", err)
			}
		}
	}

	return logger, cleanup
}

// InitializeServices opens the SQLite audit store and builds the ledger on
// top of it. The owner grants the ledger identity spender authorization so
// sends can collect fees.
func InitializeServices(ctx context.Context, cfg *models.Config) (*Services, error) {
	st, err := database.NewService(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	svc, err := ledger.NewService(cfg.Ledger, ledger.Deps{
		Store:   st,
		Emitter: events.LogEmitter{},
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	if err := svc.RestoreFromStore(ctx); err != nil {
		st.Close()
		return nil, err
	}

	if err := svc.SetAuthorizedSpender(cfg.Ledger.Owner, svc.LedgerAccount(), true); err != nil {
		st.Close()
		return nil, err
	}

	return &Services{Ledger: svc, Store: st}, nil
}

// InitializeStoreOnly opens just the audit store. Useful for read-only
// report commands that never mutate ledger state.
func InitializeStoreOnly(ctx context.Context, cfg *models.Config) (store.AuditStore, error) {
	return database.NewService(ctx, cfg.Database)
}

func (cs *Services) Close() {
	if cs.Store != nil {
		cs.Store.Close()
	}
}

func isIgnorableSyncError(err error) bool {
	msg := err.Error()
	return msg == "sync /dev/stderr: inappropriate ioctl for device" ||
		msg == "sync /dev/stdout: inappropriate ioctl for device" ||
		msg == "sync /dev/stderr: invalid argument" ||
		msg == "sync /dev/stdout: invalid argument"
}
