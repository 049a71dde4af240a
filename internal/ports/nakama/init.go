package nakama

import (
	"context"
	"database/sql"

	"darts/internal/app"
	"darts/internal/config"
	"darts/internal/ports"
	"darts/internal/storage/sqlite"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires the darts match service and its RPCs into the Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	cfg, err := config.Load(env)
	if err != nil {
		logger.Error("Invalid darts module config: %v", err)
		return err
	}

	archive, err := newArchive(ctx, cfg, nk)
	if err != nil {
		logger.Error("Failed to open %s match archive: %v", cfg.Archive, err)
		return err
	}

	service := app.NewService(
		NewNakamaUserAdapter(nk),
		archive,
		NewNakamaNotifier(nk, logger),
	).WithListLimit(cfg.ListLimit)

	voice := app.NewVoiceService(cfg.VivoxSecret, cfg.VivoxIssuer, cfg.VivoxDomain).WithTTL(cfg.VivoxTokenTTL)
	if !cfg.VoiceConfigured() {
		logger.Warn("Vivox credentials missing from env, %s is disabled.", RpcVoiceToken)
	}

	handlers := &rpcHandlers{service: service, voice: voice}
	if err := handlers.register(initializer); err != nil {
		return err
	}

	logger.WithField("archive", cfg.Archive).Info("Darts Go module loaded.")
	return nil
}

// newArchive picks the finished match store. The SQLite handle stays open for
// the lifetime of the server process.
func newArchive(ctx context.Context, cfg config.Config, nk runtime.NakamaModule) (ports.MatchArchive, error) {
	if cfg.Archive == config.ArchiveSQLite {
		store, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	return NewNakamaStorageArchive(nk), nil
}
