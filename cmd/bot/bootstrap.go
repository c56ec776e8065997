package main

import (
	"context"
	"errors"
	"os"
	"time"

	"voice-trading-bot/internal/broker/brokerobs"
	"voice-trading-bot/internal/broker/dryrun"
	"voice-trading-bot/internal/broker/kis"
	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/directory/krx"
	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/recorder"
	"voice-trading-bot/internal/speech"
	"voice-trading-bot/internal/store"
)

// deps holds the wired collaborators of the process.
type deps struct {
	cfg         *store.Config
	dir         *directory.Directory
	broker      interfaces.Broker
	recorder    interfaces.Recorder
	transcriber interfaces.Transcriber
	pg          *recorder.Postgres
	krx         *krx.Fetcher
}

func buildDeps(ctx context.Context, cfg *store.Config) (*deps, error) {
	d := &deps{
		cfg: cfg,
		dir: directory.New(),
	}

	if cfg.Directory.KRXRefresh {
		d.krx = krx.NewFetcher()
	}
	if _, err := d.loadDirectory(ctx); err != nil {
		// A missing roster is survivable; the engine answers in degraded
		// mode until a reload succeeds.
		logger.Warn(ctx, "Initial directory load failed", "error", err)
	}

	d.broker = brokerobs.Wrap(d.buildBroker(ctx))
	d.recorder = d.buildRecorder(ctx)
	d.transcriber = buildTranscriber(ctx)
	return d, nil
}

func (d *deps) buildBroker(ctx context.Context) interfaces.Broker {
	if d.cfg.Mode == "DRY_RUN" {
		logger.Info(ctx, "DRY_RUN mode: using simulated broker")
		return dryrun.New(d.nameOf)
	}
	return kis.New(kis.Params{
		AppKey:    os.Getenv("KIS_APP_KEY"),
		AppSecret: os.Getenv("KIS_APP_SECRET"),
		AccountNo: os.Getenv("KIS_ACCOUNT_NO"),
		Real:      d.cfg.KIS.Real,
	})
}

func (d *deps) buildRecorder(ctx context.Context) interfaces.Recorder {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		logger.Info(ctx, "DATABASE_URL not set: chat history disabled")
		return recorder.Noop{}
	}
	pg, err := recorder.NewPostgres(ctx, dsn)
	if err != nil {
		logger.ErrorWithErr(ctx, "Postgres unavailable, falling back to no-op recorder", err)
		return recorder.Noop{}
	}
	d.pg = pg
	return pg
}

func buildTranscriber(ctx context.Context) interfaces.Transcriber {
	id, secret := os.Getenv("CLOVA_CLIENT_ID"), os.Getenv("CLOVA_CLIENT_SECRET")
	if id == "" || secret == "" {
		logger.Info(ctx, "Clova credentials not set: voice input disabled")
		return nil
	}
	return speech.NewClova(id, secret)
}

// nameOf resolves a security code to its directory name, for the
// simulated broker's quote labels.
func (d *deps) nameOf(code string) string {
	snap := d.dir.Current()
	if snap == nil {
		return code
	}
	for i := 0; i < snap.Len(); i++ {
		if e := snap.Entry(i); e.Code == code {
			return e.Name
		}
	}
	return code
}

// loadDirectory reads the roster (KRX, file, or built-in fallback) and
// swaps it in wholesale. Returns the loaded entry count.
func (d *deps) loadDirectory(ctx context.Context) (int, error) {
	var (
		entries []directory.Entry
		source  string
		err     error
	)
	switch {
	case d.krx != nil:
		entries, err = d.krx.Fetch(ctx)
		source = "krx"
	case d.cfg.Directory.File != "":
		entries, err = directory.LoadFile(d.cfg.Directory.File)
		source = d.cfg.Directory.File
		if err != nil && errors.Is(err, os.ErrNotExist) {
			entries, err = directory.DefaultEntries(), nil
			source = "builtin"
		}
	default:
		entries, source = directory.DefaultEntries(), "builtin"
	}
	if err != nil {
		return 0, err
	}
	if err := d.dir.Load(entries); err != nil {
		return 0, err
	}
	logger.Info(ctx, "Security directory loaded",
		"source", source,
		"entries", len(entries),
		"version", d.dir.Current().Version(),
	)
	return len(entries), nil
}

// reloadDirectory is the admin-triggered variant of loadDirectory.
func (d *deps) reloadDirectory(ctx context.Context) (int, error) {
	return d.loadDirectory(ctx)
}

// refreshLoop reloads the directory on a fixed interval. Failures keep
// the previous snapshot.
func (d *deps) refreshLoop(ctx context.Context, every time.Duration) {
	tick := time.NewTicker(every)
	defer tick.Stop()
	for {
		select {
		case <-tick.C:
			if _, err := d.loadDirectory(ctx); err != nil {
				logger.Warn(ctx, "Scheduled directory refresh failed", "error", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (d *deps) healthInfo() map[string]any {
	info := map[string]any{
		"mode":            d.cfg.Mode,
		"directory_ready": d.dir.Ready(),
		"voice_enabled":   d.transcriber != nil,
	}
	if snap := d.dir.Current(); snap != nil {
		info["directory_entries"] = snap.Len()
		info["directory_version"] = snap.Version()
	}
	return info
}

func (d *deps) close() {
	if d.pg != nil {
		d.pg.Close()
	}
}
