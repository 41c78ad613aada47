// cmd/web/main.go
//
// Summit Voyage marketing site – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Load env vars (server-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (.env → conf/global.yaml → SUMMIT_ env overrides),
//     resolve `vault:` secret references, validate, install.
//
//  4. Open the lead store: MariaDB with connect-time retry, or the embedded
//     SQLite file, per `database.backend`.  Schema setup runs single-flight
//     on first touch.
//
//  5. Construct the mailer (real SMTP or recording dev transport) and the
//     request enricher (UA always, GeoIP when configured).
//
//  6. Assemble the chi router, wrap it with ForceHTTPS, and serve with
//     hardened timeouts until SIGINT/SIGTERM, then drain gracefully.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/SummitVoyage/summit-site/internal/config"
	"github.com/SummitVoyage/summit-site/internal/database"
	"github.com/SummitVoyage/summit-site/internal/emailcheck"
	"github.com/SummitVoyage/summit-site/internal/lead"
	"github.com/SummitVoyage/summit-site/internal/lead/mariadb"
	"github.com/SummitVoyage/summit-site/internal/lead/sqlite"
	"github.com/SummitVoyage/summit-site/internal/logger"
	"github.com/SummitVoyage/summit-site/internal/mailer"
	"github.com/SummitVoyage/summit-site/internal/middleware"
	"github.com/SummitVoyage/summit-site/internal/requestinfo"
	"github.com/SummitVoyage/summit-site/internal/secrets"
	"github.com/SummitVoyage/summit-site/internal/server"
	"github.com/SummitVoyage/summit-site/internal/web"
)

const serverEnvPath = "/usr/local/etc/summit-site/global.env"

// loadEnv prefers the server-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}
	if secrets.HasRefs(cfg) {
		cli, err := secrets.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		if err := secrets.ResolveConfig(ctx, cli, cfg); err != nil {
			logOut.Fatalf("resolve secrets: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		logOut.Fatalf("validate config: %v", err)
	}
	config.Install(cfg)

	//
	// ── 2.  Lead store ──────────────────────────────────────────────────
	//
	var store lead.Store
	switch cfg.Database.Backend {
	case "sqlite":
		db, err := database.OpenFile(ctx, cfg.Database.Path, database.Defaults())
		if err != nil {
			logOut.Fatalf("open sqlite store: %v", err)
		}
		store = sqlite.New(db)
	default:
		db, err := database.Open(ctx, cfg.Database.BuildDSN(), database.Defaults())
		if err != nil {
			logOut.Fatalf("connect lead store: %v", err)
		}
		store = mariadb.New(db)
	}
	defer store.Close()

	if err := store.Init(ctx); err != nil {
		// Data ops retry initialization opportunistically, so a failed
		// first attempt degrades service instead of killing boot.
		logOut.Warnf("store init deferred: %v", err)
	}

	n, err := store.Count(ctx)
	if err == nil {
		logOut.Infof("lead store online, %d lead(s) on record", n)
	}

	//
	// ── 3.  Mailer and request enrichment ───────────────────────────────
	//
	mail := mailer.New(mailer.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		User:     cfg.SMTP.User,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		Admin:    cfg.SMTP.Admin,
	})

	enricher, err := requestinfo.NewEnricher(cfg.Analytics.GeoIPPath)
	if err != nil {
		logOut.Fatalf("open GeoIP database: %v", err)
	}
	defer enricher.Close()

	//
	// ── 4.  Router and server ───────────────────────────────────────────
	//
	handlers := &web.Handlers{
		Store:   store,
		Mail:    mail,
		Checker: emailcheck.New(nil),
	}
	root := middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS, web.NewRouter(handlers, enricher))

	srv := server.New(cfg.HTTP.ListenAddr, root)

	go func() {
		logOut.Infof("listening on %s", cfg.HTTP.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logOut.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Info("shutting down")
	if err := server.Shutdown(srv, 10*time.Second); err != nil {
		logOut.Errorf("graceful shutdown: %v", err)
	}
}
