package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	emailPkg "clubhouse/internal/adapters/email"
	web "clubhouse/internal/adapters/http"
	"clubhouse/internal/adapters/remote/blob"
	"clubhouse/internal/adapters/remote/postgres"
	"clubhouse/internal/adapters/storage"
	"clubhouse/internal/adapters/storage/kv"
	"clubhouse/internal/application/syncstore"
	authDomain "clubhouse/internal/domain/auth"
	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
	"clubhouse/internal/domain/session"
	settingsDomain "clubhouse/internal/domain/settings"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize database with WAL mode and busy timeout
	dbPath := envOrDefault("CLUB_DB_PATH", "clubhouse.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	kvs := kv.NewSQLiteStore(db)
	ctx := context.Background()

	// Remote mirror: Postgres wins when both backends are configured.
	var mirror syncstore.Mirror
	if pgURL := os.Getenv("CLUB_DATABASE_URL"); pgURL != "" {
		pgDB, err := sql.Open("postgres", pgURL)
		if err != nil {
			log.Fatalf("failed to open postgres mirror: %v", err)
		}
		defer pgDB.Close()
		if err := pgDB.Ping(); err != nil {
			log.Fatalf("postgres mirror unreachable: %v", err)
		}
		pg := postgres.NewMirror(pgDB)
		if err := pg.EnsureSchema(ctx); err != nil {
			log.Fatalf("failed to prepare postgres mirror: %v", err)
		}
		mirror = pg
		log.Println("Cloud sync configured (Postgres)")
	} else if binKey := os.Getenv("CLUB_JSONBIN_KEY"); binKey != "" {
		mirror = blob.NewMirror(blob.NewClient(binKey, os.Getenv("CLUB_JSONBIN_URL")), kvs)
		log.Println("Cloud sync configured (JSON bin service)")
	} else {
		log.Println("Cloud sync disabled — set CLUB_DATABASE_URL or CLUB_JSONBIN_KEY to enable")
	}

	openStore := func(name string, initial any) *syncstore.Store {
		s, err := syncstore.New(ctx, name, kvs, mirror, initial)
		if err != nil {
			log.Fatalf("failed to open %s store: %v", name, err)
		}
		return s
	}

	stores := &web.Stores{
		Members:  openStore("members", []member.Member{}),
		Payments: openStore("payments", []payment.Payment{}),
		Schedule: openStore("schedule", []session.Session{}),
		Settings: openStore("settings", settingsDomain.Defaults()),
	}

	// Credentials stay on this device: no mirror for the auth collection.
	authStore, err := syncstore.New(ctx, "auth", kvs, nil, authDomain.Defaults())
	if err != nil {
		log.Fatalf("failed to open auth store: %v", err)
	}
	stores.Auth = authStore

	// Configure email sender
	var sender emailPkg.Sender
	emailFrom := envOrDefault("CLUB_EMAIL_FROM", "Badminton Club <noreply@club.example>")
	if resendKey := os.Getenv("CLUB_RESEND_KEY"); resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		log.Println("Email sender configured (noop — set CLUB_RESEND_KEY for real delivery)")
	}

	opts := web.Options{
		Sender:         sender,
		EmailFrom:      emailFrom,
		Verifier:       authDomain.PlaintextVerifier{},
		PromoteOnLeave: os.Getenv("CLUB_PROMOTE_ON_LEAVE") == "true",
	}
	mux := web.NewMux(envOrDefault("CLUB_STATIC_DIR", "static"), stores, opts)

	addr := envOrDefault("CLUB_ADDR", ":8080")
	log.Printf("Clubhouse %s starting on %s (env=%s)", version, addr, envOrDefault("CLUB_ENV", "development"))

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
