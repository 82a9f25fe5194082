// Package web wires the JSON API over the synced collection stores.
package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"clubhouse/internal/adapters/email"
	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/auth"
)

// Stores holds the synced collection stores backing the API.
type Stores struct {
	Members  *syncstore.Store
	Payments *syncstore.Store
	Schedule *syncstore.Store
	Settings *syncstore.Store
	Auth     *syncstore.Store // local-only, never mirrored
}

// Synced returns the collections covered by whole-app sync operations.
func (s *Stores) Synced() []*syncstore.Store {
	return []*syncstore.Store{s.Members, s.Payments, s.Schedule, s.Settings}
}

// Options carries the tunables NewMux accepts beyond the stores.
type Options struct {
	Sender         email.Sender
	EmailFrom      string
	Verifier       auth.Verifier
	PromoteOnLeave bool
}

// loadCSRFKey reads the CSRF secret from CLUB_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("CLUB_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("CLUB_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("CLUB_ENV") == "production" {
		log.Fatal("CLUB_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set CLUB_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global session store instance
var sessions *middleware.SessionStore

// Global options (set by NewMux)
var options Options

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, opts Options) http.Handler {
	stores = s
	options = opts
	if options.Verifier == nil {
		options.Verifier = auth.PlaintextVerifier{}
	}
	sessions = middleware.NewSessionStore()

	mux := http.NewServeMux()
	if staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}
	registerRoutes(mux)

	csrfKey := loadCSRFKey()
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
	)
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/login", handleLogin)
	mux.HandleFunc("/api/logout", handleLogout)
	mux.HandleFunc("/api/me", gated(handleMe))

	mux.HandleFunc("/api/members", gated(adminWrites(handleMembers)))
	mux.HandleFunc("/api/members/", gated(adminWrites(handleMemberByID)))
	mux.HandleFunc("/api/members-export", gated(handleMembersExport))
	mux.HandleFunc("/api/members-import", gated(adminWrites(handleMembersImport)))

	mux.HandleFunc("/api/payments", gated(adminWrites(handlePayments)))
	mux.HandleFunc("/api/payments/", gated(adminWrites(handlePaymentByID)))
	mux.HandleFunc("/api/payments-export", gated(handlePaymentsExport))
	mux.HandleFunc("/api/payments-import", gated(adminWrites(handlePaymentsImport)))

	mux.HandleFunc("/api/schedule", gated(adminWrites(handleSchedule)))
	mux.HandleFunc("/api/schedule/", gated(handleSessionByID))

	mux.HandleFunc("/api/settings", gated(adminWrites(handleSettings)))

	mux.HandleFunc("/api/auth/settings", gated(handleAuthSettings))
	mux.HandleFunc("/api/auth/users", gated(handleAuthUsers))
	mux.HandleFunc("/api/auth/users/", gated(handleAuthUserByID))

	mux.HandleFunc("/api/dashboard", gated(handleDashboard))
	mux.HandleFunc("/api/reminders", gated(handleReminders))
	mux.HandleFunc("/api/reminders-send", gated(handleRemindersSend))

	mux.HandleFunc("/api/sync/save", gated(handleSyncSave))
	mux.HandleFunc("/api/sync/load", gated(handleSyncLoad))
	mux.HandleFunc("/api/sync/status", gated(handleSyncStatus))
}

// gated enforces the login requirement when the auth settings demand one.
// The requirement is a runtime setting, so it is consulted per request
// rather than baked into the route table.
func gated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var cfg auth.Settings
		if err := stores.Auth.Decode(&cfg); err != nil {
			internalError(w, err)
			return
		}
		if cfg.RequireAuth {
			if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
				writeError(w, http.StatusUnauthorized, "authentication required")
				return
			}
		}
		next(w, r)
	}
}

// adminWrites restricts mutating methods to admins once someone is logged
// in. Reads pass through, and so does everything when no session is
// attached (auth switched off). Roster toggles stay open to every member,
// so /api/schedule/{id}/toggle is not routed through this.
func adminWrites(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.Role != auth.RoleAdmin {
				writeError(w, http.StatusForbidden, "admin access required")
				return
			}
		}
		next(w, r)
	}
}
