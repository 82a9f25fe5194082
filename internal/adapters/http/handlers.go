package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"clubhouse/internal/adapters/http/middleware"
	"clubhouse/internal/application/orchestrators"
	"clubhouse/internal/application/projections"
	authDomain "clubhouse/internal/domain/auth"
	settingsDomain "clubhouse/internal/domain/settings"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_response_failed", "error", err.Error())
	}
}

// writeRaw sends a stored collection document verbatim.
func writeRaw(w http.ResponseWriter, data json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// domainError maps orchestrator errors onto HTTP statuses. Anything not
// recognized is treated as a validation failure; infrastructure errors are
// surfaced by the callers as internal errors before reaching here.
func domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, orchestrators.ErrMemberNotFound),
		errors.Is(err, orchestrators.ErrPaymentNotFound),
		errors.Is(err, orchestrators.ErrSessionNotFound),
		errors.Is(err, orchestrators.ErrAuthUserNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, orchestrators.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func memberDeps() orchestrators.MemberDeps {
	return orchestrators.MemberDeps{Members: stores.Members, GenerateID: generateID}
}

func paymentDeps() orchestrators.PaymentDeps {
	return orchestrators.PaymentDeps{
		Payments:   stores.Payments,
		Members:    stores.Members,
		GenerateID: generateID,
		Now:        timeNow,
	}
}

func sessionDeps() orchestrators.SessionDeps {
	return orchestrators.SessionDeps{
		Schedule:       stores.Schedule,
		GenerateID:     generateID,
		PromoteOnLeave: options.PromoteOnLeave,
	}
}

func authDeps() orchestrators.AuthDeps {
	return orchestrators.AuthDeps{Auth: stores.Auth, Verifier: options.Verifier, GenerateID: generateID}
}

func reminderDeps() orchestrators.ReminderDeps {
	return orchestrators.ReminderDeps{
		Members:  stores.Members,
		Payments: stores.Payments,
		Settings: stores.Settings,
	}
}

// --- auth ---

func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(),
		orchestrators.LoginInput{Username: input.Username, Password: input.Password}, authDeps())
	if err != nil {
		domainError(w, err)
		return
	}

	token, err := sessions.Create(result.UserID, result.Name, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{
		"userId": result.UserID,
		"name":   result.Name,
		"role":   result.Role,
	})
}

func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var cfg authDomain.Settings
	if err := stores.Auth.Decode(&cfg); err != nil {
		internalError(w, err)
		return
	}
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"requireAuth": cfg.RequireAuth, "loggedIn": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"requireAuth": cfg.RequireAuth,
		"loggedIn":    true,
		"userId":      sess.UserID,
		"name":        sess.Name,
		"role":        sess.Role,
	})
}

func handleAuthSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeRaw(w, stores.Auth.Data())
	case http.MethodPut:
		if !middleware.IsAdmin(r.Context()) && authRequired() {
			writeError(w, http.StatusForbidden, "admin role required")
			return
		}
		var cfg authDomain.Settings
		if err := strictDecode(r, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := orchestrators.ExecuteUpdateAuthSettings(r.Context(), cfg, authDeps()); err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleAuthUsers(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var input orchestrators.AddAuthUserInput
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	u, err := orchestrators.ExecuteAddAuthUser(r.Context(), input, authDeps())
	if err != nil {
		domainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func handleAuthUserByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/auth/users/")
	if err := orchestrators.ExecuteRemoveAuthUser(r.Context(), id, authDeps()); err != nil {
		domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func authRequired() bool {
	var cfg authDomain.Settings
	if err := stores.Auth.Decode(&cfg); err != nil {
		return false
	}
	return cfg.RequireAuth
}

// --- members ---

func handleMembers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeRaw(w, stores.Members.Data())
	case http.MethodPost:
		var input orchestrators.AddMemberInput
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := orchestrators.ExecuteAddMember(r.Context(), input, memberDeps())
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, m)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleMemberByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/members/")
	switch r.Method {
	case http.MethodPut:
		var input struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
			Email string `json:"email"`
		}
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
			ID: id, Name: input.Name, Phone: input.Phone, Email: input.Email,
		}, memberDeps())
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, m)
	case http.MethodDelete:
		if err := orchestrators.ExecuteDeleteMember(r.Context(), id, memberDeps()); err != nil {
			domainError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleMembersExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="members.csv"`)
	if err := orchestrators.ExportMembersCSV(r.Context(), w, memberDeps()); err != nil {
		slog.Error("members_export_failed", "error", err.Error())
	}
}

func handleMembersImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		CSV string `json:"csv"`
	}
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := orchestrators.ImportMembersCSV(r.Context(), strings.NewReader(input.CSV), memberDeps())
	if err != nil {
		var vErr *orchestrators.CSVValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- payments ---

func handlePayments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeRaw(w, stores.Payments.Data())
	case http.MethodPost:
		var input struct {
			MemberID string `json:"memberId"`
			Amount   string `json:"amount"`
			Month    string `json:"month"`
			Date     string `json:"date"`
			Notes    string `json:"notes"`
		}
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := orchestrators.ExecuteRecordPayment(r.Context(), orchestrators.RecordPaymentInput{
			MemberID: input.MemberID, Amount: input.Amount, Month: input.Month,
			Date: input.Date, Notes: input.Notes,
		}, paymentDeps())
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func handlePaymentByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/payments/")
	if err := orchestrators.ExecuteDeletePayment(r.Context(), id, paymentDeps()); err != nil {
		domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func handlePaymentsExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="payments.csv"`)
	if err := orchestrators.ExportPaymentsCSV(r.Context(), w, paymentDeps()); err != nil {
		slog.Error("payments_export_failed", "error", err.Error())
	}
}

func handlePaymentsImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var input struct {
		CSV string `json:"csv"`
	}
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	result, err := orchestrators.ImportPaymentsCSV(r.Context(), strings.NewReader(input.CSV), paymentDeps())
	if err != nil {
		var vErr *orchestrators.CSVValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Message)
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- schedule ---

func handleSchedule(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeRaw(w, stores.Schedule.Data())
	case http.MethodPost:
		var input orchestrators.AddSessionInput
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		s, err := orchestrators.ExecuteAddSession(r.Context(), input, sessionDeps())
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func handleSessionByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/schedule/")

	if id, ok := strings.CutSuffix(rest, "/toggle"); ok {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var input struct {
			MemberID string `json:"memberId"`
		}
		if err := strictDecode(r, &input); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		result, err := orchestrators.ExecuteTogglePlayer(r.Context(),
			orchestrators.TogglePlayerInput{SessionID: id, MemberID: input.MemberID}, sessionDeps())
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
		return
	}

	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// Deleting a session discards its registrations, so unlike toggling
	// it is reserved for admins once someone is logged in.
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok && sess.Role != authDomain.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return
	}
	if err := orchestrators.ExecuteDeleteSession(r.Context(), rest, sessionDeps()); err != nil {
		domainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- settings ---

func handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		writeRaw(w, stores.Settings.Data())
	case http.MethodPut:
		var cfg settingsDomain.Settings
		if err := strictDecode(r, &cfg); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		updated, err := orchestrators.ExecuteUpdateSettings(r.Context(), cfg,
			orchestrators.SettingsDeps{Settings: stores.Settings})
		if err != nil {
			domainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, updated)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// --- dashboard and reminders ---

// monthParam reads ?month=YYYY-MM, defaulting to the current month.
func monthParam(r *http.Request) string {
	if m := r.URL.Query().Get("month"); m != "" {
		return m
	}
	return timeNow().Format("2006-01")
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := projections.QueryGetMonthlyDashboard(r.Context(),
		projections.GetMonthlyDashboardQuery{Month: monthParam(r)},
		projections.GetMonthlyDashboardDeps{
			Members:  stores.Members,
			Payments: stores.Payments,
			Schedule: stores.Schedule,
			Settings: stores.Settings,
		})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := orchestrators.ExecuteListReminders(r.Context(), monthParam(r), reminderDeps())
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func handleRemindersSend(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if options.Sender == nil {
		writeError(w, http.StatusBadRequest, "email delivery is not configured")
		return
	}
	var input struct {
		Month string `json:"month"`
	}
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if input.Month == "" {
		input.Month = timeNow().Format("2006-01")
	}
	result, err := orchestrators.ExecuteSendReminders(r.Context(),
		orchestrators.SendRemindersInput{Month: input.Month},
		orchestrators.SendRemindersDeps{Reminders: reminderDeps(), Sender: options.Sender})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// --- sync ---

func handleSyncSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result := orchestrators.ExecuteSaveAll(r.Context(), orchestrators.SyncDeps{Stores: stores.Synced()})
	writeJSON(w, http.StatusOK, result)
}

func handleSyncLoad(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result := orchestrators.ExecuteSyncAll(r.Context(), orchestrators.SyncDeps{Stores: stores.Synced()})
	writeJSON(w, http.StatusOK, result)
}

func handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	type collectionStatus struct {
		Collection string     `json:"collection"`
		Configured bool       `json:"configured"`
		Dirty      bool       `json:"dirty"`
		LastSync   *time.Time `json:"lastSync,omitempty"`
	}
	statuses := []collectionStatus{}
	for _, s := range stores.Synced() {
		cs := collectionStatus{Collection: s.Name(), Configured: s.Configured(), Dirty: s.Dirty()}
		if t, ok := s.LastSync(); ok {
			cs.LastSync = &t
		}
		statuses = append(statuses, cs)
	}
	writeJSON(w, http.StatusOK, statuses)
}
