// Package postgres mirrors collections to a Postgres database, one table
// per collection. Saves replace the whole table snapshot inside a single
// transaction so readers never observe a half-written sync.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"

	"clubhouse/internal/domain/member"
	"clubhouse/internal/domain/payment"
	"clubhouse/internal/domain/session"
	"clubhouse/internal/domain/settings"
)

// Mirror implements the synced-store remote backend on Postgres.
type Mirror struct {
	db *sql.DB
}

// NewMirror creates a Mirror over an open database handle.
func NewMirror(db *sql.DB) *Mirror {
	return &Mirror{db: db}
}

// EnsureSchema creates the mirror tables if they do not exist.
func (m *Mirror) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			phone TEXT NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			member_id TEXT NOT NULL,
			member_name TEXT NOT NULL,
			amount NUMERIC NOT NULL DEFAULT 0,
			month TEXT NOT NULL,
			date TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS schedule (
			id TEXT PRIMARY KEY,
			month TEXT NOT NULL,
			date TEXT NOT NULL,
			time TEXT NOT NULL,
			venue TEXT NOT NULL,
			max_players INTEGER NOT NULL DEFAULT 0,
			notes TEXT NOT NULL DEFAULT '',
			players JSONB NOT NULL DEFAULT '[]',
			waitlist JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY,
			club_name TEXT NOT NULL,
			monthly_fee NUMERIC NOT NULL DEFAULT 0,
			bank_name TEXT NOT NULL DEFAULT '',
			account_number TEXT NOT NULL DEFAULT '',
			account_name TEXT NOT NULL DEFAULT '',
			qr_code_url TEXT NOT NULL DEFAULT '',
			payment_message TEXT NOT NULL DEFAULT '',
			reminder_days INTEGER NOT NULL DEFAULT 3
		)`,
	}
	for _, stmt := range stmts {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Save replaces the collection's table with the rows in data.
// POST: the table holds exactly the rows in data, or is untouched on error
func (m *Mirror) Save(ctx context.Context, collection string, data json.RawMessage) error {
	switch collection {
	case "members":
		return m.saveMembers(ctx, data)
	case "payments":
		return m.savePayments(ctx, data)
	case "schedule":
		return m.saveSchedule(ctx, data)
	case "settings":
		return m.saveSettings(ctx, data)
	default:
		return fmt.Errorf("unsupported collection %q", collection)
	}
}

// Load reads the collection's table back into its JSON document form.
// List collections always report ok=true; settings reports ok=false when
// the singleton row has never been written.
func (m *Mirror) Load(ctx context.Context, collection string) (json.RawMessage, bool, error) {
	switch collection {
	case "members":
		return m.loadMembers(ctx)
	case "payments":
		return m.loadPayments(ctx)
	case "schedule":
		return m.loadSchedule(ctx)
	case "settings":
		return m.loadSettings(ctx)
	default:
		return nil, false, fmt.Errorf("unsupported collection %q", collection)
	}
}

func (m *Mirror) saveMembers(ctx context.Context, data json.RawMessage) error {
	var members []member.Member
	if err := json.Unmarshal(data, &members); err != nil {
		return fmt.Errorf("decode members: %w", err)
	}
	return m.replace(ctx, "members", func(tx *sql.Tx) error {
		for _, mb := range members {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO members (id, name, phone, email) VALUES ($1, $2, $3, $4)",
				mb.ID, mb.Name, mb.Phone, mb.Email)
			if err != nil {
				return fmt.Errorf("insert member %s: %w", mb.ID, err)
			}
		}
		return nil
	})
}

func (m *Mirror) savePayments(ctx context.Context, data json.RawMessage) error {
	var payments []payment.Payment
	if err := json.Unmarshal(data, &payments); err != nil {
		return fmt.Errorf("decode payments: %w", err)
	}
	return m.replace(ctx, "payments", func(tx *sql.Tx) error {
		for _, p := range payments {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO payments (id, member_id, member_name, amount, month, date, notes) VALUES ($1, $2, $3, $4, $5, $6, $7)",
				p.ID, p.MemberID, p.MemberName, p.AmountValue(), p.Month, p.Date, p.Notes)
			if err != nil {
				return fmt.Errorf("insert payment %s: %w", p.ID, err)
			}
		}
		return nil
	})
}

func (m *Mirror) saveSchedule(ctx context.Context, data json.RawMessage) error {
	var sessions []session.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return fmt.Errorf("decode schedule: %w", err)
	}
	return m.replace(ctx, "schedule", func(tx *sql.Tx) error {
		for _, s := range sessions {
			players, err := marshalRoster(s.Players)
			if err != nil {
				return fmt.Errorf("encode players for %s: %w", s.ID, err)
			}
			waitlist, err := marshalRoster(s.Waitlist)
			if err != nil {
				return fmt.Errorf("encode waitlist for %s: %w", s.ID, err)
			}
			_, err = tx.ExecContext(ctx,
				"INSERT INTO schedule (id, month, date, time, venue, max_players, notes, players, waitlist) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
				s.ID, s.Month, s.Date, s.Time, s.Venue, s.Capacity(), s.Notes, players, waitlist)
			if err != nil {
				return fmt.Errorf("insert session %s: %w", s.ID, err)
			}
		}
		return nil
	})
}

func (m *Mirror) saveSettings(ctx context.Context, data json.RawMessage) error {
	var s settings.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode settings: %w", err)
	}
	days, _ := strconv.Atoi(s.ReminderDays)
	_, err := m.db.ExecContext(ctx, `INSERT INTO settings
		(id, club_name, monthly_fee, bank_name, account_number, account_name, qr_code_url, payment_message, reminder_days)
		VALUES (1, $1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
		club_name=excluded.club_name, monthly_fee=excluded.monthly_fee,
		bank_name=excluded.bank_name, account_number=excluded.account_number,
		account_name=excluded.account_name, qr_code_url=excluded.qr_code_url,
		payment_message=excluded.payment_message, reminder_days=excluded.reminder_days`,
		s.ClubName, s.MonthlyFeeValue(), s.BankName, s.AccountNumber,
		s.AccountName, s.QRCodeURL, s.PaymentMessage, days)
	if err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

// replace runs a delete-all-then-insert snapshot swap in one transaction.
func (m *Mirror) replace(ctx context.Context, table string, insert func(tx *sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace %s: %w", table, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if err := insert(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit replace %s: %w", table, err)
	}
	return nil
}

func (m *Mirror) loadMembers(ctx context.Context) (json.RawMessage, bool, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, name, phone, email FROM members ORDER BY created_at ASC")
	if err != nil {
		return nil, false, fmt.Errorf("load members: %w", err)
	}
	defer rows.Close()

	members := []member.Member{}
	for rows.Next() {
		var mb member.Member
		if err := rows.Scan(&mb.ID, &mb.Name, &mb.Phone, &mb.Email); err != nil {
			return nil, false, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, mb)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load members: %w", err)
	}
	return mustMarshal(members)
}

func (m *Mirror) loadPayments(ctx context.Context) (json.RawMessage, bool, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, member_id, member_name, amount, month, date, notes FROM payments ORDER BY date DESC")
	if err != nil {
		return nil, false, fmt.Errorf("load payments: %w", err)
	}
	defer rows.Close()

	payments := []payment.Payment{}
	for rows.Next() {
		var p payment.Payment
		var amount float64
		if err := rows.Scan(&p.ID, &p.MemberID, &p.MemberName, &amount, &p.Month, &p.Date, &p.Notes); err != nil {
			return nil, false, fmt.Errorf("scan payment: %w", err)
		}
		p.Amount = strconv.FormatFloat(amount, 'f', -1, 64)
		payments = append(payments, p)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load payments: %w", err)
	}
	return mustMarshal(payments)
}

func (m *Mirror) loadSchedule(ctx context.Context) (json.RawMessage, bool, error) {
	rows, err := m.db.QueryContext(ctx,
		"SELECT id, month, date, time, venue, max_players, notes, players, waitlist FROM schedule ORDER BY date ASC")
	if err != nil {
		return nil, false, fmt.Errorf("load schedule: %w", err)
	}
	defer rows.Close()

	sessions := []session.Session{}
	for rows.Next() {
		var s session.Session
		var maxPlayers int
		var players, waitlist []byte
		if err := rows.Scan(&s.ID, &s.Month, &s.Date, &s.Time, &s.Venue, &maxPlayers, &s.Notes, &players, &waitlist); err != nil {
			return nil, false, fmt.Errorf("scan session: %w", err)
		}
		s.MaxPlayers = strconv.Itoa(maxPlayers)
		if err := json.Unmarshal(players, &s.Players); err != nil {
			return nil, false, fmt.Errorf("decode players for %s: %w", s.ID, err)
		}
		if err := json.Unmarshal(waitlist, &s.Waitlist); err != nil {
			return nil, false, fmt.Errorf("decode waitlist for %s: %w", s.ID, err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("load schedule: %w", err)
	}
	return mustMarshal(sessions)
}

func (m *Mirror) loadSettings(ctx context.Context) (json.RawMessage, bool, error) {
	var s settings.Settings
	var fee float64
	var days int
	err := m.db.QueryRowContext(ctx, `SELECT club_name, monthly_fee, bank_name,
		account_number, account_name, qr_code_url, payment_message, reminder_days
		FROM settings WHERE id = 1`).Scan(
		&s.ClubName, &fee, &s.BankName, &s.AccountNumber,
		&s.AccountName, &s.QRCodeURL, &s.PaymentMessage, &days)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load settings: %w", err)
	}
	s.MonthlyFee = strconv.FormatFloat(fee, 'f', -1, 64)
	s.ReminderDays = strconv.Itoa(days)
	return mustMarshal(s)
}

// marshalRoster keeps empty rosters as [] rather than null in jsonb.
func marshalRoster(ids []string) ([]byte, error) {
	if ids == nil {
		ids = []string{}
	}
	return json.Marshal(ids)
}

func mustMarshal(v any) (json.RawMessage, bool, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("encode collection: %w", err)
	}
	return data, true, nil
}
