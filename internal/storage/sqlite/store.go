// Package sqlite stores interview records as JSON documents in a SQLite
// database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/roboyoz/hotline/internal/interview"
)

const schema = `
CREATE TABLE IF NOT EXISTS interviews (
	phone_number TEXT PRIMARY KEY,
	body         TEXT NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS calls (
	call_sid     TEXT PRIMARY KEY,
	phone_number TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
`

// Store implements interview.Store on SQLite.
type Store struct {
	db *sql.DB
}

var _ interview.Store = (*Store)(nil)

// Open opens (creating if needed) the database at path and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close() //nolint:errcheck
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) LoadInterview(ctx context.Context, phoneNumber string) (*interview.Interview, error) {
	var body string
	err := s.db.QueryRowContext(ctx,
		`SELECT body FROM interviews WHERE phone_number = ?`, phoneNumber).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return interview.New(phoneNumber), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading interview %s: %w", phoneNumber, err)
	}
	var iv interview.Interview
	if err := json.Unmarshal([]byte(body), &iv); err != nil {
		return nil, fmt.Errorf("decoding interview %s: %w", phoneNumber, err)
	}
	iv.PhoneNumber = phoneNumber
	iv.Normalize()
	return &iv, nil
}

func (s *Store) SaveInterview(ctx context.Context, iv *interview.Interview) error {
	body, err := json.Marshal(iv)
	if err != nil {
		return fmt.Errorf("encoding interview %s: %w", iv.PhoneNumber, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO interviews (phone_number, body, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(phone_number) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at
	`, iv.PhoneNumber, string(body), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving interview %s: %w", iv.PhoneNumber, err)
	}
	return nil
}

func (s *Store) LoadCall(ctx context.Context, callSid string) (*interview.Call, error) {
	call := interview.Call{CallSid: callSid}
	err := s.db.QueryRowContext(ctx,
		`SELECT phone_number FROM calls WHERE call_sid = ?`, callSid).Scan(&call.PhoneNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interview.ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading call %s: %w", callSid, err)
	}
	return &call, nil
}

func (s *Store) SaveCall(ctx context.Context, call interview.Call) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calls (call_sid, phone_number, created_at) VALUES (?, ?, ?)
		ON CONFLICT(call_sid) DO UPDATE SET phone_number = excluded.phone_number
	`, call.CallSid, call.PhoneNumber, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("saving call %s: %w", call.CallSid, err)
	}
	return nil
}

func (s *Store) ListPhoneNumbers(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT phone_number FROM interviews ORDER BY phone_number`)
	if err != nil {
		return nil, fmt.Errorf("listing callers: %w", err)
	}
	defer rows.Close()

	var numbers []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan caller: %w", err)
		}
		numbers = append(numbers, n)
	}
	return numbers, rows.Err()
}
