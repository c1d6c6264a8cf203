package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/itohio/greenmon/pkg/logsink"
	_ "modernc.org/sqlite"
)

// DefaultWriteTimeout bounds a single Append.
const DefaultWriteTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS samples (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	session     TEXT    NOT NULL,
	ts_ms       INTEGER NOT NULL,
	received_at INTEGER NOT NULL,
	soil        INTEGER NOT NULL,
	co2         REAL,
	temperature REAL,
	humidity    REAL,
	valid       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_samples_session ON samples(session);
`

var _ logsink.Sink = (*Store)(nil)

// Sample is a stored record.
type Sample struct {
	ID         int64
	Session    uuid.UUID
	ReceivedAt time.Time
	Record     logsink.Record
}

// Store persists log records in an SQLite database. Every Store opened gets
// its own session id so samples of different runs can be told apart; the
// device timestamp restarts from zero on every boot.
type Store struct {
	db      *sql.DB
	session uuid.UUID
	now     func() time.Time

	// WriteTimeout bounds Append. Zero means DefaultWriteTimeout.
	WriteTimeout time.Duration
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultWriteTimeout)
	defer cancel()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{
		db:      db,
		session: uuid.New(),
		now:     time.Now,
	}, nil
}

// Session returns the id samples appended by this Store are tagged with.
func (s *Store) Session() uuid.UUID {
	return s.session
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Append inserts rec. It implements logsink.Sink.
func (s *Store) Append(rec logsink.Record) error {
	timeout := s.WriteTimeout
	if timeout <= 0 {
		timeout = DefaultWriteTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.Insert(ctx, rec)
}

// Insert inserts rec using ctx.
func (s *Store) Insert(ctx context.Context, rec logsink.Record) error {
	if s.db == nil {
		return logsink.ErrClosed
	}

	var co2, temp, hum sql.NullFloat64
	if rec.Valid {
		co2 = sql.NullFloat64{Float64: float64(rec.CO2), Valid: true}
		temp = sql.NullFloat64{Float64: float64(rec.Temperature), Valid: true}
		hum = sql.NullFloat64{Float64: float64(rec.Humidity), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO samples (session, ts_ms, received_at, soil, co2, temperature, humidity, valid)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.session.String(),
		int64(rec.TimestampMs),
		s.now().UnixMilli(),
		int64(rec.SoilRaw),
		co2, temp, hum,
		rec.Valid,
	)
	if err != nil {
		return fmt.Errorf("failed to insert sample: %w", err)
	}
	return nil
}

// Recent returns up to limit most recently stored samples, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Sample, error) {
	if s.db == nil {
		return nil, logsink.ErrClosed
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session, ts_ms, received_at, soil, co2, temperature, humidity, valid
		 FROM samples ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var out []Sample
	for rows.Next() {
		var (
			sm             Sample
			session        string
			ts, at, soil   int64
			co2, temp, hum sql.NullFloat64
			valid          bool
		)
		if err := rows.Scan(&sm.ID, &session, &ts, &at, &soil, &co2, &temp, &hum, &valid); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}

		sm.Session, err = uuid.Parse(session)
		if err != nil {
			return nil, fmt.Errorf("invalid session id %q: %w", session, err)
		}
		sm.ReceivedAt = time.UnixMilli(at)
		sm.Record = logsink.Record{
			TimestampMs: uint32(ts),
			SoilRaw:     uint16(soil),
			Valid:       valid && co2.Valid && temp.Valid && hum.Valid,
		}
		if sm.Record.Valid {
			sm.Record.CO2 = float32(co2.Float64)
			sm.Record.Temperature = float32(temp.Float64)
			sm.Record.Humidity = float32(hum.Float64)
		}
		out = append(out, sm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read samples: %w", err)
	}
	return out, nil
}

// Count returns the number of stored samples.
func (s *Store) Count(ctx context.Context) (int, error) {
	if s.db == nil {
		return 0, logsink.ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM samples`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count samples: %w", err)
	}
	return n, nil
}
