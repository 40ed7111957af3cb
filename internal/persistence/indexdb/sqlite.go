// Package indexdb keeps a small sqlite read model of viewer engagement:
// sessions, focus transitions and content requests. It is strictly secondary
// to the JSONL interaction logs and drops writes rather than stall the scene.
package indexdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"holoroom.app/internal/sim/scene"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan scene.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan scene.TickLogEntry, 4096),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT NOT NULL,
			tick INTEGER NOT NULL,
			kind TEXT NOT NULL,
			name TEXT,
			recorded_at TEXT NOT NULL,
			PRIMARY KEY (session_id, tick, kind)
		);`,
		`CREATE TABLE IF NOT EXISTS transitions (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			kind TEXT NOT NULL,
			mode TEXT,
			panel INTEGER,
			raw_json TEXT NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_transitions_kind_tick ON transitions(kind, tick);`,
		`CREATE TABLE IF NOT EXISTS content_requests (
			tick INTEGER NOT NULL,
			session_id TEXT,
			key TEXT NOT NULL,
			missing INTEGER NOT NULL,
			PRIMARY KEY (tick, key)
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry scene.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		// Drop if the indexer falls behind; JSONL logs remain the source of truth.
	}
	return nil
}

func (s *SQLiteIndex) loop() {
	var seq uint64
	for entry := range s.ch {
		seq++
		s.insert(entry, seq)
	}
}

func (s *SQLiteIndex) insert(e scene.TickLogEntry, seq uint64) {
	now := time.Now().UTC().Format(time.RFC3339)
	switch e.Type {
	case "session_join", "session_leave":
		name, _ := e.Data["name"].(string)
		_, _ = s.db.Exec(
			`INSERT OR IGNORE INTO sessions(session_id, tick, kind, name, recorded_at) VALUES(?,?,?,?,?)`,
			e.Session, e.Tick, e.Type, name, now,
		)
	case "event":
		typ, _ := e.Data["type"].(string)
		switch typ {
		case "FOCUS_ENTERED", "FOCUS_EXITED":
			mode, _ := e.Data["mode"].(string)
			panel := -1
			if p, ok := e.Data["panel"].(int); ok {
				panel = p
			}
			raw, _ := json.Marshal(e.Data)
			_, _ = s.db.Exec(
				`INSERT OR IGNORE INTO transitions(tick, seq, kind, mode, panel, raw_json) VALUES(?,?,?,?,?,?)`,
				e.Tick, seq, typ, mode, panel, string(raw),
			)
		}
	case "content_request", "content_miss":
		key, _ := e.Data["key"].(string)
		missing := 0
		if e.Type == "content_miss" {
			missing = 1
		}
		_, _ = s.db.Exec(
			`INSERT OR IGNORE INTO content_requests(tick, session_id, key, missing) VALUES(?,?,?,?)`,
			e.Tick, e.Session, key, missing,
		)
	}
}
