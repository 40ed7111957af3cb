package indexdb

import (
	"database/sql"
	"path/filepath"
	"testing"

	"holoroom.app/internal/sim/scene"
)

func TestSQLiteIndex_WritesRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	entries := []scene.TickLogEntry{
		{Tick: 1, Type: "session_join", Session: "V1", Data: map[string]any{"name": "alice"}},
		{Tick: 10, Type: "event", Data: map[string]any{"type": "FOCUS_ENTERED", "mode": "HOLOGRAM", "panel": 2}},
		{Tick: 80, Type: "event", Data: map[string]any{"type": "FOCUS_EXITED", "mode": "HOLOGRAM"}},
		{Tick: 81, Type: "event", Data: map[string]any{"type": "HELP_PROMPT", "visible": true}}, // not indexed
		{Tick: 90, Type: "content_request", Session: "V1", Data: map[string]any{"key": "about"}},
		{Tick: 95, Type: "content_miss", Session: "V1", Data: map[string]any{"key": "nope"}},
		{Tick: 120, Type: "session_leave", Session: "V1"},
	}
	for _, e := range entries {
		if err := idx.WriteTick(e); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	// Close drains the channel, so every queued write lands first.
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	count := func(query string, args ...any) int {
		t.Helper()
		var n int
		if err := db.QueryRow(query, args...).Scan(&n); err != nil {
			t.Fatalf("%s: %v", query, err)
		}
		return n
	}

	if n := count(`SELECT COUNT(*) FROM sessions`); n != 2 {
		t.Fatalf("sessions rows: %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM transitions`); n != 2 {
		t.Fatalf("transitions rows: %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM transitions WHERE kind = 'FOCUS_ENTERED' AND panel = 2`); n != 1 {
		t.Fatalf("focus-entered row missing")
	}
	if n := count(`SELECT COUNT(*) FROM content_requests WHERE missing = 1`); n != 1 {
		t.Fatalf("missing-content rows: %d", n)
	}
	if n := count(`SELECT COUNT(*) FROM content_requests`); n != 2 {
		t.Fatalf("content rows: %d", n)
	}

	var name string
	if err := db.QueryRow(`SELECT name FROM sessions WHERE kind = 'session_join'`).Scan(&name); err != nil {
		t.Fatalf("join row: %v", err)
	}
	if name != "alice" {
		t.Fatalf("join name %q", name)
	}
}

func TestSQLiteIndex_WriteAfterCloseIsNoop(t *testing.T) {
	idx, err := OpenSQLite(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := idx.WriteTick(scene.TickLogEntry{Tick: 1, Type: "session_join"}); err != nil {
		t.Fatalf("write after close: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	if _, err := OpenSQLite(""); err == nil {
		t.Fatalf("want error for empty path")
	}
}
