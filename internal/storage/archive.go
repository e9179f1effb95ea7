// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/kindred-tui/internal/model"
)

// ErrNotArchived is returned when a room has no archived transcript.
var ErrNotArchived = errors.New("room not archived")

// schema holds the archive tables. A room's archived transcript is a
// point-in-time snapshot; re-archiving replaces it wholesale.
const schema = `
CREATE TABLE IF NOT EXISTS rooms (
	key              TEXT PRIMARY KEY,
	counterpart_id   TEXT NOT NULL,
	counterpart_name TEXT NOT NULL,
	archived_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	room_key     TEXT NOT NULL REFERENCES rooms(key) ON DELETE CASCADE,
	sender_id    TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	body         TEXT NOT NULL,
	created_at   TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_key);
`

// =============================================================================
// TRANSCRIPT ARCHIVE
// =============================================================================

// Archive persists conversation transcripts to a local SQLite database
// so they remain readable offline and survive a server-side unmatch.
type Archive struct {
	db *sql.DB
}

// ArchivedRoom describes one archived transcript.
type ArchivedRoom struct {
	Key             string
	CounterpartID   string
	CounterpartName string
	ArchivedAt      time.Time
	MessageCount    int
}

// Open opens (creating if needed) the archive database at path.
func Open(path string) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize archive schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close releases the database handle.
func (a *Archive) Close() error {
	return a.db.Close()
}

// =============================================================================
// WRITES
// =============================================================================

// ArchiveRoom snapshots one room's transcript, replacing any previous
// snapshot for the same room key.
func (a *Archive) ArchiveRoom(ctx context.Context, room model.Room) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	if err := archiveRoomTx(ctx, tx, room); err != nil {
		return err
	}
	return tx.Commit()
}

// ArchiveDirectory snapshots every room in a single transaction.
func (a *Archive) ArchiveDirectory(ctx context.Context, rooms []model.Room) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin archive transaction: %w", err)
	}
	defer tx.Rollback()

	for _, room := range rooms {
		if err := archiveRoomTx(ctx, tx, room); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func archiveRoomTx(ctx context.Context, tx *sql.Tx, room model.Room) error {
	// Replace, don't merge. ON DELETE CASCADE clears the old messages.
	if _, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE key = ?`, room.Key); err != nil {
		return fmt.Errorf("failed to clear previous snapshot: %w", err)
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO rooms (key, counterpart_id, counterpart_name, archived_at) VALUES (?, ?, ?, ?)`,
		room.Key, room.CounterpartID, room.Counterpart.Name, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to archive room %s: %w", room.Key, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO messages (room_key, sender_id, recipient_id, body, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range room.Messages {
		if _, err := stmt.ExecContext(ctx, room.Key, msg.From, msg.To, msg.Body, msg.CreatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to archive message: %w", err)
		}
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Rooms lists archived transcripts, most recently archived first.
func (a *Archive) Rooms(ctx context.Context) ([]ArchivedRoom, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT r.key, r.counterpart_id, r.counterpart_name, r.archived_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.room_key = r.key)
		FROM rooms r
		ORDER BY r.archived_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list archived rooms: %w", err)
	}
	defer rows.Close()

	var out []ArchivedRoom
	for rows.Next() {
		var room ArchivedRoom
		if err := rows.Scan(&room.Key, &room.CounterpartID, &room.CounterpartName,
			&room.ArchivedAt, &room.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan archived room: %w", err)
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Messages returns the archived transcript for a room in archive order.
func (a *Archive) Messages(ctx context.Context, roomKey string) ([]model.Message, error) {
	var exists int
	err := a.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms WHERE key = ?`, roomKey).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotArchived
	}

	rows, err := a.db.QueryContext(ctx, `
		SELECT sender_id, recipient_id, body, created_at
		FROM messages WHERE room_key = ? ORDER BY id`, roomKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var msg model.Message
		if err := rows.Scan(&msg.From, &msg.To, &msg.Body, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.RoomKey = roomKey
		out = append(out, msg)
	}
	return out, rows.Err()
}
