// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/kindred-tui/internal/api"
	"github.com/jeranaias/kindred-tui/internal/chat"
	"github.com/jeranaias/kindred-tui/internal/config"
	"github.com/jeranaias/kindred-tui/internal/model"
	"github.com/jeranaias/kindred-tui/internal/realtime"
	"github.com/jeranaias/kindred-tui/internal/session"
	"github.com/jeranaias/kindred-tui/internal/storage"
)

// Send failure modes surfaced to the UI.
var (
	// ErrSignedOut means no identity is present.
	ErrSignedOut = errors.New("not signed in")

	// ErrEmptyMessage means the draft was empty or whitespace.
	ErrEmptyMessage = errors.New("empty message")

	// ErrMessageTooLong means the draft exceeded the configured cap.
	ErrMessageTooLong = errors.New("message too long")

	// ErrRateLimited means sends are arriving faster than allowed.
	ErrRateLimited = errors.New("sending too fast")

	// ErrNoRoom means no confirmed room exists for the counterpart.
	ErrNoRoom = errors.New("room does not exist")
)

// Backend is the slice of the REST client the app context calls on its
// own behalf.
type Backend interface {
	RoomHistory(ctx context.Context, roomKey string) ([]model.Message, error)
	Unmatch(ctx context.Context, candidateID string) error
}

// =============================================================================
// APP CONTEXT
// =============================================================================

// Context owns the long-lived pieces of the client and the wiring
// between them: the session drives the realtime connection and the room
// directory, and realtime events flow into the directory. Construction
// and teardown are explicit; nothing connects as a side effect of
// package import.
type Context struct {
	Config    *config.Config
	API       *api.Client
	Session   *session.Manager
	Realtime  *realtime.Manager
	Directory *chat.Directory
	Archive   *storage.Archive // nil when archiving is disabled

	backend Backend
	limiter *rate.Limiter
	maxLen  int

	stateMu       sync.Mutex
	stateObserver func(realtime.Status)

	cancels []func()
}

// SetStateObserver registers fn to be told about connection state
// changes, after the context's own handling.
func (c *Context) SetStateObserver(fn func(realtime.Status)) {
	c.stateMu.Lock()
	c.stateObserver = fn
	c.stateMu.Unlock()
}

func (c *Context) notifyState(status realtime.Status) {
	c.stateMu.Lock()
	fn := c.stateObserver
	c.stateMu.Unlock()
	if fn != nil {
		fn(status)
	}
}

// New builds a fully wired context from the global configuration.
func New() (*Context, error) {
	cfg := config.Global()

	cookiePath, err := config.CookiePath()
	if err != nil {
		return nil, err
	}
	client, err := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.TimeoutSecs)*time.Second, cookiePath)
	if err != nil {
		return nil, err
	}

	dialer := &realtime.WebsocketDialer{
		HandshakeTimeout: time.Duration(cfg.Realtime.HandshakeTimeoutSecs) * time.Second,
	}

	c := NewContext(cfg,
		session.NewManager(client),
		realtime.NewManager(cfg.RealtimeEndpoint(), dialer),
		chat.NewDirectory(),
		client)
	c.API = client

	if cfg.Archive.Enabled {
		path, err := cfg.ArchivePath()
		if err != nil {
			return nil, err
		}
		archive, err := storage.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open transcript archive: %w", err)
		}
		c.Archive = archive
	}

	return c, nil
}

// NewContext wires the given pieces together. Exposed separately from
// New so tests can substitute the transport and backend.
func NewContext(cfg *config.Config, sess *session.Manager, rt *realtime.Manager, dir *chat.Directory, backend Backend) *Context {
	c := &Context{
		Config:    cfg,
		Session:   sess,
		Realtime:  rt,
		Directory: dir,
		backend:   backend,
		limiter:   rate.NewLimiter(rate.Limit(cfg.Chat.SendRatePerSec), cfg.Chat.SendBurst),
		maxLen:    cfg.Chat.MaxMessageLen,
	}
	c.wire()
	return c
}

// wire connects session transitions to the connection and directory,
// and realtime events to the directory.
func (c *Context) wire() {
	// Identity drives everything downstream. On any identity change the
	// directory is cleared first so nothing from the previous session
	// leaks, then the connection is reconciled.
	lastID := ""
	c.cancels = append(c.cancels, c.Session.Subscribe(func(snap session.Snapshot) {
		id := ""
		if snap.Identity != nil {
			id = snap.Identity.ID
		}
		if id == lastID {
			return
		}
		lastID = id

		c.Directory.Reset()
		c.Directory.SetSelf(id)
		if err := c.Realtime.Apply(context.Background(), snap.Identity); err != nil {
			log.Printf("app: realtime connect failed: %v", err)
		}
	}))

	// A freshly opened connection asks for the room directory once.
	c.Realtime.SetStateHandler(func(status realtime.Status) {
		if status.State == realtime.StateOpen {
			if err := c.Realtime.EmitFetchRooms(); err != nil {
				log.Printf("app: fetch-rooms emit failed: %v", err)
			}
		}
		c.notifyState(status)
	})

	c.cancels = append(c.cancels, c.Realtime.Subscribe(realtime.EventRooms, func(data json.RawMessage) {
		rooms, err := realtime.DecodeRooms(data)
		if err != nil {
			log.Printf("app: %v", err)
			return
		}
		c.Directory.ApplyRoomList(rooms)
	}))

	c.cancels = append(c.cancels, c.Realtime.Subscribe(realtime.EventChatUnlocked, func(data json.RawMessage) {
		unlocked, err := realtime.DecodeChatUnlocked(data)
		if err != nil {
			log.Printf("app: %v", err)
			return
		}
		c.Directory.ApplyChatUnlocked(unlocked.Users, unlocked.Room)
	}))

	c.cancels = append(c.cancels, c.Realtime.Subscribe(realtime.EventMessage, func(data json.RawMessage) {
		msg, err := realtime.DecodeMessage(data)
		if err != nil {
			log.Printf("app: %v", err)
			return
		}
		c.Directory.AppendInbound(msg)
	}))
}

// Teardown shuts the context down: subscriptions cancelled, connection
// closed, archive flushed and closed.
func (c *Context) Teardown(ctx context.Context) error {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil

	c.Realtime.Close()

	if c.Archive != nil {
		if err := c.Archive.ArchiveDirectory(ctx, c.Directory.Rooms()); err != nil {
			log.Printf("app: transcript archive failed: %v", err)
		}
		return c.Archive.Close()
	}
	return nil
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Send validates, transmits, and optimistically appends an outbound
// message to the counterpart's room. The append happens only after the
// frame was handed to the transport, but no acknowledgment is awaited;
// a send that fails later still shows as sent.
func (c *Context) Send(counterpartID, text string) (model.Message, error) {
	identity := c.Session.Identity()
	if identity == nil {
		return model.Message{}, ErrSignedOut
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return model.Message{}, ErrEmptyMessage
	}
	if c.maxLen > 0 && len(trimmed) > c.maxLen {
		return model.Message{}, ErrMessageTooLong
	}

	key := model.RoomKey(identity.ID, counterpartID)
	if _, ok := c.Directory.Room(key); !ok {
		return model.Message{}, ErrNoRoom
	}

	if !c.limiter.Allow() {
		return model.Message{}, ErrRateLimited
	}

	msg := model.NewOutbound(identity.ID, counterpartID, trimmed)
	if err := c.Realtime.EmitMessage(msg); err != nil {
		return model.Message{}, err
	}
	c.Directory.AppendOutbound(msg)
	return msg, nil
}

// FetchHistory loads a room's full transcript from the server and
// replaces the local log. A response that arrives after the identity
// changed is discarded so it cannot repopulate a reset directory.
func (c *Context) FetchHistory(ctx context.Context, roomKey string) error {
	generation := c.Session.Generation()

	messages, err := c.backend.RoomHistory(ctx, roomKey)
	if err != nil {
		return err
	}

	if c.Session.Generation() != generation {
		log.Printf("app: discarding stale history for %q", roomKey)
		return nil
	}
	c.Directory.SetHistory(roomKey, messages)
	return nil
}

// Unmatch dissolves the match server-side and retracts the counterpart's
// room locally once the server confirms.
func (c *Context) Unmatch(ctx context.Context, counterpartID string) error {
	if err := c.backend.Unmatch(ctx, counterpartID); err != nil {
		return err
	}
	c.Directory.RemoveByCounterpart(counterpartID)
	return nil
}

// ArchiveNow snapshots every room to the local archive immediately.
func (c *Context) ArchiveNow(ctx context.Context) error {
	if c.Archive == nil {
		return errors.New("archiving is disabled")
	}
	return c.Archive.ArchiveDirectory(ctx, c.Directory.Rooms())
}
