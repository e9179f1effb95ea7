// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package realtime

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// DefaultHandshakeTimeout bounds the websocket upgrade handshake.
const DefaultHandshakeTimeout = 10 * time.Second

// Socket is the minimal surface of a websocket connection the manager
// needs. Tests substitute an in-memory implementation.
type Socket interface {
	// ReadMessage blocks until the next frame arrives.
	ReadMessage() ([]byte, error)

	// WriteMessage sends one text frame. Safe for concurrent use.
	WriteMessage(data []byte) error

	// Close tears down the connection. Any blocked ReadMessage returns
	// with an error.
	Close() error
}

// Dialer establishes a Socket for a URL.
type Dialer interface {
	Dial(ctx context.Context, url string) (Socket, error)
}

// =============================================================================
// GORILLA TRANSPORT
// =============================================================================

// WebsocketDialer dials real websocket connections.
type WebsocketDialer struct {
	// HandshakeTimeout bounds the upgrade handshake.
	// Zero means DefaultHandshakeTimeout.
	HandshakeTimeout time.Duration
}

// Dial implements Dialer.
func (d *WebsocketDialer) Dial(ctx context.Context, url string) (Socket, error) {
	timeout := d.HandshakeTimeout
	if timeout <= 0 {
		timeout = DefaultHandshakeTimeout
	}

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, resp, err := dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, err
	}
	return &gorillaSocket{conn: conn}, nil
}

// gorillaSocket adapts *websocket.Conn to Socket.
//
// gorilla/websocket permits at most one concurrent writer, so writes
// are serialized here.
type gorillaSocket struct {
	conn *websocket.Conn

	writeMu sync.Mutex
}

func (s *gorillaSocket) ReadMessage() ([]byte, error) {
	_, data, err := s.conn.ReadMessage()
	return data, err
}

func (s *gorillaSocket) WriteMessage(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *gorillaSocket) Close() error {
	// Best-effort close frame so the server can distinguish a clean
	// shutdown from a dropped connection.
	s.writeMu.Lock()
	deadline := time.Now().Add(time.Second)
	s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	s.writeMu.Unlock()

	return s.conn.Close()
}
