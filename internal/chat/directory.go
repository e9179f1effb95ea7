// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"log"
	"sync"

	"github.com/jeranaias/kindred-tui/internal/model"
)

// =============================================================================
// ROOM DIRECTORY
// =============================================================================

// Directory holds every room the server has confirmed for the current
// identity, keyed by canonical room key. Rooms are never created
// speculatively; insertion is idempotent; apart from an explicit
// per-counterpart removal the directory only shrinks via Reset.
type Directory struct {
	mu sync.Mutex

	self  string
	rooms map[string]*model.Room
	order []string // insertion order, for stable listing

	onChange func()
}

// NewDirectory creates an empty directory.
func NewDirectory() *Directory {
	return &Directory{rooms: make(map[string]*model.Room)}
}

// SetChangeHandler registers fn to run after every mutation.
func (d *Directory) SetChangeHandler(fn func()) {
	d.mu.Lock()
	d.onChange = fn
	d.mu.Unlock()
}

// SetSelf records the current identity's user id. The id drives the
// self-echo filter and chat-unlocked counterpart selection.
func (d *Directory) SetSelf(id string) {
	d.mu.Lock()
	d.self = id
	d.mu.Unlock()
}

// Self returns the current identity's user id.
func (d *Directory) Self() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.self
}

// Reset drops every room and the identity tag. Called whenever the
// identity changes so no conversation leaks across sessions.
func (d *Directory) Reset() {
	d.mu.Lock()
	d.self = ""
	d.rooms = make(map[string]*model.Room)
	d.order = nil
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
}

// =============================================================================
// ROOM INSERTION
// =============================================================================

// ApplyRoomList merges a full directory snapshot from the server. Each
// entry carries the counterpart id alongside its room descriptor.
// Insertion is idempotent: rooms already present keep their message
// logs untouched. Entry order does not affect the final state.
func (d *Directory) ApplyRoomList(entries []model.RoomListEntry) {
	d.mu.Lock()
	for _, entry := range entries {
		d.insertLocked(entry.Room.RoomName, entry.UserID, entry.Room.ToName)
	}
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
}

// ApplyChatUnlocked inserts the room announced by a mutual match. The
// counterpart is whichever participant id is not the current identity.
func (d *Directory) ApplyChatUnlocked(users []string, desc model.RoomDescriptor) {
	d.mu.Lock()
	counterpart := ""
	for _, id := range users {
		if id != d.self {
			counterpart = id
		}
	}
	d.insertLocked(desc.RoomName, counterpart, desc.ToName)
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
}

// insertLocked adds a room if absent. Caller holds d.mu.
func (d *Directory) insertLocked(key, counterpartID string, display model.Counterpart) {
	if key == "" {
		return
	}
	if _, exists := d.rooms[key]; exists {
		return
	}
	d.rooms[key] = &model.Room{
		Key:           key,
		CounterpartID: counterpartID,
		Counterpart:   display,
	}
	d.order = append(d.order, key)
}

// =============================================================================
// MESSAGE APPENDS
// =============================================================================

// AppendInbound appends a server-pushed message to its room's log.
// Messages authored by the current identity are dropped: they are the
// server echoing back an outbound send that is already in the log
// optimistically. Messages for an unknown room are dropped silently;
// a room is never created from a message.
func (d *Directory) AppendInbound(msg model.Message) bool {
	d.mu.Lock()
	if msg.From == d.self {
		d.mu.Unlock()
		return false
	}

	key := msg.RoomKey
	if key == "" {
		key = model.RoomKey(msg.From, msg.To)
	}
	room, exists := d.rooms[key]
	if !exists {
		d.mu.Unlock()
		log.Printf("chat: dropping message for unknown room %q", key)
		return false
	}

	room.Messages = append(room.Messages, msg)
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
	return true
}

// AppendOutbound appends a locally authored message to its room's log,
// optimistically and without waiting for any acknowledgment. No later
// reconciliation happens; a send that failed at the transport still
// shows as sent.
func (d *Directory) AppendOutbound(msg model.Message) bool {
	d.mu.Lock()
	room, exists := d.rooms[msg.RoomKey]
	if !exists {
		d.mu.Unlock()
		log.Printf("chat: dropping outbound message for unknown room %q", msg.RoomKey)
		return false
	}

	room.Messages = append(room.Messages, msg)
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
	return true
}

// SetHistory replaces a room's message log wholesale with the server's
// ordered history. Nothing is merged; local entries are discarded.
func (d *Directory) SetHistory(roomKey string, messages []model.Message) bool {
	d.mu.Lock()
	room, exists := d.rooms[roomKey]
	if !exists {
		d.mu.Unlock()
		return false
	}

	room.Messages = append([]model.Message(nil), messages...)
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
	return true
}

// =============================================================================
// REMOVAL AND LOOKUP
// =============================================================================

// RemoveByCounterpart retracts the room for a counterpart, used when an
// unmatch is confirmed. Returns false when no such room exists.
func (d *Directory) RemoveByCounterpart(counterpartID string) bool {
	d.mu.Lock()
	var key string
	for k, room := range d.rooms {
		if room.CounterpartID == counterpartID {
			key = k
			break
		}
	}
	if key == "" {
		d.mu.Unlock()
		return false
	}

	delete(d.rooms, key)
	for i, k := range d.order {
		if k == key {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	fn := d.onChange
	d.mu.Unlock()
	fire(fn)
	return true
}

// Room returns a snapshot of the room with the given key.
func (d *Directory) Room(key string) (model.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	room, exists := d.rooms[key]
	if !exists {
		return model.Room{}, false
	}
	return snapshot(room), true
}

// RoomByCounterpart returns a snapshot of the room for a counterpart id.
func (d *Directory) RoomByCounterpart(counterpartID string) (model.Room, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, room := range d.rooms {
		if room.CounterpartID == counterpartID {
			return snapshot(room), true
		}
	}
	return model.Room{}, false
}

// Rooms returns snapshots of all rooms in insertion order.
func (d *Directory) Rooms() []model.Room {
	d.mu.Lock()
	defer d.mu.Unlock()
	rooms := make([]model.Room, 0, len(d.order))
	for _, key := range d.order {
		if room, exists := d.rooms[key]; exists {
			rooms = append(rooms, snapshot(room))
		}
	}
	return rooms
}

// Len returns the number of rooms.
func (d *Directory) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.rooms)
}

// snapshot copies a room so callers never share the live message slice.
func snapshot(room *model.Room) model.Room {
	copied := *room
	copied.Messages = append([]model.Message(nil), room.Messages...)
	return copied
}

func fire(fn func()) {
	if fn != nil {
		fn()
	}
}
