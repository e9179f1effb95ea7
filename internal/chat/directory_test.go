// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/jeranaias/kindred-tui/internal/model"
)

func descriptor(roomName, counterpartName string) model.RoomDescriptor {
	desc := model.RoomDescriptor{RoomName: roomName}
	desc.ToName.Name = counterpartName
	return desc
}

func entry(counterpartID, roomName, counterpartName string) model.RoomListEntry {
	return model.RoomListEntry{UserID: counterpartID, Room: descriptor(roomName, counterpartName)}
}

func TestApplyRoomListIdempotent(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")

	list := []model.RoomListEntry{
		entry("u2", "u1-u2", "Ada"),
		entry("u3", "u1-u3", "Cal"),
	}
	d.ApplyRoomList(list)
	if d.Len() != 2 {
		t.Fatalf("Len = %d, want 2", d.Len())
	}

	// A message in a room must survive a replayed snapshot.
	d.AppendInbound(model.Message{From: "u2", To: "u1", Body: "hi"})

	d.ApplyRoomList(list)
	if d.Len() != 2 {
		t.Errorf("replay changed Len to %d", d.Len())
	}
	room, _ := d.Room("u1-u2")
	if len(room.Messages) != 1 {
		t.Errorf("replay dropped messages, log = %v", room.Messages)
	}
}

func TestApplyRoomListOrderIndependent(t *testing.T) {
	a := NewDirectory()
	a.SetSelf("u1")
	a.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada"), entry("u3", "u1-u3", "Cal")})

	b := NewDirectory()
	b.SetSelf("u1")
	b.ApplyRoomList([]model.RoomListEntry{entry("u3", "u1-u3", "Cal"), entry("u2", "u1-u2", "Ada")})

	for _, key := range []string{"u1-u2", "u1-u3"} {
		ra, okA := a.Room(key)
		rb, okB := b.Room(key)
		if !okA || !okB {
			t.Fatalf("room %q missing (a=%v b=%v)", key, okA, okB)
		}
		if ra.CounterpartID != rb.CounterpartID {
			t.Errorf("room %q counterpart differs: %q vs %q", key, ra.CounterpartID, rb.CounterpartID)
		}
	}
}

func TestCounterpartTakenFromEntry(t *testing.T) {
	// The counterpart id comes from the snapshot entry, never from
	// parsing the room key: ids may themselves contain dashes.
	tests := []struct {
		name     string
		userID   string
		roomName string
	}{
		{"self first in key", "u2", "u1-u2"},
		{"self second in key", "u0", "u0-u1"},
		{"dashed id", "user-42", "u1-user-42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDirectory()
			d.SetSelf("u1")
			d.ApplyRoomList([]model.RoomListEntry{entry(tt.userID, tt.roomName, "X")})
			room, ok := d.Room(tt.roomName)
			if !ok {
				t.Fatal("room not inserted")
			}
			if room.CounterpartID != tt.userID {
				t.Errorf("counterpart = %q, want %q", room.CounterpartID, tt.userID)
			}
		})
	}
}

func TestChatUnlockedInsertsRoom(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")

	desc := descriptor("u1-u3", "Cal")
	desc.ToName.Avatar.URL = "/c.png"
	d.ApplyChatUnlocked([]string{"u1", "u3"}, desc)

	room, ok := d.Room("u1-u3")
	if !ok {
		t.Fatal("room not inserted")
	}
	if room.CounterpartID != "u3" {
		t.Errorf("counterpart = %q, want u3", room.CounterpartID)
	}
	if room.Counterpart.Name != "Cal" || room.Counterpart.Avatar.URL != "/c.png" {
		t.Errorf("display = %+v", room.Counterpart)
	}

	// A duplicate unlock must not reset the room.
	d.AppendInbound(model.Message{From: "u3", To: "u1", Body: "hey"})
	d.ApplyChatUnlocked([]string{"u1", "u3"}, desc)
	room, _ = d.Room("u1-u3")
	if len(room.Messages) != 1 {
		t.Error("duplicate unlock reset the message log")
	}
}

func TestAppendInboundSelfEchoFiltered(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})

	out := model.NewOutbound("u1", "u2", "hello")
	d.AppendOutbound(out)

	// The server echoes the outbound message back.
	if d.AppendInbound(model.Message{From: "u1", To: "u2", Body: "hello", RoomKey: "u1-u2"}) {
		t.Error("self-authored inbound must be dropped")
	}

	room, _ := d.Room("u1-u2")
	if len(room.Messages) != 1 {
		t.Errorf("log length = %d, want 1 (optimistic copy only)", len(room.Messages))
	}
}

func TestAppendInboundOrphanDropped(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")

	if d.AppendInbound(model.Message{From: "u2", To: "u1", Body: "hi", RoomKey: "u1-u2"}) {
		t.Error("orphan message must be dropped")
	}
	if d.Len() != 0 {
		t.Error("orphan message must not create a room")
	}
}

func TestAppendInboundDerivesRoomKey(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})

	// No explicit room on the wire; the key comes from the participants.
	if !d.AppendInbound(model.Message{From: "u2", To: "u1", Body: "hi"}) {
		t.Fatal("message with derivable room key was dropped")
	}
	room, _ := d.Room("u1-u2")
	if len(room.Messages) != 1 {
		t.Errorf("log length = %d, want 1", len(room.Messages))
	}
}

func TestAppendOrderIsLogOrder(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})

	for _, body := range []string{"m1", "m2", "m3"} {
		d.AppendOutbound(model.NewOutbound("u1", "u2", body))
	}

	room, _ := d.Room("u1-u2")
	if len(room.Messages) != 3 {
		t.Fatalf("log length = %d, want 3", len(room.Messages))
	}
	for i, want := range []string{"m1", "m2", "m3"} {
		if room.Messages[i].Body != want {
			t.Errorf("log[%d] = %q, want %q", i, room.Messages[i].Body, want)
		}
	}
}

func TestSetHistoryReplacesWholesale(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})

	d.AppendOutbound(model.NewOutbound("u1", "u2", "a"))
	d.AppendOutbound(model.NewOutbound("u1", "u2", "b"))

	history := []model.Message{
		{From: "u2", To: "u1", Body: "x"},
		{From: "u1", To: "u2", Body: "y"},
		{From: "u2", To: "u1", Body: "z"},
	}
	if !d.SetHistory("u1-u2", history) {
		t.Fatal("SetHistory returned false for existing room")
	}

	room, _ := d.Room("u1-u2")
	if len(room.Messages) != 3 {
		t.Fatalf("log length = %d, want 3 (overwrite, not merge)", len(room.Messages))
	}
	for i, want := range []string{"x", "y", "z"} {
		if room.Messages[i].Body != want {
			t.Errorf("log[%d] = %q, want %q", i, room.Messages[i].Body, want)
		}
	}

	if d.SetHistory("u1-u9", nil) {
		t.Error("SetHistory must report false for unknown rooms")
	}
}

func TestRemoveByCounterpart(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada"), entry("u3", "u1-u3", "Cal")})

	if !d.RemoveByCounterpart("u2") {
		t.Fatal("RemoveByCounterpart returned false for existing room")
	}
	if _, ok := d.Room("u1-u2"); ok {
		t.Error("room still present after removal")
	}
	if d.Len() != 1 {
		t.Errorf("Len = %d, want 1", d.Len())
	}
	if d.RemoveByCounterpart("u2") {
		t.Error("second removal must report false")
	}
}

func TestResetClearsEverything(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})
	d.AppendOutbound(model.NewOutbound("u1", "u2", "hello"))

	d.Reset()

	if d.Len() != 0 {
		t.Errorf("Len = %d after reset, want 0", d.Len())
	}
	if d.Self() != "" {
		t.Error("identity tag must be cleared on reset")
	}
	if len(d.Rooms()) != 0 {
		t.Error("Rooms() must be empty after reset")
	}
}

func TestRoomsInsertionOrder(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u3", "u1-u3", "Cal")})
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})

	rooms := d.Rooms()
	if len(rooms) != 2 {
		t.Fatalf("len = %d, want 2", len(rooms))
	}
	if rooms[0].Key != "u1-u3" || rooms[1].Key != "u1-u2" {
		t.Errorf("order = [%s, %s], want insertion order", rooms[0].Key, rooms[1].Key)
	}
}

func TestSnapshotsAreIsolated(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")
	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})
	d.AppendOutbound(model.NewOutbound("u1", "u2", "one"))

	room, _ := d.Room("u1-u2")
	room.Messages[0].Body = "tampered"

	fresh, _ := d.Room("u1-u2")
	if fresh.Messages[0].Body != "one" {
		t.Error("snapshot mutation leaked into the directory")
	}
}

func TestChangeHandlerFires(t *testing.T) {
	d := NewDirectory()
	d.SetSelf("u1")

	var fires int
	d.SetChangeHandler(func() { fires++ })

	d.ApplyRoomList([]model.RoomListEntry{entry("u2", "u1-u2", "Ada")})
	d.AppendOutbound(model.NewOutbound("u1", "u2", "hello"))
	d.Reset()

	if fires != 3 {
		t.Errorf("change handler fired %d times, want 3", fires)
	}
}
