package event

import (
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Type
	}{
		{"exact match", "game_state", TypeGameState},
		{"uppercase", "GAME_STATE", TypeGameState},
		{"mixed case with whitespace", "  Room_Occupants \n", TypeRoomOccupants},
		{"unknown type", "totally_new_event", TypeUnknown},
		{"empty string", "", TypeUnknown},
		{"whitespace only", "   ", TypeUnknown},
		{"command response", "command_response", TypeCommandResponse},
		{"follow cleared", "Follow_Request_Cleared", TypeFollowRequestClear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLog_AppendPreservesOrder(t *testing.T) {
	log := NewLog()
	log.Append(
		GameEvent{EventType: "game_state", SequenceNumber: 1},
		GameEvent{EventType: "room_update", SequenceNumber: 2},
	)
	log.Append(GameEvent{EventType: "room_occupants", SequenceNumber: 3})

	snap := log.Snapshot()
	if len(snap) != 3 {
		t.Fatalf("expected 3 events, got %d", len(snap))
	}
	for i, want := range []string{"game_state", "room_update", "room_occupants"} {
		if snap[i].EventType != want {
			t.Errorf("event %d: expected %q, got %q", i, want, snap[i].EventType)
		}
	}
}

func TestLog_SnapshotIsACopy(t *testing.T) {
	log := NewLog()
	log.Append(GameEvent{EventType: "game_state"})

	snap := log.Snapshot()
	snap[0].EventType = "mutated"

	if log.Snapshot()[0].EventType != "game_state" {
		t.Error("mutating a snapshot must not affect the log")
	}
}

func TestLog_Since(t *testing.T) {
	log := NewLog()
	for i := 0; i < 5; i++ {
		log.Append(GameEvent{SequenceNumber: int64(i)})
	}

	tail := log.Since(3)
	if len(tail) != 2 {
		t.Fatalf("expected 2 events, got %d", len(tail))
	}
	if tail[0].SequenceNumber != 3 || tail[1].SequenceNumber != 4 {
		t.Errorf("unexpected tail: %+v", tail)
	}

	if got := log.Since(10); got != nil {
		t.Errorf("Since past the end should be nil, got %v", got)
	}
	if got := log.Since(-1); len(got) != 5 {
		t.Errorf("negative index should return the whole log, got %d events", len(got))
	}
}

func TestLog_Clear(t *testing.T) {
	log := NewLog()
	log.Append(GameEvent{EventType: "game_state"}, GameEvent{EventType: "room_update"})
	log.Clear()

	if log.Len() != 0 {
		t.Errorf("expected empty log after clear, got %d events", log.Len())
	}
	if len(log.Snapshot()) != 0 {
		t.Error("snapshot after clear should be empty")
	}
}

func TestLog_ConcurrentAppendAndRead(t *testing.T) {
	log := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			log.Append(GameEvent{SequenceNumber: int64(n)})
		}(i)
		go func() {
			defer wg.Done()
			_ = log.Snapshot()
		}()
	}
	wg.Wait()

	if log.Len() != 10 {
		t.Errorf("expected 10 events, got %d", log.Len())
	}
}
