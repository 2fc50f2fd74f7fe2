package state

import (
	"reflect"
	"testing"
)

func TestRoomFromPayload(t *testing.T) {
	tests := []struct {
		name     string
		payload  map[string]any
		expected *Room
	}{
		{
			name:     "nil payload",
			payload:  nil,
			expected: nil,
		},
		{
			name:     "missing id",
			payload:  map[string]any{"name": "The Plaza"},
			expected: nil,
		},
		{
			name: "metadata only defaults occupants empty",
			payload: map[string]any{
				"id":          "room1",
				"name":        "The Plaza",
				"description": "A wide cobbled square.",
				"exits":       map[string]any{"north": "room2"},
			},
			expected: &Room{
				ID:          "room1",
				Name:        "The Plaza",
				Description: "A wide cobbled square.",
				Exits:       map[string]string{"north": "room2"},
				Players:     []string{},
				Occupants:   []string{},
			},
		},
		{
			name: "occupants are players plus npcs",
			payload: map[string]any{
				"id":      "room1",
				"players": []string{"Armitage"},
				"npcs":    []string{"ghoul"},
			},
			expected: &Room{
				ID:            "room1",
				Players:       []string{"Armitage"},
				NPCs:          []string{"ghoul"},
				Occupants:     []string{"Armitage", "ghoul"},
				OccupantCount: 2,
			},
		},
		{
			name: "legacy flat occupant list is authoritative",
			payload: map[string]any{
				"id":             "room1",
				"players":        []string{"Armitage"},
				"occupants":      []string{"X", "Y"},
				"occupant_count": 2,
			},
			expected: &Room{
				ID:            "room1",
				Players:       []string{"Armitage"},
				Occupants:     []string{"X", "Y"},
				OccupantCount: 2,
			},
		},
		{
			name: "legacy list without count uses its length",
			payload: map[string]any{
				"id":        "room1",
				"occupants": []string{"X", "Y", "Z"},
			},
			expected: &Room{
				ID:            "room1",
				Players:       []string{},
				Occupants:     []string{"X", "Y", "Z"},
				OccupantCount: 3,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roomFromPayload(tt.payload)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("roomFromPayload() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestDeriveSnapshotRoom_KeepsOccupantsFromEarlierDelta(t *testing.T) {
	existing := &Room{
		ID:            "room1",
		Players:       []string{"A", "B"},
		Occupants:     []string{"A", "B"},
		OccupantCount: 2,
	}
	payload := map[string]any{"id": "room1", "name": "The Plaza"}

	got := deriveSnapshotRoom(payload, existing)
	if got.Name != "The Plaza" {
		t.Errorf("expected metadata from the snapshot, got name %q", got.Name)
	}
	if !reflect.DeepEqual(got.Occupants, []string{"A", "B"}) || got.OccupantCount != 2 {
		t.Errorf("expected occupants carried over, got %v (count %d)", got.Occupants, got.OccupantCount)
	}
}

func TestDeriveSnapshotRoom_PayloadOccupantsWin(t *testing.T) {
	existing := &Room{ID: "room1", Players: []string{"Stale"}, Occupants: []string{"Stale"}, OccupantCount: 1}
	payload := map[string]any{"id": "room1", "players": []string{"Fresh"}}

	got := deriveSnapshotRoom(payload, existing)
	if !reflect.DeepEqual(got.Occupants, []string{"Fresh"}) {
		t.Errorf("expected payload occupants to win, got %v", got.Occupants)
	}
}

func TestDeriveSnapshotRoom_DifferentRoomDropsOldOccupants(t *testing.T) {
	existing := &Room{ID: "room1", Players: []string{"A"}, Occupants: []string{"A"}, OccupantCount: 1}
	payload := map[string]any{"id": "room2", "name": "The Crypt"}

	got := deriveSnapshotRoom(payload, existing)
	if got.ID != "room2" || len(got.Occupants) != 0 {
		t.Errorf("expected a fresh room2 with no occupants, got %+v", got)
	}
}

func TestDeriveAuthoritativeRoom_NeverMerges(t *testing.T) {
	// Rule 2 intentionally ignores the existing room: this event is
	// emitted precisely to override stale occupant views.
	payload := map[string]any{"id": "room1", "players": []any{}, "npcs": []any{}}
	got := deriveAuthoritativeRoom(payload)
	if got == nil || len(got.Occupants) != 0 || got.OccupantCount != 0 {
		t.Errorf("expected empty occupants from empty authoritative payload, got %+v", got)
	}
}

func TestDeriveRoomUpdate(t *testing.T) {
	existing := &Room{
		ID:            "room1",
		Name:          "Old Name",
		Players:       []string{"A"},
		NPCs:          []string{"cat"},
		Occupants:     []string{"A", "cat"},
		OccupantCount: 2,
	}

	t.Run("no existing room synthesizes from payload", func(t *testing.T) {
		got := deriveRoomUpdate(map[string]any{"id": "room1", "name": "X"}, nil)
		if got == nil || got.ID != "room1" || got.Name != "X" {
			t.Fatalf("unexpected room: %+v", got)
		}
		if len(got.Occupants) != 0 {
			t.Errorf("expected empty occupants, got %v", got.Occupants)
		}
	})

	t.Run("same room keeps current occupants when payload has none", func(t *testing.T) {
		got := deriveRoomUpdate(map[string]any{"id": "room1", "name": "New Name"}, existing)
		if got.Name != "New Name" {
			t.Errorf("expected new metadata, got %q", got.Name)
		}
		if !reflect.DeepEqual(got.Occupants, []string{"A", "cat"}) {
			t.Errorf("expected occupants kept, got %v", got.Occupants)
		}
	})

	t.Run("same room with fresh occupant data wins", func(t *testing.T) {
		got := deriveRoomUpdate(map[string]any{
			"id":      "room1",
			"players": []string{"B"},
		}, existing)
		if !reflect.DeepEqual(got.Occupants, []string{"B"}) || got.OccupantCount != 1 {
			t.Errorf("expected incoming occupants to win, got %v (count %d)", got.Occupants, got.OccupantCount)
		}
	})

	t.Run("different room discards all prior occupants", func(t *testing.T) {
		got := deriveRoomUpdate(map[string]any{"id": "room2", "name": "Elsewhere"}, existing)
		if got.ID != "room2" {
			t.Fatalf("expected room2, got %q", got.ID)
		}
		if len(got.Players) != 0 || got.NPCs != nil || len(got.Occupants) != 0 || got.OccupantCount != 0 {
			t.Errorf("expected occupants cleared on room change, got %+v", got)
		}
	})

	t.Run("payload without id is no change", func(t *testing.T) {
		if got := deriveRoomUpdate(map[string]any{"name": "X"}, existing); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})
}

func TestDeriveOccupants(t *testing.T) {
	t.Run("mismatched room id is discarded", func(t *testing.T) {
		existing := &Room{ID: "room1"}
		if got := deriveOccupants(map[string]any{"players": []string{"A"}}, "room2", existing); got != nil {
			t.Errorf("expected nil for stale delta, got %+v", got)
		}
	})

	t.Run("no room known synthesizes a placeholder", func(t *testing.T) {
		got := deriveOccupants(map[string]any{
			"players": []string{"A", "B"},
			"npcs":    []string{},
			"count":   2,
		}, "room1", nil)
		if got == nil {
			t.Fatal("expected a placeholder room")
		}
		if got.ID != "room1" || got.Name != "" || got.Description != "" {
			t.Errorf("placeholder should carry only id and occupants, got %+v", got)
		}
		if !reflect.DeepEqual(got.Occupants, []string{"A", "B"}) || got.OccupantCount != 2 {
			t.Errorf("unexpected occupants: %v (count %d)", got.Occupants, got.OccupantCount)
		}
	})

	t.Run("structured fields win over legacy flat list", func(t *testing.T) {
		got := deriveOccupants(map[string]any{
			"players":   []string{"A"},
			"occupants": []string{"X", "Y"},
		}, "room1", nil)
		if !reflect.DeepEqual(got.Occupants, []string{"A"}) {
			t.Errorf("expected structured data to win, got %v", got.Occupants)
		}
	})

	t.Run("players and npcs are independently additive", func(t *testing.T) {
		existing := &Room{
			ID:      "room1",
			Players: []string{"A"},
			NPCs:    []string{"ghoul"},
		}
		got := deriveOccupants(map[string]any{"players": []string{"A", "B"}}, "room1", existing)
		if !reflect.DeepEqual(got.Players, []string{"A", "B"}) {
			t.Errorf("unexpected players: %v", got.Players)
		}
		if !reflect.DeepEqual(got.NPCs, []string{"ghoul"}) {
			t.Errorf("npcs should carry over unchanged, got %v", got.NPCs)
		}
		if !reflect.DeepEqual(got.Occupants, []string{"A", "B", "ghoul"}) || got.OccupantCount != 3 {
			t.Errorf("unexpected occupants: %v (count %d)", got.Occupants, got.OccupantCount)
		}
	})

	t.Run("legacy flat list with count", func(t *testing.T) {
		got := deriveOccupants(map[string]any{
			"occupants": []string{"X", "Y"},
			"count":     2,
		}, "room1", nil)
		if !reflect.DeepEqual(got.Occupants, []string{"X", "Y"}) || got.OccupantCount != 2 {
			t.Errorf("unexpected occupants: %v (count %d)", got.Occupants, got.OccupantCount)
		}
	})

	t.Run("payload without occupant fields is no change", func(t *testing.T) {
		if got := deriveOccupants(map[string]any{"count": 3}, "room1", nil); got != nil {
			t.Errorf("expected nil, got %+v", got)
		}
	})

	t.Run("existing room is not mutated", func(t *testing.T) {
		existing := &Room{ID: "room1", Players: []string{"A"}, Occupants: []string{"A"}, OccupantCount: 1}
		_ = deriveOccupants(map[string]any{"players": []string{"B", "C"}}, "room1", existing)
		if !reflect.DeepEqual(existing.Players, []string{"A"}) {
			t.Errorf("existing room mutated: %+v", existing)
		}
	})
}
