package state

// Room derivation. One pure function per room-affecting event
// category; each takes the event payload and the previously-known room
// (or nil) and returns a new room or nil for "no change". None of them
// mutate their inputs.

// roomFromPayload builds a room directly from a full room object, as
// carried by game-state snapshots and authoritative room-state events.
// Players and NPCs default to empty; Occupants and OccupantCount are
// their concatenation unless the payload supplies a legacy flat
// occupant list, which is then authoritative together with its count.
func roomFromPayload(m map[string]any) *Room {
	if m == nil {
		return nil
	}
	id := getString(m, "id")
	if id == "" {
		id = getString(m, "room_id")
	}
	if id == "" {
		return nil
	}
	r := &Room{
		ID:          id,
		Name:        getString(m, "name"),
		Description: getString(m, "description"),
		Exits:       getStringMap(m, "exits"),
		Players:     []string{},
	}
	if players, ok := getStringSlice(m, "players"); ok {
		r.Players = players
	}
	if npcs, ok := getStringSlice(m, "npcs"); ok {
		r.NPCs = npcs
	}
	if flat, ok := getStringSlice(m, "occupants"); ok {
		// Legacy wire shape: the flat list and its own count win.
		r.Occupants = flat
		if count, ok := getInt(m, "occupant_count"); ok {
			r.OccupantCount = count
		} else {
			r.OccupantCount = len(flat)
		}
		return r
	}
	r.Occupants = concatOccupants(r.Players, r.NPCs)
	r.OccupantCount = len(r.Occupants)
	return r
}

// deriveSnapshotRoom applies a full game-state snapshot's room payload
// (rule 1), then resolves the occupant race against the existing room:
// when the snapshot carries no occupant data for the room the player
// is already in, occupants learned from an earlier occupant delta are
// kept rather than clobbered with an empty list.
func deriveSnapshotRoom(m map[string]any, existing *Room) *Room {
	r := roomFromPayload(m)
	if r == nil {
		return nil
	}
	if existing == nil || existing.ID != r.ID {
		return r
	}
	if payloadHasOccupants(m) {
		return r
	}
	r.Players = existing.Players
	r.NPCs = existing.NPCs
	r.Occupants = existing.Occupants
	r.OccupantCount = existing.OccupantCount
	return r
}

// deriveAuthoritativeRoom applies a room-state replacement (rule 2).
// The server emits this event precisely to override any stale occupant
// view, so the existing room is never consulted, even when the new
// payload's occupant fields are empty.
func deriveAuthoritativeRoom(m map[string]any) *Room {
	return roomFromPayload(m)
}

// deriveRoomUpdate applies an incremental room update (rule 3).
func deriveRoomUpdate(m map[string]any, existing *Room) *Room {
	if m == nil {
		return nil
	}
	incoming := roomFromPayload(m)
	if incoming == nil {
		return nil
	}
	if existing == nil {
		// No room known yet: synthesize from whatever the update
		// happens to carry.
		return incoming
	}
	if incoming.ID != existing.ID {
		// The player moved. Prior occupants belong to the old room and
		// are discarded unconditionally; metadata comes from the
		// incoming payload.
		incoming.Players = []string{}
		incoming.NPCs = nil
		incoming.Occupants = []string{}
		incoming.OccupantCount = 0
		return incoming
	}
	// Same room: metadata merges in, and the current occupant view is
	// kept unless the update itself carries fresh occupant data. An
	// "entering room" update can arrive bearing the correct new
	// occupants, which must not lose to the stale list.
	if occupantsEmpty(incoming) {
		incoming.Players = existing.Players
		incoming.NPCs = existing.NPCs
		incoming.Occupants = existing.Occupants
		incoming.OccupantCount = existing.OccupantCount
	}
	return incoming
}

// deriveOccupants applies an occupant-only delta (rule 4) scoped to
// roomID. A delta for a room other than the current one is discarded
// as stale, except when no room is known at all: then a minimal
// placeholder room is synthesized so the occupant information survives
// until the fuller room update arrives. The sequence-number guard
// lives in the projector, which owns the per-room high-water marks.
func deriveOccupants(m map[string]any, roomID string, existing *Room) *Room {
	if roomID == "" {
		return nil
	}
	if existing != nil && existing.ID != roomID {
		return nil
	}

	players, hasPlayers := getStringSlice(m, "players")
	npcs, hasNPCs := getStringSlice(m, "npcs")
	flat, hasFlat := getStringSlice(m, "occupants")

	var r Room
	if existing != nil {
		r = *existing
	} else {
		r = Room{ID: roomID, Players: []string{}}
	}

	switch {
	case hasPlayers || hasNPCs:
		// Structured shape. The two fields are independently additive:
		// one missing from the event means that side of the list is
		// carried over unchanged.
		if hasPlayers {
			r.Players = players
		}
		if hasNPCs {
			r.NPCs = npcs
		}
		r.Occupants = concatOccupants(r.Players, r.NPCs)
		if count, ok := getInt(m, "count"); ok {
			r.OccupantCount = count
		} else {
			r.OccupantCount = len(r.Occupants)
		}
	case hasFlat:
		// Legacy shape: single flat list with its own count.
		r.Occupants = flat
		if count, ok := getInt(m, "count"); ok {
			r.OccupantCount = count
		} else {
			r.OccupantCount = len(flat)
		}
	default:
		return nil
	}
	return &r
}

// payloadHasOccupants reports whether a room payload carries any
// occupant information of either wire shape.
func payloadHasOccupants(m map[string]any) bool {
	if players, ok := getStringSlice(m, "players"); ok && len(players) > 0 {
		return true
	}
	if npcs, ok := getStringSlice(m, "npcs"); ok && len(npcs) > 0 {
		return true
	}
	if flat, ok := getStringSlice(m, "occupants"); ok && len(flat) > 0 {
		return true
	}
	return false
}

func occupantsEmpty(r *Room) bool {
	return len(r.Players) == 0 && len(r.NPCs) == 0 && len(r.Occupants) == 0
}

func concatOccupants(players, npcs []string) []string {
	out := make([]string, 0, len(players)+len(npcs))
	out = append(out, players...)
	out = append(out, npcs...)
	return out
}
