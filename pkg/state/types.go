package state

import (
	"fmt"

	"github.com/jwebster45206/mythos-client/pkg/chat"
)

// Player is the current character's identity and mutable stats. It is
// replaced wholesale by authoritative snapshot events and patched
// field-by-field by incremental updates; either way a new value is
// built, never mutated in place.
type Player struct {
	Name               string         `json:"name"`
	InCombat           bool           `json:"in_combat"`
	Dead               bool           `json:"dead,omitempty"`
	MortallyWounded    bool           `json:"mortally_wounded,omitempty"`
	Respawning         bool           `json:"respawning,omitempty"`
	Delirious          bool           `json:"delirious,omitempty"`
	DeliriumRespawning bool           `json:"delirium_respawning,omitempty"`
	Stats              map[string]any `json:"stats,omitempty"`
}

// clone returns a copy of the player with its own stats map.
func (p *Player) clone() *Player {
	if p == nil {
		return nil
	}
	cp := *p
	if p.Stats != nil {
		cp.Stats = make(map[string]any, len(p.Stats))
		for k, v := range p.Stats {
			cp.Stats[k] = v
		}
	}
	return &cp
}

// statPair reads a current/max stat pair out of the stats map.
func (p *Player) statPair(cur, max string) (int, int, bool) {
	if p == nil || p.Stats == nil {
		return 0, 0, false
	}
	c, okC := toInt(p.Stats[cur])
	m, okM := toInt(p.Stats[max])
	if !okC {
		return 0, 0, false
	}
	if !okM {
		m = c
	}
	return c, m, true
}

// Vitality returns the current/max vitality points, if known.
func (p *Player) Vitality() (int, int, bool) {
	return p.statPair("vitality", "max_vitality")
}

// Lucidity returns the current/max lucidity, if known.
func (p *Player) Lucidity() (int, int, bool) {
	return p.statPair("lucidity", "max_lucidity")
}

// Posture returns the player's posture stat, if set.
func (p *Player) Posture() string {
	if p == nil || p.Stats == nil {
		return ""
	}
	s, _ := p.Stats["posture"].(string)
	return s
}

// Room is the current room and who is in it. Occupants is the
// display-ready union of Players and NPCs, except when a legacy flat
// occupant list from the wire is authoritative for the event that
// built it.
type Room struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Description   string            `json:"description"`
	Exits         map[string]string `json:"exits,omitempty"`
	Players       []string          `json:"players"`
	NPCs          []string          `json:"npcs,omitempty"`
	Occupants     []string          `json:"occupants"`
	OccupantCount int               `json:"occupant_count"`
}

// MythosTime is the in-game calendar/clock state, rebuilt whole from
// periodic tick events that carry the calendar fields.
type MythosTime struct {
	Year   int    `json:"year"`
	Month  string `json:"month"`
	Day    int    `json:"day"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
}

// String formats the clock for display, e.g. "14:05, 3 Depths of Nith, 1923".
func (mt *MythosTime) String() string {
	if mt == nil {
		return ""
	}
	return fmt.Sprintf("%02d:%02d, %d %s, %d", mt.Hour, mt.Minute, mt.Day, mt.Month, mt.Year)
}

// FollowRequest is a pending social "follow" request from another
// player, awaiting accept or decline.
type FollowRequest struct {
	From      string `json:"from"`
	Timestamp string `json:"timestamp,omitempty"`
}

// GameState is the consumer-facing snapshot derived from the event
// log. It is never mutated: each projection step builds a new value,
// or returns the identical previous pointer when an event is a no-op,
// so consumers can detect change by reference equality.
type GameState struct {
	Player                    *Player            `json:"player"`
	Room                      *Room              `json:"room"`
	Messages                  []chat.ChatMessage `json:"messages"`
	CommandHistory            []string           `json:"command_history"`
	LoginGracePeriodActive    bool               `json:"login_grace_period_active"`
	LoginGracePeriodRemaining float64            `json:"login_grace_period_remaining"`
	MythosTime                *MythosTime        `json:"mythos_time"`
	LastQuarterHourChime      *int               `json:"last_quarter_hour_for_chime"`
	PendingFollowRequest      *FollowRequest     `json:"pending_follow_request,omitempty"`
	FollowingTarget           string             `json:"following_target,omitempty"`

	// LastOccupantsSeq is the per-room high-water mark of applied
	// occupant-delta sequence numbers, used to reject duplicate and
	// out-of-order redeliveries.
	LastOccupantsSeq map[string]int64 `json:"last_room_occupants_seq,omitempty"`
}

// Initial returns the well-defined starting state the projection
// driver folds from.
func Initial() *GameState {
	return &GameState{
		Messages:       make([]chat.ChatMessage, 0),
		CommandHistory: make([]string, 0),
	}
}

// clone returns a shallow copy of the state. Handlers replace fields
// on the copy; shared slices and maps are copied on write by the
// helpers that modify them.
func (gs *GameState) clone() *GameState {
	cp := *gs
	return &cp
}

// WithCommandHistory returns a copy of the state carrying the given
// command history. The history is owned by the command-input
// collaborator and threaded through the projected state for display;
// the projector itself never touches it. Returns the same state when
// the history is already identical.
func (gs *GameState) WithCommandHistory(commands []string) *GameState {
	if len(commands) == len(gs.CommandHistory) {
		same := true
		for i := range commands {
			if commands[i] != gs.CommandHistory[i] {
				same = false
				break
			}
		}
		if same {
			return gs
		}
	}
	next := gs.clone()
	next.CommandHistory = make([]string, len(commands))
	copy(next.CommandHistory, commands)
	return next
}

// withOccupantsSeq returns a copy of the high-water-mark map with one
// entry updated.
func (gs *GameState) withOccupantsSeq(roomID string, seq int64) map[string]int64 {
	out := make(map[string]int64, len(gs.LastOccupantsSeq)+1)
	for k, v := range gs.LastOccupantsSeq {
		out[k] = v
	}
	out[roomID] = seq
	return out
}
