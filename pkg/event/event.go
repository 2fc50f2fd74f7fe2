package event

import "strings"

// Type is the normalized tag of a server-pushed event. The server sends
// free-form strings; Normalize maps them onto this closed set before
// dispatch so unknown or malicious tags can never reach a handler.
type Type string

const (
	TypeGameState           Type = "game_state"
	TypeRoomState           Type = "room_state"
	TypeRoomUpdate          Type = "room_update"
	TypeRoomOccupants       Type = "room_occupants"
	TypePlayerUpdate        Type = "player_update"
	TypeCombatStart         Type = "combat_start"
	TypeCombatEnd           Type = "combat_end"
	TypeRespawn             Type = "respawn"
	TypeDeliriumRespawn     Type = "delirium_respawn"
	TypePlayerEnteredGame   Type = "player_entered_game"
	TypePlayerLeftGame      Type = "player_left_game"
	TypePlayerEnteredRoom   Type = "player_entered_room"
	TypePlayerLeftRoom      Type = "player_left_room"
	TypeCommandResponse     Type = "command_response"
	TypeChatMessage         Type = "chat_message"
	TypeRoomMessage         Type = "room_message"
	TypeSystemMessage       Type = "system_message"
	TypeNPCAttackPlayer     Type = "npc_attack_player"
	TypePlayerAttackNPC     Type = "player_attack_npc"
	TypeNPCDeath            Type = "npc_death"
	TypeCombatDeath         Type = "combat_death"
	TypeVitalityUpdate      Type = "vitality_update"
	TypeLucidityUpdate      Type = "lucidity_update"
	TypeDisconnect          Type = "disconnect"
	TypeGameTick            Type = "game_tick"
	TypeFollowRequest       Type = "follow_request"
	TypeFollowUpdate        Type = "follow_update"
	TypeFollowRequestClear  Type = "follow_request_cleared"
	TypeUnknown             Type = ""
)

// knownTypes is the dispatch allow-list. Events whose normalized tag is
// not present here are no-ops in the projector.
var knownTypes = map[Type]struct{}{
	TypeGameState:          {},
	TypeRoomState:          {},
	TypeRoomUpdate:         {},
	TypeRoomOccupants:      {},
	TypePlayerUpdate:       {},
	TypeCombatStart:        {},
	TypeCombatEnd:          {},
	TypeRespawn:            {},
	TypeDeliriumRespawn:    {},
	TypePlayerEnteredGame:  {},
	TypePlayerLeftGame:     {},
	TypePlayerEnteredRoom:  {},
	TypePlayerLeftRoom:     {},
	TypeCommandResponse:    {},
	TypeChatMessage:        {},
	TypeRoomMessage:        {},
	TypeSystemMessage:      {},
	TypeNPCAttackPlayer:    {},
	TypePlayerAttackNPC:    {},
	TypeNPCDeath:           {},
	TypeCombatDeath:        {},
	TypeVitalityUpdate:     {},
	TypeLucidityUpdate:     {},
	TypeDisconnect:         {},
	TypeGameTick:           {},
	TypeFollowRequest:      {},
	TypeFollowUpdate:       {},
	TypeFollowRequestClear: {},
}

// Normalize maps a wire event_type string onto the closed Type set.
// Matching is case-insensitive and ignores surrounding whitespace.
// Tags outside the allow-list normalize to TypeUnknown.
func Normalize(eventType string) Type {
	t := Type(strings.ToLower(strings.TrimSpace(eventType)))
	if _, ok := knownTypes[t]; ok {
		return t
	}
	return TypeUnknown
}

// GameEvent is one immutable server-pushed notification, already
// deserialized from JSON by the transport. Data holds the event-specific
// payload; its schema varies per event type.
type GameEvent struct {
	EventType      string         `json:"event_type"`
	Timestamp      string         `json:"timestamp"` // ISO-8601, sender-assigned
	SequenceNumber int64          `json:"sequence_number"`
	RoomID         string         `json:"room_id,omitempty"`
	Data           map[string]any `json:"data,omitempty"`
}

// Type returns the normalized, allow-listed tag for the event.
func (e GameEvent) Type() Type {
	return Normalize(e.EventType)
}
