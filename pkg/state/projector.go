package state

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/mythos-client/pkg/chat"
	"github.com/jwebster45206/mythos-client/pkg/event"
)

// tickMessageInterval is how many tick sequence numbers pass between
// visible "[Tick N]" marker messages.
const tickMessageInterval = 23

// defaultDisconnectText is announced when a disconnect notice carries
// no message of its own.
const defaultDisconnectText = "Your connection to the dreamlands has been severed."

// chimeText is the quarter-hour clock announcement.
const chimeText = "The great clock chimes the quarter hour."

// Projector folds GameEvents into GameState. It is stateless itself;
// the logger is only used for warning-level diagnostics on malformed
// payloads and recovered handler panics.
type Projector struct {
	logger *slog.Logger
}

// NewProjector creates a projector. A nil logger is replaced with the
// slog default.
func NewProjector(logger *slog.Logger) *Projector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{logger: logger}
}

// Project folds an entire event log from the initial state. It is the
// entry point consumers use to obtain current state from a log, and is
// deterministic: the same log always yields a deep-equal state.
func (p *Projector) Project(events []event.GameEvent) *GameState {
	return p.ProjectFrom(Initial(), events)
}

// ProjectFrom folds events onto a previously projected state. Folding
// new events onto a cached state is equivalent to re-projecting the
// whole log.
func (p *Projector) ProjectFrom(gs *GameState, events []event.GameEvent) *GameState {
	for _, e := range events {
		gs = p.Apply(gs, e)
	}
	return gs
}

// Apply projects a single event onto prev and returns the next state.
// It is pure and total: malformed payloads and unknown event types
// return prev unchanged (the identical pointer, so downstream
// consumers can change-detect by reference), and a panicking handler
// is recovered into a no-op so one bad event can never halt the fold.
func (p *Projector) Apply(prev *GameState, e event.GameEvent) (next *GameState) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("Event handler panicked; event ignored",
				"event_type", e.EventType,
				"sequence_number", e.SequenceNumber,
				"panic", r)
			next = prev
		}
	}()

	switch e.Type() {
	case event.TypeGameState:
		return p.applyGameState(prev, e)
	case event.TypeRoomState:
		return p.applyRoomState(prev, e)
	case event.TypeRoomUpdate:
		return p.applyRoomUpdate(prev, e)
	case event.TypeRoomOccupants:
		return p.applyRoomOccupants(prev, e)
	case event.TypePlayerUpdate:
		return p.applyPlayerUpdate(prev, e)
	case event.TypeCombatStart:
		return p.applyCombatFlag(prev, true)
	case event.TypeCombatEnd:
		return p.applyCombatFlag(prev, false)
	case event.TypeRespawn:
		return p.applyRespawn(prev, e, false)
	case event.TypeDeliriumRespawn:
		return p.applyRespawn(prev, e, true)
	case event.TypePlayerEnteredGame:
		return p.applyGamePresence(prev, e, "%s has entered the game.")
	case event.TypePlayerLeftGame:
		return p.applyGamePresence(prev, e, "%s has left the game.")
	case event.TypePlayerEnteredRoom:
		return p.applyRoomPresence(prev, e, "%s enters the room.")
	case event.TypePlayerLeftRoom:
		return p.applyRoomPresence(prev, e, "%s leaves the room.")
	case event.TypeCommandResponse:
		return p.applyCommandResponse(prev, e)
	case event.TypeChatMessage:
		return p.applyMessage(prev, e, chat.MessageTypeChat, chat.ChannelSay)
	case event.TypeRoomMessage:
		return p.applyMessage(prev, e, chat.MessageTypeChat, chat.ChannelLocal)
	case event.TypeSystemMessage:
		return p.applyMessage(prev, e, chat.MessageTypeSystem, chat.ChannelSystem)
	case event.TypeNPCAttackPlayer:
		return p.applyNPCAttack(prev, e)
	case event.TypePlayerAttackNPC:
		return p.applyPlayerAttack(prev, e)
	case event.TypeNPCDeath:
		return p.applyNPCDeath(prev, e)
	case event.TypeCombatDeath:
		return p.applyCombatDeath(prev, e)
	case event.TypeVitalityUpdate:
		return p.applyStatChange(prev, e, "vitality")
	case event.TypeLucidityUpdate:
		return p.applyStatChange(prev, e, "lucidity")
	case event.TypeDisconnect:
		return p.applyDisconnect(prev, e)
	case event.TypeGameTick:
		return p.applyGameTick(prev, e)
	case event.TypeFollowRequest:
		return p.applyFollowRequest(prev, e)
	case event.TypeFollowUpdate:
		return p.applyFollowUpdate(prev, e)
	case event.TypeFollowRequestClear:
		return p.applyFollowRequestCleared(prev)
	default:
		// Not on the allow-list. Unknown tags are never dispatched;
		// forward compatibility with server additions.
		p.logger.Warn("Ignoring unknown event type", "event_type", e.EventType)
		return prev
	}
}

// applyGameState handles the full game-state snapshot push.
func (p *Projector) applyGameState(prev *GameState, e event.GameEvent) *GameState {
	next := prev.clone()
	changed := false

	if raw, present := peekField(e.Data, "player"); present {
		if player := playerFromPayload(raw); player != nil {
			next.Player = player
			changed = true
		} else {
			p.logger.Warn("Game state snapshot carried an invalid player payload",
				"sequence_number", e.SequenceNumber)
		}
	}

	if roomPayload, ok := getMap(e.Data, "room"); ok {
		if room := deriveSnapshotRoom(roomPayload, prev.Room); room != nil {
			next.Room = room
			changed = true
		}
	}

	if active, ok := getBool(e.Data, "login_grace_period_active"); ok {
		next.LoginGracePeriodActive = active
		changed = true
	}
	if remaining, ok := getNumber(e.Data, "login_grace_period_remaining"); ok {
		next.LoginGracePeriodRemaining = remaining
		changed = true
	}
	if following := getString(e.Data, "following"); following != "" {
		next.FollowingTarget = following
		changed = true
	}

	if !changed {
		return prev
	}
	return next
}

// peekField distinguishes "field absent" from "field present but not a
// valid object", so a snapshot with a malformed player leaves the
// current player alone while logging, instead of clearing it.
func peekField(m map[string]any, key string) (map[string]any, bool) {
	if m == nil {
		return nil, false
	}
	raw, present := m[key]
	if !present {
		return nil, false
	}
	obj, _ := asMap(raw)
	return obj, true
}

// applyRoomState handles the authoritative room replacement. Nothing
// else in the state changes.
func (p *Projector) applyRoomState(prev *GameState, e event.GameEvent) *GameState {
	payload, ok := getMap(e.Data, "room")
	if !ok {
		payload = e.Data
	}
	room := deriveAuthoritativeRoom(payload)
	if room == nil {
		return prev
	}
	next := prev.clone()
	next.Room = room
	return next
}

// applyRoomUpdate handles the incremental room update.
func (p *Projector) applyRoomUpdate(prev *GameState, e event.GameEvent) *GameState {
	payload, ok := getMap(e.Data, "room")
	if !ok {
		payload = e.Data
	}
	room := deriveRoomUpdate(payload, prev.Room)
	if room == nil {
		return prev
	}
	next := prev.clone()
	next.Room = room
	return next
}

// applyRoomOccupants handles occupant-only deltas, guarded by the
// per-room sequence high-water mark. Deltas at or below the mark are
// duplicates or out-of-order stragglers and are discarded; this is
// expected steady state under an at-least-once transport, not an
// error.
func (p *Projector) applyRoomOccupants(prev *GameState, e event.GameEvent) *GameState {
	if e.RoomID == "" {
		return prev
	}
	if hwm, seen := prev.LastOccupantsSeq[e.RoomID]; seen && e.SequenceNumber <= hwm {
		return prev
	}
	room := deriveOccupants(e.Data, e.RoomID, prev.Room)
	if room == nil {
		return prev
	}
	next := prev.clone()
	next.Room = room
	next.LastOccupantsSeq = prev.withOccupantsSeq(e.RoomID, e.SequenceNumber)
	return next
}

// applyPlayerUpdate shallow-merges in_combat and deep-merges stats
// into the current player.
func (p *Projector) applyPlayerUpdate(prev *GameState, e event.GameEvent) *GameState {
	if prev.Player == nil {
		return prev
	}
	inCombat, hasCombat := getBool(e.Data, "in_combat")
	stats, hasStats := getMap(e.Data, "stats")
	if !hasCombat && !hasStats {
		return prev
	}
	next := prev.clone()
	player := prev.Player.clone()
	if hasCombat {
		player.InCombat = inCombat
	}
	if hasStats {
		player.Stats = mergeStats(player.Stats, stats)
	}
	next.Player = player
	return next
}

// applyCombatFlag toggles the player's in-combat flag.
func (p *Projector) applyCombatFlag(prev *GameState, inCombat bool) *GameState {
	if prev.Player == nil || prev.Player.InCombat == inCombat {
		return prev
	}
	next := prev.clone()
	player := prev.Player.clone()
	player.InCombat = inCombat
	next.Player = player
	return next
}

// applyRespawn clears the status flags for the respawn variant and
// replaces player/room wholesale when the event carries fresh objects.
func (p *Projector) applyRespawn(prev *GameState, e event.GameEvent, delirium bool) *GameState {
	next := prev.clone()
	changed := false

	if payload, ok := getMap(e.Data, "player"); ok {
		if player := playerFromPayload(payload); player != nil {
			next.Player = player
			changed = true
		}
	}
	if payload, ok := getMap(e.Data, "room"); ok {
		if room := roomFromPayload(payload); room != nil {
			next.Room = room
			changed = true
		}
	}

	if next.Player != nil {
		player := next.Player.clone()
		var flagsSet bool
		if delirium {
			flagsSet = player.Delirious || player.DeliriumRespawning
			player.Delirious = false
			player.DeliriumRespawning = false
		} else {
			flagsSet = player.Dead || player.MortallyWounded || player.Respawning
			player.Dead = false
			player.MortallyWounded = false
			player.Respawning = false
		}
		if flagsSet {
			next.Player = player
			changed = true
		}
	}

	if !changed {
		return prev
	}
	return next
}

// presenceText extracts the announcement text for enter/leave events:
// the supplied message wins, else one is synthesized from the player
// name. Empty, whitespace-only, or non-string fields mean there is
// nothing to announce.
func presenceText(data map[string]any, format string) string {
	if msg := strings.TrimSpace(getString(data, "message")); msg != "" {
		return msg
	}
	name := strings.TrimSpace(getString(data, "player_name"))
	if name == "" {
		name = strings.TrimSpace(getString(data, "name"))
	}
	if name == "" {
		return ""
	}
	return fmt.Sprintf(format, name)
}

// applyGamePresence announces entered/left-game events with a plain
// append.
func (p *Projector) applyGamePresence(prev *GameState, e event.GameEvent, format string) *GameState {
	text := presenceText(e.Data, format)
	if text == "" {
		return prev
	}
	next := prev.clone()
	next.Messages = chat.Append(prev.Messages, chat.NewMessage(text, e.Timestamp, chat.Options{}))
	return next
}

// applyRoomPresence announces entered/left-room events through the
// movement-dedup append path.
func (p *Projector) applyRoomPresence(prev *GameState, e event.GameEvent, format string) *GameState {
	text := presenceText(e.Data, format)
	if text == "" {
		return prev
	}
	messages := chat.AppendMovement(prev.Messages, chat.NewMessage(text, e.Timestamp, chat.Options{}))
	if len(messages) == len(prev.Messages) {
		// Suppressed as an adjacent transport duplicate.
		return prev
	}
	next := prev.clone()
	next.Messages = messages
	return next
}

// applyCommandResponse handles the richest event type: display text
// (or a distinct game-log line), an optional embedded authoritative
// room payload for request/response room transitions, and an optional
// embedded player patch. The three effects are independent.
func (p *Projector) applyCommandResponse(prev *GameState, e event.GameEvent) *GameState {
	next := prev.clone()
	changed := false

	suppress, _ := getBool(e.Data, "suppress_chat")
	text := strings.TrimSpace(getString(e.Data, "response"))
	switch {
	case !suppress && text != "" && !isRoomNameEcho(text, prev.Room):
		mt, ch := chat.Classify(text)
		next.Messages = chat.Append(prev.Messages,
			chat.NewMessage(text, e.Timestamp, chat.Options{MessageType: mt, Channel: ch}))
		changed = true
	default:
		if gameLog := strings.TrimSpace(getString(e.Data, "game_log")); gameLog != "" {
			next.Messages = chat.Append(prev.Messages,
				chat.NewMessage(gameLog, e.Timestamp, chat.Options{Channel: chat.ChannelGame}))
			changed = true
		}
	}

	if embedded, ok := getMap(e.Data, "room_state"); ok {
		payload, ok := getMap(embedded, "room")
		if !ok {
			payload = embedded
		}
		if room := deriveAuthoritativeRoom(payload); room != nil {
			next.Room = room
			changed = true
		}
	}

	if patch, ok := getMap(e.Data, "player_update"); ok && next.Player != nil {
		if stats, ok := getMap(patch, "stats"); ok {
			player := next.Player.clone()
			player.Stats = mergeStats(player.Stats, stats)
			next.Player = player
			changed = true
		}
	}

	if !changed {
		return prev
	}
	return next
}

// isRoomNameEcho reports whether a command response is merely the bare
// name of the current room echoed back, which is elided from chat.
// This is a textual heuristic carried over from the wire protocol's
// behavior: short single-line text without room-detail markers that
// exactly equals the room's display name.
func isRoomNameEcho(text string, room *Room) bool {
	if room == nil || room.Name == "" {
		return false
	}
	t := strings.TrimSpace(text)
	if len(t) >= 100 || strings.Contains(t, "\n") {
		return false
	}
	if strings.Contains(t, "Exits:") || strings.Contains(t, "Description:") {
		return false
	}
	return t == room.Name
}

// applyMessage normalizes chat/room/system message events. The payload
// may override the channel; empty or non-string text is a no-op.
func (p *Projector) applyMessage(prev *GameState, e event.GameEvent, mt chat.MessageType, ch chat.Channel) *GameState {
	text := getString(e.Data, "message")
	if text == "" {
		text = getString(e.Data, "text")
	}
	if strings.TrimSpace(text) == "" {
		return prev
	}
	if override := getString(e.Data, "channel"); override != "" {
		ch = chat.Channel(override)
	}
	isHTML, _ := getBool(e.Data, "is_html")
	next := prev.clone()
	next.Messages = chat.Append(prev.Messages,
		chat.NewMessage(text, e.Timestamp, chat.Options{IsHTML: isHTML, MessageType: mt, Channel: ch}))
	return next
}

// appendCombatLog appends a synthesized combat line on the game-log
// channel.
func (p *Projector) appendCombatLog(prev *GameState, text, timestamp string) *GameState {
	next := prev.clone()
	next.Messages = chat.Append(prev.Messages,
		chat.NewMessage(text, timestamp, chat.Options{MessageType: chat.MessageTypeCombat, Channel: chat.ChannelGame}))
	return next
}

// applyNPCAttack synthesizes the NPC-attacks-player combat line, with
// an optional current/max vitality suffix.
func (p *Projector) applyNPCAttack(prev *GameState, e event.GameEvent) *GameState {
	name := strings.TrimSpace(getString(e.Data, "npc_name"))
	damage, ok := getInt(e.Data, "damage")
	if name == "" || !ok {
		return prev
	}
	verb := getString(e.Data, "action")
	if verb == "" {
		verb = "attacks"
	}
	text := fmt.Sprintf("%s %s you for %d damage.", name, verb, damage)
	if cur, okCur := getInt(e.Data, "vitality"); okCur {
		if max, okMax := getInt(e.Data, "max_vitality"); okMax {
			text = fmt.Sprintf("%s (%d/%d)", text, cur, max)
		}
	}
	return p.appendCombatLog(prev, text, e.Timestamp)
}

// applyPlayerAttack synthesizes the player-attacks-NPC combat line.
func (p *Projector) applyPlayerAttack(prev *GameState, e event.GameEvent) *GameState {
	name := strings.TrimSpace(getString(e.Data, "npc_name"))
	damage, ok := getInt(e.Data, "damage")
	if name == "" || !ok {
		return prev
	}
	verb := getString(e.Data, "action")
	if verb == "" {
		verb = "attack"
	}
	text := fmt.Sprintf("You %s %s for %d damage.", verb, name, damage)
	return p.appendCombatLog(prev, text, e.Timestamp)
}

// applyNPCDeath announces an NPC death.
func (p *Projector) applyNPCDeath(prev *GameState, e event.GameEvent) *GameState {
	text := strings.TrimSpace(getString(e.Data, "message"))
	if text == "" {
		name := strings.TrimSpace(getString(e.Data, "npc_name"))
		if name == "" {
			return prev
		}
		text = fmt.Sprintf("%s has been slain.", name)
	}
	return p.appendCombatLog(prev, text, e.Timestamp)
}

// applyCombatDeath announces a generic combat death.
func (p *Projector) applyCombatDeath(prev *GameState, e event.GameEvent) *GameState {
	text := strings.TrimSpace(getString(e.Data, "message"))
	if text == "" {
		name := strings.TrimSpace(getString(e.Data, "name"))
		if name == "" {
			return prev
		}
		text = fmt.Sprintf("%s has died.", name)
	}
	return p.appendCombatLog(prev, text, e.Timestamp)
}

// applyStatChange patches one numeric field on the player's stats.
func (p *Projector) applyStatChange(prev *GameState, e event.GameEvent, stat string) *GameState {
	if prev.Player == nil || prev.Player.Stats == nil {
		return prev
	}
	value, ok := getNumber(e.Data, "value")
	if !ok {
		value, ok = getNumber(e.Data, stat)
	}
	if !ok {
		return prev
	}
	next := prev.clone()
	player := prev.Player.clone()
	player.Stats[stat] = value
	next.Player = player
	return next
}

// applyDisconnect announces a disconnect notice.
func (p *Projector) applyDisconnect(prev *GameState, e event.GameEvent) *GameState {
	text := strings.TrimSpace(getString(e.Data, "message"))
	if text == "" {
		text = defaultDisconnectText
	}
	next := prev.clone()
	next.Messages = chat.Append(prev.Messages, chat.NewMessage(text, e.Timestamp, chat.Options{}))
	return next
}

// applyGameTick handles the periodic tick. Two independent effects,
// both of which may fire on the same event: a calendar payload
// rebuilds MythosTime (chiming at most once per quarter hour), and
// every 23rd sequence number appends a visible tick marker.
func (p *Projector) applyGameTick(prev *GameState, e event.GameEvent) *GameState {
	next := prev.clone()
	changed := false

	if mt, ok := mythosTimeFromPayload(e.Data); ok {
		next.MythosTime = mt
		changed = true
		if mt.Minute%15 == 0 &&
			(prev.LastQuarterHourChime == nil || *prev.LastQuarterHourChime != mt.Minute) {
			minute := mt.Minute
			next.LastQuarterHourChime = &minute
			next.Messages = chat.Append(next.Messages, chat.NewMessage(chimeText, e.Timestamp, chat.Options{}))
		}
	}

	if e.SequenceNumber > 0 && e.SequenceNumber%tickMessageInterval == 0 {
		next.Messages = chat.Append(next.Messages,
			chat.NewMessage(fmt.Sprintf("[Tick %d]", e.SequenceNumber), e.Timestamp, chat.Options{}))
		changed = true
	}

	if !changed {
		return prev
	}
	return next
}

// mythosTimeFromPayload rebuilds the clock when the tick carries the
// full calendar field set.
func mythosTimeFromPayload(m map[string]any) (*MythosTime, bool) {
	year, okYear := getInt(m, "year")
	day, okDay := getInt(m, "day")
	hour, okHour := getInt(m, "hour")
	minute, okMinute := getInt(m, "minute")
	month := getString(m, "month")
	if !okYear || !okDay || !okHour || !okMinute || month == "" {
		return nil, false
	}
	return &MythosTime{Year: year, Month: month, Day: day, Hour: hour, Minute: minute}, true
}

// applyFollowRequest records a pending follow request.
func (p *Projector) applyFollowRequest(prev *GameState, e event.GameEvent) *GameState {
	from := strings.TrimSpace(getString(e.Data, "from"))
	if from == "" {
		return prev
	}
	next := prev.clone()
	next.PendingFollowRequest = &FollowRequest{From: from, Timestamp: e.Timestamp}
	return next
}

// applyFollowUpdate sets or clears who the player is following.
func (p *Projector) applyFollowUpdate(prev *GameState, e event.GameEvent) *GameState {
	target, present := e.Data["following"]
	if !present {
		return prev
	}
	s, _ := target.(string)
	next := prev.clone()
	next.FollowingTarget = s
	return next
}

// applyFollowRequestCleared drops the pending follow request.
func (p *Projector) applyFollowRequestCleared(prev *GameState) *GameState {
	if prev.PendingFollowRequest == nil {
		return prev
	}
	next := prev.clone()
	next.PendingFollowRequest = nil
	return next
}
