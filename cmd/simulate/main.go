package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/d20"
	"github.com/redis/go-redis/v9"

	"github.com/jwebster45206/mythos-client/internal/session"
	"github.com/jwebster45206/mythos-client/pkg/event"
)

// Generates a synthetic event feed for a session: login snapshot, a
// room, and a short combat resolved with d20 actors. Frames are
// published to the session's feed channel, or written to a file with
// -out for offline replay.

func main() {
	redisURL := flag.String("redis", "redis://localhost:6379", "Redis URL")
	sessionArg := flag.String("session", "", "session UUID (random if empty)")
	playerArg := flag.String("player", "", "derive the session UUID from a player name, as the console does")
	prefix := flag.String("channel", "game-events", "feed channel prefix")
	out := flag.String("out", "", "write events to a JSON file instead of publishing")
	seed := flag.Int64("seed", 0, "random seed (time-based if 0)")
	delay := flag.Duration("delay", 250*time.Millisecond, "delay between published frames")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	sessionID := uuid.New()
	switch {
	case *sessionArg != "":
		parsed, err := uuid.Parse(*sessionArg)
		if err != nil {
			log.Fatal("Invalid session UUID:", err)
		}
		sessionID = parsed
	case *playerArg != "":
		sessionID = session.IDForPlayer(*playerArg)
	}

	events, err := buildCombatScript(rng)
	if err != nil {
		log.Fatal("Failed to build event script:", err)
	}

	if *out != "" {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			log.Fatal("Failed to marshal events:", err)
		}
		if err := os.WriteFile(*out, data, 0644); err != nil {
			log.Fatal("Failed to write file:", err)
		}
		fmt.Printf("Wrote %d events to %s (seed %d)\n", len(events), *out, *seed)
		return
	}

	opts, err := redis.ParseURL(*redisURL)
	if err != nil {
		log.Fatal("Failed to parse Redis URL:", err)
	}
	client := redis.NewClient(opts)
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatal("Failed to connect to Redis:", err)
	}

	channel := fmt.Sprintf("%s:%s", *prefix, sessionID.String())
	fmt.Printf("Publishing %d events to %s (seed %d)\n", len(events), channel, *seed)

	for _, e := range events {
		frame, err := json.Marshal(e)
		if err != nil {
			log.Fatal("Failed to marshal event:", err)
		}
		if err := client.Publish(ctx, channel, frame).Err(); err != nil {
			log.Fatal("Failed to publish event:", err)
		}
		fmt.Printf("  %3d %s\n", e.SequenceNumber, e.EventType)
		time.Sleep(*delay)
	}

	fmt.Println("Done. Point the console at this session to watch the fight:")
	fmt.Printf("  SESSION_ID=%s go run ./cmd/console\n", sessionID)
}

// combatant pairs a d20 actor with its remaining HP. The actor carries
// the static sheet; HP is tracked here so it can reach zero.
type combatant struct {
	actor *d20.Actor
	hp    int
}

// buildCombatScript resolves one fight between two d20 actors and
// records it as the event stream a server would emit.
func buildCombatScript(rng *rand.Rand) ([]event.GameEvent, error) {
	playerActor, err := d20.NewActor("ArkanWolfshade").
		WithHP(30).
		WithAC(14).
		WithAttributes(map[string]int{"strength": 8, "dexterity": 6}).
		Build()
	if err != nil {
		return nil, err
	}

	npcActor, err := d20.NewActor("nightgaunt").
		WithHP(18).
		WithAC(12).
		WithAttributes(map[string]int{"strength": 6, "dexterity": 10}).
		Build()
	if err != nil {
		return nil, err
	}

	player := &combatant{actor: playerActor, hp: playerActor.MaxHP()}
	npc := &combatant{actor: npcActor, hp: npcActor.MaxHP()}

	var seq int64
	clock := time.Now().UTC()
	next := func(eventType, roomID string, data map[string]any) event.GameEvent {
		seq++
		clock = clock.Add(time.Second)
		return event.GameEvent{
			EventType:      eventType,
			Timestamp:      clock.Format(time.RFC3339),
			SequenceNumber: seq,
			RoomID:         roomID,
			Data:           data,
		}
	}

	const roomID = "enchanted_wood_3"
	events := []event.GameEvent{
		next("game_state", "", map[string]any{
			"player": map[string]any{
				"name": "ArkanWolfshade",
				"stats": map[string]any{
					"vitality":     player.hp,
					"max_vitality": player.actor.MaxHP(),
					"lucidity":     20,
					"max_lucidity": 20,
					"posture":      "standing",
				},
			},
			"room": map[string]any{
				"id":          roomID,
				"name":        "The Enchanted Wood",
				"description": "Phosphorescent fungi light a path between immense oaks.",
				"exits":       map[string]any{"north": "enchanted_wood_4", "south": "enchanted_wood_2"},
				"players":     []any{"ArkanWolfshade"},
				"npcs":        []any{"a nightgaunt"},
			},
		}),
		next("room_message", roomID, map[string]any{
			"message": "A nightgaunt drops silently from the canopy.",
		}),
		next("combat_start", roomID, nil),
	}

	// Alternate attacks until one side drops. Attack beats AC on a
	// d20 plus the attacker's dexterity; damage is 1dStrength.
	playerTurn := true
	for player.hp > 0 && npc.hp > 0 {
		if playerTurn {
			events = append(events, attackEvents(rng, next, roomID, player, npc, true)...)
		} else {
			events = append(events, attackEvents(rng, next, roomID, npc, player, false)...)
		}
		playerTurn = !playerTurn
	}

	if npc.hp <= 0 {
		events = append(events,
			next("npc_death", roomID, map[string]any{"npc_name": "the nightgaunt"}),
		)
	} else {
		events = append(events,
			next("combat_death", roomID, map[string]any{"name": "ArkanWolfshade"}),
		)
	}

	events = append(events,
		next("combat_end", roomID, nil),
		next("game_tick", "", map[string]any{
			"year": 1923, "month": "Depths of Nith", "day": 3, "hour": 14, "minute": 15,
		}),
	)
	return events, nil
}

// attackEvents rolls one attack and returns the wire events it produces.
func attackEvents(rng *rand.Rand, next func(string, string, map[string]any) event.GameEvent, roomID string, attacker, defender *combatant, byPlayer bool) []event.GameEvent {
	dex, _ := attacker.actor.Attribute("dexterity")
	if roll := rng.Intn(20) + 1 + dex; roll < defender.actor.AC() {
		text := "The nightgaunt swoops past you, claws raking empty air."
		if byPlayer {
			text = "You swing at the nightgaunt and miss."
		}
		return []event.GameEvent{next("room_message", roomID, map[string]any{"message": text})}
	}

	strength, _ := attacker.actor.Attribute("strength")
	damage := rng.Intn(strength) + 1
	defender.hp -= damage
	if defender.hp < 0 {
		defender.hp = 0
	}

	if byPlayer {
		return []event.GameEvent{next("player_attack_npc", roomID, map[string]any{
			"npc_name": "the nightgaunt",
			"action":   "slash",
			"damage":   damage,
		})}
	}
	return []event.GameEvent{
		next("npc_attack_player", roomID, map[string]any{
			"npc_name":     "The nightgaunt",
			"action":       "claws",
			"damage":       damage,
			"vitality":     defender.hp,
			"max_vitality": defender.actor.MaxHP(),
		}),
		next("vitality_update", roomID, map[string]any{"value": defender.hp}),
	}
}
