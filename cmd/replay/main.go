package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/mythos-client/pkg/event"
	"github.com/jwebster45206/mythos-client/pkg/state"
)

// Replays a recorded event-log file through the projector and prints
// the resulting state. Useful for inspecting captured sessions and for
// checking a server build's event stream against this client.

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <events.json>\n", os.Args[0])
		os.Exit(1)
	}

	events, err := loadEvents(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load events: %v\n", err)
		os.Exit(1)
	}

	unknown := make(map[string]int)
	for _, e := range events {
		if e.Type() == event.TypeUnknown {
			unknown[e.EventType]++
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gs := state.NewProjector(logger).Project(events)

	fmt.Printf("Replayed %d events from %s\n\n", len(events), os.Args[1])

	if gs.Player != nil {
		fmt.Printf("Player: %s", gs.Player.Name)
		if cur, max, ok := gs.Player.Vitality(); ok {
			fmt.Printf("  vitality %d/%d", cur, max)
		}
		if gs.Player.InCombat {
			fmt.Print("  [in combat]")
		}
		if gs.Player.Dead {
			fmt.Print("  [dead]")
		}
		fmt.Println()
	} else {
		fmt.Println("Player: none (no game_state snapshot in log)")
	}

	if gs.Room != nil {
		fmt.Printf("Room:   %s (%s), %d occupants\n", gs.Room.Name, gs.Room.ID, gs.Room.OccupantCount)
	} else {
		fmt.Println("Room:   none")
	}

	if gs.MythosTime != nil {
		fmt.Printf("Time:   %s\n", gs.MythosTime)
	}

	fmt.Printf("\nTranscript (%d messages):\n", len(gs.Messages))
	for _, msg := range gs.Messages {
		fmt.Printf("  [%s] %s\n", msg.MessageType, msg.Text)
	}

	if len(unknown) > 0 {
		fmt.Printf("\nIgnored %d unknown event type(s):\n", len(unknown))
		for name, count := range unknown {
			fmt.Printf("  %q x%d\n", name, count)
		}
	}
}

// loadEvents reads a JSON array of events, or newline-delimited JSON
// objects as captured from the feed.
func loadEvents(filename string) ([]event.GameEvent, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var events []event.GameEvent
	if err := json.Unmarshal(data, &events); err == nil {
		return events, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	for {
		var e event.GameEvent
		if err := dec.Decode(&e); err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("file %s is neither a JSON array nor NDJSON: %w", filename, err)
		}
		events = append(events, e)
	}
	return events, nil
}
