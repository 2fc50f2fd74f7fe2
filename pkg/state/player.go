package state

// playerFromPayload builds a player from a full player object carried
// by snapshot and respawn events. A payload without a name is not a
// valid player and yields nil.
func playerFromPayload(m map[string]any) *Player {
	if m == nil {
		return nil
	}
	name := getString(m, "name")
	if name == "" {
		return nil
	}
	p := &Player{Name: name}
	if b, ok := getBool(m, "in_combat"); ok {
		p.InCombat = b
	}
	if b, ok := getBool(m, "dead"); ok {
		p.Dead = b
	}
	if b, ok := getBool(m, "mortally_wounded"); ok {
		p.MortallyWounded = b
	}
	if b, ok := getBool(m, "respawning"); ok {
		p.Respawning = b
	}
	if b, ok := getBool(m, "delirious"); ok {
		p.Delirious = b
	}
	if b, ok := getBool(m, "delirium_respawning"); ok {
		p.DeliriumRespawning = b
	}
	if stats, ok := getMap(m, "stats"); ok {
		p.Stats = mergeStats(nil, stats)
	}
	return p
}
