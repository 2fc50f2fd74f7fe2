package chat

import "strings"

// Classify inspects a command-response text and assigns the message
// type and channel it should be displayed under. The server's command
// responses carry no structural category, so classification is textual:
// quoted speech patterns map to chat channels, combat verbs to the
// combat category, everything else is system text on the game channel.
func Classify(text string) (MessageType, Channel) {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case strings.Contains(t, " whispers"), strings.HasPrefix(t, "you whisper"):
		return MessageTypeWhisper, ChannelWhisper
	case strings.Contains(t, " shouts"), strings.HasPrefix(t, "you shout"):
		return MessageTypeShout, ChannelShout
	case strings.Contains(t, " says"), strings.HasPrefix(t, "you say"):
		return MessageTypeChat, ChannelSay
	case containsCombatVerb(t):
		return MessageTypeCombat, ChannelGame
	default:
		return MessageTypeSystem, ChannelGame
	}
}

var combatVerbs = []string{"attacks", "strikes", "hits", "slashes", "bites", "claws", "damage"}

func containsCombatVerb(t string) bool {
	for _, v := range combatVerbs {
		if strings.Contains(t, v) {
			return true
		}
	}
	return false
}
