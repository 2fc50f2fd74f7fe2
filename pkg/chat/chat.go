package chat

import "time"

// MessageType is the semantic category of a display message.
type MessageType string

const (
	MessageTypeSystem  MessageType = "system"
	MessageTypeChat    MessageType = "chat"
	MessageTypeWhisper MessageType = "whisper"
	MessageTypeShout   MessageType = "shout"
	MessageTypeEmote   MessageType = "emote"
	MessageTypeCombat  MessageType = "combat"
)

// Channel is the display grouping a message belongs to.
type Channel string

const (
	ChannelWhisper Channel = "whisper"
	ChannelShout   Channel = "shout"
	ChannelEmote   Channel = "emote"
	ChannelParty   Channel = "party"
	ChannelTell    Channel = "tell"
	ChannelSystem  Channel = "system"
	ChannelGame    Channel = "game"
	ChannelLocal   Channel = "local"
	ChannelSay     Channel = "say"
)

// BubbleType is the terminal chat-bubble styling key, derived from the
// channel via a fixed lookup.
type BubbleType string

const (
	BubbleSay     BubbleType = "say"
	BubbleWhisper BubbleType = "whisper"
	BubbleShout   BubbleType = "shout"
	BubbleEmote   BubbleType = "emote"
)

// bubbleByChannel resolves a channel to its bubble styling in O(1).
// A lookup table rather than a switch so new channels are one line.
var bubbleByChannel = map[Channel]BubbleType{
	ChannelWhisper: BubbleWhisper,
	ChannelShout:   BubbleShout,
	ChannelEmote:   BubbleEmote,
	ChannelParty:   BubbleSay,
	ChannelTell:    BubbleWhisper,
	ChannelSystem:  BubbleSay,
	ChannelGame:    BubbleSay,
	ChannelLocal:   BubbleSay,
	ChannelSay:     BubbleSay,
}

// BubbleFor returns the chat-bubble styling for a channel, defaulting
// to BubbleSay for anything unrecognized.
func BubbleFor(ch Channel) BubbleType {
	if b, ok := bubbleByChannel[ch]; ok {
		return b
	}
	return BubbleSay
}

// ChatMessage is one line of the human-visible transcript. Timestamp is
// the sender-assigned ISO-8601 wall-clock string, kept as-is from the
// wire.
type ChatMessage struct {
	Text        string      `json:"text"`
	Timestamp   string      `json:"timestamp"`
	IsHTML      bool        `json:"is_html"`
	MessageType MessageType `json:"message_type"`
	Channel     Channel     `json:"channel"`
	Type        BubbleType  `json:"type"`
}

// Options are the optional fields of NewMessage.
type Options struct {
	IsHTML      bool
	MessageType MessageType
	Channel     Channel
}

// NewMessage normalizes arbitrary event text into the canonical message
// shape. MessageType defaults to system and Channel to game when unset;
// Type is always derived from the channel.
func NewMessage(text, timestamp string, opts Options) ChatMessage {
	mt := opts.MessageType
	if mt == "" {
		mt = MessageTypeSystem
	}
	ch := opts.Channel
	if ch == "" {
		ch = ChannelGame
	}
	return ChatMessage{
		Text:        text,
		Timestamp:   timestamp,
		IsHTML:      opts.IsHTML,
		MessageType: mt,
		Channel:     ch,
		Type:        BubbleFor(ch),
	}
}

// Append returns a new slice with msg appended. The input slice is
// never mutated.
func Append(messages []ChatMessage, msg ChatMessage) []ChatMessage {
	out := make([]ChatMessage, len(messages)+1)
	copy(out, messages)
	out[len(messages)] = msg
	return out
}

// movementDedupWindow bounds how close together two identical movement
// lines must be for the second to be treated as a transport duplicate.
const movementDedupWindow = 2000 * time.Millisecond

// AppendMovement appends msg unless the immediately preceding message
// has identical text and a timestamp within the dedup window, in which
// case the duplicate is suppressed. Only the adjacent message is
// checked, keeping the guard O(1); the transport sometimes emits
// enter/leave notices twice in quick succession but never interleaved.
func AppendMovement(messages []ChatMessage, msg ChatMessage) []ChatMessage {
	if len(messages) > 0 {
		prev := messages[len(messages)-1]
		if prev.Text == msg.Text && withinWindow(prev.Timestamp, msg.Timestamp) {
			return messages
		}
	}
	return Append(messages, msg)
}

// withinWindow reports whether two ISO-8601 timestamps are within the
// movement dedup window of each other. Unparseable stamps count as
// outside the window: dropping a real message is worse than showing an
// occasional duplicate.
func withinWindow(a, b string) bool {
	ta, err := time.Parse(time.RFC3339, a)
	if err != nil {
		return false
	}
	tb, err := time.Parse(time.RFC3339, b)
	if err != nil {
		return false
	}
	d := tb.Sub(ta)
	if d < 0 {
		d = -d
	}
	return d <= movementDedupWindow
}
