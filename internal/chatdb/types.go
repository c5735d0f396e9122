package chatdb

import "time"

// Message is a single chat message as produced by the adapter. Immutable;
// SpeakerName is always set after resolution (falling back to SpeakerID or
// the unknown-sender sentinel for empty ids).
type Message struct {
	SpeakerID    string    `json:"speaker_id"`
	SpeakerName  string    `json:"speaker_name"`
	Text         string    `json:"text"`
	Timestamp    time.Time `json:"timestamp"` // zero when the source row had no date
	Conversation string    `json:"conversation,omitempty"`
}

// Reaction is a tapback (Loved, Liked, etc.) attached to another message.
type Reaction struct {
	ReactorID   string    `json:"reactor_id"`
	ReactorName string    `json:"reactor_name"`
	Emoji       string    `json:"emoji,omitempty"`
	Kind        int       `json:"kind"` // associated_message_type, 2000–2005
	TargetText  string    `json:"target_text,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}
