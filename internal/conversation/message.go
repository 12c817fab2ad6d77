package conversation

import "time"

// Author tells who wrote a message.
type Author string

const (
	AuthorBot  Author = "bot"
	AuthorUser Author = "user"
)

// Message is one entry of a conversation transcript. Messages are never changed after creation.
type Message struct {
	ID           string
	Author       Author
	Text         string
	Timestamp    time.Time
	Attachment   Attachment
	QuickReplies []string
}

// Outgoing is a bot message scheduled for delivery after Delay.
type Outgoing struct {
	Message Message
	Delay   time.Duration
}
