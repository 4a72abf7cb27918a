package model

import "time"

// MessageRef points at a previously received message. It carries just
// enough to re-send the message's content to another chat; the content
// itself stays on the Telegram side.
type MessageRef struct {
	ChatID    int64 `json:"chat_id"`
	MessageID int   `json:"message_id"`
}

// BroadcastReport aggregates the outcome of one full delivery pass over
// the registry. Total always equals Sent + Unsent. The report is handed
// to the initiating operator once and is not persisted.
type BroadcastReport struct {
	Total   int
	Sent    int
	Unsent  int
	Elapsed time.Duration
}
