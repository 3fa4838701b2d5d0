package models

import "time"

// Message is one chat message inside a match. Immutable once stored;
// history ordering is created_at with the id as tie-break.
type Message struct {
	ID        int64     `db:"id" json:"id"`
	MatchID   int64     `db:"match_id" json:"match_id"`
	SenderID  int64     `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// DeliveredMessage is the websocket payload pushed to live connections of
// both participants after a message has been durably stored.
type DeliveredMessage struct {
	ID         int64     `json:"id"`
	MatchID    int64     `json:"match_id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// InboundMessage is the shape clients write on the chat websocket.
type InboundMessage struct {
	SenderID int64  `json:"sender_id"`
	MatchID  int64  `json:"match_id"`
	Content  string `json:"content"`
}
