package models

import "time"

type ChatStatus string

const (
	ChatStatusUnlocked ChatStatus = "unlocked"
	ChatStatusLocked   ChatStatus = "locked"
	ChatStatusClosed   ChatStatus = "closed"
)

// ParseChatStatus maps a backend status string onto the tri-state enum.
// Anything unrecognized is treated as unlocked.
func ParseChatStatus(s string) ChatStatus {
	switch ChatStatus(s) {
	case ChatStatusLocked:
		return ChatStatusLocked
	case ChatStatusClosed:
		return ChatStatusClosed
	default:
		return ChatStatusUnlocked
	}
}

// CanSend reports whether the send control is enabled for this status.
func (s ChatStatus) CanSend() bool {
	return s != ChatStatusLocked && s != ChatStatusClosed
}

type Chat struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}
