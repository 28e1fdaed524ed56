package database

import (
	"database/sql"
	"time"
)

// User represents a registered bot user keyed by Telegram chat ID.
// JoinedAt is set once at registration. TotalMessages and LastActive
// move together, one increment per recorded chat exchange.
type User struct {
	ChatID        int64          `db:"chat_id"`
	Username      string         `db:"username"`
	FirstName     string         `db:"first_name"`
	JoinedAt      time.Time      `db:"joined_at"`
	PhoneNumber   sql.NullString `db:"phone_number"`
	TotalMessages int64          `db:"total_messages"`
	LastActive    time.Time      `db:"last_active"`
}

// ChatRecord is one free-text exchange between a user and the bot.
// Append-only.
type ChatRecord struct {
	ID          uint      `db:"id"`
	ChatID      int64     `db:"chat_id"`
	UserMessage string    `db:"user_message"`
	BotResponse string    `db:"bot_response"`
	Timestamp   time.Time `db:"timestamp"`
}

// FileRecord is metadata for one analyzed attachment, with a truncated
// description of the analysis result. Append-only.
type FileRecord struct {
	ID          uint      `db:"id"`
	ChatID      int64     `db:"chat_id"`
	Filename    string    `db:"filename"`
	Description string    `db:"description"`
	Timestamp   time.Time `db:"timestamp"`
}
