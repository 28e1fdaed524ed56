package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// UpsertUser registers a user with insert-only defaults. It is a
	// no-op for an existing chat_id: phone_number, counters, and
	// joined_at of a registered user are never overwritten.
	UpsertUser(ctx context.Context, user *User) error

	// SetPhoneNumber sets the phone number on an existing user record.
	// It does not create a record; an unknown chat_id is a logged no-op.
	SetPhoneNumber(ctx context.Context, chatID int64, phoneNumber string) error

	// SaveChatRecord appends one chat exchange and, in the same
	// transaction, increments the user's total_messages and sets
	// last_active to the exchange timestamp.
	SaveChatRecord(ctx context.Context, record *ChatRecord) error

	// SaveFileRecord appends metadata for one analyzed attachment.
	SaveFileRecord(ctx context.Context, record *FileRecord) error

	// GetUser retrieves a user by chat ID. Returns nil, nil if not found.
	GetUser(ctx context.Context, chatID int64) (*User, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// UpsertUser registers a user, keeping existing records untouched.
// The insert-only semantics come from ON CONFLICT DO NOTHING: a second
// registration for the same chat_id affects zero rows.
func (s *sqlxStore) UpsertUser(ctx context.Context, user *User) error {
	if user == nil {
		return fmt.Errorf("cannot upsert nil user")
	}
	if user.ChatID == 0 {
		return fmt.Errorf("user must have a non-zero chat_id")
	}

	now := time.Now().UTC()
	if user.JoinedAt.IsZero() {
		user.JoinedAt = now
	}
	if user.LastActive.IsZero() {
		user.LastActive = now
	}

	query := `
        INSERT INTO users (chat_id, username, first_name, joined_at, phone_number, total_messages, last_active)
        VALUES (:chat_id, :username, :first_name, :joined_at, NULL, 0, :last_active)
        ON CONFLICT(chat_id) DO NOTHING;
    `

	result, err := s.db.NamedExecContext(ctx, query, user)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error upserting user", "chat_id", user.ChatID, "error", err)
		return fmt.Errorf("failed to upsert user %d: %w", user.ChatID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		s.logger.DebugContext(ctx, "User already registered, upsert was a no-op", "chat_id", user.ChatID)
		return nil
	}

	s.logger.InfoContext(ctx, "User registered", "chat_id", user.ChatID)
	return nil
}

// SetPhoneNumber updates the phone number of an existing user.
// A missing record is logged and left as-is rather than created.
func (s *sqlxStore) SetPhoneNumber(ctx context.Context, chatID int64, phoneNumber string) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	query := `UPDATE users SET phone_number = ? WHERE chat_id = ?;`

	result, err := s.db.ExecContext(ctx, query, phoneNumber, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving phone number", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to save phone number for user %d: %w", chatID, err)
	}

	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		s.logger.WarnContext(ctx, "Phone number update for unregistered user, skipping", "chat_id", chatID)
		return nil
	}

	s.logger.InfoContext(ctx, "Phone number saved", "chat_id", chatID)
	return nil
}

// SaveChatRecord appends the exchange and bumps the user's counters in
// one transaction. The counter update is a single server-side
// increment, never a read-modify-write, so concurrent exchanges from
// the same user cannot lose updates.
func (s *sqlxStore) SaveChatRecord(ctx context.Context, record *ChatRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil chat record")
	}
	if record.ChatID == 0 {
		return fmt.Errorf("chat record must have a non-zero chat_id")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for chat record", "chat_id", record.ChatID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	insertQuery := `
        INSERT INTO chat_history (chat_id, user_message, bot_response, timestamp)
        VALUES (:chat_id, :user_message, :bot_response, :timestamp);
    `
	result, err := tx.NamedExecContext(ctx, insertQuery, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving chat record", "chat_id", record.ChatID, "error", err)
		return fmt.Errorf("failed to save chat record for chat %d: %w", record.ChatID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		record.ID = uint(id)
	}

	counterQuery := `
        UPDATE users
        SET total_messages = total_messages + 1, last_active = ?
        WHERE chat_id = ?;
    `
	if _, err := tx.ExecContext(ctx, counterQuery, record.Timestamp, record.ChatID); err != nil {
		s.logger.ErrorContext(ctx, "Error updating message counter", "chat_id", record.ChatID, "error", err)
		return fmt.Errorf("failed to update message counter for chat %d: %w", record.ChatID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit chat record transaction", "chat_id", record.ChatID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Chat record saved", "chat_id", record.ChatID, "record_id", record.ID)
	return nil
}

// SaveFileRecord appends metadata for one analyzed attachment.
func (s *sqlxStore) SaveFileRecord(ctx context.Context, record *FileRecord) error {
	if record == nil {
		return fmt.Errorf("cannot save nil file record")
	}
	if record.ChatID == 0 {
		return fmt.Errorf("file record must have a non-zero chat_id")
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	query := `
        INSERT INTO files (chat_id, filename, description, timestamp)
        VALUES (:chat_id, :filename, :description, :timestamp);
    `
	result, err := s.db.NamedExecContext(ctx, query, record)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error saving file record", "chat_id", record.ChatID, "filename", record.Filename, "error", err)
		return fmt.Errorf("failed to save file record for chat %d: %w", record.ChatID, err)
	}

	if id, idErr := result.LastInsertId(); idErr == nil {
		//nolint:gosec // integer overflow conversion is acceptable here
		record.ID = uint(id)
	}

	s.logger.DebugContext(ctx, "File record saved", "chat_id", record.ChatID, "filename", record.Filename)
	return nil
}

// GetUser retrieves a user by chat ID. Returns nil, nil if not found.
func (s *sqlxStore) GetUser(ctx context.Context, chatID int64) (*User, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var user User
	query := `SELECT chat_id, username, first_name, joined_at, phone_number, total_messages, last_active
	          FROM users WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &user, query, chatID)

	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.logger.DebugContext(ctx, "No user found", "chat_id", chatID)
		return nil, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching user",
			"chat_id", chatID, "error", err)
		return nil, err

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting user", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get user %d: %w", chatID, err)
	}

	return &user, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite
	_, err := s.db.ExecContext(ctx, "VACUUM;")

	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)

	default:
		s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	}

	return nil
}
