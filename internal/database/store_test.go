// Package database_test tests the store against a real SQLite database.
package database_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/telegembot/telegem/internal/database"
)

func newTestStore(t *testing.T) database.Store {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDB(dbPath)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.CloseDB(db) })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return database.NewStore(db, log)
}

func TestUpsertUserIsInsertOnly(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	first := &database.User{ChatID: 100, Username: "alice", FirstName: "Alice"}
	if err := store.UpsertUser(ctx, first); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	if err := store.SetPhoneNumber(ctx, 100, "+123456789"); err != nil {
		t.Fatalf("failed to set phone number: %v", err)
	}

	// Re-registration must not touch the existing record.
	second := &database.User{ChatID: 100, Username: "alice_renamed", FirstName: "Alice"}
	if err := store.UpsertUser(ctx, second); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	user, err := store.GetUser(ctx, 100)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user to exist")
	}
	if user.Username != "alice" {
		t.Errorf("username overwritten by re-registration: got %q, want %q", user.Username, "alice")
	}
	if !user.PhoneNumber.Valid || user.PhoneNumber.String != "+123456789" {
		t.Errorf("phone number lost on re-registration: got %+v", user.PhoneNumber)
	}
	if user.JoinedAt.Unix() != first.JoinedAt.Unix() {
		t.Errorf("joined_at changed on re-registration: got %v, want %v", user.JoinedAt, first.JoinedAt)
	}
}

func TestSetPhoneNumberDoesNotCreateUsers(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SetPhoneNumber(ctx, 999, "+48111222333"); err != nil {
		t.Fatalf("phone number update for unknown user should be a no-op, got error: %v", err)
	}

	user, err := store.GetUser(ctx, 999)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user != nil {
		t.Errorf("phone number update created a user record: %+v", user)
	}
}

func TestSaveChatRecordBumpsCounters(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.UpsertUser(ctx, &database.User{ChatID: 200, Username: "bob", FirstName: "Bob"}); err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	const exchanges = 3
	var lastTimestamp time.Time
	for i := 0; i < exchanges; i++ {
		record := &database.ChatRecord{
			ChatID:      200,
			UserMessage: "hello",
			BotResponse: "hi there",
			Timestamp:   time.Date(2025, 6, 1, 12, i, 0, 0, time.UTC),
		}
		if err := store.SaveChatRecord(ctx, record); err != nil {
			t.Fatalf("failed to save chat record %d: %v", i, err)
		}
		if record.ID == 0 {
			t.Errorf("chat record %d did not receive an ID", i)
		}
		lastTimestamp = record.Timestamp
	}

	user, err := store.GetUser(ctx, 200)
	if err != nil {
		t.Fatalf("failed to get user: %v", err)
	}
	if user == nil {
		t.Fatal("expected user to exist")
	}
	if user.TotalMessages != exchanges {
		t.Errorf("total_messages = %d, want %d", user.TotalMessages, exchanges)
	}
	if user.LastActive.Unix() != lastTimestamp.Unix() {
		t.Errorf("last_active = %v, want %v", user.LastActive, lastTimestamp)
	}
}

func TestSaveChatRecordValidation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveChatRecord(ctx, nil); err == nil {
		t.Error("expected error for nil record")
	}
	if err := store.SaveChatRecord(ctx, &database.ChatRecord{UserMessage: "x"}); err == nil {
		t.Error("expected error for zero chat_id")
	}
}

func TestSaveFileRecord(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	record := &database.FileRecord{
		ChatID:      300,
		Filename:    "report.pdf",
		Description: "A quarterly report",
	}
	if err := store.SaveFileRecord(ctx, record); err != nil {
		t.Fatalf("failed to save file record: %v", err)
	}
	if record.ID == 0 {
		t.Error("file record did not receive an ID")
	}
	if record.Timestamp.IsZero() {
		t.Error("file record timestamp was not defaulted")
	}
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	user, err := store.GetUser(context.Background(), 12345)
	if err != nil {
		t.Fatalf("unexpected error for missing user: %v", err)
	}
	if user != nil {
		t.Errorf("expected nil user, got %+v", user)
	}
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	if err := store.RunSQLMaintenance(context.Background()); err != nil {
		t.Fatalf("maintenance failed: %v", err)
	}
}
