//go:build integration

package repository

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/carelink/backend/internal/database"
	"github.com/carelink/backend/internal/models"
)

// Integration tests run against a real Postgres instance:
//
//	TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/repository
func testDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping integration test")
	}

	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	if err := sqlDB.Ping(); err != nil {
		t.Skipf("Database unreachable: %v", err)
	}
	if err := database.RunMigrations(sqlDB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { sqlDB.Close() })
	return &database.DB{DB: sqlDB}
}

func createTestUser(t *testing.T, repo *UserRepository, role models.Role) *models.User {
	t.Helper()

	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("%s@test.local", uuid.New()),
		DisplayName:  "Test " + string(role),
		Role:         role,
		PasswordHash: "not-a-real-hash",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := repo.Create(user); err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func unreadCountOf(t *testing.T, convRepo *ConversationRepository, conversationID, userID uuid.UUID) int {
	t.Helper()

	participants, err := convRepo.GetParticipants(conversationID)
	if err != nil {
		t.Fatalf("Failed to get participants: %v", err)
	}
	for _, p := range participants {
		if p.UserID == userID {
			return p.UnreadCount
		}
	}
	t.Fatalf("User %s is not a participant of %s", userID, conversationID)
	return 0
}

func TestGetOrCreateDirectConversation_PairUniqueness(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	convRepo := NewConversationRepository(db)

	patient := createTestUser(t, userRepo, models.RolePatient)
	clinician := createTestUser(t, userRepo, models.RoleClinician)

	first, err := convRepo.GetOrCreateDirectConversation(patient.ID, clinician.ID, nil)
	if err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	again, err := convRepo.GetOrCreateDirectConversation(patient.ID, clinician.ID, nil)
	if err != nil {
		t.Fatalf("Failed to resolve conversation: %v", err)
	}
	if again.ID != first.ID {
		t.Errorf("Repeated resolve returned %s, want %s", again.ID, first.ID)
	}

	reversed, err := convRepo.GetOrCreateDirectConversation(clinician.ID, patient.ID, nil)
	if err != nil {
		t.Fatalf("Failed to resolve reversed pair: %v", err)
	}
	if reversed.ID != first.ID {
		t.Errorf("Reversed pair resolved to %s, want %s", reversed.ID, first.ID)
	}

	participants, err := convRepo.GetParticipants(first.ID)
	if err != nil {
		t.Fatalf("Failed to get participants: %v", err)
	}
	if len(participants) != 2 {
		t.Errorf("Expected 2 participants, got %d", len(participants))
	}
}

func TestSend_ConcurrentUnreadIncrements(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	convRepo := NewConversationRepository(db)
	msgRepo := NewMessageRepository(db)

	sender := createTestUser(t, userRepo, models.RoleClinician)
	recipient := createTestUser(t, userRepo, models.RolePatient)

	conv, err := convRepo.GetOrCreateDirectConversation(sender.ID, recipient.ID, nil)
	if err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			content := models.EncodeEnvelope("Load", fmt.Sprintf("message %d", i))
			if _, err := msgRepo.Send(conv.ID, sender.ID, content); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("Send failed: %v", err)
	}

	if got := unreadCountOf(t, convRepo, conv.ID, recipient.ID); got != n {
		t.Errorf("Recipient unread count = %d, want %d", got, n)
	}
	if got := unreadCountOf(t, convRepo, conv.ID, sender.ID); got != 0 {
		t.Errorf("Sender unread count = %d, want 0", got)
	}

	summary, err := convRepo.GetUnreadSummary(recipient.ID)
	if err != nil {
		t.Fatalf("Failed to get unread summary: %v", err)
	}
	if summary.TotalUnread != n {
		t.Errorf("TotalUnread = %d, want %d", summary.TotalUnread, n)
	}
}

func TestMarkRead_Idempotent(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	convRepo := NewConversationRepository(db)
	msgRepo := NewMessageRepository(db)

	sender := createTestUser(t, userRepo, models.RolePatient)
	recipient := createTestUser(t, userRepo, models.RoleClinician)

	conv, err := convRepo.GetOrCreateDirectConversation(sender.ID, recipient.ID, nil)
	if err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	for i := 0; i < 3; i++ {
		content := models.EncodeEnvelope("Pain update", fmt.Sprintf("update %d", i))
		if _, err := msgRepo.Send(conv.ID, sender.ID, content); err != nil {
			t.Fatalf("Send failed: %v", err)
		}
	}

	if err := convRepo.MarkRead(conv.ID, recipient.ID); err != nil {
		t.Fatalf("First MarkRead failed: %v", err)
	}
	if err := convRepo.MarkRead(conv.ID, recipient.ID); err != nil {
		t.Fatalf("Second MarkRead failed: %v", err)
	}

	if got := unreadCountOf(t, convRepo, conv.ID, recipient.ID); got != 0 {
		t.Errorf("Unread count after double mark-read = %d, want 0", got)
	}

	inbox, err := msgRepo.GetInbox(recipient.ID)
	if err != nil {
		t.Fatalf("Failed to get inbox: %v", err)
	}
	for _, row := range inbox {
		if row.ConversationID == conv.ID && row.Unread {
			t.Errorf("Inbox row %s still unread after mark-read", row.MessageID)
		}
	}

	summary, err := convRepo.GetUnreadSummary(recipient.ID)
	if err != nil {
		t.Fatalf("Failed to get unread summary: %v", err)
	}
	for _, s := range summary.Notifications {
		if s.ConversationID == conv.ID {
			t.Errorf("Conversation still in unread summary after mark-read")
		}
	}
}

func TestInboxSentPartition(t *testing.T) {
	db := testDB(t)
	userRepo := NewUserRepository(db)
	convRepo := NewConversationRepository(db)
	msgRepo := NewMessageRepository(db)

	sender := createTestUser(t, userRepo, models.RoleCaregiver)
	recipient := createTestUser(t, userRepo, models.RolePatient)

	conv, err := convRepo.GetOrCreateDirectConversation(sender.ID, recipient.ID, nil)
	if err != nil {
		t.Fatalf("Failed to create conversation: %v", err)
	}

	content := models.EncodeEnvelope("Pickup", "Running late today")
	message, err := msgRepo.Send(conv.ID, sender.ID, content)
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	contains := func(id uuid.UUID, ids []uuid.UUID) bool {
		for _, candidate := range ids {
			if candidate == id {
				return true
			}
		}
		return false
	}

	inboxIDs := func(userID uuid.UUID) []uuid.UUID {
		rows, err := msgRepo.GetInbox(userID)
		if err != nil {
			t.Fatalf("Failed to get inbox: %v", err)
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.MessageID)
		}
		return ids
	}

	sentIDs := func(userID uuid.UUID) []uuid.UUID {
		rows, err := msgRepo.GetSent(userID)
		if err != nil {
			t.Fatalf("Failed to get sent messages: %v", err)
		}
		ids := make([]uuid.UUID, 0, len(rows))
		for _, r := range rows {
			ids = append(ids, r.MessageID)
		}
		return ids
	}

	if !contains(message.ID, sentIDs(sender.ID)) {
		t.Error("Message missing from sender's sent view")
	}
	if !contains(message.ID, inboxIDs(recipient.ID)) {
		t.Error("Message missing from recipient's inbox")
	}
	if contains(message.ID, inboxIDs(sender.ID)) {
		t.Error("Message must not appear in sender's inbox")
	}
	if contains(message.ID, sentIDs(recipient.ID)) {
		t.Error("Message must not appear in recipient's sent view")
	}
}
