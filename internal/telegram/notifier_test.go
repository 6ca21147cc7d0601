// internal/telegram/notifier_test.go
package telegram

import "testing"

func TestParseTarget(t *testing.T) {
	chatID, err := parseTarget("telegram:123456789")
	if err != nil {
		t.Fatal(err)
	}
	if chatID != 123456789 {
		t.Errorf("expected 123456789, got %d", chatID)
	}

	// Negative IDs address group chats
	chatID, err = parseTarget("telegram:-100200300")
	if err != nil {
		t.Fatal(err)
	}
	if chatID != -100200300 {
		t.Errorf("expected -100200300, got %d", chatID)
	}

	if _, err := parseTarget("slack:C012345"); err == nil {
		t.Error("expected error for non-telegram target")
	}
	if _, err := parseTarget("telegram:not-a-number"); err == nil {
		t.Error("expected error for malformed chat id")
	}
}
