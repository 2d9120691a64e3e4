package internal

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/iksnae/legal-buddy/testutil"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestChatLog_AppendUserMessage(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		wantOK bool
	}{
		{name: "question", text: "Who are the parties?", wantOK: true},
		{name: "empty", text: "", wantOK: false},
		{name: "whitespace", text: " \t\n ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			log := NewChatLog(store)

			msg, ok, err := log.AppendUserMessage(tt.text)
			if err != nil {
				t.Fatalf("AppendUserMessage() error = %v", err)
			}
			if ok != tt.wantOK {
				t.Fatalf("AppendUserMessage() ok = %v, want %v", ok, tt.wantOK)
			}

			wantLen := 0
			if tt.wantOK {
				wantLen = 1
				if msg.Sender != SenderUser || msg.Text != tt.text {
					t.Errorf("AppendUserMessage() = %+v", msg)
				}
			}
			if log.Len() != wantLen {
				t.Errorf("Len() = %d, want %d", log.Len(), wantLen)
			}
			if _, stored, _ := store.Get(ChatHistoryKey); stored != tt.wantOK {
				t.Errorf("stored = %v, want %v", stored, tt.wantOK)
			}
		})
	}
}

func TestChatLog_IDsAndTimestamps(t *testing.T) {
	log := NewChatLog(nil)
	at := time.Date(2024, 3, 1, 14, 5, 9, 0, time.Local)
	log.now = fixedClock(at)

	first, _, _ := log.AppendUserMessage("one")
	second, _ := log.AppendBotMessage("two")
	third, _, _ := log.AppendUserMessage("three")

	if first.ID != at.UnixMilli() {
		t.Errorf("first.ID = %d, want %d", first.ID, at.UnixMilli())
	}
	if second.ID != first.ID+1 || third.ID != second.ID+1 {
		t.Errorf("IDs = %d, %d, %d, want strictly increasing with a frozen clock", first.ID, second.ID, third.ID)
	}
	if first.Timestamp != "14:05:09" {
		t.Errorf("Timestamp = %q, want 14:05:09", first.Timestamp)
	}
	if second.Sender != SenderBot {
		t.Errorf("second.Sender = %v, want bot", second.Sender)
	}
}

func TestChatLog_PersistRestoreRoundTrip(t *testing.T) {
	store := NewMemoryStore()
	log := NewChatLog(store)
	log.AppendUserMessage("Who are the parties?")
	log.AppendBotMessage("Acme Corp and Beta LLC.")
	log.AppendUserMessage("When does it end?")

	restored := NewChatLog(store)
	restored.Restore()

	if !reflect.DeepEqual(restored.Messages(), log.Messages()) {
		t.Errorf("Restore() = %+v, want %+v", restored.Messages(), log.Messages())
	}

	// ids keep increasing after a restore even when the clock goes back
	last := log.Messages()[2].ID
	restored.now = fixedClock(time.UnixMilli(last - 1000))
	next, _ := restored.AppendBotMessage("Next year.")
	if next.ID != last+1 {
		t.Errorf("ID after restore = %d, want %d", next.ID, last+1)
	}
}

func TestChatLog_RestoreSQLite(t *testing.T) {
	store, err := NewSQLiteStore(testutil.CreateInMemoryDB(t), ":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}

	log := NewChatLog(store)
	log.AppendUserMessage("question")
	log.AppendBotMessage("answer")

	restored := NewChatLog(store)
	restored.Restore()
	if !reflect.DeepEqual(restored.Messages(), log.Messages()) {
		t.Errorf("Restore() = %+v, want %+v", restored.Messages(), log.Messages())
	}
}

func TestChatLog_RestoreTolerant(t *testing.T) {
	tests := []struct {
		name  string
		value *string
	}{
		{name: "absent", value: nil},
		{name: "empty", value: strPtr("")},
		{name: "corrupt", value: strPtr("{not json")},
		{name: "wrong shape", value: strPtr(`{"id":1}`)},
		{name: "null", value: strPtr("null")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore()
			if tt.value != nil {
				store.Set(ChatHistoryKey, *tt.value)
			}

			log := NewChatLog(store)
			log.Restore()

			if log.Len() != 0 {
				t.Errorf("Len() = %d, want 0", log.Len())
			}
			if msgs := log.Messages(); msgs == nil {
				t.Error("Messages() = nil, want empty slice")
			}
		})
	}
}

func TestChatLog_PersistFailure(t *testing.T) {
	store := NewMemoryStore()
	store.SetErr = errors.New("disk full")
	log := NewChatLog(store)

	msg, ok, err := log.AppendUserMessage("hello")
	if !ok {
		t.Fatal("AppendUserMessage() ok = false, want true")
	}
	if err == nil {
		t.Error("AppendUserMessage() error = nil, want store failure")
	}
	if log.Len() != 1 || msg.Text != "hello" {
		t.Error("message should stay in memory when persisting fails")
	}
}

func TestChatLog_MessagesIsCopy(t *testing.T) {
	log := NewChatLog(nil)
	log.AppendUserMessage("original")

	msgs := log.Messages()
	msgs[0].Text = "changed"

	if log.Messages()[0].Text != "original" {
		t.Error("Messages() exposed internal state")
	}
}

func strPtr(s string) *string { return &s }
