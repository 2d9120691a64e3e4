package internal

import (
	"encoding/json"
	"strings"
	"sync"
	"time"
)

// ChatHistoryKey is the fixed store key holding the serialized chat log
const ChatHistoryKey = "chatHistory"

// ChatTimestampLayout is the time-of-day layout shown next to each message
const ChatTimestampLayout = "15:04:05"

// ChatLog is the append-only, persisted log of chat messages. Messages are
// never edited or deleted.
type ChatLog struct {
	mu       sync.Mutex
	store    KVStore
	messages []ChatMessage
	lastID   int64
	now      func() time.Time
}

// NewChatLog creates an empty chat log backed by store
func NewChatLog(store KVStore) *ChatLog {
	return &ChatLog{
		store:    store,
		messages: make([]ChatMessage, 0),
		now:      time.Now,
	}
}

// Restore loads the log from the store. Absent or corrupt data yields an
// empty log; it never fails.
func (c *ChatLog) Restore() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messages = make([]ChatMessage, 0)
	c.lastID = 0

	if c.store == nil {
		return
	}

	raw, ok, err := c.store.Get(ChatHistoryKey)
	if err != nil {
		LogWarn("Failed to read chat history, starting empty: %v", err)
		return
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return
	}

	var messages []ChatMessage
	if err := json.Unmarshal([]byte(raw), &messages); err != nil {
		LogWarn("Chat history is corrupt, starting empty: %v", err)
		return
	}

	for _, msg := range messages {
		if msg.ID > c.lastID {
			c.lastID = msg.ID
		}
		c.messages = append(c.messages, msg)
	}
	LogDebug("Restored %d chat message(s)", len(c.messages))
}

// AppendUserMessage appends a user message and persists the log. Blank or
// whitespace-only text is a no-op and reports false.
func (c *ChatLog) AppendUserMessage(text string) (ChatMessage, bool, error) {
	if strings.TrimSpace(text) == "" {
		return ChatMessage{}, false, nil
	}
	msg, err := c.append(SenderUser, text)
	return msg, true, err
}

// AppendBotMessage appends the answer to the preceding user message
func (c *ChatLog) AppendBotMessage(text string) (ChatMessage, error) {
	return c.append(SenderBot, text)
}

func (c *ChatLog) append(sender Sender, text string) (ChatMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	id := now.UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id

	msg := ChatMessage{
		ID:        id,
		Text:      text,
		Timestamp: now.Format(ChatTimestampLayout),
		Sender:    sender,
	}
	c.messages = append(c.messages, msg)

	return msg, c.persistLocked()
}

// Persist writes the full ordered log to the store
func (c *ChatLog) Persist() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.persistLocked()
}

func (c *ChatLog) persistLocked() error {
	if c.store == nil {
		return nil
	}
	data, err := json.Marshal(c.messages)
	if err != nil {
		return &StorageError{Path: ChatHistoryKey, Op: "write", Err: err}
	}
	return c.store.Set(ChatHistoryKey, string(data))
}

// Messages returns a copy of the log in display order
func (c *ChatLog) Messages() []ChatMessage {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ChatMessage, len(c.messages))
	copy(out, c.messages)
	return out
}

// Len returns the number of messages in the log
func (c *ChatLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
