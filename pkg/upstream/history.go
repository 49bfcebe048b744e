package upstream

import (
	"container/list"
	"sync"
	"unicode/utf8"
)

// storedMessage is one conversation entry retained for multi-turn context.
type storedMessage struct {
	ID              string
	Role            string
	Text            string
	ParentMessageID string
}

// messageStore is a fixed-capacity LRU map of conversation messages keyed by
// message ID. The API-key variant uses it to rebuild the message chain from a
// parentMessageId, since the chat-completions API itself is stateless. When
// the capacity is exceeded the least recently touched entry is evicted, which
// silently truncates the oldest conversations.
type messageStore struct {
	mu       sync.Mutex
	capacity int
	entries  map[string]*list.Element
	order    *list.List
}

func newMessageStore(capacity int) *messageStore {
	if capacity <= 0 {
		capacity = 1
	}
	return &messageStore{
		capacity: capacity,
		entries:  make(map[string]*list.Element),
		order:    list.New(),
	}
}

// add inserts or refreshes a message, evicting the least recently used entry
// when the store is full.
func (s *messageStore) add(msg storedMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[msg.ID]; ok {
		elem.Value = msg
		s.order.MoveToFront(elem)
		return
	}

	if s.order.Len() >= s.capacity {
		oldest := s.order.Back()
		if oldest != nil {
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(storedMessage).ID)
		}
	}

	s.entries[msg.ID] = s.order.PushFront(msg)
}

// get looks up a message by ID and marks it recently used.
func (s *messageStore) get(id string) (storedMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[id]
	if !ok {
		return storedMessage{}, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(storedMessage), true
}

// len reports the number of stored messages.
func (s *messageStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

// history walks the parent chain starting at parentID and collects messages
// newest-first until the token budget is spent or the chain ends, then
// returns them in sending order (oldest first). A missing link ends the walk;
// conversations truncated by eviction simply lose their oldest turns.
func (s *messageStore) history(parentID string, budget int) []storedMessage {
	var collected []storedMessage

	id := parentID
	for id != "" && budget > 0 {
		msg, ok := s.get(id)
		if !ok {
			break
		}

		cost := estimateTokens(msg.Text)
		if cost > budget {
			break
		}
		budget -= cost

		collected = append(collected, msg)
		id = msg.ParentMessageID
	}

	// Reverse into chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	return collected
}

// estimateTokens approximates the token cost of a text as one token per four
// characters, rounded up. A budgeting heuristic, not a tokenizer.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (utf8.RuneCountInString(text) + 3) / 4
}
