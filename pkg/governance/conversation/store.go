package conversation

import (
	"hash/fnv"
	"sync"
	"time"
)

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message sent by the caller.
	RoleUser Role = "user"

	// RoleAssistant marks a message generated by the model.
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a conversation history. Messages are
// immutable once appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// DefaultMaxHistory is the default per-conversation history bound.
const DefaultMaxHistory = 10

// storeShardCount is the number of lock shards. Must be a power of two.
const storeShardCount = 32

type storeShard struct {
	mu        sync.Mutex
	histories map[string][]Message
}

// Store is a bounded, append-only-with-eviction message log keyed by
// conversation key.
//
// The store is shared across concurrent requests correlated by the same
// key. Mutations of a given key are atomic (single-shard critical
// section); distinct keys rarely contend and there is no global lock.
// Consistency is best effort within one process; no cross-process
// synchronization exists.
type Store struct {
	maxHistory int
	shards     [storeShardCount]*storeShard
}

// NewStore creates a Store retaining at most maxHistory messages per
// conversation. A zero or negative bound falls back to DefaultMaxHistory.
func NewStore(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	s := &Store{maxHistory: maxHistory}
	for i := range s.shards {
		s.shards[i] = &storeShard{histories: make(map[string][]Message)}
	}
	return s
}

// Append adds msg to the history for key, evicting from the front when
// the bound is exceeded. Amortized O(1): a single append produces at most
// one excess element, so eviction work per call is bounded.
//
// After Append returns, len(History(key)) <= maxHistory always holds.
func (s *Store) Append(key string, msg Message) {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	history := append(sh.histories[key], msg)
	if excess := len(history) - s.maxHistory; excess > 0 {
		// Copy down instead of re-slicing so evicted messages do not
		// pin the backing array.
		copy(history, history[excess:])
		history = history[:s.maxHistory]
	}
	sh.histories[key] = history
}

// History returns a copy of the current history for key, oldest first.
// An unknown key reads as empty and is not materialized by the read.
func (s *Store) History(key string) []Message {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	history, ok := sh.histories[key]
	if !ok {
		return nil
	}

	out := make([]Message, len(history))
	copy(out, history)
	return out
}

// Len returns the current history length for key without copying.
func (s *Store) Len(key string) int {
	sh := s.shardFor(key)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	return len(sh.histories[key])
}

// MaxHistory returns the configured per-conversation bound.
func (s *Store) MaxHistory() int {
	return s.maxHistory
}

func (s *Store) shardFor(key string) *storeShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()&(storeShardCount-1)]
}
