package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
)

// InMemoryConversationStore is the fallback when redis is unavailable.
// Conversations do not survive a restart.
type InMemoryConversationStore struct {
	mu            sync.RWMutex
	conversations map[string]chatModel.Conversation
	turns         map[string][]chatModel.Turn
}

func InitInMemoryConversationStore() *InMemoryConversationStore {
	return &InMemoryConversationStore{
		conversations: make(map[string]chatModel.Conversation),
		turns:         make(map[string][]chatModel.Turn),
	}
}

func (s *InMemoryConversationStore) CreateConversation(ctx context.Context, conv chatModel.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[conv.Id] = conv
	return nil
}

func (s *InMemoryConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	conv, found := s.conversations[id]
	return conv, found
}

func (s *InMemoryConversationStore) ListConversations(ctx context.Context) ([]chatModel.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]chatModel.Conversation, 0, len(s.conversations))
	for _, conv := range s.conversations {
		out = append(out, conv)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *InMemoryConversationStore) RenameConversation(ctx context.Context, id string, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, found := s.conversations[id]
	if !found {
		return ErrConversationNotFound
	}
	conv.Title = title
	conv.UpdatedAt = time.Now()
	s.conversations[id] = conv
	return nil
}

func (s *InMemoryConversationStore) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conversations, id)
	delete(s.turns, id)
	return nil
}

func (s *InMemoryConversationStore) AppendTurn(ctx context.Context, conversationId string, turn chatModel.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, found := s.conversations[conversationId]
	if !found {
		return ErrConversationNotFound
	}
	s.turns[conversationId] = append(s.turns[conversationId], turn)
	conv.UpdatedAt = time.Now()
	s.conversations[conversationId] = conv
	return nil
}

func (s *InMemoryConversationStore) RecentTurns(ctx context.Context, conversationId string, maxTurns int) ([]chatModel.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := s.turns[conversationId]
	if maxTurns > 0 && len(all) > maxTurns {
		all = all[len(all)-maxTurns:]
	}
	out := make([]chatModel.Turn, len(all))
	copy(out, all)
	return out, nil
}
