package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/clearpathhq/supportbot/internal/config"
	"github.com/clearpathhq/supportbot/internal/data/redisStore"
	"github.com/clearpathhq/supportbot/internal/domain/chatModel"
	"github.com/clearpathhq/supportbot/pkg/logger_i"
)

var ErrConversationNotFound = errors.New("conversation not found")

const conversationIndexKey = "conversations"

// RedisConversationStore keeps conversation metadata under conv:{id},
// the turn log under conv:{id}:turns and a recency zset for listing.
// Keys carry a TTL, stale conversations age out on their own.
type RedisConversationStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

// GetRedisConversationStore returns nil when redis is unreachable,
// callers fall back to the in-memory store.
func GetRedisConversationStore(ctx context.Context) *RedisConversationStore {
	rs := redisStore.GetRedisStore(ctx, config.RedisConversationStore)
	if rs == nil {
		return nil
	}
	return &RedisConversationStore{
		store:  rs,
		logger: logger_i.NewLogger("ConversationStore"),
	}
}

func metaKey(id string) string { return "conv:" + id }

func turnsKey(id string) string { return "conv:" + id + ":turns" }

func (s *RedisConversationStore) CreateConversation(ctx context.Context, conv chatModel.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return err
	}
	if err := s.store.Set(ctx, metaKey(conv.Id), data, config.RedisConversationStoreTTL); err != nil {
		return err
	}
	return s.store.ZAdd(ctx, conversationIndexKey, float64(conv.UpdatedAt.UnixMilli()), conv.Id)
}

func (s *RedisConversationStore) GetConversation(ctx context.Context, id string) (chatModel.Conversation, bool) {
	var conv chatModel.Conversation

	val, err := s.store.Get(ctx, metaKey(id))
	if s.store.IsNil(err) {
		return conv, false
	} else if err != nil {
		s.logger.Error("Error reading conversation", "id", id, "error", err)
		return conv, false
	}

	if err = json.Unmarshal([]byte(val), &conv); err != nil {
		s.logger.Error("Error unmarshalling conversation", "id", id, "error", err)
		return conv, false
	}
	return conv, true
}

// ListConversations walks the recency index newest first. Entries whose
// metadata expired are pruned from the index as they are discovered.
func (s *RedisConversationStore) ListConversations(ctx context.Context) ([]chatModel.Conversation, error) {
	ids, err := s.store.ZRevRangeAll(ctx, conversationIndexKey)
	if err != nil {
		return nil, err
	}

	conversations := make([]chatModel.Conversation, 0, len(ids))
	for _, id := range ids {
		conv, found := s.GetConversation(ctx, id)
		if !found {
			if err := s.store.ZRem(ctx, conversationIndexKey, id); err != nil {
				s.logger.Error("Error pruning conversation index", "id", id, "error", err)
			}
			continue
		}
		conversations = append(conversations, conv)
	}
	return conversations, nil
}

func (s *RedisConversationStore) RenameConversation(ctx context.Context, id string, title string) error {
	conv, found := s.GetConversation(ctx, id)
	if !found {
		return ErrConversationNotFound
	}
	conv.Title = title
	conv.UpdatedAt = time.Now()
	return s.CreateConversation(ctx, conv)
}

func (s *RedisConversationStore) DeleteConversation(ctx context.Context, id string) error {
	if err := s.store.Del(ctx, metaKey(id), turnsKey(id)); err != nil {
		return err
	}
	return s.store.ZRem(ctx, conversationIndexKey, id)
}

func (s *RedisConversationStore) AppendTurn(ctx context.Context, conversationId string, turn chatModel.Turn) error {
	conv, found := s.GetConversation(ctx, conversationId)
	if !found {
		return ErrConversationNotFound
	}

	data, err := json.Marshal(turn)
	if err != nil {
		return err
	}
	if err := s.store.ListPush(ctx, turnsKey(conversationId), data); err != nil {
		return err
	}
	if err := s.store.Expire(ctx, turnsKey(conversationId), config.RedisConversationStoreTTL); err != nil {
		s.logger.Error("Error refreshing turn log TTL", "id", conversationId, "error", err)
	}

	conv.UpdatedAt = time.Now()
	return s.CreateConversation(ctx, conv)
}

// RecentTurns returns the last maxTurns turns oldest first, ready for
// prompt assembly.
func (s *RedisConversationStore) RecentTurns(ctx context.Context, conversationId string, maxTurns int) ([]chatModel.Turn, error) {
	raw, err := s.store.ListLast(ctx, turnsKey(conversationId), maxTurns)
	if err != nil {
		return nil, err
	}

	turns := make([]chatModel.Turn, 0, len(raw))
	for _, item := range raw {
		var turn chatModel.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Error("Error unmarshalling turn", "id", conversationId, "error", err)
			continue
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func TestConversationStore(store *redisStore.Store) *RedisConversationStore {
	return &RedisConversationStore{
		store:  store,
		logger: logger_i.NewLogger("test conversations"),
	}
}
