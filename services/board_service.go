//go:generate go run go.uber.org/mock/mockgen -source=board_service.go -destination=../mocks/mock_board_service.go -package=mocks
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"message-board/domain"
	apperrors "message-board/errors"
	"message-board/infrastructure/storage"
	"message-board/observability"
)

type ReactionStrategy string

const (
	// StrategyAtomic adds to the counter and creates the map if needed, in one store transaction.
	StrategyAtomic ReactionStrategy = "atomic"
	// StrategyFallback tries a conditional increment first, then initializes the map and increments again.
	// The second path is two separate writes: concurrent first reactions on one message can lose counts.
	StrategyFallback ReactionStrategy = "fallback"
)

func ParseReactionStrategy(s string) (ReactionStrategy, error) {
	switch ReactionStrategy(s) {
	case StrategyAtomic, StrategyFallback:
		return ReactionStrategy(s), nil
	default:
		return "", fmt.Errorf("%w: %q", apperrors.ErrUnknownStrategy, s)
	}
}

type IBoardService interface {
	ListMessages(ctx context.Context) ([]storage.Item, error)
	CreateMessage(ctx context.Context, req domain.CreateMessageRequest) (domain.Message, error)
	React(ctx context.Context, req domain.ReactRequest) error
}

type BoardService struct {
	store    storage.IMessageStore
	log      *slog.Logger
	strategy ReactionStrategy
	now      func() time.Time
}

func NewBoardService(store storage.IMessageStore, log *slog.Logger, strategy ReactionStrategy) *BoardService {
	return &BoardService{store: store, log: log, strategy: strategy, now: time.Now}
}

// ListMessages returns every message, numbers normalized, most recent first.
// Store errors are returned untouched so their text reaches the caller.
func (s *BoardService) ListMessages(ctx context.Context) ([]storage.Item, error) {
	items, err := s.store.Scan(ctx)
	if err != nil {
		s.log.Error("Failed to scan messages", "error", err)
		return nil, err
	}

	messages := storage.NormalizeItems(items)
	sort.SliceStable(messages, func(i, j int) bool {
		return sortTimestamp(messages[i]) > sortTimestamp(messages[j])
	})
	return messages, nil
}

// sortTimestamp reads a normalized timestamp; a missing or non-numeric one counts as 0.
func sortTimestamp(item storage.Item) float64 {
	switch ts := item[storage.AttrTimestamp].(type) {
	case int64:
		return float64(ts)
	case float64:
		return ts
	case json.Number:
		f, _ := ts.Float64()
		return f
	default:
		return 0
	}
}

// CreateMessage validates the content, then persists a fresh record without any existence check.
func (s *BoardService) CreateMessage(ctx context.Context, req domain.CreateMessageRequest) (domain.Message, error) {
	if err := req.Validate(); err != nil {
		return domain.Message{}, err
	}

	message := domain.NewMessage(req, s.now())
	item, err := storage.ToItem(message)
	if err != nil {
		return domain.Message{}, err
	}
	if err = s.store.Put(ctx, item); err != nil {
		s.log.Error("Failed to store message", "message_id", message.MessageID, "error", err)
		return domain.Message{}, err
	}

	observability.MessagesCreated.Inc()
	s.log.Debug("Message created", "message_id", message.MessageID, "timestamp", message.Timestamp)
	return message, nil
}

// React increments reactions[req.Reaction] of an existing message by one.
func (s *BoardService) React(ctx context.Context, req domain.ReactRequest) error {
	key := storage.Key{MessageID: req.MessageID, Timestamp: req.Timestamp}

	var (
		outcome string
		err     error
	)
	switch s.strategy {
	case StrategyFallback:
		outcome, err = s.reactWithFallback(ctx, key, req.Reaction)
	default:
		outcome, err = "direct", s.store.Update(ctx, key, storage.Update{
			Add: []storage.Increment{increment(req.Reaction, true)},
		}, nil)
	}

	if err != nil {
		outcome = "failed"
		s.log.Error("Failed to add reaction",
			"message_id", req.MessageID,
			"reaction", req.Reaction,
			"strategy", s.strategy,
			"error", err)
	}
	observability.ReactionsApplied.WithLabelValues(string(s.strategy), outcome).Inc()
	return err
}

func (s *BoardService) reactWithFallback(ctx context.Context, key storage.Key, reaction string) (string, error) {
	err := s.store.Update(ctx, key,
		storage.Update{Add: []storage.Increment{increment(reaction, false)}},
		&storage.Condition{AttributeExists: storage.AttrReactions},
	)
	if err == nil {
		return "direct", nil
	}
	if !errors.Is(err, apperrors.ErrConditionFailed) {
		return "", err
	}

	s.log.Warn("First update failed, attempting to initialize reactions map",
		"message_id", key.MessageID, "error", err)

	// Not atomic as a whole: a concurrent fallback may reset the map between these two writes.
	err = s.store.Update(ctx, key, storage.Update{
		Set: map[string]any{storage.AttrReactions: map[string]any{}},
	}, nil)
	if err != nil {
		return "", err
	}
	err = s.store.Update(ctx, key, storage.Update{
		Add: []storage.Increment{increment(reaction, false)},
	}, nil)
	if err != nil {
		return "", err
	}
	return "initialized", nil
}

func increment(reaction string, createMissing bool) storage.Increment {
	return storage.Increment{
		Attribute:     storage.AttrReactions,
		Field:         reaction,
		Delta:         1,
		CreateMissing: createMissing,
	}
}
