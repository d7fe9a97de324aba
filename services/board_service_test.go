package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"message-board/domain"
	apperrors "message-board/errors"
	"message-board/infrastructure/storage"
	"message-board/mocks"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestParseReactionStrategy(t *testing.T) {
	req := require.New(t)
	s, err := ParseReactionStrategy("atomic")
	req.NoError(err)
	req.Equal(StrategyAtomic, s)
	s, err = ParseReactionStrategy("fallback")
	req.NoError(err)
	req.Equal(StrategyFallback, s)
	_, err = ParseReactionStrategy("optimistic")
	req.ErrorIs(err, apperrors.ErrUnknownStrategy)
}

func TestBoardService_CreateMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mockStore := mocks.NewMockIMessageStore(ctrl)
	svc := NewBoardService(mockStore, log, StrategyAtomic)
	now := time.UnixMilli(1700000000000)
	svc.now = func() time.Time { return now }

	t.Run("should persist a complete record", func(t *testing.T) {
		req := require.New(t)
		var stored storage.Item
		mockStore.EXPECT().
			Put(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, item storage.Item) error {
				stored = item
				return nil
			}).
			Times(1)

		msg, err := svc.CreateMessage(context.Background(), domain.CreateMessageRequest{Content: "Hello"})

		req.NoError(err)
		req.Equal(int64(1700000000000), msg.Timestamp)
		req.Equal(domain.DefaultAvatar, msg.Avatar)
		req.Equal(msg.MessageID, stored[storage.AttrMessageID])
		req.Equal(json.Number("1700000000000"), stored[storage.AttrTimestamp])
		req.Equal(map[string]any{}, stored[storage.AttrReactions])
		req.Equal("Hello", stored["content"])
	})

	t.Run("should never write invalid content", func(t *testing.T) {
		req := require.New(t)
		mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.CreateMessage(context.Background(), domain.CreateMessageRequest{Content: ""})

		req.ErrorIs(err, apperrors.ErrInvalidContent)
	})

	t.Run("should surface store errors untouched", func(t *testing.T) {
		req := require.New(t)
		storeErr := fmt.Errorf("ProvisionedThroughputExceededException: slow down")
		mockStore.EXPECT().Put(gomock.Any(), gomock.Any()).Return(storeErr).Times(1)

		_, err := svc.CreateMessage(context.Background(), domain.CreateMessageRequest{Content: "Hello"})

		req.Equal(storeErr, err)
	})
}

func TestBoardService_ListMessages(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mockStore := mocks.NewMockIMessageStore(ctrl)
	svc := NewBoardService(mockStore, log, StrategyAtomic)

	t.Run("should sort newest first with untimed records last", func(t *testing.T) {
		req := require.New(t)
		mockStore.EXPECT().Scan(gomock.Any()).Return([]storage.Item{
			{storage.AttrMessageID: "old", storage.AttrTimestamp: json.Number("1000")},
			{storage.AttrMessageID: "untimed"},
			{storage.AttrMessageID: "new", storage.AttrTimestamp: json.Number("3000")},
			{storage.AttrMessageID: "mid", storage.AttrTimestamp: json.Number("2.0e3")},
		}, nil)

		messages, err := svc.ListMessages(context.Background())

		req.NoError(err)
		ids := make([]any, 0, len(messages))
		for _, m := range messages {
			ids = append(ids, m[storage.AttrMessageID])
		}
		req.Equal([]any{"new", "mid", "old", "untimed"}, ids)
		req.Equal(int64(2000), messages[1][storage.AttrTimestamp])
	})

	t.Run("should surface store errors untouched", func(t *testing.T) {
		req := require.New(t)
		storeErr := fmt.Errorf("ResourceNotFoundException: Requested resource not found")
		mockStore.EXPECT().Scan(gomock.Any()).Return(nil, storeErr)

		_, err := svc.ListMessages(context.Background())

		req.Equal(storeErr, err)
	})
}

func TestBoardService_React_Fallback(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mockStore := mocks.NewMockIMessageStore(ctrl)
	svc := NewBoardService(mockStore, log, StrategyFallback)
	reaction := domain.ReactRequest{MessageID: "m1", Timestamp: 1000, Reaction: "like"}
	key := storage.Key{MessageID: "m1", Timestamp: 1000}
	conditional := &storage.Condition{AttributeExists: storage.AttrReactions}
	add := storage.Update{Add: []storage.Increment{{Attribute: storage.AttrReactions, Field: "like", Delta: 1}}}
	reset := storage.Update{Set: map[string]any{storage.AttrReactions: map[string]any{}}}

	t.Run("should increment directly when the map exists", func(t *testing.T) {
		req := require.New(t)
		mockStore.EXPECT().Update(gomock.Any(), key, add, conditional).Return(nil).Times(1)

		req.NoError(svc.React(context.Background(), reaction))
	})

	t.Run("should initialize the map then increment on condition failure", func(t *testing.T) {
		req := require.New(t)
		gomock.InOrder(
			mockStore.EXPECT().Update(gomock.Any(), key, add, conditional).Return(apperrors.ErrConditionFailed),
			mockStore.EXPECT().Update(gomock.Any(), key, reset, nil).Return(nil),
			mockStore.EXPECT().Update(gomock.Any(), key, add, nil).Return(nil),
		)

		req.NoError(svc.React(context.Background(), reaction))
	})

	t.Run("should not fall back on a missing message", func(t *testing.T) {
		req := require.New(t)
		mockStore.EXPECT().
			Update(gomock.Any(), key, add, conditional).
			Return(fmt.Errorf("%w: m1", apperrors.ErrMessageNotFound)).
			Times(1)

		req.ErrorIs(svc.React(context.Background(), reaction), apperrors.ErrMessageNotFound)
	})

	t.Run("should surface the error of the initialization write", func(t *testing.T) {
		req := require.New(t)
		storeErr := fmt.Errorf("throttled")
		gomock.InOrder(
			mockStore.EXPECT().Update(gomock.Any(), key, add, conditional).Return(apperrors.ErrConditionFailed),
			mockStore.EXPECT().Update(gomock.Any(), key, reset, nil).Return(storeErr),
		)

		req.Equal(storeErr, svc.React(context.Background(), reaction))
	})
}

func TestBoardService_React_Atomic(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mockStore := mocks.NewMockIMessageStore(ctrl)
	svc := NewBoardService(mockStore, log, StrategyAtomic)

	req := require.New(t)
	mockStore.EXPECT().
		Update(gomock.Any(),
			storage.Key{MessageID: "m1", Timestamp: 1000},
			storage.Update{Add: []storage.Increment{{Attribute: storage.AttrReactions, Field: "🔥", Delta: 1, CreateMissing: true}}},
			nil).
		Return(nil).
		Times(1)

	req.NoError(svc.React(context.Background(), domain.ReactRequest{MessageID: "m1", Timestamp: 1000, Reaction: "🔥"}))
}
