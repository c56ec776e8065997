package recorder

import (
	"context"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/types"
)

// Noop discards everything. Used when no database is configured; the
// JSONL trade log still captures dispatched orders.
type Noop struct{}

var _ interfaces.Recorder = Noop{}

func (Noop) SaveChatTurn(ctx context.Context, turn types.ChatTurn) error { return nil }

func (Noop) SaveOrder(ctx context.Context, sessionID string, intent types.CommandIntent, resp types.OrderResp) error {
	return nil
}

func (Noop) ChatHistory(ctx context.Context, sessionID string, limit int) ([]types.ChatTurn, error) {
	return nil, nil
}
