package interfaces

import (
	"context"

	"voice-trading-bot/internal/types"
)

// Recorder persists chat turns and dispatched orders. The engine emits
// records and owns no storage schema.
type Recorder interface {
	SaveChatTurn(ctx context.Context, turn types.ChatTurn) error
	SaveOrder(ctx context.Context, sessionID string, intent types.CommandIntent, resp types.OrderResp) error
	ChatHistory(ctx context.Context, sessionID string, limit int) ([]types.ChatTurn, error)
}
