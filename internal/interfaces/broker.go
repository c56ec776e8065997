package interfaces

import (
	"context"

	"voice-trading-bot/internal/types"
)

// Broker is the brokerage collaborator: quotes, account state, and order
// dispatch. Implementations own all network I/O; the engine only consumes
// their results as plain data.
type Broker interface {
	CurrentPrice(ctx context.Context, code string) (types.Quote, error)
	Balance(ctx context.Context) (types.Balance, error)
	Holdings(ctx context.Context) ([]types.Holding, error)
	PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error)
}
