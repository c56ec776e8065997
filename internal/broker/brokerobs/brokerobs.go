package brokerobs

import (
	"context"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/trace"
	"voice-trading-bot/internal/types"
)

// observableBroker wraps a Broker with observability (logging & tracing)
type observableBroker struct {
	broker interfaces.Broker
}

// Compile-time interface check
var _ interfaces.Broker = (*observableBroker)(nil)

// Wrap wraps a broker with observability middleware
func Wrap(broker interfaces.Broker) interfaces.Broker {
	return &observableBroker{
		broker: broker,
	}
}

func (ob *observableBroker) CurrentPrice(ctx context.Context, code string) (types.Quote, error) {
	ctx, span := trace.StartSpan(ctx, "broker.CurrentPrice")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching current price", "code", code)

	quote, err := ob.broker.CurrentPrice(ctx, code)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch current price", err, "code", code)
		return types.Quote{}, err
	}

	logger.DebugSkip(ctx, 1, "Current price fetched", "code", code, "price", quote.Price)
	return quote, nil
}

func (ob *observableBroker) Balance(ctx context.Context) (types.Balance, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Balance")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching account balance")

	bal, err := ob.broker.Balance(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch balance", err)
		return types.Balance{}, err
	}

	logger.DebugSkip(ctx, 1, "Balance fetched", "deposit", bal.Deposit, "total_value", bal.TotalValue)
	return bal, nil
}

func (ob *observableBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	ctx, span := trace.StartSpan(ctx, "broker.Holdings")
	defer span.End()

	logger.DebugSkip(ctx, 1, "Fetching holdings")

	holdings, err := ob.broker.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to fetch holdings", err)
		return nil, err
	}

	logger.DebugSkip(ctx, 1, "Holdings fetched", "count", len(holdings))
	return holdings, nil
}

func (ob *observableBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	ctx, span := trace.StartSpan(ctx, "broker.PlaceOrder")
	defer span.End()

	logger.InfoSkip(ctx, 1, "Placing order",
		"code", req.Code,
		"side", string(req.Side),
		"qty", req.Qty,
		"sell_all", req.SellAll,
	)

	resp, err := ob.broker.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Failed to place order", err,
			"code", req.Code,
			"side", string(req.Side),
			"qty", req.Qty,
		)
		return types.OrderResp{}, err
	}

	logger.InfoSkip(ctx, 1, "Order placed",
		"code", req.Code,
		"order_id", resp.OrderID,
		"status", resp.Status,
	)
	return resp, nil
}
