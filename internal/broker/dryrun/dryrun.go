package dryrun

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"github.com/google/uuid"

	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/types"
)

const startingDeposit = 10_000_000

// Broker simulates a brokerage in memory. Quotes are deterministic per
// code, fills are immediate, and positions persist for the process
// lifetime so the full confirm-then-execute flow can be exercised
// without credentials.
type Broker struct {
	mu        sync.Mutex
	deposit   int64
	positions map[string]*position
	names     func(code string) string
}

type position struct {
	name     string
	qty      int
	avgPrice int64
}

var _ interfaces.Broker = (*Broker)(nil)

// New creates a simulated broker. nameOf maps a security code to its
// display name and may be nil.
func New(nameOf func(code string) string) *Broker {
	if nameOf == nil {
		nameOf = func(code string) string { return code }
	}
	return &Broker{
		deposit:   startingDeposit,
		positions: make(map[string]*position),
		names:     nameOf,
	}
}

// syntheticPrice derives a stable pseudo price in the 10,000..110,000
// KRW range from the code, rounded to the 10-won tick.
func syntheticPrice(code string) int64 {
	h := fnv.New32a()
	h.Write([]byte(code))
	return 10_000 + int64(h.Sum32()%10_000)*10
}

func (b *Broker) CurrentPrice(ctx context.Context, code string) (types.Quote, error) {
	price := syntheticPrice(code)
	return types.Quote{
		Code:       code,
		Name:       b.names(code),
		Price:      price,
		Change:     price / 100,
		ChangeRate: 1.0,
		Volume:     1_234_567,
	}, nil
}

func (b *Broker) Balance(ctx context.Context) (types.Balance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := b.deposit
	var pnl int64
	var cost int64
	for code, pos := range b.positions {
		price := syntheticPrice(code)
		total += price * int64(pos.qty)
		pnl += (price - pos.avgPrice) * int64(pos.qty)
		cost += pos.avgPrice * int64(pos.qty)
	}
	rate := 0.0
	if cost > 0 {
		rate = float64(pnl) / float64(cost) * 100
	}
	return types.Balance{
		Deposit:    b.deposit,
		TotalValue: total,
		ProfitLoss: pnl,
		ProfitRate: rate,
	}, nil
}

func (b *Broker) Holdings(ctx context.Context) ([]types.Holding, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	holdings := make([]types.Holding, 0, len(b.positions))
	for code, pos := range b.positions {
		price := syntheticPrice(code)
		pnl := (price - pos.avgPrice) * int64(pos.qty)
		rate := 0.0
		if pos.avgPrice > 0 {
			rate = float64(price-pos.avgPrice) / float64(pos.avgPrice) * 100
		}
		holdings = append(holdings, types.Holding{
			Code:       code,
			Name:       pos.name,
			Qty:        pos.qty,
			AvgPrice:   pos.avgPrice,
			Price:      price,
			ProfitLoss: pnl,
			ProfitRate: rate,
		})
	}
	return holdings, nil
}

func (b *Broker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	price := syntheticPrice(req.Code)
	if req.PriceType == types.PriceLimit {
		price = req.LimitPrice
	}

	qty := req.Qty
	switch req.Side {
	case types.ActionBuy:
		cost := price * int64(qty)
		if cost > b.deposit {
			return types.OrderResp{
				Status:  "REJECTED",
				Message: "주문 실패: 예수금이 부족합니다.",
			}, nil
		}
		b.deposit -= cost
		pos := b.positions[req.Code]
		if pos == nil {
			pos = &position{name: b.names(req.Code)}
			b.positions[req.Code] = pos
		}
		held := int64(pos.qty)
		pos.avgPrice = (pos.avgPrice*held + cost) / (held + int64(qty))
		pos.qty += qty

	case types.ActionSell:
		pos := b.positions[req.Code]
		if pos == nil || pos.qty == 0 {
			return types.OrderResp{
				Status:  "REJECTED",
				Message: "주문 실패: 보유하지 않은 종목입니다.",
			}, nil
		}
		if req.SellAll {
			qty = pos.qty
		}
		if qty > pos.qty {
			return types.OrderResp{
				Status:  "REJECTED",
				Message: fmt.Sprintf("주문 실패: 보유 수량(%d주)을 초과했습니다.", pos.qty),
			}, nil
		}
		b.deposit += price * int64(qty)
		pos.qty -= qty
		if pos.qty == 0 {
			delete(b.positions, req.Code)
		}

	default:
		return types.OrderResp{}, errors.New("unsupported order side")
	}

	orderID := uuid.NewString()
	logger.Info(ctx, "Simulated order filled",
		"order_id", orderID,
		"side", string(req.Side),
		"code", req.Code,
		"qty", qty,
		"price", price,
	)
	return types.OrderResp{
		OrderID: orderID,
		Status:  "ACCEPTED",
		Message: fmt.Sprintf("[모의] %s 주문 성공 (주문번호: %s)", req.Side.Korean(), orderID),
	}, nil
}
