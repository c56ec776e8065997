package dryrun

import (
	"context"
	"testing"

	"voice-trading-bot/internal/types"
)

func TestQuoteDeterministic(t *testing.T) {
	b := New(nil)
	ctx := context.Background()

	q1, err := b.CurrentPrice(ctx, "005930")
	if err != nil {
		t.Fatal(err)
	}
	q2, _ := b.CurrentPrice(ctx, "005930")
	if q1.Price != q2.Price {
		t.Error("quotes for the same code should be stable")
	}
	if q1.Price < 10_000 {
		t.Errorf("unexpected price %d", q1.Price)
	}
	if q1.Price%10 != 0 {
		t.Errorf("price should sit on the 10-won tick: %d", q1.Price)
	}
}

func TestBuyThenSellRoundTrip(t *testing.T) {
	b := New(func(code string) string { return "삼성전자" })
	ctx := context.Background()

	resp, err := b.PlaceOrder(ctx, types.OrderReq{Code: "005930", Side: types.ActionBuy, Qty: 10})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ACCEPTED" || resp.OrderID == "" {
		t.Fatalf("unexpected response: %+v", resp)
	}

	holdings, _ := b.Holdings(ctx)
	if len(holdings) != 1 || holdings[0].Qty != 10 {
		t.Fatalf("unexpected holdings: %+v", holdings)
	}
	if holdings[0].Name != "삼성전자" {
		t.Errorf("holding should carry the directory name, got %s", holdings[0].Name)
	}

	resp, err = b.PlaceOrder(ctx, types.OrderReq{Code: "005930", Side: types.ActionSell, SellAll: true})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "ACCEPTED" {
		t.Fatalf("sell-all rejected: %+v", resp)
	}

	holdings, _ = b.Holdings(ctx)
	if len(holdings) != 0 {
		t.Errorf("position should be closed, got %+v", holdings)
	}

	bal, _ := b.Balance(ctx)
	if bal.Deposit != startingDeposit {
		t.Errorf("round trip at a fixed price should restore the deposit, got %d", bal.Deposit)
	}
}

func TestSellWithoutPositionRejected(t *testing.T) {
	b := New(nil)
	resp, err := b.PlaceOrder(context.Background(), types.OrderReq{Code: "035720", Side: types.ActionSell, Qty: 5})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "REJECTED" {
		t.Errorf("selling an unheld security should be rejected: %+v", resp)
	}
}

func TestBuyBeyondDepositRejected(t *testing.T) {
	b := New(nil)
	resp, err := b.PlaceOrder(context.Background(), types.OrderReq{Code: "005930", Side: types.ActionBuy, Qty: 1_000_000})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != "REJECTED" {
		t.Errorf("order above the deposit should be rejected: %+v", resp)
	}
}
