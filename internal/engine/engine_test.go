package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/store"
	"voice-trading-bot/internal/types"
)

type fakeBroker struct {
	mu          sync.Mutex
	placed      []types.OrderReq
	placeErr    error
	priceErr    error
	price       int64
	balanceHits int
}

func (f *fakeBroker) CurrentPrice(ctx context.Context, code string) (types.Quote, error) {
	if f.priceErr != nil {
		return types.Quote{}, f.priceErr
	}
	return types.Quote{
		Code: code, Name: "삼성전자", Price: f.price,
		Change: 500, ChangeRate: 0.7, Volume: 1000000,
	}, nil
}

func (f *fakeBroker) Balance(ctx context.Context) (types.Balance, error) {
	f.mu.Lock()
	f.balanceHits++
	f.mu.Unlock()
	return types.Balance{Deposit: 5000000, TotalValue: 6000000, ProfitLoss: 100000, ProfitRate: 2.0}, nil
}

func (f *fakeBroker) Holdings(ctx context.Context) ([]types.Holding, error) {
	return []types.Holding{{Code: "005930", Name: "삼성전자", Qty: 10, Price: 70000}}, nil
}

func (f *fakeBroker) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.placeErr != nil {
		return types.OrderResp{}, f.placeErr
	}
	f.placed = append(f.placed, req)
	return types.OrderResp{OrderID: "0000117057", Status: "ACCEPTED"}, nil
}

func (f *fakeBroker) orderCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.placed)
}

type fakeRecorder struct {
	mu     sync.Mutex
	orders int
}

func (f *fakeRecorder) SaveChatTurn(ctx context.Context, turn types.ChatTurn) error { return nil }

func (f *fakeRecorder) SaveOrder(ctx context.Context, sessionID string, intent types.CommandIntent, resp types.OrderResp) error {
	f.mu.Lock()
	f.orders++
	f.mu.Unlock()
	return nil
}

func (f *fakeRecorder) ChatHistory(ctx context.Context, sessionID string, limit int) ([]types.ChatTurn, error) {
	return nil, nil
}

func testEntries() []directory.Entry {
	return []directory.Entry{
		{Code: "005930", Name: "삼성전자"},
		{Code: "066570", Name: "LG전자"},
		{Code: "035720", Name: "카카오"},
	}
}

func newTestEngine(t *testing.T) (*Engine, *fakeBroker, *fakeRecorder) {
	t.Helper()
	t.Setenv("TRADER_LOG_DIR", t.TempDir())

	dir := directory.New()
	if err := dir.Load(testEntries()); err != nil {
		t.Fatal(err)
	}
	brk := &fakeBroker{price: 70000}
	rec := &fakeRecorder{}
	return New(store.Default(), dir, brk, rec), brk, rec
}

func handle(t *testing.T, e *Engine, session, text string) *types.Response {
	t.Helper()
	resp, err := e.Handle(context.Background(), session, text)
	if err != nil {
		t.Fatalf("Handle(%q) returned error: %v", text, err)
	}
	return resp
}

func TestPriceQuery(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 현재가 얼마야?")
	if resp.Type != "message" {
		t.Errorf("expected message, got %s", resp.Type)
	}
	if !strings.Contains(resp.Message, "70,000") {
		t.Errorf("quote message should carry the price: %s", resp.Message)
	}
	if resp.Intent.Security.Code != "005930" {
		t.Errorf("expected 005930, got %s", resp.Intent.Security.Code)
	}
}

func TestBuyConfirmDispatch(t *testing.T) {
	e, brk, rec := newTestEngine(t)

	resp := handle(t, e, "s1", "삼성전자 10주 사줘")
	if resp.Type != "confirm" {
		t.Fatalf("expected confirm, got %s: %s", resp.Type, resp.Message)
	}
	if !strings.Contains(resp.Message, "삼성전자") || !strings.Contains(resp.Message, "10주") {
		t.Errorf("confirmation should restate the order: %s", resp.Message)
	}
	if brk.orderCount() != 0 {
		t.Fatal("no order may be placed before confirmation")
	}

	resp = handle(t, e, "s1", "네")
	if resp.Order == nil || resp.Order.OrderID != "0000117057" {
		t.Fatalf("expected dispatched order, got %+v", resp)
	}
	if brk.orderCount() != 1 {
		t.Fatalf("expected exactly one order, got %d", brk.orderCount())
	}
	if rec.orders != 1 {
		t.Errorf("order should be persisted once, got %d", rec.orders)
	}

	placed := brk.placed[0]
	if placed.Code != "005930" || placed.Side != types.ActionBuy || placed.Qty != 10 {
		t.Errorf("unexpected order request: %+v", placed)
	}

	// A second 네 has nothing to confirm.
	resp = handle(t, e, "s1", "네")
	if resp.Reason != types.ReasonConfirmationMismatch {
		t.Errorf("expected CONFIRMATION_MISMATCH, got %s", resp.Reason)
	}
	if brk.orderCount() != 1 {
		t.Error("repeated confirmation must not re-dispatch")
	}
}

func TestCancelPendingOrder(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	handle(t, e, "s1", "삼성전자 10주 사줘")
	resp := handle(t, e, "s1", "아니요")
	if !strings.Contains(resp.Message, "취소") {
		t.Errorf("expected cancellation message, got %s", resp.Message)
	}
	if brk.orderCount() != 0 {
		t.Error("cancelled order must not dispatch")
	}

	// And the slot is gone.
	resp = handle(t, e, "s1", "네")
	if resp.Reason != types.ReasonConfirmationMismatch {
		t.Errorf("expected CONFIRMATION_MISMATCH after cancel, got %s", resp.Reason)
	}
}

func TestConfirmationExpiry(t *testing.T) {
	e, brk, _ := newTestEngine(t)

	base := time.Now()
	e.now = func() time.Time { return base }
	handle(t, e, "s1", "삼성전자 10주 사줘")

	e.now = func() time.Time { return base.Add(61 * time.Second) }
	resp := handle(t, e, "s1", "네")
	if resp.Reason != types.ReasonConfirmationExpired {
		t.Fatalf("expected CONFIRMATION_EXPIRED, got %s", resp.Reason)
	}
	if brk.orderCount() != 0 {
		t.Error("expired order must not dispatch")
	}
}

func TestUnrelatedCommandCancelsPending(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	handle(t, e, "s1", "삼성전자 10주 사줘")

	resp := handle(t, e, "s1", "카카오 현재가")
	if !strings.Contains(resp.Message, "취소") {
		t.Errorf("response should note the implicit cancellation: %s", resp.Message)
	}
	if resp.Intent == nil || resp.Intent.Action != types.ActionPrice {
		t.Error("the new command should still be answered")
	}
	if brk.orderCount() != 0 {
		t.Error("superseded order must not dispatch")
	}
}

func TestSellAllConfirm(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 전부 팔아줘")
	if resp.Type != "confirm" {
		t.Fatalf("expected confirm, got %s: %s", resp.Type, resp.Message)
	}
	if !strings.Contains(resp.Message, "전량") {
		t.Errorf("confirmation should say 전량: %s", resp.Message)
	}

	handle(t, e, "s1", "네")
	if brk.orderCount() != 1 {
		t.Fatal("expected one order")
	}
	if !brk.placed[0].SellAll || brk.placed[0].Side != types.ActionSell {
		t.Errorf("unexpected order request: %+v", brk.placed[0])
	}
}

func TestBuyAllRejected(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 전부 사줘")
	if resp.Type != "clarify" || resp.Reason != types.ReasonMissingQuantity {
		t.Errorf("whole-position buys should ask for a quantity: %+v", resp)
	}
}

func TestMissingQuantityClarifies(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 사줘")
	if resp.Type != "clarify" || resp.Reason != types.ReasonMissingQuantity {
		t.Fatalf("expected MISSING_QUANTITY clarify, got %+v", resp)
	}
	if !strings.Contains(resp.Message, "삼성전자") {
		t.Errorf("clarification should name the security: %s", resp.Message)
	}

	// No pending slot was created.
	resp = handle(t, e, "s1", "네")
	if resp.Reason != types.ReasonConfirmationMismatch {
		t.Errorf("expected CONFIRMATION_MISMATCH, got %s", resp.Reason)
	}
	if brk.orderCount() != 0 {
		t.Error("no order may dispatch")
	}
}

func TestInvalidQuantityClarifies(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 0주 사줘")
	if resp.Reason != types.ReasonInvalidNumeral {
		t.Errorf("expected INVALID_NUMERAL, got %s", resp.Reason)
	}
}

func TestAmbiguousSecurityClarifies(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "전자 10주 사줘")
	if resp.Reason != types.ReasonAmbiguousSecurity {
		t.Fatalf("expected AMBIGUOUS_SECURITY, got %s: %s", resp.Reason, resp.Message)
	}
	if len(resp.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(resp.Candidates))
	}

	// Clarifying with the exact name completes a fresh command.
	resp = handle(t, e, "s1", "삼성전자 10주 사줘")
	if resp.Type != "confirm" {
		t.Errorf("expected confirm after clarification, got %s", resp.Type)
	}
	if brk.orderCount() != 0 {
		t.Error("nothing should dispatch before 네")
	}
}

func TestLimitOrderWithParticleConfirmsAsLimit(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 10주 85000원에 사줘")
	if resp.Type != "confirm" {
		t.Fatalf("expected confirm, got %s: %s", resp.Type, resp.Message)
	}
	if !strings.Contains(resp.Message, "지정가") || !strings.Contains(resp.Message, "85,000") {
		t.Fatalf("price instruction must survive into the confirmation: %s", resp.Message)
	}

	handle(t, e, "s1", "네")
	if brk.orderCount() != 1 {
		t.Fatal("expected one order")
	}
	placed := brk.placed[0]
	if placed.PriceType != types.PriceLimit || placed.LimitPrice != 85000 {
		t.Errorf("order should dispatch as a limit order: %+v", placed)
	}
}

func TestBalanceImmediate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "내 잔고 얼마 남았어?")
	if resp.Type != "message" {
		t.Fatalf("expected message, got %s", resp.Type)
	}
	if !strings.Contains(resp.Message, "5,000,000") {
		t.Errorf("balance message should carry the deposit: %s", resp.Message)
	}
}

func TestHoldingsImmediate(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "보유 종목 보여줘")
	if !strings.Contains(resp.Message, "삼성전자") {
		t.Errorf("holdings message should list positions: %s", resp.Message)
	}
}

func TestUnrecognizedShowsHelp(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "오늘 날씨 어때")
	if resp.Reason != types.ReasonUnrecognizedIntent {
		t.Fatalf("expected UNRECOGNIZED_INTENT, got %s", resp.Reason)
	}
	if !strings.Contains(resp.Message, "명령어") {
		t.Errorf("expected help text, got %s", resp.Message)
	}
}

func TestDegradedModeWithoutDirectory(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	e := New(store.Default(), directory.New(), &fakeBroker{price: 70000}, &fakeRecorder{})

	resp := handle(t, e, "s1", "삼성전자 10주 사줘")
	if resp.Reason != types.ReasonDirectoryEmpty {
		t.Fatalf("expected DIRECTORY_EMPTY, got %s", resp.Reason)
	}

	// Balance does not need the directory.
	resp = handle(t, e, "s1", "잔고 확인")
	if resp.Reason != types.ReasonNone {
		t.Errorf("balance should work in degraded mode, got %s", resp.Reason)
	}
}

func TestBrokerFailureIsUserFacing(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	handle(t, e, "s1", "삼성전자 10주 사줘")

	brk.placeErr = errors.New("kis: rate limited")
	resp := handle(t, e, "s1", "네")
	if !strings.Contains(resp.Message, "실패") {
		t.Errorf("broker failure should surface as a user message: %s", resp.Message)
	}

	// The slot is consumed; retrying needs a fresh command.
	resp = handle(t, e, "s1", "네")
	if resp.Reason != types.ReasonConfirmationMismatch {
		t.Errorf("expected CONFIRMATION_MISMATCH, got %s", resp.Reason)
	}
}

func TestSessionsIsolated(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	handle(t, e, "s1", "삼성전자 10주 사줘")

	// 네 from another session confirms nothing.
	resp := handle(t, e, "s2", "네")
	if resp.Reason != types.ReasonConfirmationMismatch {
		t.Errorf("expected CONFIRMATION_MISMATCH for s2, got %s", resp.Reason)
	}
	if brk.orderCount() != 0 {
		t.Fatal("s2 must not confirm s1's order")
	}

	// s1's slot is still live.
	resp = handle(t, e, "s1", "네")
	if brk.orderCount() != 1 {
		t.Error("s1's confirmation should dispatch")
	}
}

func TestEstimatedCostInConfirmation(t *testing.T) {
	e, _, _ := newTestEngine(t)
	resp := handle(t, e, "s1", "삼성전자 10주 사줘")
	if !strings.Contains(resp.Message, "700,000") {
		t.Errorf("confirmation should estimate 10 x 70,000: %s", resp.Message)
	}
}

func TestEstimatedCostBestEffort(t *testing.T) {
	e, brk, _ := newTestEngine(t)
	brk.priceErr = errors.New("quote unavailable")
	resp := handle(t, e, "s1", "삼성전자 10주 사줘")
	if resp.Type != "confirm" {
		t.Fatalf("a failed quote must not block confirmation: %+v", resp)
	}
	if strings.Contains(resp.Message, "예상금액") {
		t.Errorf("estimate line should be dropped when the quote fails: %s", resp.Message)
	}
}
