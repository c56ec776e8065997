package engine

import (
	"context"
	"time"

	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/nlp"
	"voice-trading-bot/internal/resolver"
	"voice-trading-bot/internal/store"
	"voice-trading-bot/internal/tradelog"
	"voice-trading-bot/internal/types"
)

// Engine drives the command pipeline: normalize → classify → extract →
// resolve → respond, with the per-session confirmation state machine in
// front of every order dispatch. It is stateless apart from the one
// pending-order slot each session owns.
type Engine struct {
	cfg      *store.Config
	dir      *directory.Directory
	res      *resolver.Resolver
	brk      interfaces.Broker
	rec      interfaces.Recorder
	sessions *sessionStore
	ttl      time.Duration
	now      func() time.Time
}

func New(cfg *store.Config, dir *directory.Directory, brk interfaces.Broker, rec interfaces.Recorder) *Engine {
	return &Engine{
		cfg: cfg,
		dir: dir,
		res: resolver.New(dir, resolver.Config{
			Threshold: cfg.Resolver.Threshold,
			Margin:    cfg.Resolver.Margin,
		}),
		brk:      brk,
		rec:      rec,
		sessions: newSessionStore(),
		ttl:      time.Duration(cfg.Confirmation.TTLSeconds) * time.Second,
		now:      time.Now,
	}
}

// Handle processes one utterance for a session. Malformed input never
// returns an error; the response always says what is missing or ambiguous.
func (e *Engine) Handle(ctx context.Context, sessionID, text string) (*types.Response, error) {
	sess := e.sessions.get(sessionID)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	tokens := nlp.Normalize(text)

	// Expiry is wall-clock state evaluated lazily: any touch that finds the
	// deadline passed moves the slot to Expired before the new input runs.
	var notice string
	if p := sess.pending; p != nil && e.now().After(p.ExpiresAt) {
		sess.pending = nil
		logger.Info(ctx, "Pending order expired", "session_id", sessionID)
		if nlp.IsAffirmative(tokens) || nlp.IsNegative(tokens) {
			return &types.Response{
				Type:    "message",
				Message: "주문 확인 시간이 지나 취소되었습니다. 다시 주문해주세요.",
				Speak:   true,
				Reason:  types.ReasonConfirmationExpired,
			}, nil
		}
		notice = "확인 시간이 지나 이전 주문은 취소되었습니다.\n\n"
	}

	if sess.pending != nil {
		switch {
		case nlp.IsAffirmative(tokens):
			return e.dispatch(ctx, sessionID, sess)
		case nlp.IsNegative(tokens):
			sess.pending = nil
			logger.Info(ctx, "Pending order cancelled", "session_id", sessionID)
			return &types.Response{
				Type:    "message",
				Message: "주문을 취소했습니다.",
				Speak:   true,
			}, nil
		default:
			// A new unrelated command cancels the pending order.
			sess.pending = nil
			logger.Info(ctx, "Pending order cancelled by new command", "session_id", sessionID)
			notice = "진행 중이던 주문은 취소되었습니다.\n\n"
		}
	}

	resp := e.interpret(ctx, sessionID, sess, text, tokens)
	if notice != "" {
		resp.Message = notice + resp.Message
	}
	return resp, nil
}

// interpret runs the parse pipeline on an utterance with no pending state.
func (e *Engine) interpret(ctx context.Context, sessionID string, sess *session, text string, tokens []string) *types.Response {
	if len(tokens) == 0 {
		return e.unrecognized(ctx, sessionID, text, types.ReasonUnrecognizedIntent)
	}

	// A bare confirmation with nothing pending is a protocol mismatch.
	if nlp.IsAffirmative(tokens) || nlp.IsNegative(tokens) {
		e.logIntent(ctx, sessionID, types.CommandIntent{
			Action: types.ActionUnknown, RawText: text, Reason: types.ReasonConfirmationMismatch,
		})
		return &types.Response{
			Type:    "message",
			Message: "확인하거나 취소할 주문이 없습니다.",
			Speak:   true,
			Reason:  types.ReasonConfirmationMismatch,
		}
	}

	cls := nlp.Classify(tokens)
	ext := nlp.Extract(tokens)

	if ext.Invalid {
		intent := types.CommandIntent{
			Action: types.ActionUnknown, RawText: text,
			Confidence: 0, Reason: ext.Reason,
		}
		e.logIntent(ctx, sessionID, intent)
		return &types.Response{
			Type:    "clarify",
			Message: "수량이나 가격 숫자를 알아듣지 못했습니다. 1 이상의 숫자로 다시 말씀해주세요.",
			Speak:   true,
			Reason:  ext.Reason,
			Intent:  &intent,
		}
	}

	consumed := union(cls.Consumed, ext.Consumed)

	switch cls.Action {
	case types.ActionPrice:
		return e.handlePrice(ctx, sessionID, text, tokens, consumed, cls.Confidence)
	case types.ActionBalance:
		return e.handleBalance(ctx, sessionID, text, cls.Confidence)
	case types.ActionHoldings:
		return e.handleHoldings(ctx, sessionID, text, cls.Confidence)
	case types.ActionBuy, types.ActionSell:
		return e.handleTrade(ctx, sessionID, sess, text, tokens, consumed, cls, ext)
	}
	return e.unrecognized(ctx, sessionID, text, types.ReasonUnrecognizedIntent)
}

func (e *Engine) handlePrice(ctx context.Context, sessionID, text string, tokens []string, consumed map[int]bool, confidence float64) *types.Response {
	sec, reason := e.res.Resolve(tokens, consumed)
	intent := types.CommandIntent{
		Action: types.ActionPrice, Security: sec, RawText: text,
		Confidence: confidence, Reason: reason,
	}
	e.logIntent(ctx, sessionID, intent)

	switch reason {
	case types.ReasonDirectoryEmpty:
		return degraded(&intent)
	case types.ReasonUnresolvedSecurity:
		return &types.Response{
			Type:    "clarify",
			Message: "어떤 종목의 현재가를 알려드릴까요?",
			Speak:   true,
			Reason:  reason,
			Intent:  &intent,
		}
	case types.ReasonAmbiguousSecurity:
		return ambiguous(&intent, sec.Candidates)
	}

	q, err := e.brk.CurrentPrice(ctx, sec.Code)
	if err != nil {
		logger.ErrorWithErr(ctx, "Price lookup failed", err, "code", sec.Code)
		return &types.Response{Type: "message", Message: "현재가 조회에 실패했습니다.", Speak: true, Intent: &intent}
	}
	return &types.Response{Type: "message", Message: quoteMessage(q), Speak: true, Intent: &intent}
}

func (e *Engine) handleBalance(ctx context.Context, sessionID, text string, confidence float64) *types.Response {
	intent := types.CommandIntent{Action: types.ActionBalance, RawText: text, Confidence: confidence}
	e.logIntent(ctx, sessionID, intent)

	b, err := e.brk.Balance(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Balance lookup failed", err)
		return &types.Response{Type: "message", Message: "잔고 조회에 실패했습니다.", Speak: true, Intent: &intent}
	}
	return &types.Response{Type: "message", Message: balanceMessage(b), Speak: true, Intent: &intent}
}

func (e *Engine) handleHoldings(ctx context.Context, sessionID, text string, confidence float64) *types.Response {
	intent := types.CommandIntent{Action: types.ActionHoldings, RawText: text, Confidence: confidence}
	e.logIntent(ctx, sessionID, intent)

	hs, err := e.brk.Holdings(ctx)
	if err != nil {
		logger.ErrorWithErr(ctx, "Holdings lookup failed", err)
		return &types.Response{Type: "message", Message: "보유종목 조회에 실패했습니다.", Speak: true, Intent: &intent}
	}
	return &types.Response{Type: "message", Message: holdingsMessage(hs), Speak: true, Intent: &intent}
}

// handleTrade validates a buy/sell intent and, when complete, parks it in
// the session's confirmation slot. Incomplete intents come back as a
// clarification naming the missing or ambiguous piece; nothing pending is
// ever created for them.
func (e *Engine) handleTrade(ctx context.Context, sessionID string, sess *session, text string, tokens []string, consumed map[int]bool, cls nlp.Classification, ext nlp.Extraction) *types.Response {
	action := cls.Action
	sec, reason := e.res.Resolve(tokens, consumed)

	intent := types.CommandIntent{
		Action: action, Security: sec,
		Quantity: ext.Quantity, SellAll: ext.SellAll,
		PriceType: ext.PriceType, LimitPrice: ext.LimitPrice,
		RawText: text, Confidence: cls.Confidence,
	}

	switch reason {
	case types.ReasonDirectoryEmpty:
		intent.Action = types.ActionUnknown
		intent.Reason = reason
		e.logIntent(ctx, sessionID, intent)
		return degraded(&intent)
	case types.ReasonUnresolvedSecurity:
		// A trade with no resolvable security is not actionable.
		intent.Action = types.ActionUnknown
		intent.Reason = reason
		e.logIntent(ctx, sessionID, intent)
		return &types.Response{
			Type:    "clarify",
			Message: "어떤 종목을 거래하시겠어요? 종목 이름을 함께 말씀해주세요.",
			Speak:   true,
			Reason:  reason,
			Intent:  &intent,
		}
	case types.ReasonAmbiguousSecurity:
		intent.Reason = reason
		e.logIntent(ctx, sessionID, intent)
		return ambiguous(&intent, sec.Candidates)
	}

	if ext.SellAll && action == types.ActionBuy {
		intent.Reason = types.ReasonMissingQuantity
		e.logIntent(ctx, sessionID, intent)
		return &types.Response{
			Type:    "clarify",
			Message: "전량 주문은 매도에서만 가능합니다. " + sec.Name + " 몇 주를 매수하시겠어요?",
			Speak:   true,
			Reason:  types.ReasonMissingQuantity,
			Intent:  &intent,
		}
	}
	if ext.Quantity <= 0 && !ext.SellAll {
		intent.Reason = types.ReasonMissingQuantity
		e.logIntent(ctx, sessionID, intent)
		return &types.Response{
			Type:    "clarify",
			Message: sec.Name + " 몇 주를 " + action.Korean() + "하시겠어요?",
			Speak:   true,
			Reason:  types.ReasonMissingQuantity,
			Intent:  &intent,
		}
	}

	e.logIntent(ctx, sessionID, intent)

	pending := &types.PendingOrder{
		SessionID: sessionID,
		Intent:    intent,
		CreatedAt: e.now(),
		ExpiresAt: e.now().Add(e.ttl),
	}
	// Estimated cost is advisory; a failed quote only drops it from the summary.
	if !intent.SellAll {
		if q, err := e.brk.CurrentPrice(ctx, sec.Code); err == nil {
			pending.EstimatedCost = q.Price * int64(intent.Quantity)
		}
	}
	sess.pending = pending

	return &types.Response{
		Type:    "confirm",
		Message: confirmMessage(pending),
		Speak:   true,
		Intent:  &intent,
	}
}

// dispatch forwards the confirmed pending order to the broker and clears
// the slot. The caller holds the session lock.
func (e *Engine) dispatch(ctx context.Context, sessionID string, sess *session) (*types.Response, error) {
	p := sess.pending
	sess.pending = nil

	in := p.Intent
	req := types.OrderReq{
		Code:       in.Security.Code,
		Side:       in.Action,
		Qty:        in.Quantity,
		SellAll:    in.SellAll,
		PriceType:  in.PriceType,
		LimitPrice: in.LimitPrice,
	}

	resp, err := e.brk.PlaceOrder(ctx, req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Order dispatch failed", err,
			"session_id", sessionID, "code", req.Code, "side", string(req.Side))
		return &types.Response{
			Type:    "message",
			Message: "주문 실행에 실패했습니다. 다시 시도해주세요.",
			Speak:   true,
			Intent:  &in,
		}, nil
	}

	logger.Order(ctx, sessionID, string(in.Action), in.Security.Code, in.Quantity, resp.OrderID, resp.Status)
	_ = tradelog.AppendOrder(tradelog.OrderEntry{
		SessionID:  sessionID,
		Side:       string(in.Action),
		Code:       in.Security.Code,
		Name:       in.Security.Name,
		Qty:        in.Quantity,
		SellAll:    in.SellAll,
		PriceType:  string(in.PriceType),
		LimitPrice: in.LimitPrice,
		OrderID:    resp.OrderID,
		Status:     resp.Status,
	})
	if err := e.rec.SaveOrder(ctx, sessionID, in, resp); err != nil {
		logger.Warn(ctx, "Failed to persist order", "error", err)
	}

	msg := resp.Message
	if msg == "" {
		msg = in.Action.Korean() + " 주문이 접수되었습니다."
		if resp.OrderID != "" {
			msg += " (주문번호: " + resp.OrderID + ")"
		}
	}
	return &types.Response{Type: "message", Message: msg, Speak: true, Intent: &in, Order: &resp}, nil
}

func (e *Engine) unrecognized(ctx context.Context, sessionID, text string, reason types.ReasonCode) *types.Response {
	intent := types.CommandIntent{Action: types.ActionUnknown, RawText: text, Reason: reason}
	e.logIntent(ctx, sessionID, intent)
	return &types.Response{
		Type:    "message",
		Message: helpMessage,
		Speak:   true,
		Reason:  reason,
		Intent:  &intent,
	}
}

func (e *Engine) logIntent(ctx context.Context, sessionID string, intent types.CommandIntent) {
	logger.Intent(ctx, sessionID, string(intent.Action), intent.Confidence, string(intent.Reason))
	entry := tradelog.IntentEntry{
		SessionID:  sessionID,
		Action:     string(intent.Action),
		Qty:        intent.Quantity,
		SellAll:    intent.SellAll,
		PriceType:  string(intent.PriceType),
		LimitPrice: intent.LimitPrice,
		Confidence: intent.Confidence,
		Reason:     string(intent.Reason),
		RawText:    intent.RawText,
	}
	if intent.Security != nil && !intent.Security.Ambiguous() {
		entry.Code = intent.Security.Code
		entry.Name = intent.Security.Name
	}
	_ = tradelog.AppendIntent(entry)
}

func degraded(intent *types.CommandIntent) *types.Response {
	return &types.Response{
		Type:    "message",
		Message: degradedMessage,
		Speak:   true,
		Reason:  types.ReasonDirectoryEmpty,
		Intent:  intent,
	}
}

func ambiguous(intent *types.CommandIntent, candidates []types.Candidate) *types.Response {
	return &types.Response{
		Type:       "clarify",
		Message:    candidatesMessage(candidates),
		Speak:      true,
		Reason:     types.ReasonAmbiguousSecurity,
		Intent:     intent,
		Candidates: candidates,
	}
}

func union(a, b map[int]bool) map[int]bool {
	out := make(map[int]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
