package nlp

import (
	"strings"

	"voice-trading-bot/internal/types"
)

// Rule maps a keyword set to an action. Rules are evaluated in order and
// the first firing rule wins, so the slice order is the precedence order.
type Rule struct {
	Action   types.Action
	Keywords []string
}

// Trade verbs outrank query verbs: when "지금 10주 사줘" also brushes a
// price keyword, placing the order is taken as the user's primary intent.
// The account queries sit above the generic price verbs for the same
// reason, so "잔고 얼마 남았어" reads as a balance check, not a quote.
var rules = []Rule{
	{types.ActionBuy, []string{
		"사줘", "사주세요", "매수", "구매", "살게", "사자", "매입", "사",
	}},
	{types.ActionSell, []string{
		"팔아", "팔아줘", "팔아주세요", "매도", "판매", "팔게", "팔자", "처분", "팔",
	}},
	{types.ActionBalance, []string{
		"잔고", "얼마남았", "예수금", "내돈", "잔액", "남은돈", "내계좌", "계좌", "돈얼마", "돈",
	}},
	{types.ActionHoldings, []string{
		"보유", "가진", "내주식", "내꺼", "포트폴리오", "보유종목", "내가가진", "내것", "보유주식", "내종목", "종목",
	}},
	{types.ActionPrice, []string{
		"현재가", "가격", "시세", "얼마", "호가", "가격표", "지금", "현재", "값", "시가",
	}},
}

// Classification is the intent classifier's verdict plus the token indices
// it consumed, which the security resolver must not treat as name material.
type Classification struct {
	Action     types.Action
	Confidence float64
	Consumed   map[int]bool
}

// Classify determines the action for a normalized token sequence. The
// confidence is deterministic: 1.0 for a clean single-rule match, divided
// by the number of competing rules that also fired.
func Classify(tokens []string) Classification {
	c := Classification{Action: types.ActionUnknown, Consumed: map[int]bool{}}

	fired := 0
	for _, rule := range rules {
		matched := false
		for i, tok := range tokens {
			for _, kw := range rule.Keywords {
				if strings.Contains(tok, kw) {
					matched = true
					c.Consumed[i] = true
					break
				}
			}
		}
		if matched {
			fired++
			if c.Action == types.ActionUnknown {
				c.Action = rule.Action
			}
		}
	}

	if fired == 0 {
		return Classification{Action: types.ActionUnknown, Consumed: map[int]bool{}}
	}
	c.Confidence = 1.0 / float64(fired)
	return c
}

var affirmatives = map[string]struct{}{
	"네": {}, "예": {}, "응": {}, "그래": {}, "좋아": {}, "확인": {},
	"진행": {}, "진행해": {}, "맞아": {}, "ㅇㅇ": {}, "yes": {}, "y": {}, "ok": {}, "오케이": {},
}

var negatives = map[string]struct{}{
	"아니": {}, "아니요": {}, "아니오": {}, "취소": {}, "안해": {}, "싫어": {},
	"그만": {}, "ㄴㄴ": {}, "no": {}, "n": {},
}

// IsAffirmative reports whether the tokens are a bare confirmation reply.
func IsAffirmative(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if _, ok := affirmatives[t]; !ok {
			return false
		}
	}
	return true
}

// IsNegative reports whether the tokens are a bare cancellation reply.
func IsNegative(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if _, ok := negatives[t]; !ok {
			return false
		}
	}
	return true
}
