package engine

import (
	"strings"
	"testing"

	"voice-trading-bot/internal/types"
)

func TestComma(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{70000, "70,000"},
		{1234567, "1,234,567"},
		{-45000, "-45,000"},
	}
	for _, c := range cases {
		if got := comma(c.in); got != c.want {
			t.Errorf("comma(%d) = %s, want %s", c.in, got, c.want)
		}
	}
}

func TestSignedComma(t *testing.T) {
	if got := signedComma(500); got != "+500" {
		t.Errorf("signedComma(500) = %s", got)
	}
	if got := signedComma(-500); got != "-500" {
		t.Errorf("signedComma(-500) = %s", got)
	}
}

func TestConfirmMessageLimitOrder(t *testing.T) {
	p := &types.PendingOrder{
		Intent: types.CommandIntent{
			Action:     types.ActionBuy,
			Security:   &types.ResolvedSecurity{Code: "005930", Name: "삼성전자"},
			Quantity:   10,
			PriceType:  types.PriceLimit,
			LimitPrice: 85000,
		},
	}
	msg := confirmMessage(p)
	for _, want := range []string{"삼성전자", "10주", "지정가", "85,000"} {
		if !strings.Contains(msg, want) {
			t.Errorf("confirmation missing %q: %s", want, msg)
		}
	}
}

func TestHoldingsMessageEmpty(t *testing.T) {
	if msg := holdingsMessage(nil); !strings.Contains(msg, "없습니다") {
		t.Errorf("unexpected empty-holdings message: %s", msg)
	}
}
