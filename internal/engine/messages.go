package engine

import (
	"fmt"
	"strconv"
	"strings"

	"voice-trading-bot/internal/types"
)

const helpMessage = `무엇을 도와드릴까요?

사용 가능한 명령어:
- "삼성전자 현재가?"
- "네이버 10주 사줘"
- "카카오 전부 팔아"
- "내 잔고 확인"
- "보유 종목 보여줘"

음성 또는 키보드로 입력하세요.`

const degradedMessage = "종목 정보를 아직 불러오지 못했습니다. 잠시 후 다시 시도해주세요."

// comma formats an integer with thousands separators (1234567 → 1,234,567).
func comma(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// signedComma is comma with an explicit plus sign for non-negatives.
func signedComma(n int64) string {
	if n >= 0 {
		return "+" + comma(n)
	}
	return comma(n)
}

func quoteMessage(q types.Quote) string {
	return fmt.Sprintf(`%s 현재가
현재가: %s원
전일대비: %s원 (%+.2f%%)
거래량: %s주`,
		q.Name, comma(q.Price), signedComma(q.Change), q.ChangeRate, comma(q.Volume))
}

func balanceMessage(b types.Balance) string {
	return fmt.Sprintf(`계좌 정보
예수금: %s원
총 평가액: %s원
평가 손익: %s원 (%+.2f%%)`,
		comma(b.Deposit), comma(b.TotalValue), signedComma(b.ProfitLoss), b.ProfitRate)
}

func holdingsMessage(holdings []types.Holding) string {
	if len(holdings) == 0 {
		return "보유 중인 종목이 없습니다."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "보유 종목 (%d개)\n\n", len(holdings))
	for i, h := range holdings {
		fmt.Fprintf(&b, "%d. %s\n", i+1, h.Name)
		fmt.Fprintf(&b, "   %d주 | %s원\n", h.Qty, comma(h.Price))
		fmt.Fprintf(&b, "   손익: %s원 (%+.2f%%)\n\n", signedComma(h.ProfitLoss), h.ProfitRate)
	}
	return strings.TrimSpace(b.String())
}

func confirmMessage(p *types.PendingOrder) string {
	in := p.Intent
	qtyText := fmt.Sprintf("%d주", in.Quantity)
	if in.SellAll {
		qtyText = "전량"
	}
	var b strings.Builder
	b.WriteString("주문 확인\n\n")
	fmt.Fprintf(&b, "종목: %s\n", in.Security.Name)
	fmt.Fprintf(&b, "수량: %s\n", qtyText)
	fmt.Fprintf(&b, "방식: %s", in.PriceType.Korean())
	if in.PriceType == types.PriceLimit {
		fmt.Fprintf(&b, " %s원", comma(in.LimitPrice))
	}
	if p.EstimatedCost > 0 {
		fmt.Fprintf(&b, "\n예상금액: %s원", comma(p.EstimatedCost))
	}
	fmt.Fprintf(&b, "\n\n정말 %s하시겠어요?", in.Action.Korean())
	return b.String()
}

func candidatesMessage(candidates []types.Candidate) string {
	var b strings.Builder
	b.WriteString("어떤 종목을 말씀하시는 건가요?\n")
	for i, c := range candidates {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, c.Name, c.Code)
	}
	b.WriteString("종목 이름을 정확히 다시 말씀해주세요.")
	return b.String()
}
