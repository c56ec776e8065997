package nlp

import (
	"regexp"
	"strconv"
	"strings"

	"voice-trading-bot/internal/types"
)

// quantityRe and wonPriceRe search inside the token rather than anchoring
// to it, so trailing particles survive: 10주만 still carries the quantity
// and 85000원에 still carries the limit price.
var (
	quantityRe  = regexp.MustCompile(`([0-9]+)주`)
	wonPriceRe  = regexp.MustCompile(`([0-9]{4,})원`)
	barePriceRe = regexp.MustCompile(`^([0-9]+)원?$`)
)

// sellAllWords mark a whole-position sell (전량 매도).
var sellAllWords = map[string]struct{}{
	"전부": {}, "전량": {}, "모두": {}, "다": {}, "올인": {},
}

// Extraction carries the quantity and price terms pulled from a token
// sequence. Invalid is set when a numeral is malformed or non-positive;
// the command is then downgraded rather than silently defaulted.
type Extraction struct {
	Quantity   int
	SellAll    bool
	PriceType  types.PriceType
	LimitPrice int64
	Invalid    bool
	Reason     types.ReasonCode
	Consumed   map[int]bool
}

// Extract pulls quantity, order-price type, and limit price from normalized
// tokens. Quantity is the first well-formed (integer, 주) pair. Price type
// defaults to Market unless an explicit figure with a price marker appears.
func Extract(tokens []string) Extraction {
	ext := Extraction{PriceType: types.PriceMarket, Consumed: map[int]bool{}}

	wantLimitFigure := false
	for i, tok := range tokens {
		// Explicit order-type markers. 시장가로/지정가로 keep their particle.
		if strings.HasPrefix(tok, "시장가") {
			ext.PriceType = types.PriceMarket
			ext.Consumed[i] = true
			continue
		}
		if rest, ok := strings.CutPrefix(tok, "지정가"); ok {
			ext.PriceType = types.PriceLimit
			ext.Consumed[i] = true
			// 지정가85000원 carries the figure inline; 지정가로 is a bare
			// marker with its particle and the figure follows separately.
			if digits := allDigits(strings.TrimSuffix(rest, "원")); digits != "" {
				ext.setLimitPrice(digits)
			} else {
				wantLimitFigure = true
			}
			continue
		}

		if m := quantityRe.FindStringSubmatch(tok); m != nil {
			ext.Consumed[i] = true
			if ext.Quantity == 0 && !ext.Invalid {
				n, err := strconv.Atoi(m[1])
				if err != nil || n <= 0 {
					ext.invalidate()
					continue
				}
				ext.Quantity = n
			}
			continue
		}

		if _, ok := sellAllWords[tok]; ok {
			ext.SellAll = true
			ext.Consumed[i] = true
			continue
		}

		if wantLimitFigure && barePriceRe.MatchString(tok) {
			ext.Consumed[i] = true
			ext.setLimitPrice(strings.TrimSuffix(tok, "원"))
			wantLimitFigure = false
			continue
		}

		// A standalone figure with the currency marker implies a limit order.
		if m := wonPriceRe.FindStringSubmatch(tok); m != nil {
			ext.Consumed[i] = true
			ext.PriceType = types.PriceLimit
			ext.setLimitPrice(m[1])
			continue
		}
	}

	// 지정가 was stated but no usable figure followed.
	if wantLimitFigure && ext.LimitPrice == 0 {
		ext.invalidate()
	}
	return ext
}

// allDigits returns s when it is all ASCII digits, else "".
func allDigits(s string) string {
	if s == "" {
		return ""
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return ""
		}
	}
	return s
}

func (e *Extraction) setLimitPrice(digits string) {
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || n <= 0 {
		e.invalidate()
		return
	}
	e.LimitPrice = n
}

func (e *Extraction) invalidate() {
	e.Invalid = true
	e.Reason = types.ReasonInvalidNumeral
}
