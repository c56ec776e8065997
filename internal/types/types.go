package types

import "time"

// Action is the kind of command a user utterance resolves to.
type Action string

const (
	ActionBuy      Action = "BUY"
	ActionSell     Action = "SELL"
	ActionPrice    Action = "PRICE"
	ActionBalance  Action = "BALANCE"
	ActionHoldings Action = "HOLDINGS"
	ActionUnknown  Action = "UNKNOWN"
)

// IsTrade reports whether the action places an order and therefore
// requires explicit confirmation before dispatch.
func (a Action) IsTrade() bool {
	return a == ActionBuy || a == ActionSell
}

// Korean returns the label used in user-facing messages.
func (a Action) Korean() string {
	switch a {
	case ActionBuy:
		return "매수"
	case ActionSell:
		return "매도"
	case ActionPrice:
		return "현재가 조회"
	case ActionBalance:
		return "잔고 조회"
	case ActionHoldings:
		return "보유종목 조회"
	}
	return "알 수 없음"
}

type PriceType string

const (
	PriceMarket PriceType = "MARKET"
	PriceLimit  PriceType = "LIMIT"
)

func (p PriceType) Korean() string {
	if p == PriceLimit {
		return "지정가"
	}
	return "시장가"
}

// ReasonCode identifies why a command could not proceed. All reasons are
// user-recoverable; the engine never fails hard on malformed input.
type ReasonCode string

const (
	ReasonNone                 ReasonCode = ""
	ReasonUnrecognizedIntent   ReasonCode = "UNRECOGNIZED_INTENT"
	ReasonUnresolvedSecurity   ReasonCode = "UNRESOLVED_SECURITY"
	ReasonAmbiguousSecurity    ReasonCode = "AMBIGUOUS_SECURITY"
	ReasonMissingQuantity      ReasonCode = "MISSING_QUANTITY"
	ReasonInvalidNumeral       ReasonCode = "INVALID_NUMERAL"
	ReasonConfirmationExpired  ReasonCode = "CONFIRMATION_EXPIRED"
	ReasonConfirmationMismatch ReasonCode = "CONFIRMATION_MISMATCH"
	ReasonDirectoryEmpty       ReasonCode = "DIRECTORY_EMPTY"
)

// Candidate is one scored directory entry from fuzzy resolution.
type Candidate struct {
	Code  string  `json:"code"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// ResolvedSecurity is the outcome of resolving a name fragment against the
// security directory. Either Code/Name hold a unique winner, or Candidates
// holds the ambiguous set (score descending); never both.
type ResolvedSecurity struct {
	Code       string      `json:"code,omitempty"`
	Name       string      `json:"name,omitempty"`
	MatchScore float64     `json:"match_score,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

func (r *ResolvedSecurity) Ambiguous() bool {
	return r != nil && len(r.Candidates) > 0
}

// CommandIntent is the structured, fully-parsed form of one utterance.
// Immutable after construction. Quantity is zero when absent; SellAll marks
// 전량/전부 style whole-position sells. LimitPrice is in KRW, which has no
// sub-unit, so integer arithmetic is exact.
type CommandIntent struct {
	Action     Action            `json:"action"`
	Security   *ResolvedSecurity `json:"security,omitempty"`
	Quantity   int               `json:"quantity,omitempty"`
	SellAll    bool              `json:"sell_all,omitempty"`
	PriceType  PriceType         `json:"price_type,omitempty"`
	LimitPrice int64             `json:"limit_price,omitempty"`
	RawText    string            `json:"raw_text"`
	Confidence float64           `json:"confidence"`
	Reason     ReasonCode        `json:"reason,omitempty"`
}

// PendingOrder is a trade intent parked in a session's confirmation slot.
// At most one unexpired PendingOrder exists per session.
type PendingOrder struct {
	SessionID     string        `json:"session_id"`
	Intent        CommandIntent `json:"intent"`
	EstimatedCost int64         `json:"estimated_cost,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	ExpiresAt     time.Time     `json:"expires_at"`
}

// Response is what the engine hands back to the transport for rendering
// and optional speech synthesis.
type Response struct {
	Type       string         `json:"type"` // message | confirm | clarify
	Message    string         `json:"message"`
	Speak      bool           `json:"speak"`
	Reason     ReasonCode     `json:"reason,omitempty"`
	Intent     *CommandIntent `json:"intent,omitempty"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Order      *OrderResp     `json:"order,omitempty"`
}

type OrderReq struct {
	Code       string
	Side       Action
	Qty        int
	SellAll    bool
	PriceType  PriceType
	LimitPrice int64
}

type OrderResp struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Quote is a current-price snapshot for one security.
type Quote struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Price      int64   `json:"price"`
	Change     int64   `json:"change"`
	ChangeRate float64 `json:"change_rate"`
	Volume     int64   `json:"volume"`
}

type Balance struct {
	Deposit    int64   `json:"deposit"`
	TotalValue int64   `json:"total_value"`
	ProfitLoss int64   `json:"profit_loss"`
	ProfitRate float64 `json:"profit_rate"`
}

type Holding struct {
	Code       string  `json:"code"`
	Name       string  `json:"name"`
	Qty        int     `json:"qty"`
	AvgPrice   int64   `json:"avg_price"`
	Price      int64   `json:"price"`
	ProfitLoss int64   `json:"profit_loss"`
	ProfitRate float64 `json:"profit_rate"`
}

// ChatTurn is one logged message of a session, user or bot side.
type ChatTurn struct {
	SessionID string    `json:"session_id"`
	Sender    string    `json:"sender"` // user | bot
	Message   string    `json:"message"`
	At        time.Time `json:"at"`
}
