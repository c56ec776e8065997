package kis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"voice-trading-bot/internal/api"
	"voice-trading-bot/internal/interfaces"
	"voice-trading-bot/internal/logger"
	"voice-trading-bot/internal/types"
)

const (
	realBaseURL  = "https://openapi.koreainvestment.com:9443"
	paperBaseURL = "https://openapivts.koreainvestment.com:29443"

	// Transaction IDs differ between real and paper trading: the paper
	// variants swap the leading T for V.
	trPrice       = "FHKST01010100"
	trBuyReal     = "TTTC0802U"
	trBuyPaper    = "VTTC0802U"
	trSellReal    = "TTTC0801U"
	trSellPaper   = "VTTC0801U"
	trBalanceReal = "TTTC8908R"
	trBalancePap  = "VTTC8908R"
	trHoldReal    = "TTTC8434R"
	trHoldPaper   = "VTTC8434R"
)

// Params configures the Korea Investment & Securities client.
type Params struct {
	AppKey    string
	AppSecret string
	AccountNo string // 8-digit account, product code 01 assumed
	Real      bool   // false targets the paper-trading endpoints
}

// KIS talks to the Korea Investment & Securities Open API.
type KIS struct {
	p   Params
	c   *api.Client
	mu  sync.Mutex
	tok string
	exp time.Time
}

var _ interfaces.Broker = (*KIS)(nil)

func New(p Params) *KIS {
	base := paperBaseURL
	if p.Real {
		base = realBaseURL
	}
	return &KIS{
		p: p,
		c: api.NewClient(
			api.WithBaseURL(base),
			api.WithTimeout(10*time.Second),
			api.WithLogging(true),
		),
	}
}

// ensureToken fetches or refreshes the OAuth access token.
func (k *KIS) ensureToken(ctx context.Context) (string, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tok != "" && time.Now().Before(k.exp) {
		return k.tok, nil
	}

	resp, err := k.c.Do(api.NewRequest(http.MethodPost, "/oauth2/tokenP").
		WithContext(ctx).
		WithBody(map[string]string{
			"grant_type": "client_credentials",
			"appkey":     k.p.AppKey,
			"appsecret":  k.p.AppSecret,
		}))
	if err != nil {
		return "", fmt.Errorf("issuing access token: %w", err)
	}

	var body tokenResponse
	if err := resp.Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("token response had no access_token")
	}

	ttl := time.Duration(body.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	// Refresh a little early so in-flight calls never carry a dying token.
	k.tok = body.AccessToken
	k.exp = time.Now().Add(ttl - 5*time.Minute)
	logger.Info(ctx, "KIS access token issued", "expires_in_s", body.ExpiresIn)
	return k.tok, nil
}

func (k *KIS) authHeaders(ctx context.Context, trID string) (map[string]string, error) {
	tok, err := k.ensureToken(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"authorization": "Bearer " + tok,
		"appkey":        k.p.AppKey,
		"appsecret":     k.p.AppSecret,
		"tr_id":         trID,
		"custtype":      "P",
	}, nil
}

func (k *KIS) CurrentPrice(ctx context.Context, code string) (types.Quote, error) {
	headers, err := k.authHeaders(ctx, trPrice)
	if err != nil {
		return types.Quote{}, err
	}

	req := api.NewRequest(http.MethodGet, "/uapi/domestic-stock/v1/quotations/inquire-price").
		WithContext(ctx).
		WithQuery("FID_COND_MRKT_DIV_CODE", "J").
		WithQuery("FID_INPUT_ISCD", code)
	for key, v := range headers {
		req.WithHeader(key, v)
	}

	resp, err := k.c.Do(req)
	if err != nil {
		return types.Quote{}, err
	}
	var body priceResponse
	if err := resp.Decode(&body); err != nil {
		return types.Quote{}, err
	}
	if body.RtCd != "0" {
		return types.Quote{}, fmt.Errorf("price lookup rejected: %s", body.Msg1)
	}

	out := body.Output
	return types.Quote{
		Code:       code,
		Name:       out.Name,
		Price:      out.Price.Int64(),
		Change:     out.Change.Int64(),
		ChangeRate: out.ChangeRate.Float64(),
		Volume:     out.Volume.Int64(),
	}, nil
}

func (k *KIS) Balance(ctx context.Context) (types.Balance, error) {
	trID := trBalancePap
	if k.p.Real {
		trID = trBalanceReal
	}
	headers, err := k.authHeaders(ctx, trID)
	if err != nil {
		return types.Balance{}, err
	}

	req := api.NewRequest(http.MethodGet, "/uapi/domestic-stock/v1/trading/inquire-psbl-order").
		WithContext(ctx).
		WithQuery("CANO", k.p.AccountNo).
		WithQuery("ACNT_PRDT_CD", "01").
		WithQuery("PDNO", "").
		WithQuery("ORD_UNPR", "0").
		WithQuery("ORD_DVSN", "01").
		WithQuery("CMA_EVLU_AMT_ICLD_YN", "Y").
		WithQuery("OVRS_ICLD_YN", "N")
	for key, v := range headers {
		req.WithHeader(key, v)
	}

	resp, err := k.c.Do(req)
	if err != nil {
		return types.Balance{}, err
	}
	var body balanceResponse
	if err := resp.Decode(&body); err != nil {
		return types.Balance{}, err
	}
	if body.RtCd != "0" {
		return types.Balance{}, fmt.Errorf("balance lookup rejected: %s", body.Msg1)
	}

	out := body.Output
	return types.Balance{
		Deposit:    out.Deposit.Int64(),
		TotalValue: out.TotalValue.Int64(),
		ProfitLoss: out.ProfitLoss.Int64(),
		ProfitRate: out.ProfitRate.Float64(),
	}, nil
}

func (k *KIS) Holdings(ctx context.Context) ([]types.Holding, error) {
	trID := trHoldPaper
	if k.p.Real {
		trID = trHoldReal
	}
	headers, err := k.authHeaders(ctx, trID)
	if err != nil {
		return nil, err
	}

	req := api.NewRequest(http.MethodGet, "/uapi/domestic-stock/v1/trading/inquire-balance").
		WithContext(ctx).
		WithQuery("CANO", k.p.AccountNo).
		WithQuery("ACNT_PRDT_CD", "01").
		WithQuery("AFHR_FLPR_YN", "N").
		WithQuery("OFL_YN", "").
		WithQuery("INQR_DVSN", "02").
		WithQuery("UNPR_DVSN", "01").
		WithQuery("FUND_STTL_ICLD_YN", "N").
		WithQuery("FNCG_AMT_AUTO_RDPT_YN", "N").
		WithQuery("PRCS_DVSN", "01").
		WithQuery("CTX_AREA_FK100", "").
		WithQuery("CTX_AREA_NK100", "")
	for key, v := range headers {
		req.WithHeader(key, v)
	}

	resp, err := k.c.Do(req)
	if err != nil {
		return nil, err
	}
	var body holdingsResponse
	if err := resp.Decode(&body); err != nil {
		return nil, err
	}
	if body.RtCd != "0" {
		return nil, fmt.Errorf("holdings lookup rejected: %s", body.Msg1)
	}

	holdings := make([]types.Holding, 0, len(body.Output1))
	for _, item := range body.Output1 {
		qty := int(item.Qty.Int64())
		if qty <= 0 {
			continue
		}
		holdings = append(holdings, types.Holding{
			Code:       item.Code,
			Name:       item.Name,
			Qty:        qty,
			AvgPrice:   item.AvgPrice.Int64(),
			Price:      item.Price.Int64(),
			ProfitLoss: item.ProfitLoss.Int64(),
			ProfitRate: item.ProfitRate.Float64(),
		})
	}
	return holdings, nil
}

func (k *KIS) PlaceOrder(ctx context.Context, req types.OrderReq) (types.OrderResp, error) {
	qty := req.Qty
	if req.SellAll {
		// 전량 매도 needs the concrete position size.
		holdings, err := k.Holdings(ctx)
		if err != nil {
			return types.OrderResp{}, fmt.Errorf("resolving position for sell-all: %w", err)
		}
		qty = 0
		for _, h := range holdings {
			if h.Code == req.Code {
				qty = h.Qty
				break
			}
		}
		if qty <= 0 {
			return types.OrderResp{}, errors.New("no position to sell")
		}
	}
	if qty <= 0 {
		return types.OrderResp{}, errors.New("order quantity must be positive")
	}

	var trID string
	switch {
	case req.Side == types.ActionBuy && k.p.Real:
		trID = trBuyReal
	case req.Side == types.ActionBuy:
		trID = trBuyPaper
	case req.Side == types.ActionSell && k.p.Real:
		trID = trSellReal
	case req.Side == types.ActionSell:
		trID = trSellPaper
	default:
		return types.OrderResp{}, fmt.Errorf("unsupported order side %s", req.Side)
	}

	headers, err := k.authHeaders(ctx, trID)
	if err != nil {
		return types.OrderResp{}, err
	}

	ordDvsn, ordUnpr := "01", "0" // market
	if req.PriceType == types.PriceLimit {
		ordDvsn = "00"
		ordUnpr = fmt.Sprintf("%d", req.LimitPrice)
	}

	httpReq := api.NewRequest(http.MethodPost, "/uapi/domestic-stock/v1/trading/order-cash").
		WithContext(ctx).
		WithBody(map[string]string{
			"CANO":         k.p.AccountNo,
			"ACNT_PRDT_CD": "01",
			"PDNO":         req.Code,
			"ORD_DVSN":     ordDvsn,
			"ORD_QTY":      fmt.Sprintf("%d", qty),
			"ORD_UNPR":     ordUnpr,
		})
	for key, v := range headers {
		httpReq.WithHeader(key, v)
	}

	resp, err := k.c.Do(httpReq)
	if err != nil {
		return types.OrderResp{}, err
	}
	var body orderResponse
	if err := resp.Decode(&body); err != nil {
		return types.OrderResp{}, err
	}
	if body.RtCd != "0" {
		return types.OrderResp{
			Status:  "REJECTED",
			Message: fmt.Sprintf("주문 실패: %s", body.Msg1),
		}, nil
	}

	return types.OrderResp{
		OrderID: body.Output.OrderNo,
		Status:  "ACCEPTED",
		Message: fmt.Sprintf("%s 주문 성공 (주문번호: %s)", req.Side.Korean(), body.Output.OrderNo),
	}, nil
}
