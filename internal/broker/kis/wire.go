package kis

import (
	"strconv"
	"strings"
)

// numeric is a KIS wire number. The Open API encodes every figure as a
// decimal string, signed figures included.
type numeric string

func (n numeric) Int64() int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(string(n)), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (n numeric) Float64() float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
	if err != nil {
		return 0
	}
	return v
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type priceResponse struct {
	RtCd   string `json:"rt_cd"`
	Msg1   string `json:"msg1"`
	Output struct {
		Name       string  `json:"hts_kor_isnm"`
		Price      numeric `json:"stck_prpr"`
		Change     numeric `json:"prdy_vrss"`
		ChangeRate numeric `json:"prdy_ctrt"`
		Volume     numeric `json:"acml_vol"`
	} `json:"output"`
}

type balanceResponse struct {
	RtCd   string `json:"rt_cd"`
	Msg1   string `json:"msg1"`
	Output struct {
		Deposit    numeric `json:"dnca_tot_amt"`
		TotalValue numeric `json:"tot_evlu_amt"`
		ProfitLoss numeric `json:"evlu_pfls_smtl_amt"`
		ProfitRate numeric `json:"tot_evlu_pfls_rt"`
	} `json:"output"`
}

type holdingsResponse struct {
	RtCd    string `json:"rt_cd"`
	Msg1    string `json:"msg1"`
	Output1 []struct {
		Code       string  `json:"pdno"`
		Name       string  `json:"prdt_name"`
		Qty        numeric `json:"hldg_qty"`
		AvgPrice   numeric `json:"pchs_avg_pric"`
		Price      numeric `json:"prpr"`
		ProfitLoss numeric `json:"evlu_pfls_amt"`
		ProfitRate numeric `json:"evlu_pfls_rt"`
	} `json:"output1"`
}

type orderResponse struct {
	RtCd   string `json:"rt_cd"`
	Msg1   string `json:"msg1"`
	Output struct {
		OrderNo string `json:"ODNO"`
	} `json:"output"`
}
