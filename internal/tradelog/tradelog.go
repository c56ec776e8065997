package tradelog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var mu sync.Mutex

// kst pins log file rollover to exchange time.
var kst = time.FixedZone("KST", 9*3600)

// IntentEntry records one parsed command, recognized or not.
type IntentEntry struct {
	Time       string         `json:"time"`
	SessionID  string         `json:"session_id"`
	Action     string         `json:"action"`
	Code       string         `json:"code,omitempty"`
	Name       string         `json:"name,omitempty"`
	Qty        int            `json:"qty,omitempty"`
	SellAll    bool           `json:"sell_all,omitempty"`
	PriceType  string         `json:"price_type,omitempty"`
	LimitPrice int64          `json:"limit_price,omitempty"`
	Confidence float64        `json:"confidence"`
	Reason     string         `json:"reason,omitempty"`
	RawText    string         `json:"raw_text"`
	Extra      map[string]any `json:"extra,omitempty"`
}

// OrderEntry records one dispatched order and the broker's verdict.
type OrderEntry struct {
	Time       string `json:"time"`
	SessionID  string `json:"session_id"`
	Side       string `json:"side"`
	Code       string `json:"code"`
	Name       string `json:"name,omitempty"`
	Qty        int    `json:"qty"`
	SellAll    bool   `json:"sell_all,omitempty"`
	PriceType  string `json:"price_type"`
	LimitPrice int64  `json:"limit_price,omitempty"`
	OrderID    string `json:"order_id,omitempty"`
	Status     string `json:"status"`
}

func logDir() string {
	if v := os.Getenv("TRADER_LOG_DIR"); v != "" {
		return v
	}
	return "logs"
}

func ordersFilepath(t time.Time) string {
	d := t.In(kst).Format("2006-01-02")
	return filepath.Join(logDir(), d+".txt")
}

func intentsFilepath(t time.Time) string {
	d := t.In(kst).Format("2006-01-02")
	return filepath.Join(logDir(), "intents", d+".txt")
}

// AppendIntent appends a parsed-intent record to today's intent log.
func AppendIntent(e IntentEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(kst)
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendJSON(intentsFilepath(now), e)
}

// AppendOrder appends an order record to today's order log.
func AppendOrder(e OrderEntry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().In(kst)
	e.Time = now.Format("2006-01-02 15:04:05")
	return appendJSON(ordersFilepath(now), e)
}

func appendJSON(p string, v any) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(v)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips log files older than retentionDays and removes the
// originals. Zero or negative retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil {
			return nil
		}
		cutoff := time.Now().AddDate(0, 0, -retentionDays)
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()
		out, e4 := os.Create(gz)
		if e4 != nil {
			return nil
		}
		defer out.Close()
		zw := gzip.NewWriter(out)
		if _, e5 := io.Copy(zw, in); e5 != nil {
			zw.Close()
			return nil
		}
		if e6 := zw.Close(); e6 != nil {
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}
