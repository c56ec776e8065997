package krx

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/logger"
)

// listingURL serves the KRX listed-company roster as an HTML table
// (회사명, 종목코드, ...).
const listingURL = "https://kind.krx.co.kr/corpgeneral/corpList.do?method=download&searchType=13"

// Fetcher downloads the KRX company roster and turns it into a replacement
// directory entry list for a wholesale reload.
type Fetcher struct {
	url     string
	timeout time.Duration
}

func NewFetcher() *Fetcher {
	return &Fetcher{url: listingURL, timeout: 30 * time.Second}
}

// Fetch scrapes the roster. The result is a full replacement list; callers
// hand it to Directory.Load for an atomic swap.
func (f *Fetcher) Fetch(ctx context.Context) ([]directory.Entry, error) {
	c := colly.NewCollector(
		colly.UserAgent("Mozilla/5.0 (compatible; voice-trading-bot/1.0)"),
	)
	c.SetRequestTimeout(f.timeout)

	var entries []directory.Entry
	c.OnHTML("tr", func(e *colly.HTMLElement) {
		cells := e.DOM.Find("td")
		if cells.Length() < 2 {
			return
		}
		name := cellText(cells, 0)
		code := cellText(cells, 1)
		// Header and summary rows carry non-numeric text in the code column.
		if name == "" || !validCode(code) {
			return
		}
		// Codes arrive without their leading zeros.
		for len(code) < 6 {
			code = "0" + code
		}
		entries = append(entries, directory.Entry{Code: code, Name: name})
	})

	var fetchErr error
	c.OnError(func(_ *colly.Response, err error) {
		fetchErr = err
	})

	logger.Info(ctx, "Fetching KRX company roster", "url", f.url)
	if err := c.Visit(f.url); err != nil {
		return nil, fmt.Errorf("visiting KRX roster: %w", err)
	}
	c.Wait()
	if fetchErr != nil {
		return nil, fmt.Errorf("fetching KRX roster: %w", fetchErr)
	}
	if len(entries) == 0 {
		return nil, directory.ErrEmpty
	}

	logger.Info(ctx, "KRX roster fetched", "entries", len(entries))
	return entries, nil
}

func cellText(cells *goquery.Selection, i int) string {
	return strings.TrimSpace(cells.Eq(i).Text())
}

// validCode accepts a security code of up to six digits.
func validCode(code string) bool {
	if code == "" || len(code) > 6 {
		return false
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
