package krx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

const rosterPage = `<html><body><table>
<tr><th>회사명</th><th>종목코드</th><th>업종</th></tr>
<tr><td>삼성전자</td><td>5930</td><td>전자부품</td></tr>
<tr><td>카카오</td><td>35720</td><td>서비스</td></tr>
<tr><td>합계</td><td>2개사</td><td></td></tr>
</table></body></html>`

func TestFetchSkipsNonDataRows(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(rosterPage))
	}))
	defer ts.Close()

	f := NewFetcher()
	f.url = ts.URL

	entries, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d: %+v", len(entries), entries)
	}
	if entries[0].Code != "005930" || entries[0].Name != "삼성전자" {
		t.Errorf("codes should be zero-padded to six digits: %+v", entries[0])
	}
	if entries[1].Code != "035720" {
		t.Errorf("unexpected second entry: %+v", entries[1])
	}
}

func TestValidCode(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"005930", true},
		{"5930", true},
		{"", false},
		{"2개사", false},
		{"종목코드", false},
		{"0059301", false},
	}
	for _, c := range cases {
		if got := validCode(c.in); got != c.want {
			t.Errorf("validCode(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
