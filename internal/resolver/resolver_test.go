package resolver

import (
	"testing"

	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/types"
)

func testDirectory(t *testing.T) *directory.Directory {
	t.Helper()
	dir := directory.New()
	err := dir.Load([]directory.Entry{
		{Code: "005930", Name: "삼성전자"},
		{Code: "066570", Name: "LG전자"},
		{Code: "035720", Name: "카카오"},
		{Code: "323410", Name: "카카오뱅크"},
		{Code: "000660", Name: "SK하이닉스", Aliases: []string{"하이닉스"}},
	})
	if err != nil {
		t.Fatalf("failed to load directory: %v", err)
	}
	return dir
}

func testResolver(t *testing.T) *Resolver {
	return New(testDirectory(t), Config{Threshold: 0.60, Margin: 0.15})
}

func TestResolveExactName(t *testing.T) {
	sec, reason := testResolver(t).Resolve([]string{"삼성전자", "현재가"}, map[int]bool{1: true})
	if reason != types.ReasonNone {
		t.Fatalf("unexpected reason %s", reason)
	}
	if sec.Code != "005930" {
		t.Errorf("expected 005930, got %s", sec.Code)
	}
	if sec.MatchScore != 1.0 {
		t.Errorf("exact match should score 1.0, got %f", sec.MatchScore)
	}
}

func TestResolveAlias(t *testing.T) {
	sec, reason := testResolver(t).Resolve([]string{"하이닉스"}, nil)
	if reason != types.ReasonNone {
		t.Fatalf("unexpected reason %s", reason)
	}
	if sec.Code != "000660" {
		t.Errorf("expected 000660, got %s", sec.Code)
	}
}

func TestResolveLongestExactWins(t *testing.T) {
	// 카카오뱅크 must not be swallowed by the shorter 카카오.
	sec, reason := testResolver(t).Resolve([]string{"카카오뱅크"}, nil)
	if reason != types.ReasonNone {
		t.Fatalf("unexpected reason %s", reason)
	}
	if sec.Code != "323410" {
		t.Errorf("expected 카카오뱅크 (323410), got %s (%s)", sec.Name, sec.Code)
	}
}

func TestResolveTypo(t *testing.T) {
	sec, reason := testResolver(t).Resolve([]string{"삼송전자"}, nil)
	if reason != types.ReasonNone {
		t.Fatalf("unexpected reason %s", reason)
	}
	if sec.Code != "005930" {
		t.Errorf("expected 005930, got %s", sec.Code)
	}
	if sec.MatchScore != 0.75 {
		t.Errorf("expected score 0.75, got %f", sec.MatchScore)
	}
}

func TestResolveAmbiguous(t *testing.T) {
	sec, reason := testResolver(t).Resolve([]string{"전자"}, nil)
	if reason != types.ReasonAmbiguousSecurity {
		t.Fatalf("expected AMBIGUOUS_SECURITY, got %s", reason)
	}
	if !sec.Ambiguous() {
		t.Fatal("expected candidate set")
	}
	if len(sec.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(sec.Candidates))
	}
	// Equal scores break ties on directory order.
	if sec.Candidates[0].Code != "005930" || sec.Candidates[1].Code != "066570" {
		t.Errorf("unexpected candidate order: %v", sec.Candidates)
	}
}

func TestResolveDeterministic(t *testing.T) {
	r := testResolver(t)
	first, _ := r.Resolve([]string{"전자"}, nil)
	for i := 0; i < 10; i++ {
		again, _ := r.Resolve([]string{"전자"}, nil)
		if len(again.Candidates) != len(first.Candidates) {
			t.Fatal("candidate count changed between runs")
		}
		for j := range again.Candidates {
			if again.Candidates[j].Code != first.Candidates[j].Code {
				t.Fatal("candidate order changed between runs")
			}
		}
	}
}

func TestResolveNoFreeTokens(t *testing.T) {
	_, reason := testResolver(t).Resolve([]string{"현재가"}, map[int]bool{0: true})
	if reason != types.ReasonUnresolvedSecurity {
		t.Errorf("expected UNRESOLVED_SECURITY, got %s", reason)
	}
}

func TestResolveNothingCloseEnough(t *testing.T) {
	_, reason := testResolver(t).Resolve([]string{"아무회사"}, nil)
	if reason != types.ReasonUnresolvedSecurity {
		t.Errorf("expected UNRESOLVED_SECURITY, got %s", reason)
	}
}

func TestResolveEmptyDirectory(t *testing.T) {
	r := New(directory.New(), Config{Threshold: 0.60, Margin: 0.15})
	_, reason := r.Resolve([]string{"삼성전자"}, nil)
	if reason != types.ReasonDirectoryEmpty {
		t.Errorf("expected DIRECTORY_EMPTY, got %s", reason)
	}
}

func TestResolveThresholdInjectable(t *testing.T) {
	// With a stricter threshold the typo no longer clears acceptance.
	r := New(testDirectory(t), Config{Threshold: 0.80, Margin: 0.15})
	_, reason := r.Resolve([]string{"삼송전자"}, nil)
	if reason != types.ReasonUnresolvedSecurity {
		t.Errorf("expected UNRESOLVED_SECURITY at threshold 0.80, got %s", reason)
	}
}
