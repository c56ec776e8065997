package resolver

// Ratio scores the closeness of two strings in [0,1] as
// 2*LCS(a,b) / (len(a)+len(b)) over runes, 1.0 meaning identical.
// This is the same shape as Python difflib's SequenceMatcher ratio, which
// the directory matching thresholds were tuned against, so a short
// fragment like "전자" still scores 0.67 against "삼성전자".
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	lcs := lcsLength(ra, rb)
	return 2.0 * float64(lcs) / float64(len(ra)+len(rb))
}

// lcsLength computes the longest-common-subsequence length with a rolling
// single-row DP. Inputs are security-name sized, so O(n*m) is nothing.
func lcsLength(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
