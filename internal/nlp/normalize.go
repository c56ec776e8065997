package nlp

import (
	"strconv"
	"strings"
	"unicode"
)

// fillers are conversational tokens that carry no semantic weight for
// command interpretation and are dropped wholesale.
var fillers = map[string]struct{}{
	"좀":     {},
	"아":     {},
	"어":     {},
	"음":     {},
	"그냥":    {},
	"해줘":    {},
	"해주세요":  {},
	"주세요":   {},
	"알려줘":   {},
	"알려주세요": {},
	"보여줘":   {},
	"보여주세요": {},
}

// Normalize cleans a raw utterance into a token sequence: trims and
// collapses whitespace, strips edge punctuation, lowercases non-Korean
// text, drops filler tokens, and canonicalizes numeral+단위 pairs so that
// "십주", "10 주" and "10주" all come out as "10주". Never fails; empty
// or all-noise input yields an empty sequence.
func Normalize(raw string) []string {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return nil
	}

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		t := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if t == "" {
			continue
		}
		t = strings.ToLower(t)
		if _, skip := fillers[t]; skip {
			continue
		}
		tokens = append(tokens, t)
	}

	tokens = mergeQuantityUnits(tokens)
	for i, t := range tokens {
		tokens[i] = canonicalizeQuantity(t)
	}
	return tokens
}

// mergeQuantityUnits joins a numeral token with a following bare "주" so
// the extractor only ever sees the glued form.
func mergeQuantityUnits(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); i++ {
		if i+1 < len(tokens) && tokens[i+1] == "주" && IsNumeral(tokens[i]) {
			out = append(out, tokens[i]+"주")
			i++
			continue
		}
		out = append(out, tokens[i])
	}
	return out
}

// canonicalizeQuantity rewrites a Korean-numeral share count ("십주") to
// its Arabic form ("10주"). Tokens that are not numeral+주 pass through.
func canonicalizeQuantity(tok string) string {
	rest, ok := strings.CutSuffix(tok, "주")
	if !ok || rest == "" {
		return tok
	}
	n, err := ParseNumeral(rest)
	if err != nil {
		return tok
	}
	return strconv.Itoa(n) + "주"
}
