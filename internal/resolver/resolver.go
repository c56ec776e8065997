package resolver

import (
	"sort"
	"strings"

	"voice-trading-bot/internal/directory"
	"voice-trading-bot/internal/types"
)

// Config carries the fuzzy-matching policy. Threshold is the minimum
// similarity a directory entry must score to be considered at all; Margin
// is the lead the best candidate needs over the runner-up to win uniquely.
// Both are injected from configuration, never hard-coded at call sites.
type Config struct {
	Threshold float64
	Margin    float64
}

// Resolver maps a name fragment from an utterance to a directory entry.
type Resolver struct {
	dir *directory.Directory
	cfg Config
}

func New(dir *directory.Directory, cfg Config) *Resolver {
	return &Resolver{dir: dir, cfg: cfg}
}

type scored struct {
	idx   int // directory insertion order, the deterministic tie-break
	score float64
}

// Resolve picks the security named by the tokens not consumed by the
// intent classifier or the quantity extractor. It returns either a unique
// winner, an ambiguous candidate set (score descending), or nil with the
// reason resolution failed.
func (r *Resolver) Resolve(tokens []string, consumed map[int]bool) (*types.ResolvedSecurity, types.ReasonCode) {
	snap := r.dir.Current()
	if snap == nil || snap.Len() == 0 {
		return nil, types.ReasonDirectoryEmpty
	}

	free := make([]string, 0, len(tokens))
	for i, t := range tokens {
		if !consumed[i] {
			free = append(free, t)
		}
	}
	if len(free) == 0 {
		return nil, types.ReasonUnresolvedSecurity
	}

	// Exact canonical-name or alias hit is an immediate unique winner.
	// The longest contained name wins so 카카오뱅크 is not swallowed by 카카오.
	joined := strings.Join(free, " ")
	exactIdx, exactLen := -1, 0
	for i := 0; i < snap.Len(); i++ {
		for _, name := range snap.Names(i) {
			if strings.Contains(joined, name) {
				if n := len([]rune(name)); n > exactLen {
					exactIdx, exactLen = i, n
				}
			}
		}
	}
	if exactIdx >= 0 {
		e := snap.Entry(exactIdx)
		return &types.ResolvedSecurity{Code: e.Code, Name: e.Name, MatchScore: 1.0}, types.ReasonNone
	}

	// Fuzzy pass: longest fragments first, stable on token position.
	frags := append([]string(nil), free...)
	sort.SliceStable(frags, func(a, b int) bool {
		return len([]rune(frags[a])) > len([]rune(frags[b]))
	})

	for _, frag := range frags {
		candidates := r.score(snap, frag)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0]
		if len(candidates) == 1 || best.score-candidates[1].score >= r.cfg.Margin {
			e := snap.Entry(best.idx)
			return &types.ResolvedSecurity{Code: e.Code, Name: e.Name, MatchScore: best.score}, types.ReasonNone
		}
		out := make([]types.Candidate, len(candidates))
		for i, c := range candidates {
			e := snap.Entry(c.idx)
			out[i] = types.Candidate{Code: e.Code, Name: e.Name, Score: c.score}
		}
		return &types.ResolvedSecurity{Candidates: out}, types.ReasonAmbiguousSecurity
	}

	return nil, types.ReasonUnresolvedSecurity
}

// score returns every entry clearing the acceptance threshold for the
// fragment, ordered by score descending with insertion order breaking ties.
func (r *Resolver) score(snap *directory.Snapshot, frag string) []scored {
	var out []scored
	for i := 0; i < snap.Len(); i++ {
		best := 0.0
		for _, name := range snap.Names(i) {
			if s := Ratio(frag, name); s > best {
				best = s
			}
		}
		if best >= r.cfg.Threshold {
			out = append(out, scored{idx: i, score: best})
		}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].score > out[b].score
	})
	return out
}
