// Package market maps free-text geography mentions to a market tier and
// hourly rate. The cascade is deterministic and backed only by the static
// tables in this package; there is no learned component.
package market

import (
	"sort"
	"strings"
)

// DefaultFuzzyCutoff is the minimum edit-similarity ratio accepted by the
// typo-tolerant stage.
const DefaultFuzzyCutoff = 0.86

// Resolution is a resolved (country, tier, rate) triple.
type Resolution struct {
	Country    string
	Tier       string // "A" | "B" | "C"
	HourlyRate int
}

// Resolver resolves countries from free text. The zero value is not usable;
// call NewResolver.
type Resolver struct {
	fuzzy  bool
	cutoff float64

	iso2Codes  []string
	iso3Codes  []string
	nameTerms  []string // alias keys + canonical names, longest first
	candidates []string // fuzzy candidate set, sorted for determinism
}

func NewResolver() *Resolver {
	r := &Resolver{fuzzy: true, cutoff: DefaultFuzzyCutoff}

	r.iso2Codes = sortedKeys(iso2ToName)
	r.iso3Codes = sortedKeys(iso3ToName)

	seen := map[string]bool{}
	for alias := range aliases {
		seen[alias] = true
	}
	for _, set := range []map[string]bool{marketA, marketB, marketCKnown} {
		for name := range set {
			seen[name] = true
		}
	}
	for term := range seen {
		r.nameTerms = append(r.nameTerms, term)
		r.candidates = append(r.candidates, term)
	}
	// Longest candidate first so "united arab emirates" wins over "uae"
	// fragments and "new zealand" over "zealand"-like windows.
	sort.Slice(r.nameTerms, func(i, j int) bool {
		if len(r.nameTerms[i]) != len(r.nameTerms[j]) {
			return len(r.nameTerms[i]) > len(r.nameTerms[j])
		}
		return r.nameTerms[i] < r.nameTerms[j]
	})
	sort.Strings(r.candidates)
	return r
}

// Resolve runs the cascade: uppercase ISO2 tokens, case-insensitive ISO3
// tokens, full names and aliases on word boundaries (longest first), then a
// fuzzy pass over 1-3 word windows. First match wins. ok is false when
// nothing at any stage matched.
func (r *Resolver) Resolve(text string) (Resolution, bool) {
	if strings.TrimSpace(text) == "" {
		return Resolution{}, false
	}

	// 1) ISO2, uppercase tokens only.
	for _, code := range r.iso2Codes {
		if containsToken(text, code, true) {
			return r.classify(iso2ToName[code]), true
		}
	}

	low := strings.ToLower(text)

	// 2) ISO3, case-insensitive.
	for _, code := range r.iso3Codes {
		if containsToken(low, strings.ToLower(code), true) {
			return r.classify(iso3ToName[code]), true
		}
	}

	// 3) Full names and aliases on word boundaries.
	for _, term := range r.nameTerms {
		if containsToken(low, term, false) {
			return r.classify(canonical(term)), true
		}
	}

	// 4) Fuzzy windows for minor typos.
	if r.fuzzy {
		if canon, ok := r.fuzzyMatch(low); ok {
			return r.classify(canon), true
		}
	}

	return Resolution{}, false
}

func (r *Resolver) classify(canon string) Resolution {
	tier := "C"
	switch {
	case marketA[canon]:
		tier = "A"
	case marketB[canon]:
		tier = "B"
	}
	return Resolution{Country: canon, Tier: tier, HourlyRate: marketRate[tier]}
}

func (r *Resolver) fuzzyMatch(low string) (string, bool) {
	words := extractWords(low)
	if len(words) == 0 {
		return "", false
	}

	// Longest windows first so multi-word names beat their fragments.
	for size := 3; size >= 1; size-- {
		for i := 0; i+size <= len(words); i++ {
			window := strings.Join(words[i:i+size], " ")
			best, bestScore := "", 0.0
			for _, cand := range r.candidates {
				score := similarityRatio(window, cand)
				if score >= r.cutoff && score > bestScore {
					best, bestScore = cand, score
				}
			}
			if best != "" {
				return canonical(best), true
			}
		}
	}
	return "", false
}

func canonical(term string) string {
	if canon, ok := aliases[term]; ok {
		return canon
	}
	return term
}

// containsToken reports whether term occurs in text delimited by non-word
// characters. caseSensitive controls the comparison; callers pass lowercased
// text otherwise.
func containsToken(text, term string, caseSensitive bool) bool {
	haystack := text
	needle := term
	if !caseSensitive {
		haystack = strings.ToLower(text)
		needle = strings.ToLower(term)
	}
	for from := 0; ; {
		idx := strings.Index(haystack[from:], needle)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(needle)
		if !isWordChar(byteAt(haystack, start-1)) && !isWordChar(byteAt(haystack, end)) {
			return true
		}
		from = start + 1
	}
}

func byteAt(s string, i int) byte {
	if i < 0 || i >= len(s) {
		return 0
	}
	return s[i]
}

func isWordChar(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func extractWords(low string) []string {
	var words []string
	var cur strings.Builder
	for i := 0; i < len(low); i++ {
		b := low[i]
		if b >= 'a' && b <= 'z' {
			cur.WriteByte(b)
			continue
		}
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// similarityRatio is 2*M/(len(a)+len(b)) where M is the length of the
// longest common subsequence, the same shape as difflib-style quick ratios.
func similarityRatio(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
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
	lcs := prev[len(b)]
	return 2 * float64(lcs) / float64(len(a)+len(b))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
