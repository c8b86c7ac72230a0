package match

import "strings"

// containmentEpsilon keeps the length-ratio division defined for
// pathological inputs.
const containmentEpsilon = 1e-9

// EditSimilarity returns a Jaro-Winkler similarity in [0,1] between the
// normalized forms of a and b. Exact matches score 1.
func EditSimilarity(a, b string) float64 {
	s1 := []rune(Normalize(a))
	s2 := []rune(Normalize(b))
	if string(s1) == string(s2) {
		return 1.0
	}
	len1, len2 := len(s1), len(s2)
	if len1 == 0 || len2 == 0 {
		return 0
	}

	// Match window half-width per the classic Jaro definition.
	window := max(len1, len2)/2 - 1
	if window < 0 {
		window = 0
	}
	matched1 := make([]bool, len1)
	matched2 := make([]bool, len2)
	matches := 0
	for i := 0; i < len1; i++ {
		lo := i - window
		if lo < 0 {
			lo = 0
		}
		hi := i + window + 1
		if hi > len2 {
			hi = len2
		}
		for j := lo; j < hi; j++ {
			if matched2[j] || s1[i] != s2[j] {
				continue
			}
			matched1[i] = true
			matched2[j] = true
			matches++
			break
		}
	}
	if matches == 0 {
		return 0
	}

	// Re-walk the matched subsequences in original order; every position
	// mismatch between them counts toward transpositions (halved).
	ms1 := make([]rune, 0, matches)
	ms2 := make([]rune, 0, matches)
	for i, ok := range matched1 {
		if ok {
			ms1 = append(ms1, s1[i])
		}
	}
	for j, ok := range matched2 {
		if ok {
			ms2 = append(ms2, s2[j])
		}
	}
	mismatches := 0
	for k := range ms1 {
		if ms1[k] != ms2[k] {
			mismatches++
		}
	}
	trans := float64(mismatches) / 2

	m := float64(matches)
	jaro := (m/float64(len1) + m/float64(len2) + (m-trans)/m) / 3

	// Winkler boost for a shared prefix, capped at 4 runes.
	prefix := 0
	for prefix < 4 && prefix < len1 && prefix < len2 && s1[prefix] == s2[prefix] {
		prefix++
	}
	return jaro + 0.1*float64(prefix)*(1-jaro)
}

// TokenOverlap returns the Jaccard similarity of the token sets of a and
// b; 0 when either set is empty.
func TokenOverlap(a, b string) float64 {
	ta := Tokenize(a)
	tb := Tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	inter := 0
	for t := range ta {
		if _, ok := tb[t]; ok {
			inter++
		}
	}
	union := len(ta) + len(tb) - inter
	return float64(inter) / float64(union)
}

// Containment scores a pattern fully contained in a longer text: at least
// 0.7 and at most 0.95, scaled by length ratio. Equal strings score 1,
// non-substrings 0.
func Containment(text, pattern string) float64 {
	t := Normalize(text)
	p := Normalize(pattern)
	if t == "" || p == "" {
		return 0
	}
	if t == p {
		return 1.0
	}
	if !strings.Contains(t, p) {
		return 0
	}
	ratio := float64(len([]rune(p))) / (float64(len([]rune(t))) + containmentEpsilon)
	if ratio < 0.7 {
		ratio = 0.7
	}
	if ratio > 0.95 {
		ratio = 0.95
	}
	return ratio
}
