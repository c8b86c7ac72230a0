package match

// Threshold constants for response selection. Both bands currently drive
// the same action; they are kept distinct so confident and borderline
// matches can diverge later (e.g. different reply latency).
const (
	PrimaryThreshold   = 0.70
	SecondaryThreshold = 0.55
)

// Match is a selected response table entry.
type Match struct {
	Question string
	Answers  []string
	Score    float64
	// Confident is true when the score cleared PrimaryThreshold.
	Confident bool
}

// Score combines the three similarity signals for an utterance against a
// table question by taking their maximum.
func Score(utterance, question string) float64 {
	s := EditSimilarity(utterance, question)
	if j := TokenOverlap(utterance, question); j > s {
		s = j
	}
	if c := Containment(utterance, question); c > s {
		s = c
	}
	return s
}

// FindResponse scans the table for the entry best matching the utterance.
// Ties keep the earlier entry. Returns false when the best score is below
// SecondaryThreshold or the table is empty.
func FindResponse(t *Table, utterance string) (Match, bool) {
	if t.Len() == 0 {
		return Match{}, false
	}
	bestIdx := -1
	bestScore := 0.0
	for i, e := range t.Entries {
		s := Score(utterance, e.Question)
		if s > bestScore {
			bestIdx = i
			bestScore = s
		}
	}
	if bestIdx < 0 || bestScore < SecondaryThreshold {
		return Match{}, false
	}
	e := t.Entries[bestIdx]
	return Match{
		Question:  e.Question,
		Answers:   e.Answers,
		Score:     bestScore,
		Confident: bestScore >= PrimaryThreshold,
	}, true
}
