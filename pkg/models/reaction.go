package models

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Reaction is the per-reactor reaction value. Two wire encodings coexist:
// the legacy direct-chat form is a bare emoji string (one slot per
// reactor), the group-chat form is an object mapping emoji to count.
// Reads detect the shape; writes pick the form for the conversation kind.
type Reaction struct {
	emoji  string
	counts map[string]int
}

// NewSingle returns a single-slot reaction holding one emoji.
func NewSingle(emoji string) *Reaction {
	return &Reaction{emoji: emoji}
}

// NewCounted returns a counted reaction seeded with count for emoji.
func NewCounted(emoji string, count int) *Reaction {
	if count < 1 {
		count = 1
	}
	return &Reaction{counts: map[string]int{emoji: count}}
}

// Counted reports whether the value is in the counted (group) form.
func (r *Reaction) Counted() bool { return r.counts != nil }

// Emoji returns the single-form emoji; empty for counted values.
func (r *Reaction) Emoji() string { return r.emoji }

// Count returns the count recorded for emoji. Single-form values report 1
// for their emoji and 0 otherwise.
func (r *Reaction) Count(emoji string) int {
	if r.counts != nil {
		return r.counts[emoji]
	}
	if r.emoji == emoji {
		return 1
	}
	return 0
}

// Add increments emoji by count on a counted value. Calling Add on a
// single-form value upgrades it to the counted form first.
func (r *Reaction) Add(emoji string, count int) {
	if count < 1 {
		count = 1
	}
	if r.counts == nil {
		r.counts = map[string]int{}
		if r.emoji != "" {
			r.counts[r.emoji] = 1
			r.emoji = ""
		}
	}
	r.counts[emoji] += count
}

// Total returns the summed count across all emojis of this value.
func (r *Reaction) Total() int {
	if r.counts == nil {
		if r.emoji == "" {
			return 0
		}
		return 1
	}
	n := 0
	for _, c := range r.counts {
		n += c
	}
	return n
}

// Emojis returns the emojis present, sorted for stable display.
func (r *Reaction) Emojis() []string {
	if r.counts == nil {
		if r.emoji == "" {
			return nil
		}
		return []string{r.emoji}
	}
	out := make([]string, 0, len(r.counts))
	for e := range r.counts {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the reaction value.
func (r *Reaction) Clone() *Reaction {
	if r == nil {
		return nil
	}
	out := &Reaction{emoji: r.emoji}
	if r.counts != nil {
		out.counts = make(map[string]int, len(r.counts))
		for e, c := range r.counts {
			out.counts[e] = c
		}
	}
	return out
}

func (r *Reaction) MarshalJSON() ([]byte, error) {
	if r.counts != nil {
		return json.Marshal(r.counts)
	}
	return json.Marshal(r.emoji)
}

func (r *Reaction) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		r.emoji = s
		r.counts = nil
		return nil
	}
	var m map[string]int
	if err := json.Unmarshal(b, &m); err == nil {
		r.counts = m
		r.emoji = ""
		return nil
	}
	return fmt.Errorf("unrecognized reaction encoding: %s", string(b))
}

// ReactionTotals aggregates per-emoji totals across reactors, accepting
// both encodings. Historical data may mix the two forms in one map.
func ReactionTotals(reactions map[string]*Reaction) map[string]int {
	out := map[string]int{}
	for _, r := range reactions {
		if r == nil {
			continue
		}
		for _, e := range r.Emojis() {
			out[e] += r.Count(e)
		}
	}
	return out
}
