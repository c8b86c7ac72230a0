package store

import (
	"chatsim/pkg/models"
)

// InsertNonPinned inserts a regular contact one past the pinned block:
// scan from position 0 until a non-pinned contact (or the end) is reached
// and insert there, so new contacts land right after the pinned block
// rather than at the very end.
func InsertNonPinned(list []models.Contact, c models.Contact) []models.Contact {
	idx := 0
	for idx < len(list) && list[idx].Pinned() {
		idx++
	}
	out := make([]models.Contact, 0, len(list)+1)
	out = append(out, list[:idx]...)
	out = append(out, c)
	out = append(out, list[idx:]...)
	return out
}

// Reconcile rebuilds the roster ordering invariant: pinned contacts first
// in fixed role-rank order, then the rest in their existing relative
// order. Persisted order is not trusted, so this runs after every bulk
// load.
func Reconcile(list []models.Contact) []models.Contact {
	byRank := map[int][]models.Contact{}
	var rest []models.Contact
	maxRank := -1
	for _, c := range list {
		r := models.PinnedRank(c.Role)
		if r < 0 {
			rest = append(rest, c)
			continue
		}
		byRank[r] = append(byRank[r], c)
		if r > maxRank {
			maxRank = r
		}
	}
	out := make([]models.Contact, 0, len(list))
	for r := 0; r <= maxRank; r++ {
		out = append(out, byRank[r]...)
	}
	return append(out, rest...)
}
