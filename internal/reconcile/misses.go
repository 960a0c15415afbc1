package reconcile

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/stemsi/formfill-backend/internal/model"
)

// NewSeededRand returns a deterministic random source for miss selection.
func NewSeededRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// SelectMisses picks min(k, #choice questions) choice questions, uniformly and
// without replacement, to be answered incorrectly. Candidates are ordered by
// id before sampling so the result depends only on rng's state and the id set.
// A nil rng draws from a time-seeded source.
func SelectMisses(questions []model.Question, k int, rng *rand.Rand) map[string]bool {
	selected := make(map[string]bool)
	if k <= 0 {
		return selected
	}

	var ids []string
	for _, q := range questions {
		if q.IsMultipleChoice() && !slices.Contains(ids, q.ID) {
			ids = append(ids, q.ID)
		}
	}
	if len(ids) == 0 {
		return selected
	}
	slices.Sort(ids)

	if rng == nil {
		rng = NewSeededRand(time.Now().UnixNano())
	}
	k = min(k, len(ids))

	// Partial Fisher-Yates: the first k slots end up a uniform sample.
	for i := 0; i < k; i++ {
		j := i + rng.IntN(len(ids)-i)
		ids[i], ids[j] = ids[j], ids[i]
		selected[ids[i]] = true
	}
	return selected
}

// wrongOption picks an option index different from correct. correct may be -1
// when the right answer is unknown.
func wrongOption(options []string, correct int, rng *rand.Rand) int {
	if correct < 0 || correct >= len(options) {
		return rng.IntN(len(options))
	}
	idx := rng.IntN(len(options) - 1)
	if idx >= correct {
		idx++
	}
	return idx
}
