package resolver

import "sort"

// #region select-best
// SelectBest returns the option with the strictly highest score. Ties go to
// the lowest option id. ok is false when scores is empty.
func SelectBest(scores map[int]float64) (option int, score float64, ok bool) {
	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if !ok || scores[id] > score {
			option, score, ok = id, scores[id], true
		}
	}
	return option, score, ok
}

// #endregion select-best

// SortedScores lists option scores by ascending option id.
func SortedScores(scores map[int]float64) []OptionScore {
	out := make([]OptionScore, 0, len(scores))
	for id, sc := range scores {
		out = append(out, OptionScore{OptionID: id, Score: sc})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OptionID < out[j].OptionID })
	return out
}

// OptionScore pairs an option id with its predicted score.
type OptionScore struct {
	OptionID int
	Score    float64
}
