package poker

// Compare orders two hand evaluations. It returns 1 if a is stronger,
// -1 if b is stronger and 0 on an exact tie.
//
// Categories are compared first; on a category tie the kicker sequences are
// compared positionally. A missing kicker is treated as zero, which only
// matters when comparing results built from different hand sizes.
func Compare(a, b HandRankResult) int {
	if a.Category != b.Category {
		if a.Category > b.Category {
			return 1
		}
		return -1
	}

	n := len(a.Kickers)
	if len(b.Kickers) > n {
		n = len(b.Kickers)
	}
	for i := 0; i < n; i++ {
		var ka, kb Rank
		if i < len(a.Kickers) {
			ka = a.Kickers[i]
		}
		if i < len(b.Kickers) {
			kb = b.Kickers[i]
		}
		if ka != kb {
			if ka > kb {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Winners returns the indices of all results equal to the strongest result,
// yielding the full tie set for split-pot handling. An empty input returns
// an empty slice; a single hand wins trivially.
func Winners(results []HandRankResult) []int {
	if len(results) == 0 {
		return nil
	}

	best := results[0]
	winners := []int{0}
	for i := 1; i < len(results); i++ {
		switch Compare(results[i], best) {
		case 1:
			best = results[i]
			winners = winners[:0]
			winners = append(winners, i)
		case 0:
			winners = append(winners, i)
		}
	}
	return winners
}
