package poker

import (
	"errors"
	"fmt"
	"sort"
)

// HandCategory enumerates the categories of poker hands ordered from weakest
// to strongest. The zero value is invalid so an unset result is detectable.
type HandCategory int

const (
	HighCard HandCategory = iota + 1
	OnePair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

// String returns a human-readable category name.
func (c HandCategory) String() string {
	switch c {
	case HighCard:
		return "High Card"
	case OnePair:
		return "One Pair"
	case TwoPair:
		return "Two Pair"
	case ThreeOfAKind:
		return "Three of a Kind"
	case Straight:
		return "Straight"
	case Flush:
		return "Flush"
	case FullHouse:
		return "Full House"
	case FourOfAKind:
		return "Four of a Kind"
	case StraightFlush:
		return "Straight Flush"
	case RoyalFlush:
		return "Royal Flush"
	default:
		return "Unknown"
	}
}

// HandRankResult is the classification of a best 5-card hand.
// Kickers are ordered highest-significance first and are only consulted when
// categories tie.
type HandRankResult struct {
	Category    HandCategory
	Kickers     []Rank
	Description string
	Cards       []Card // the five cards that produced the result
}

// ErrTooFewCards is returned when fewer than 5 cards are supplied to Evaluate.
var ErrTooFewCards = errors.New("hand evaluation requires at least 5 cards")

// Evaluate classifies the best 5-card hand obtainable from 5-7 cards.
// With exactly 5 cards the set is classified directly; with 6-7 cards every
// 5-card subset is classified and the strongest kept. The result is
// independent of input card order.
func Evaluate(cards []Card) (HandRankResult, error) {
	if len(cards) < 5 {
		return HandRankResult{}, fmt.Errorf("%w: got %d", ErrTooFewCards, len(cards))
	}

	if len(cards) == 5 {
		var five [5]Card
		copy(five[:], cards)
		return evaluateFive(five), nil
	}

	var best HandRankResult
	forEachFiveCardSubset(len(cards), func(idx [5]int) {
		var five [5]Card
		for i, j := range idx {
			five[i] = cards[j]
		}
		result := evaluateFive(five)
		if best.Category == 0 || Compare(result, best) > 0 {
			best = result
		}
	})
	return best, nil
}

// forEachFiveCardSubset iterates every 5-element index combination of n
// elements in lexicographic order. Iterative by design: at most C(7,5)=21
// subsets, no recursion.
func forEachFiveCardSubset(n int, fn func(idx [5]int)) {
	idx := [5]int{0, 1, 2, 3, 4}
	for {
		fn(idx)

		// Advance to the next combination.
		i := 4
		for i >= 0 && idx[i] == n-5+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < 5; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// rankGroup is a rank with its multiplicity in the 5-card set.
type rankGroup struct {
	rank  Rank
	count int
}

// evaluateFive classifies exactly 5 cards.
func evaluateFive(five [5]Card) HandRankResult {
	// Fixed-size count arrays; ranks and suits are a closed, small domain.
	var rankCounts [15]int // indexed by rank 2-14
	var suitCounts [4]int
	for _, c := range five {
		rankCounts[c.Rank]++
		suitCounts[c.Suit]++
	}

	isFlush := false
	for _, n := range suitCounts {
		if n == 5 {
			isFlush = true
			break
		}
	}

	straightHigh := straightHighCard(rankCounts)

	// Rank groups sorted by (count desc, rank desc); this ordering is exactly
	// the kicker significance order for every category below.
	groups := make([]rankGroup, 0, 5)
	for r := Ace; r >= Two; r-- {
		if rankCounts[r] > 0 {
			groups = append(groups, rankGroup{rank: r, count: rankCounts[r]})
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].count > groups[j].count
	})

	sorted := sortedByRankDesc(five)

	result := HandRankResult{Cards: sorted}

	switch {
	case isFlush && straightHigh == Ace:
		result.Category = RoyalFlush
		result.Kickers = []Rank{Ace}
		result.Description = "Royal Flush"

	case isFlush && straightHigh > 0:
		result.Category = StraightFlush
		result.Kickers = []Rank{straightHigh}
		result.Description = fmt.Sprintf("Straight Flush, %s high", straightHigh.Name())

	case groups[0].count == 4:
		result.Category = FourOfAKind
		result.Kickers = []Rank{groups[0].rank, groups[1].rank}
		result.Description = fmt.Sprintf("Four of a Kind, %s", groups[0].rank.Plural())

	case groups[0].count == 3 && groups[1].count == 2:
		result.Category = FullHouse
		result.Kickers = []Rank{groups[0].rank, groups[1].rank}
		result.Description = fmt.Sprintf("Full House, %s over %s",
			groups[0].rank.Plural(), groups[1].rank.Plural())

	case isFlush:
		result.Category = Flush
		result.Kickers = groupRanks(groups)
		result.Description = fmt.Sprintf("Flush, %s high", groups[0].rank.Name())

	case straightHigh > 0:
		result.Category = Straight
		result.Kickers = []Rank{straightHigh}
		result.Description = fmt.Sprintf("Straight, %s high", straightHigh.Name())

	case groups[0].count == 3:
		result.Category = ThreeOfAKind
		result.Kickers = groupRanks(groups)
		result.Description = fmt.Sprintf("Three of a Kind, %s", groups[0].rank.Plural())

	case groups[0].count == 2 && groups[1].count == 2:
		result.Category = TwoPair
		result.Kickers = groupRanks(groups)
		result.Description = fmt.Sprintf("Two Pair, %s and %s",
			groups[0].rank.Plural(), groups[1].rank.Plural())

	case groups[0].count == 2:
		result.Category = OnePair
		result.Kickers = groupRanks(groups)
		result.Description = fmt.Sprintf("One Pair, %s", groups[0].rank.Plural())

	default:
		result.Category = HighCard
		result.Kickers = groupRanks(groups)
		result.Description = fmt.Sprintf("High Card, %s", groups[0].rank.Name())
	}

	return result
}

// straightHighCard returns the high card of a straight formed by the rank
// counts, or 0 if there is none. The wheel (A-2-3-4-5) is a 5-high straight.
func straightHighCard(rankCounts [15]int) Rank {
	// Five consecutive distinct ranks, ace high first.
	for high := Ace; high >= Six; high-- {
		run := true
		for r := high - 4; r <= high; r++ {
			if rankCounts[r] == 0 {
				run = false
				break
			}
		}
		if run {
			return high
		}
	}

	// The wheel: ace plays low.
	if rankCounts[Ace] > 0 && rankCounts[Two] > 0 && rankCounts[Three] > 0 &&
		rankCounts[Four] > 0 && rankCounts[Five] > 0 {
		return Five
	}
	return 0
}

// groupRanks flattens rank groups into the kicker sequence.
func groupRanks(groups []rankGroup) []Rank {
	kickers := make([]Rank, len(groups))
	for i, g := range groups {
		kickers[i] = g.rank
	}
	return kickers
}

// sortedByRankDesc returns the five cards ordered by descending rank.
func sortedByRankDesc(five [5]Card) []Card {
	cards := make([]Card, 5)
	copy(cards, five[:])
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Rank != cards[j].Rank {
			return cards[i].Rank > cards[j].Rank
		}
		return cards[i].Suit > cards[j].Suit
	})
	return cards
}
