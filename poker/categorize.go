package poker

// HoleCardCategory represents the strength category of hole cards
type HoleCardCategory string

const (
	CategoryPremium HoleCardCategory = "Premium"
	CategoryStrong  HoleCardCategory = "Strong"
	CategoryMedium  HoleCardCategory = "Medium"
	CategoryWeak    HoleCardCategory = "Weak"
	CategoryTrash   HoleCardCategory = "Trash"
	CategoryUnknown HoleCardCategory = "Unknown"
)

// CategorizeHoleCards provides a simple preflop hand categorization.
// Categories: Premium (JJ+, AK), Strong (TT, AQ/AJ), Medium (77-99, suited
// broadway), Weak (small pairs, suited connectors), Trash (everything else).
func CategorizeHoleCards(card1, card2 Card) HoleCardCategory {
	if card1.Rank < Two || card1.Rank > Ace || card2.Rank < Two || card2.Rank > Ace {
		return CategoryUnknown
	}

	suited := card1.Suit == card2.Suit

	small, big := card1.Rank, card2.Rank
	if small > big {
		small, big = big, small
	}
	isPair := small == big

	// Premium: JJ+, AK
	if isPair && small >= Jack {
		return CategoryPremium
	}
	if small == King && big == Ace {
		return CategoryPremium
	}

	// Strong: TT, AQ, AJ
	if isPair && small == Ten {
		return CategoryStrong
	}
	if big == Ace && (small == Queen || small == Jack) {
		return CategoryStrong
	}

	// Medium: 77-99, suited broadway
	if isPair && small >= Seven && small <= Nine {
		return CategoryMedium
	}
	if suited && small >= Ten {
		return CategoryMedium
	}

	// Weak: small pairs or suited connectors
	if isPair {
		return CategoryWeak
	}
	if suited && big-small <= 2 {
		return CategoryWeak
	}

	return CategoryTrash
}
