package game

// ValidActionsFor derives the legal actions for the player due to act.
// Returns the zero value if no betting round is open.
func ValidActionsFor(s *TableState) ValidActions {
	p := s.CurrentPlayer()
	if p == nil || p.Status != StatusActive {
		return ValidActions{}
	}

	toCall := s.CurrentBet - p.Bet
	if toCall < 0 {
		toCall = 0
	}

	va := ValidActions{
		CanFold:     true,
		CanAllIn:    p.Chips > 0,
		AllInAmount: p.Chips + p.Bet,
	}

	if toCall == 0 {
		va.CanCheck = true
	} else if p.Chips > 0 {
		va.CanCall = true
		va.CallAmount = min(toCall, p.Chips)
	}

	if s.CurrentBet == 0 && p.Chips > 0 {
		va.CanBet = true
		va.MinBet = min(s.BigBlind, p.Chips)
		va.MaxBet = p.Chips
	}

	// A raise requires more chips than the call amount plus the minimum raise
	// increment; a shorter stack can only shove.
	if s.CurrentBet > 0 && p.Chips > toCall && p.Chips >= toCall+s.MinRaise {
		va.CanRaise = true
		va.MinRaiseTo = s.CurrentBet + s.MinRaise
		va.MaxRaiseTo = p.Chips + p.Bet
	}

	return va
}

// ApplyAction validates and applies a player action, returning the resulting
// snapshot. Illegal actions return the original state unchanged together with
// a Rejection explaining why; legal actions return (next, nil).
//
// Only the player at ActivePlayerIndex may act; any other identity is
// rejected without mutation.
func ApplyAction(s *TableState, act PlayerAction) (*TableState, *Rejection) {
	current := s.CurrentPlayer()
	if current == nil || current.Status != StatusActive {
		return s, reject("no betting round open")
	}
	if act.PlayerID != current.ID {
		return s, reject("not %s's turn to act", act.PlayerID)
	}

	va := ValidActionsFor(s)
	toCall := s.CurrentBet - current.Bet

	switch act.Type {
	case Fold:
		// always legal while in the hand

	case Check:
		if !va.CanCheck {
			return s, reject("cannot check, must call %d", toCall)
		}

	case Call:
		if !va.CanCall {
			return s, reject("nothing to call")
		}

	case Bet:
		if !va.CanBet {
			return s, reject("cannot bet, there is already a bet of %d", s.CurrentBet)
		}
		if act.Amount < va.MinBet {
			return s, reject("bet too small, minimum %d", va.MinBet)
		}
		if act.Amount > va.MaxBet {
			return s, reject("insufficient chips for bet of %d", act.Amount)
		}

	case Raise:
		if !va.CanRaise {
			return s, reject("cannot raise")
		}
		if act.Amount < va.MinRaiseTo {
			return s, reject("raise too small, minimum %d", va.MinRaiseTo)
		}
		if act.Amount > va.MaxRaiseTo {
			return s, reject("insufficient chips for raise to %d", act.Amount)
		}

	case AllIn:
		if !va.CanAllIn {
			return s, reject("no chips remaining")
		}

	default:
		return s, reject("unknown action")
	}

	next := s.Clone()
	p := next.Players[next.ActivePlayerIndex]
	actorSeat := next.ActivePlayerIndex

	switch act.Type {
	case Fold:
		p.Status = StatusFolded

	case Check:
		// no chips move

	case Call:
		amount := min(next.CurrentBet-p.Bet, p.Chips)
		p.Chips -= amount
		p.Bet += amount
		p.TotalBet += amount
		next.Pot += amount
		if p.Chips == 0 {
			p.Status = StatusAllIn
		}

	case Bet:
		amount := act.Amount
		p.Chips -= amount
		p.Bet = amount
		p.TotalBet += amount
		next.Pot += amount
		next.CurrentBet = amount
		next.MinRaise = amount // the bet size becomes the new minimum raise
		next.LastRaiserIndex = actorSeat
		next.ActionsThisRound = 0
		if p.Chips == 0 {
			p.Status = StatusAllIn
		}

	case Raise:
		delta := act.Amount - p.Bet
		p.Chips -= delta
		p.Bet = act.Amount
		p.TotalBet += delta
		next.Pot += delta
		next.MinRaise = act.Amount - next.CurrentBet
		next.CurrentBet = act.Amount
		next.LastRaiserIndex = actorSeat
		next.ActionsThisRound = 0
		if p.Chips == 0 {
			p.Status = StatusAllIn
		}

	case AllIn:
		amount := p.Chips
		p.Chips = 0
		p.Bet += amount
		p.TotalBet += amount
		next.Pot += amount
		p.Status = StatusAllIn

		// A shove past the table bet acts as a raise; the minimum raise
		// becomes at least the shove's overage.
		if overage := p.Bet - next.CurrentBet; overage > 0 {
			if overage > next.MinRaise {
				next.MinRaise = overage
			}
			next.CurrentBet = p.Bet
			next.LastRaiserIndex = actorSeat
			next.ActionsThisRound = 0
		}
	}

	next.ActionsThisRound++
	next.ActivePlayerIndex = next.nextActiveFrom(actorSeat + 1)

	return next, nil
}

// PostBlinds posts the small and big blinds and opens the preflop betting
// round. Heads-up the dealer posts the small blind; with 3+ players the seat
// left of the dealer does. Blinds are capped at the poster's stack so a short
// stack posts a partial blind without going negative.
func PostBlinds(s *TableState) *TableState {
	next := s.Clone()
	n := len(next.Players)

	var sbSeat int
	if n == 2 {
		sbSeat = next.DealerIndex
	} else {
		sbSeat = (next.DealerIndex + 1) % n
	}
	bbSeat := (sbSeat + 1) % n

	post := func(seat, amount int) {
		p := next.Players[seat]
		posted := min(amount, p.Chips)
		p.Chips -= posted
		p.Bet = posted
		p.TotalBet = posted
		next.Pot += posted
		if p.Chips == 0 && p.Status == StatusActive {
			p.Status = StatusAllIn
		}
	}

	post(sbSeat, next.SmallBlind)
	post(bbSeat, next.BigBlind)

	next.Street = StreetPreflop
	next.CurrentBet = next.BigBlind
	next.MinRaise = next.BigBlind
	// The big blind is the nominal last raiser so preflop action closes
	// around the table and the big blind keeps the option.
	next.LastRaiserIndex = bbSeat
	next.ActionsThisRound = 0
	next.ActivePlayerIndex = next.nextActiveFrom(bbSeat + 1)

	return next
}

// RoundComplete reports whether the open betting round is finished: at most
// one player remains in the hand; or nobody with chips can act; or every
// player able to act has matched the table bet and acted since the last
// bet or raise.
func RoundComplete(s *TableState) bool {
	if s.PlayersInHand() <= 1 {
		return true
	}

	able := s.playersAbleToAct()
	if able == 0 {
		return true
	}

	for _, p := range s.Players {
		if p.Status == StatusActive && p.Bet != s.CurrentBet {
			return false
		}
	}

	// ActionsThisRound resets whenever a bet or raise reopens the action, so
	// reaching the active player count means everyone has spoken since.
	return s.ActionsThisRound >= able
}

// NextStreet advances to the next street, resetting per-street betting state.
// Community cards are dealt by the orchestrator, which owns the deck.
func NextStreet(s *TableState) *TableState {
	next := s.Clone()

	switch next.Street {
	case StreetPreflop:
		next.Street = StreetFlop
	case StreetFlop:
		next.Street = StreetTurn
	case StreetTurn:
		next.Street = StreetRiver
	case StreetRiver:
		next.Street = StreetShowdown
	default:
		return next
	}

	for _, p := range next.Players {
		p.Bet = 0
	}
	next.CurrentBet = 0
	next.MinRaise = next.BigBlind
	next.LastRaiserIndex = -1
	next.ActionsThisRound = 0
	next.ActivePlayerIndex = next.nextActiveFrom(next.DealerIndex + 1)

	return next
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
