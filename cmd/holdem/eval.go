package main

import (
	"fmt"
	"strings"

	"github.com/feltworks/holdem/poker"
)

// EvalCmd evaluates a hand of 5-7 cards given as card codes ("As Kh ...").
type EvalCmd struct {
	Cards []string `arg:"" help:"Cards as rank+suit codes, e.g. As Kh Qd Jc Ts"`
}

func (c *EvalCmd) Run() error {
	cards, err := poker.ParseCards(strings.Join(c.Cards, ""))
	if err != nil {
		return err
	}

	result, err := poker.Evaluate(cards)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", result.Description)
	fmt.Printf("category: %d (%s)\n", result.Category, result.Category)
	fmt.Printf("best five: %s\n", poker.FormatCards(result.Cards))
	return nil
}
