// Package ai provides heuristic computer opponents for the table. Each agent
// implements game.Agent and decides purely from the public snapshot and the
// legality surface it is handed; none of them inspect the deck or other
// players' hole cards.
package ai
